package clinic

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/medlinkvn/medlink/errors"
)

const dateLayout = "2006-01-02"

// Store handles persistence of clinic records.
type Store struct {
	db *sql.DB
}

// NewStore creates a new clinic store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const doctorColumns = `id, full_name, is_verified, total_case_miss_per_week,
       next_week_miss, is_salary_deduction, start_date_banned, end_date_banned,
       total_banned, is_accepting_appointments, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDoctor(row rowScanner) (*Doctor, error) {
	var d Doctor
	var startBanned, endBanned sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&d.ID,
		&d.FullName,
		&d.IsVerified,
		&d.TotalCaseMissPerWeek,
		&d.NextWeekMiss,
		&d.IsSalaryDeduction,
		&startBanned,
		&endBanned,
		&d.TotalBanned,
		&d.IsAcceptingAppointments,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps (return error if parsing fails - indicates data corruption or schema mismatch)
	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for doctor %s: %w", d.ID, err)
	}
	d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for doctor %s: %w", d.ID, err)
	}
	if startBanned.Valid {
		d.StartDateBanned, err = time.Parse(time.RFC3339, startBanned.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start_date_banned for doctor %s: %w", d.ID, err)
		}
	}
	if endBanned.Valid {
		d.EndDateBanned, err = time.Parse(time.RFC3339, endBanned.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end_date_banned for doctor %s: %w", d.ID, err)
		}
	}

	return &d, nil
}

// banDate converts a ban field to its column value; the zero time maps to NULL.
func banDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// CreateDoctor inserts a new doctor record.
func (s *Store) CreateDoctor(d *Doctor) error {
	query := `
		INSERT INTO doctors (
			id, full_name, is_verified, total_case_miss_per_week,
			next_week_miss, is_salary_deduction, start_date_banned, end_date_banned,
			total_banned, is_accepting_appointments, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}

	_, err := s.db.Exec(query,
		d.ID,
		d.FullName,
		d.IsVerified,
		d.TotalCaseMissPerWeek,
		d.NextWeekMiss,
		d.IsSalaryDeduction,
		banDate(d.StartDateBanned),
		banDate(d.EndDateBanned),
		d.TotalBanned,
		d.IsAcceptingAppointments,
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	return nil
}

// GetDoctor retrieves a doctor by ID.
func (s *Store) GetDoctor(id string) (*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = ?`

	d, err := scanDoctor(s.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(errors.ErrNotFound, "doctor not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return d, nil
}

// ListVerifiedDoctors returns every doctor visible to the weekly compliance
// evaluation.
func (s *Store) ListVerifiedDoctors(ctx context.Context) ([]*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE is_verified = 1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}

	return doctors, rows.Err()
}

// ListDoctorsWithExpiredBan returns doctors whose temporary ban window has
// elapsed. Permanent bans (end date pushed ~100 years out) are excluded by
// the 50-year horizon so the reinstatement job never touches them.
func (s *Store) ListDoctorsWithExpiredBan(ctx context.Context, now time.Time) ([]*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors
		WHERE end_date_banned IS NOT NULL
		  AND end_date_banned < ?
		  AND end_date_banned < ?
		ORDER BY id`

	horizon := now.AddDate(50, 0, 0)
	rows, err := s.db.QueryContext(ctx, query,
		now.UTC().Format(time.RFC3339),
		horizon.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}

	return doctors, rows.Err()
}

// SaveDoctors persists a batch of mutated doctors in a single transaction.
func (s *Store) SaveDoctors(ctx context.Context, doctors []*Doctor) error {
	if len(doctors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin doctor batch: %w", err)
	}

	query := `
		UPDATE doctors
		SET total_case_miss_per_week = ?,
		    next_week_miss = ?,
		    is_salary_deduction = ?,
		    start_date_banned = ?,
		    end_date_banned = ?,
		    total_banned = ?,
		    is_accepting_appointments = ?,
		    updated_at = ?
		WHERE id = ?
	`

	for _, d := range doctors {
		result, err := tx.ExecContext(ctx, query,
			d.TotalCaseMissPerWeek,
			d.NextWeekMiss,
			d.IsSalaryDeduction,
			banDate(d.StartDateBanned),
			banDate(d.EndDateBanned),
			d.TotalBanned,
			d.IsAcceptingAppointments,
			d.UpdatedAt.UTC().Format(time.RFC3339),
			d.ID,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save doctor %s: %w", d.ID, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to get rows affected for doctor %s: %w", d.ID, err)
		}
		if rowsAffected == 0 {
			tx.Rollback()
			return fmt.Errorf("doctor not found: %s", d.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit doctor batch: %w", err)
	}

	return nil
}

// CreateOverride inserts a schedule override.
func (s *Store) CreateOverride(o *ScheduleOverride) error {
	query := `
		INSERT INTO doctor_schedule_overrides (
			id, doctor_id, override_date, is_available, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}

	_, err := s.db.Exec(query,
		o.ID,
		o.DoctorID,
		o.OverrideDate.Format(dateLayout),
		o.IsAvailable,
		o.CreatedAt.Format(time.RFC3339),
		o.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule override: %w", err)
	}

	return nil
}

// ListExpiredOverrides returns overrides dated strictly before today that
// are still marked available.
func (s *Store) ListExpiredOverrides(ctx context.Context, today time.Time) ([]*ScheduleOverride, error) {
	query := `
		SELECT id, doctor_id, override_date, is_available, created_at, updated_at
		FROM doctor_schedule_overrides
		WHERE override_date < ? AND is_available = 1
		ORDER BY override_date
	`

	rows, err := s.db.QueryContext(ctx, query, today.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []*ScheduleOverride
	for rows.Next() {
		var o ScheduleOverride
		var overrideDate, createdAt, updatedAt string
		if err := rows.Scan(&o.ID, &o.DoctorID, &overrideDate, &o.IsAvailable, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		o.OverrideDate, err = time.Parse(dateLayout, overrideDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse override_date for override %s: %w", o.ID, err)
		}
		o.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for override %s: %w", o.ID, err)
		}
		o.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at for override %s: %w", o.ID, err)
		}
		overrides = append(overrides, &o)
	}

	return overrides, rows.Err()
}

// SaveOverrides persists a batch of mutated overrides in a single transaction.
func (s *Store) SaveOverrides(ctx context.Context, overrides []*ScheduleOverride) error {
	if len(overrides) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin override batch: %w", err)
	}

	query := `
		UPDATE doctor_schedule_overrides
		SET is_available = ?, updated_at = ?
		WHERE id = ?
	`

	for _, o := range overrides {
		if _, err := tx.ExecContext(ctx, query, o.IsAvailable, o.UpdatedAt.UTC().Format(time.RFC3339), o.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save override %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit override batch: %w", err)
	}

	return nil
}

// CreateReminder inserts an appointment reminder.
func (s *Store) CreateReminder(r *Reminder) error {
	query := `
		INSERT INTO appointment_reminders (
			id, appointment_id, remind_date, is_pending, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}

	_, err := s.db.Exec(query,
		r.ID,
		r.AppointmentID,
		r.RemindDate.Format(dateLayout),
		r.IsPending,
		r.CreatedAt.Format(time.RFC3339),
		r.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

// ListExpiredReminders returns reminders dated strictly before today that
// are still pending.
func (s *Store) ListExpiredReminders(ctx context.Context, today time.Time) ([]*Reminder, error) {
	query := `
		SELECT id, appointment_id, remind_date, is_pending, created_at, updated_at
		FROM appointment_reminders
		WHERE remind_date < ? AND is_pending = 1
		ORDER BY remind_date
	`

	rows, err := s.db.QueryContext(ctx, query, today.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		var r Reminder
		var remindDate, createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.AppointmentID, &remindDate, &r.IsPending, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.RemindDate, err = time.Parse(dateLayout, remindDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse remind_date for reminder %s: %w", r.ID, err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for reminder %s: %w", r.ID, err)
		}
		r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at for reminder %s: %w", r.ID, err)
		}
		reminders = append(reminders, &r)
	}

	return reminders, rows.Err()
}

// SaveReminders persists a batch of mutated reminders in a single transaction.
func (s *Store) SaveReminders(ctx context.Context, reminders []*Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reminder batch: %w", err)
	}

	query := `
		UPDATE appointment_reminders
		SET is_pending = ?, updated_at = ?
		WHERE id = ?
	`

	for _, r := range reminders {
		if _, err := tx.ExecContext(ctx, query, r.IsPending, r.UpdatedAt.UTC().Format(time.RFC3339), r.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save reminder %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminder batch: %w", err)
	}

	return nil
}
