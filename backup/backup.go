// Package backup snapshots the MedLink database and prunes old snapshot
// files.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/medlinkvn/medlink/errors"
	"github.com/medlinkvn/medlink/internal/id"
)

// Record describes one completed database backup.
type Record struct {
	ID        string
	Label     string
	Actor     string
	FilePath  string
	FileSize  int64
	CreatedAt time.Time
}

// Runner creates and prunes database backups.
type Runner interface {
	CreateBackup(ctx context.Context, label, actor string) (*Record, error)
	CleanupOldBackups(ctx context.Context, keepCount int) (int, error)
	ListBackups(ctx context.Context) ([]*Record, error)
}

// SQLiteRunner snapshots a live SQLite database with VACUUM INTO, which
// produces a consistent copy without blocking writers.
type SQLiteRunner struct {
	db  *sql.DB
	dir string
}

// NewSQLiteRunner creates a runner writing snapshot files into dir.
func NewSQLiteRunner(db *sql.DB, dir string) *SQLiteRunner {
	return &SQLiteRunner{db: db, dir: dir}
}

// CreateBackup snapshots the database into a timestamped file and records
// it in the backups table.
func (r *SQLiteRunner) CreateBackup(ctx context.Context, label, actor string) (*Record, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrBackupFailed, "create backup directory %s: %v", r.dir, err)
	}

	now := time.Now().UTC()
	// Nanosecond component keeps names unique when snapshots land within
	// the same second.
	filename := fmt.Sprintf("medlink-%s-%09d.db", now.Format("20060102-150405"), now.Nanosecond())
	target := filepath.Join(r.dir, filename)

	if _, err := r.db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return nil, errors.Wrapf(errors.ErrBackupFailed, "vacuum into %s: %v", target, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrBackupFailed, "stat backup file %s: %v", target, err)
	}

	rec := &Record{
		ID:        id.GenerateBackupID(),
		Label:     label,
		Actor:     actor,
		FilePath:  target,
		FileSize:  info.Size(),
		CreatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO backups (id, label, actor, file_path, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Label, rec.Actor, rec.FilePath, rec.FileSize,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, errors.WrapPersistence(err, "record backup")
	}

	return rec, nil
}

// CleanupOldBackups deletes all but the keepCount newest backups, file and
// record both. Returns how many were removed.
func (r *SQLiteRunner) CleanupOldBackups(ctx context.Context, keepCount int) (int, error) {
	if keepCount < 1 {
		keepCount = 1
	}

	backups, err := r.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keepCount {
		return 0, nil
	}

	deleted := 0
	for _, old := range backups[keepCount:] {
		// A missing file is fine, the record is stale either way.
		if err := os.Remove(old.FilePath); err != nil && !os.IsNotExist(err) {
			return deleted, errors.Wrapf(errors.ErrBackupFailed, "remove backup file %s: %v", old.FilePath, err)
		}
		if _, err := r.db.ExecContext(ctx, "DELETE FROM backups WHERE id = ?", old.ID); err != nil {
			return deleted, errors.WrapPersistence(err, "delete backup record")
		}
		deleted++
	}

	return deleted, nil
}

// ListBackups returns all backup records, newest first.
func (r *SQLiteRunner) ListBackups(ctx context.Context) ([]*Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, actor, file_path, file_size, created_at
		FROM backups ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.WrapPersistence(err, "list backups")
	}
	defer rows.Close()

	var backups []*Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Label, &rec.Actor, &rec.FilePath, &rec.FileSize, &createdAt); err != nil {
			return nil, errors.WrapPersistence(err, "scan backup record")
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, errors.Wrapf(err, "parse created_at for backup %s", rec.ID)
		}
		backups = append(backups, &rec)
	}

	return backups, rows.Err()
}
