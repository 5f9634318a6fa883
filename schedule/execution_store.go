package schedule

import (
	"database/sql"
	"fmt"
)

// ExecutionStore handles persistence of job execution records.
type ExecutionStore struct {
	db *sql.DB
}

// NewExecutionStore creates a new execution store.
func NewExecutionStore(db *sql.DB) *ExecutionStore {
	return &ExecutionStore{db: db}
}

// CreateExecution inserts a new execution record.
func (s *ExecutionStore) CreateExecution(e *Execution) error {
	query := `
		INSERT INTO job_executions (
			id, job_name, status, started_at, completed_at,
			duration_ms, result_summary, error_message,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		e.ID,
		e.JobName,
		e.Status,
		e.StartedAt,
		e.CompletedAt,
		e.DurationMs,
		e.ResultSummary,
		e.ErrorMessage,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution record: %w", err)
	}

	return nil
}

// UpdateExecution updates an execution record with its final status.
func (s *ExecutionStore) UpdateExecution(e *Execution) error {
	query := `
		UPDATE job_executions
		SET status = ?,
		    completed_at = ?,
		    duration_ms = ?,
		    result_summary = ?,
		    error_message = ?,
		    updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.Exec(query,
		e.Status,
		e.CompletedAt,
		e.DurationMs,
		e.ResultSummary,
		e.ErrorMessage,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update execution record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("execution record not found: %s", e.ID)
	}

	return nil
}

// ListRecentExecutions returns the most recent executions for a job,
// newest first.
func (s *ExecutionStore) ListRecentExecutions(jobName string, limit int) ([]*Execution, error) {
	query := `
		SELECT id, job_name, status, started_at, completed_at,
		       duration_ms, result_summary, error_message,
		       created_at, updated_at
		FROM job_executions
		WHERE job_name = ?
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, jobName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []*Execution
	for rows.Next() {
		var e Execution
		if err := rows.Scan(
			&e.ID,
			&e.JobName,
			&e.Status,
			&e.StartedAt,
			&e.CompletedAt,
			&e.DurationMs,
			&e.ResultSummary,
			&e.ErrorMessage,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		executions = append(executions, &e)
	}

	return executions, rows.Err()
}
