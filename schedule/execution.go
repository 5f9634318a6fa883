package schedule

// Execution represents a single execution of a recurring job.
//
// Each time a loop dispatches its unit of work, an Execution record is
// created to track timing, status, and failure detail. This provides
// execution history for debugging and monitoring: the job loops have no
// caller, so the execution table and the log stream are their only
// observers.
type Execution struct {
	ID      string `json:"id"` // JEX_{random}_{timestamp} format
	JobName string `json:"job_name"`

	Status string `json:"status"` // "running", "completed", "failed"

	StartedAt   string  `json:"started_at"`             // RFC3339 timestamp
	CompletedAt *string `json:"completed_at,omitempty"` // RFC3339 timestamp (null if running)
	DurationMs  *int    `json:"duration_ms,omitempty"`  // Milliseconds (null if running)

	ResultSummary *string `json:"result_summary,omitempty"` // Brief summary
	ErrorMessage  *string `json:"error_message,omitempty"`  // Error if failed

	CreatedAt string `json:"created_at"` // RFC3339 timestamp
	UpdatedAt string `json:"updated_at"` // RFC3339 timestamp
}

// Execution status constants for type safety
const (
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusFailed    = "failed"
)
