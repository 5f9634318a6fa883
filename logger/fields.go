package logger

// Standard field names for consistent structured logging across MedLink.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldJobName     = "job"
	FieldExecutionID = "execution_id"
	FieldDoctorID    = "doctor_id"
	FieldActor       = "actor"

	// Timing
	FieldDurationMS = "duration_ms"
	FieldNextRunAt  = "next_run_at"
	FieldBackoff    = "backoff"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount     = "count"
	FieldBatchSize = "batch_size"
	FieldFileSize  = "file_size"

	// Status
	FieldStatus = "status"
	FieldState  = "state"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)
