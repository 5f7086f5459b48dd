package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Queue errors
const (
	// ErrCodeQueueClosed indicates a push was attempted on a closed or
	// drained queue. Programmer error, never recovered automatically.
	ErrCodeQueueClosed ErrorCode = "QUEUE_CLOSED"
)

// Worker errors
const (
	// ErrCodeWorkerFailed indicates a work function returned an error or
	// panicked while processing a task.
	ErrCodeWorkerFailed ErrorCode = "WORKER_FAILED"
)

// Construction errors
const (
	// ErrCodeMissingOperation indicates a named operation was not found
	// in the registry at stage-construction time.
	ErrCodeMissingOperation ErrorCode = "MISSING_OPERATION"
	// ErrCodeInvalidConfig indicates pipeline configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)
