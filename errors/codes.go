package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Delivery errors (terminal for the affected connection, never retried)
const (
	// ErrCodeCapacityExceeded indicates the routing key is at its connection limit.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
	// ErrCodeSlowConsumer indicates a connection's outbound buffer is full.
	ErrCodeSlowConsumer ErrorCode = "SLOW_CONSUMER"
	// ErrCodeConnectionClosed indicates a send was attempted on a closed connection.
	ErrCodeConnectionClosed ErrorCode = "CONNECTION_CLOSED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeCapacityExceeded: true,
	ErrCodeSlowConsumer:     false,
	ErrCodeConnectionClosed: false,
	ErrCodeInvalidInput:     false,
	ErrCodeMissingField:     false,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
