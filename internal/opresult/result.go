package opresult

import "fmt"

// Status classifies the outcome of an operation that crosses a service
// boundary. There is no retryable middle ground: an operation either
// succeeded or it aborted.
type Status int

const (
	Success Status = iota
	FatalError
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case FatalError:
		return "FATAL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Result is returned by every public operation of the recording and export
// pipeline instead of letting errors or panics escape the boundary.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

func (r Result) Ok() bool {
	return r.Status == Success
}

func Successf(format string, args ...interface{}) Result {
	return Result{Status: Success, Message: fmt.Sprintf(format, args...)}
}

func Fatalf(format string, args ...interface{}) Result {
	return Result{Status: FatalError, Message: fmt.Sprintf(format, args...)}
}

// FromError downgrades an error to a fatal Result carrying its message.
func FromError(err error) Result {
	if err == nil {
		return Result{Status: Success}
	}
	return Result{Status: FatalError, Message: err.Error()}
}
