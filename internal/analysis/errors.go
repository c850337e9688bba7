package analysis

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is shown when the service gave no usable detail.
const GenericFailureMessage = "Failed to connect. Make sure the analysis service is running and reachable."

// FailureKind classifies why a submission did not produce a result
type FailureKind int

const (
	// TransportFailure covers unreachable services, malformed responses and
	// non-success statuses without a detail message.
	TransportFailure FailureKind = iota + 1
	// ServiceRejected is a non-success status carrying a detail message.
	ServiceRejected
)

func (k FailureKind) String() string {
	switch k {
	case TransportFailure:
		return "transport_failure"
	case ServiceRejected:
		return "service_rejected"
	default:
		return "unknown"
	}
}

// Failure is the error returned by Client.Analyze
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Detail     string
	Err        error
}

func (f *Failure) Error() string {
	switch {
	case f.Kind == ServiceRejected:
		return fmt.Sprintf("analysis service rejected request (status %d): %s", f.StatusCode, f.Detail)
	case f.StatusCode != 0 && f.Err != nil:
		return fmt.Sprintf("analysis service returned status %d: %v", f.StatusCode, f.Err)
	case f.StatusCode != 0:
		return fmt.Sprintf("analysis service returned status %d", f.StatusCode)
	case f.Err != nil:
		return "analysis request failed: " + f.Err.Error()
	default:
		return "analysis request failed"
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message is the human-readable text shown to the user
func (f *Failure) Message() string {
	if f.Kind == ServiceRejected && f.Detail != "" {
		return f.Detail
	}
	return GenericFailureMessage
}

// UserMessage turns any submission error into the text shown to the user.
func UserMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message()
	}
	return GenericFailureMessage
}
