package apperr

import (
	"errors"
	"fmt"

	"tubetext/internal/domain"
)

var (
	// Sentinel errors for errors.Is checks at the transport boundary.
	ErrRateLimited     = errors.New("backend: usage limit reached")
	ErrAuthRequired    = errors.New("backend: sign in required")
	ErrPremiumRequired = errors.New("backend: premium subscription required")
	ErrUpstream        = errors.New("backend: unexpected status")
	ErrUnavailable     = errors.New("backend: transport failure")
)

// ValidationError reports input rejected locally before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ApplicationError is a domain failure reported inside a successful response
// (success=false with a server message).
type ApplicationError struct {
	Operation string
	Message   string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// TransportError is a non-2xx status or network failure, already discriminated
// by kind so callers do not have to parse the message.
type TransportError struct {
	Kind      domain.ErrorKind
	Operation string
	Status    int
	Message   string
	Err       error
}

func (e *TransportError) Error() string {
	return e.Message
}

// Detail renders the error with operation and status context for logs.
func (e *TransportError) Detail() string {
	msg := fmt.Sprintf("%s: %s", e.Operation, e.Message)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TransportError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *TransportError) sentinel() error {
	switch e.Kind {
	case domain.ErrorKindRateLimit:
		return ErrRateLimited
	case domain.ErrorKindAuthRequired:
		return ErrAuthRequired
	case domain.ErrorKindPremiumRequired:
		return ErrPremiumRequired
	}
	if e.Status > 0 {
		return ErrUpstream
	}
	return ErrUnavailable
}
