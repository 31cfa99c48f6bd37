// Package apperr holds the client error taxonomy and the classifier that turns
// any failure into a display-ready domain.Failure.
package apperr

import (
	"errors"
	"strings"

	"tubetext/internal/domain"
)

// Reserved message prefixes shared with the backend. They must match byte for byte.
const (
	PrefixRateLimit = "__LIMIT__"
	PrefixAuth      = "__AUTH__"
	PrefixPremium   = "__PREMIUM__"
)

// DefaultMessage is shown when a failure carries no text.
const DefaultMessage = "Something went wrong"

var reservedPrefixes = []struct {
	prefix string
	kind   domain.ErrorKind
}{
	{PrefixRateLimit, domain.ErrorKindRateLimit},
	{PrefixAuth, domain.ErrorKindAuthRequired},
	{PrefixPremium, domain.ErrorKindPremiumRequired},
}

// Classify maps err to a Failure. Already classified failures and typed
// transport errors keep their kind; anything else goes through the
// reserved-prefix convention.
func Classify(err error) domain.Failure {
	if err == nil {
		return domain.NewFailure(domain.ErrorKindGeneric, DefaultMessage)
	}

	var failure domain.Failure
	if errors.As(err, &failure) {
		return failure
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Kind != "" {
		message := transportErr.Message
		if message == "" {
			message = DefaultMessage
		}
		return domain.NewFailure(transportErr.Kind, message)
	}

	return ClassifyMessage(err.Error())
}

// ClassifyMessage applies the reserved-prefix convention to a raw message.
func ClassifyMessage(message string) domain.Failure {
	if message == "" {
		return domain.NewFailure(domain.ErrorKindGeneric, DefaultMessage)
	}
	for _, reserved := range reservedPrefixes {
		if rest, ok := strings.CutPrefix(message, reserved.prefix); ok {
			return domain.NewFailure(reserved.kind, rest)
		}
	}
	return domain.NewFailure(domain.ErrorKindGeneric, message)
}

// KindOf reports the reserved kind carried by message, if any.
func KindOf(message string) (domain.ErrorKind, bool) {
	for _, reserved := range reservedPrefixes {
		if strings.HasPrefix(message, reserved.prefix) {
			return reserved.kind, true
		}
	}
	return "", false
}
