package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tubetext/internal/apperr"
	"tubetext/internal/domain"
)

const maxErrorBody = 64 << 10

const (
	defaultRateLimitMessage = "Free usage limit reached"
	networkFailureMessage   = "Could not reach the server"
	invalidResponseMessage  = "Invalid response from server"
)

// statusError maps a non-2xx response to a typed transport error. The
// response body is drained but not closed.
func statusError(ep endpoint, res *http.Response) *apperr.TransportError {
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	detail := parseDetail(body)

	if res.StatusCode == http.StatusTooManyRequests && ep.rateLimited {
		message := detail
		if message == "" {
			message = defaultRateLimitMessage
		}
		return &apperr.TransportError{
			Kind:      domain.ErrorKindRateLimit,
			Operation: ep.name,
			Status:    res.StatusCode,
			Message:   apperr.ClassifyMessage(message).Message,
		}
	}

	if _, ok := apperr.KindOf(detail); ok {
		failure := apperr.ClassifyMessage(detail)
		return &apperr.TransportError{
			Kind:      failure.Kind,
			Operation: ep.name,
			Status:    res.StatusCode,
			Message:   failure.Message,
		}
	}

	return &apperr.TransportError{
		Kind:      domain.ErrorKindGeneric,
		Operation: ep.name,
		Status:    res.StatusCode,
		Message:   fmt.Sprintf("%s: %d", ep.failure, res.StatusCode),
	}
}

// parseDetail extracts a string "detail" field from an error body. Structured
// details (validation error lists) are ignored.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

func networkError(ep endpoint, err error) *apperr.TransportError {
	return &apperr.TransportError{
		Kind:      domain.ErrorKindGeneric,
		Operation: ep.name,
		Message:   networkFailureMessage,
		Err:       err,
	}
}

func invalidResponse(ep endpoint, status int, err error) *apperr.TransportError {
	return &apperr.TransportError{
		Kind:      domain.ErrorKindGeneric,
		Operation: ep.name,
		Status:    status,
		Message:   invalidResponseMessage,
		Err:       err,
	}
}
