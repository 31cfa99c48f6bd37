package stream

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPayload = errors.New("stream: malformed event payload")
	ErrTruncated        = errors.New("stream: input ended inside a record")
	ErrConsumed         = errors.New("stream: fragment sequence already consumed")
)

const maxExcerpt = 64

// FramingError reports a streamed body that cannot be turned into events.
// It is fatal to the stream it came from and nothing else.
type FramingError struct {
	Err    error
	Record string
	Cause  error
}

func (e *FramingError) Error() string {
	msg := e.Err.Error()
	if e.Record != "" {
		msg = fmt.Sprintf("%s: %q", msg, excerpt(e.Record))
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FramingError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func excerpt(record string) string {
	if len(record) <= maxExcerpt {
		return record
	}
	return record[:maxExcerpt] + "..."
}
