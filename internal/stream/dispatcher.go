package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync/atomic"

	"tubetext/internal/domain"
)

// DataPrefix starts every record that carries an event payload.
const DataPrefix = "data: "

// DefaultChunkSize is the read size used against the response body.
const DefaultChunkSize = 4096

type options struct {
	chunkSize int
	separator string
}

// Option tunes how a body is read.
type Option func(*options)

// WithChunkSize sets the size of each body read. Values below 1 keep the default.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithSeparator overrides the record separator.
func WithSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.separator = sep
		}
	}
}

// ParseRecord turns one record into an event. ok is false for records that
// carry no payload (keep-alives, comments); those are not errors.
func ParseRecord(record string) (event domain.TranslationEvent, ok bool, err error) {
	line := strings.TrimSpace(record)
	payload, found := strings.CutPrefix(line, DataPrefix)
	if !found {
		return domain.TranslationEvent{}, false, nil
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return domain.TranslationEvent{}, false, &FramingError{Err: ErrMalformedPayload, Record: line, Cause: err}
	}
	return event, true, nil
}

// Fragments returns the translation fragments carried by body as a lazy,
// forward-only sequence. The sequence ends after a done event, at a clean end
// of input, or at the first error, which is yielded with an empty fragment.
// body is closed when iteration stops or ctx is done. The sequence can be
// ranged over once; a second range yields ErrConsumed.
func Fragments(ctx context.Context, body io.ReadCloser, opts ...Option) iter.Seq2[string, error] {
	cfg := options{chunkSize: DefaultChunkSize, separator: DefaultSeparator}
	for _, opt := range opts {
		opt(&cfg)
	}

	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrConsumed)
			return
		}

		stop := context.AfterFunc(ctx, func() {
			_ = body.Close()
		})
		defer func() {
			stop()
			_ = body.Close()
		}()

		decoder := NewDecoder(cfg.separator)
		buf := make([]byte, cfg.chunkSize)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			n, readErr := body.Read(buf)
			if n > 0 {
				for _, record := range decoder.Feed(buf[:n]) {
					event, ok, err := ParseRecord(record)
					if err != nil {
						framingErrorsTotal.WithLabelValues("malformed").Inc()
						yield("", err)
						return
					}
					if !ok {
						continue
					}
					if event.Done {
						return
					}
					fragment := event.Fragment()
					if fragment == "" {
						continue
					}
					if err := ctx.Err(); err != nil {
						yield("", err)
						return
					}
					fragmentsTotal.Inc()
					if !yield(fragment, nil) {
						return
					}
				}
			}

			if readErr == nil {
				continue
			}
			if errors.Is(readErr, io.EOF) {
				if err := decoder.Close(); err != nil {
					framingErrorsTotal.WithLabelValues("truncated").Inc()
					yield("", err)
				}
				return
			}
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			yield("", fmt.Errorf("read translation stream: %w", readErr))
			return
		}
	}
}

// Consume feeds every fragment of body to sink, one call at a time and in
// arrival order. It returns nil once the stream signals done or ends cleanly.
func Consume(ctx context.Context, body io.ReadCloser, sink func(fragment string), opts ...Option) error {
	for fragment, err := range Fragments(ctx, body, opts...) {
		if err != nil {
			return err
		}
		sink(fragment)
	}
	return nil
}
