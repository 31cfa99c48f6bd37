// Package stream turns a chunked translation response body into ordered
// translation fragments.
package stream

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultSeparator ends every record on the wire.
const DefaultSeparator = "\n\n"

// Decoder splits a byte stream into separator-terminated text records.
// A UTF-8 sequence cut by a chunk boundary is held back undecoded until the
// rest of it arrives. Decoder is not safe for concurrent use.
type Decoder struct {
	separator string
	utf8      transform.Transformer
	tail      []byte
	text      strings.Builder
}

func NewDecoder(separator string) *Decoder {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &Decoder{
		separator: separator,
		utf8:      unicode.UTF8.NewDecoder(),
	}
}

// Feed decodes chunk and returns every record completed by it, in order,
// without separators. Text after the last separator stays buffered.
func (d *Decoder) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	src := make([]byte, 0, len(d.tail)+len(chunk))
	src = append(src, d.tail...)
	src = append(src, chunk...)

	// Invalid bytes become U+FFFD (3 bytes), so 3x is the upper bound.
	dst := make([]byte, len(src)*3)
	nDst, nSrc, err := d.utf8.Transform(dst, src, false)
	if err != nil && !errors.Is(err, transform.ErrShortSrc) {
		// Only ErrShortDst is possible here and dst is sized to avoid it.
		nSrc = len(src)
		nDst = copy(dst, strings.ToValidUTF8(string(src), "�"))
	}
	d.tail = append(d.tail[:0], src[nSrc:]...)
	d.text.Write(dst[:nDst])

	return d.drain()
}

func (d *Decoder) drain() []string {
	buffered := d.text.String()
	var records []string
	for {
		idx := strings.Index(buffered, d.separator)
		if idx < 0 {
			break
		}
		records = append(records, buffered[:idx])
		buffered = buffered[idx+len(d.separator):]
	}
	if records != nil {
		d.text.Reset()
		d.text.WriteString(buffered)
	}
	return records
}

// Buffered returns the decoded text still waiting for a separator.
func (d *Decoder) Buffered() string {
	return d.text.String()
}

// Close ends the input. A remainder that never saw its separator, or a
// dangling partial character, is reported as ErrTruncated and discarded.
func (d *Decoder) Close() error {
	remainder := d.text.String()
	tail := len(d.tail)
	d.text.Reset()
	d.tail = d.tail[:0]

	if tail > 0 || strings.TrimSpace(remainder) != "" {
		return &FramingError{Err: ErrTruncated, Record: remainder}
	}
	return nil
}
