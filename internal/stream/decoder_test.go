package stream

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiBytePayload = "data: {\"translation\":\"Olá, 世界 🚀\"}\n\n" +
	": keep-alive\n\n" +
	"data: {\"translation\":\"ñandú\"}\n\n" +
	"data: {\"done\":true}\n\n"

func decodeAll(t *testing.T, chunks ...[]byte) []string {
	t.Helper()
	d := NewDecoder("")
	var records []string
	for _, chunk := range chunks {
		records = append(records, d.Feed(chunk)...)
	}
	require.NoError(t, d.Close())
	return records
}

func TestDecoderSingleChunk(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, []byte(multiBytePayload))
	want := []string{
		"data: {\"translation\":\"Olá, 世界 🚀\"}",
		": keep-alive",
		"data: {\"translation\":\"ñandú\"}",
		"data: {\"done\":true}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoderEveryTwoWaySplitMatchesSingleChunk(t *testing.T) {
	t.Parallel()

	payload := []byte(multiBytePayload)
	want := decodeAll(t, payload)

	for i := 0; i <= len(payload); i++ {
		got := decodeAll(t, payload[:i], payload[i:])
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("split at %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestDecoderByteAtATimeMatchesSingleChunk(t *testing.T) {
	t.Parallel()

	payload := []byte(multiBytePayload)
	want := decodeAll(t, payload)

	chunks := make([][]byte, 0, len(payload))
	for i := range payload {
		chunks = append(chunks, payload[i:i+1])
	}
	got := decodeAll(t, chunks...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("byte-wise mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoderRandomChunkingsMatchSingleChunk(t *testing.T) {
	t.Parallel()

	payload := []byte(strings.Repeat(multiBytePayload, 4))
	want := decodeAll(t, payload)
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 200; round++ {
		var chunks [][]byte
		rest := payload
		for len(rest) > 0 {
			n := 1 + rng.IntN(9)
			if n > len(rest) {
				n = len(rest)
			}
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}
		got := decodeAll(t, chunks...)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round %d mismatch (-want +got):\n%s", round, diff)
		}
	}
}

func TestDecoderCarriesSplitCharacter(t *testing.T) {
	t.Parallel()

	world := []byte("世") // E4 B8 96
	d := NewDecoder("")

	assert.Empty(t, d.Feed(append([]byte("data: "), world[0])))
	assert.True(t, utf8.ValidString(d.Buffered()))
	assert.NotContains(t, d.Buffered(), string(utf8.RuneError))

	assert.Empty(t, d.Feed(world[1:2]))
	records := d.Feed(append(world[2:], '\n', '\n'))
	assert.Equal(t, []string{"data: 世"}, records)
	assert.NoError(t, d.Close())
}

func TestDecoderSeparatorSplitAcrossChunks(t *testing.T) {
	t.Parallel()

	d := NewDecoder("")
	assert.Empty(t, d.Feed([]byte("data: a\n")))
	assert.Equal(t, []string{"data: a"}, d.Feed([]byte("\ndata: b")))
	assert.Equal(t, "data: b", d.Buffered())
}

func TestDecoderCloseReportsTruncatedRecord(t *testing.T) {
	t.Parallel()

	d := NewDecoder("")
	assert.Equal(t, []string{"data: {\"translation\":\"a\"}"}, d.Feed([]byte("data: {\"translation\":\"a\"}\n\ndata: {\"transl")))

	err := d.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncated))

	var framingErr *FramingError
	require.True(t, errors.As(err, &framingErr))
	assert.Equal(t, "data: {\"transl", framingErr.Record)
	assert.Empty(t, d.Buffered(), "remainder must be discarded")
}

func TestDecoderCloseReportsDanglingPartialCharacter(t *testing.T) {
	t.Parallel()

	d := NewDecoder("")
	assert.Equal(t, []string{"data: x"}, d.Feed([]byte("data: x\n\n\xE4\xB8")))
	assert.ErrorIs(t, d.Close(), ErrTruncated)
}

func TestDecoderCloseIgnoresWhitespaceRemainder(t *testing.T) {
	t.Parallel()

	d := NewDecoder("")
	d.Feed([]byte("data: x\n\n\n"))
	assert.NoError(t, d.Close())
}

func TestDecoderReplacesInvalidBytes(t *testing.T) {
	t.Parallel()

	d := NewDecoder("")
	records := d.Feed([]byte("data: \xff\n\n"))
	require.Len(t, records, 1)
	assert.Equal(t, "data: �", records[0])
}

func TestDecoderCustomSeparator(t *testing.T) {
	t.Parallel()

	d := NewDecoder("\r\n\r\n")
	assert.Equal(t, []string{"a", "b"}, d.Feed([]byte("a\r\n\r\nb\r\n\r\nc")))
	assert.Equal(t, "c", d.Buffered())
}
