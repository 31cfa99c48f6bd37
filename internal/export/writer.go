// Package export saves documents rendered by the backend.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	applog "tubetext/internal/log"
)

// DefaultFileName is used when no destination is given.
const DefaultFileName = "transcript.pdf"

var ErrEmptyDocument = errors.New("document is empty")

var pdfMagic = []byte("%PDF")

// FileWriter implements ports.DocumentWriter with atomic, durable writes.
// The destination is either fully replaced or left untouched.
type FileWriter struct {
	logger zerolog.Logger
}

func NewFileWriter() *FileWriter {
	return &FileWriter{logger: applog.WithComponent("export")}
}

func (w *FileWriter) WriteDocument(ctx context.Context, path string, r io.Reader) (written int64, err error) {
	if path == "" {
		path = DefaultFileName
	}
	logger := applog.WithContext(ctx, w.logger).With().Str(applog.FieldPath, path).Logger()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create document directory: %w", err)
		}
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return 0, fmt.Errorf("create pending document: %w", err)
	}
	defer func() {
		if cleanupErr := pendingFile.Cleanup(); cleanupErr != nil {
			logger.Debug().Err(cleanupErr).Msg("cleanup pending document")
		}
	}()

	sniff := &headSniffer{limit: len(pdfMagic)}
	written, err = io.Copy(io.MultiWriter(pendingFile, sniff), &contextReader{ctx: ctx, r: r})
	if err != nil {
		return 0, fmt.Errorf("write document data: %w", err)
	}
	if written == 0 {
		return 0, ErrEmptyDocument
	}
	if !bytes.HasPrefix(sniff.head, pdfMagic) {
		logger.Warn().Msg("downloaded document does not look like a PDF")
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("atomically replace document: %w", err)
	}
	return written, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// headSniffer keeps the first limit bytes written to it.
type headSniffer struct {
	limit int
	head  []byte
}

func (h *headSniffer) Write(p []byte) (int, error) {
	if remaining := h.limit - len(h.head); remaining > 0 {
		h.head = append(h.head, p[:min(remaining, len(p))]...)
	}
	return len(p), nil
}
