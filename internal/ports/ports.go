package ports

import (
	"context"
	"io"
	"time"

	"tubetext/internal/domain"
)

// TranscriptRequest identifies the video and caption language of a primary fetch.
type TranscriptRequest struct {
	VideoURL string
	Language string
}

// Backend is the remote service producing transcripts, summaries and translations.
// Failures are returned as *apperr.TransportError.
type Backend interface {
	FetchTranscript(ctx context.Context, req TranscriptRequest) (domain.TranscriptResult, error)
	FetchPremiumTranscript(ctx context.Context, req TranscriptRequest) (domain.TranscriptResult, error)
	FetchSummary(ctx context.Context, transcription string) (string, error)
	// OpenTranslation starts the translation stream; the caller owns the body.
	OpenTranslation(ctx context.Context, segments []domain.Segment, language string) (io.ReadCloser, error)
	DownloadPDF(ctx context.Context, segments []domain.Segment) (io.ReadCloser, error)
}

// Session reads and ends the signed-in state issued by the backend.
type Session interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
	CheckoutURL(ctx context.Context) (string, error)
	LoginURL() string
}

// EventSink receives orchestrator state and stream output for a UI.
type EventSink interface {
	StateChanged(snapshot domain.Snapshot)
	TranslationFragment(generation uint64, fragment string)
	OperationFailed(mode domain.Mode, failure domain.Failure)
}

// HistoryEntry is one completed transcript fetch.
type HistoryEntry struct {
	VideoURL     string
	VideoID      string
	Mode         domain.Mode
	Language     string
	Source       string
	SegmentCount int
	WordCount    int
	Elapsed      time.Duration
	CreatedAt    time.Time
}

// History records completed transcript fetches.
type History interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

// DocumentWriter persists a downloaded document at path.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, path string, r io.Reader) (int64, error)
}
