package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"tubetext/internal/domain"
	"tubetext/internal/ports"
)

type fakeBackend struct {
	mu sync.Mutex

	transcript  func(ctx context.Context, req ports.TranscriptRequest) (domain.TranscriptResult, error)
	premium     func(ctx context.Context, req ports.TranscriptRequest) (domain.TranscriptResult, error)
	summary     func(ctx context.Context, transcription string) (string, error)
	translation func(ctx context.Context, segments []domain.Segment, language string) (io.ReadCloser, error)
	pdf         func(ctx context.Context, segments []domain.Segment) (io.ReadCloser, error)

	calls []string
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) FetchTranscript(ctx context.Context, req ports.TranscriptRequest) (domain.TranscriptResult, error) {
	f.record("transcript")
	if f.transcript == nil {
		return sampleTranscript(), nil
	}
	return f.transcript(ctx, req)
}

func (f *fakeBackend) FetchPremiumTranscript(ctx context.Context, req ports.TranscriptRequest) (domain.TranscriptResult, error) {
	f.record("premium")
	if f.premium == nil {
		return sampleTranscript(), nil
	}
	return f.premium(ctx, req)
}

func (f *fakeBackend) FetchSummary(ctx context.Context, transcription string) (string, error) {
	f.record("summary")
	if f.summary == nil {
		return "summary of " + transcription, nil
	}
	return f.summary(ctx, transcription)
}

func (f *fakeBackend) OpenTranslation(ctx context.Context, segments []domain.Segment, language string) (io.ReadCloser, error) {
	f.record("translation")
	if f.translation == nil {
		return io.NopCloser(strings.NewReader("data: {\"done\":true}\n\n")), nil
	}
	return f.translation(ctx, segments, language)
}

func (f *fakeBackend) DownloadPDF(ctx context.Context, segments []domain.Segment) (io.ReadCloser, error) {
	f.record("pdf")
	if f.pdf == nil {
		return io.NopCloser(strings.NewReader("%PDF")), nil
	}
	return f.pdf(ctx, segments)
}

func sampleTranscript() domain.TranscriptResult {
	return domain.TranscriptResult{
		Success:  true,
		VideoID:  "abc123",
		Source:   "captions",
		Language: "en",
		Segments: []domain.Segment{
			{Timestamp: "0:00", Text: "Hello"},
			{Timestamp: "0:02", Text: "world"},
		},
		WordCount: 2,
	}
}

type fragmentEvent struct {
	generation uint64
	fragment   string
}

type failureEvent struct {
	mode    domain.Mode
	failure domain.Failure
}

type fakeEventSink struct {
	mu        sync.Mutex
	snapshots []domain.Snapshot
	fragments []fragmentEvent
	failures  []failureEvent

	loading   chan domain.Mode
	fragmentC chan string
}

func newFakeEventSink() *fakeEventSink {
	return &fakeEventSink{
		loading:   make(chan domain.Mode, 16),
		fragmentC: make(chan string, 16),
	}
}

func (f *fakeEventSink) StateChanged(snapshot domain.Snapshot) {
	f.mu.Lock()
	f.snapshots = append(f.snapshots, snapshot)
	f.mu.Unlock()
	if snapshot.Phase == domain.PhaseLoading {
		select {
		case f.loading <- snapshot.Mode:
		default:
		}
	}
}

func (f *fakeEventSink) TranslationFragment(generation uint64, fragment string) {
	f.mu.Lock()
	f.fragments = append(f.fragments, fragmentEvent{generation: generation, fragment: fragment})
	f.mu.Unlock()
	select {
	case f.fragmentC <- fragment:
	default:
	}
}

func (f *fakeEventSink) OperationFailed(mode domain.Mode, failure domain.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, failureEvent{mode: mode, failure: failure})
}

func (f *fakeEventSink) Snapshots() []domain.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Snapshot(nil), f.snapshots...)
}

func (f *fakeEventSink) Fragments() []fragmentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fragmentEvent(nil), f.fragments...)
}

func (f *fakeEventSink) Failures() []failureEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]failureEvent(nil), f.failures...)
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []ports.HistoryEntry
	err     error
}

func (f *fakeHistory) Record(_ context.Context, entry ports.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return f.err
}

type fakeDocumentWriter struct {
	path string
	data string
	err  error
}

func (f *fakeDocumentWriter) WriteDocument(_ context.Context, path string, r io.Reader) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.path = path
	f.data = string(data)
	return int64(len(data)), nil
}

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.now
	c.now = c.now.Add(c.step)
	return current
}
