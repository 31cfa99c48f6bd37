package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tubetext/internal/apperr"
	"tubetext/internal/domain"
	applog "tubetext/internal/log"
	"tubetext/internal/ports"
	"tubetext/internal/stream"
)

var (
	ErrBusy          = errors.New("another operation is in progress")
	ErrNoTranscript  = errors.New("no transcript loaded")
	ErrEmptyURL      = errors.New("video url is empty")
	ErrInvalidMode   = errors.New("unknown mode")
	ErrSuperseded    = errors.New("operation was cancelled or superseded")
	ErrExportUnwired = errors.New("document export is not configured")
)

// Config controls orchestrator defaults.
type Config struct {
	Language          string
	TranslateLanguage string
	ChunkSize         int
}

// Orchestrator sequences one primary transcript fetch and the summary or
// translation derived from it. At most one operation is in flight; each one
// runs under its own generation and only the current generation may change
// state or reach the event sink.
type Orchestrator struct {
	backend   ports.Backend
	events    ports.EventSink
	history   ports.History
	documents ports.DocumentWriter
	cfg       Config
	logger    zerolog.Logger
	now       func() time.Time

	mu         sync.Mutex
	state      domain.OperationState
	transcript *domain.TranscriptResult
	generation uint64
	current    *operation
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithHistory records every successful transcript fetch in h.
func WithHistory(h ports.History) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithDocumentWriter enables ExportPDF.
func WithDocumentWriter(w ports.DocumentWriter) Option {
	return func(o *Orchestrator) { o.documents = w }
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithClock replaces time.Now for elapsed-time measurement.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(backend ports.Backend, events ports.EventSink, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.TranslateLanguage == "" {
		cfg.TranslateLanguage = "Spanish"
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = stream.DefaultChunkSize
	}
	if events == nil {
		events = discardSink{}
	}
	o := &Orchestrator{
		backend: backend,
		events:  events,
		cfg:     cfg,
		logger:  applog.WithComponent("orchestrator"),
		now:     time.Now,
		state:   domain.Idle{Mode: domain.ModeTranscription},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit fetches the transcript of videoURL. The premium endpoint is used when
// mode is pro; the selected mode is otherwise kept as is.
func (o *Orchestrator) Submit(ctx context.Context, videoURL string, mode domain.Mode) error {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return ErrEmptyURL
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	if err := validateLink(videoURL); err != nil {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.current != nil {
			return ErrBusy
		}
		o.transition(domain.Failed{Mode: mode, Failure: apperr.Classify(err)})
		operationsTotal.WithLabelValues(string(mode), outcomeRejected).Inc()
		return err
	}

	op, opCtx, err := o.begin(ctx, mode, true)
	if err != nil {
		return err
	}

	req := ports.TranscriptRequest{VideoURL: videoURL, Language: o.cfg.Language}
	fetch := o.backend.FetchTranscript
	if mode == domain.ModePro {
		fetch = o.backend.FetchPremiumTranscript
	}

	result, err := fetch(opCtx, req)
	if err != nil {
		return o.fail(op, opCtx, err)
	}
	if !result.Success {
		return o.fail(op, opCtx, &apperr.ApplicationError{Operation: "transcript", Message: result.Error})
	}

	elapsed := o.now().Sub(op.started).Round(100 * time.Millisecond)
	settled := o.settle(op, func() domain.OperationState {
		o.transcript = &result
		return domain.Ready{Mode: mode, Elapsed: elapsed}
	})
	if !settled {
		return ErrSuperseded
	}
	o.observeSuccess(op)
	o.recordHistory(ctx, videoURL, mode, result, elapsed)
	return nil
}

// RequestSummary summarizes the loaded transcript.
func (o *Orchestrator) RequestSummary(ctx context.Context) error {
	op, opCtx, err := o.begin(ctx, domain.ModeSummary, false)
	if err != nil {
		return err
	}

	summary, err := o.backend.FetchSummary(opCtx, joinSegments(op.segments))
	if err != nil {
		return o.fail(op, opCtx, err)
	}

	if !o.settle(op, func() domain.OperationState {
		return domain.Ready{Mode: domain.ModeSummary, Text: summary}
	}) {
		return ErrSuperseded
	}
	o.observeSuccess(op)
	return nil
}

// RequestTranslation streams a translation of the loaded transcript into
// language, pushing each fragment to the event sink as it arrives. An empty
// language selects the configured default.
func (o *Orchestrator) RequestTranslation(ctx context.Context, language string) error {
	language = strings.TrimSpace(language)
	if language == "" {
		language = o.cfg.TranslateLanguage
	}

	op, opCtx, err := o.begin(ctx, domain.ModeTranslate, false)
	if err != nil {
		return err
	}

	body, err := o.backend.OpenTranslation(opCtx, op.segments, language)
	if err != nil {
		return o.fail(op, opCtx, err)
	}

	for fragment, err := range stream.Fragments(opCtx, body, stream.WithChunkSize(o.cfg.ChunkSize)) {
		if err != nil {
			return o.fail(op, opCtx, err)
		}
		if !o.appendFragment(op, fragment) {
			return ErrSuperseded
		}
	}

	if !o.settle(op, func() domain.OperationState {
		return domain.Ready{Mode: domain.ModeTranslate, Text: op.translation.String()}
	}) {
		return ErrSuperseded
	}
	o.observeSuccess(op)
	return nil
}

// SelectMode switches the visible mode. Any in-flight operation is cancelled
// and derived text is discarded.
func (o *Orchestrator) SelectMode(mode domain.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.abortLocked("mode_switch")
	o.transition(o.restingState(mode))
	return nil
}

// Cancel aborts the in-flight operation, if any, and keeps the current mode.
// It reports whether an operation was cancelled.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	op := o.current
	if op == nil {
		return false
	}
	o.abortLocked("cancel")
	o.transition(o.restingState(op.mode))
	return true
}

// ExportPDF downloads the rendered transcript document and writes it to path.
// It does not change the operation state.
func (o *Orchestrator) ExportPDF(ctx context.Context, path string) (int64, error) {
	if o.documents == nil {
		return 0, ErrExportUnwired
	}

	o.mu.Lock()
	if o.current != nil {
		o.mu.Unlock()
		return 0, ErrBusy
	}
	if o.transcript == nil {
		o.mu.Unlock()
		return 0, ErrNoTranscript
	}
	segments := o.transcript.Segments
	mode := o.state.ActiveMode()
	o.mu.Unlock()

	logger := applog.WithContext(ctx, o.logger)
	body, err := o.backend.DownloadPDF(ctx, segments)
	if err != nil {
		failure := apperr.Classify(err)
		logger.Warn().Err(err).Str(applog.FieldErrorKind, string(failure.Kind)).Msg("pdf download failed")
		o.events.OperationFailed(mode, failure)
		return 0, err
	}
	defer body.Close()

	written, err := o.documents.WriteDocument(ctx, path, body)
	if err != nil {
		logger.Warn().Err(err).Str(applog.FieldPath, path).Msg("pdf write failed")
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	logger.Info().Str(applog.FieldPath, path).Int64("bytes", written).Msg("pdf exported")
	return written, nil
}

// Snapshot returns the current state for display.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return domain.NewSnapshot(o.state, o.transcript, o.generation)
}

// Transcript returns the loaded transcript, if any.
func (o *Orchestrator) Transcript() (domain.TranscriptResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.transcript == nil {
		return domain.TranscriptResult{}, false
	}
	return *o.transcript, true
}

// begin registers a new in-flight operation and moves to Loading. Primary
// fetches clear the transcript; derived operations require one.
func (o *Orchestrator) begin(ctx context.Context, mode domain.Mode, clearTranscript bool) (*operation, context.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		operationsTotal.WithLabelValues(string(mode), outcomeBusy).Inc()
		return nil, nil, ErrBusy
	}
	if !clearTranscript && o.transcript == nil {
		return nil, nil, ErrNoTranscript
	}
	if clearTranscript {
		o.transcript = nil
	}

	o.generation++
	opCtx, cancel := context.WithCancel(ctx)
	op := &operation{
		generation: o.generation,
		mode:       mode,
		cancel:     cancel,
		started:    o.now(),
	}
	if o.transcript != nil {
		op.segments = o.transcript.Segments
	}
	o.current = op
	o.transition(domain.Loading{Mode: mode})
	return op, opCtx, nil
}

// settle ends op with the state built by next. It reports false, and leaves
// state untouched, when op is no longer current.
func (o *Orchestrator) settle(op *operation, next func() domain.OperationState) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != op {
		return false
	}
	o.current = nil
	op.cancel()
	o.transition(next())
	return true
}

// fail ends op with a classified failure, or with the resting state when the
// caller's context ended first.
func (o *Orchestrator) fail(op *operation, opCtx context.Context, err error) error {
	if ctxErr := opCtx.Err(); ctxErr != nil {
		if !o.settle(op, func() domain.OperationState { return o.restingState(op.mode) }) {
			return ErrSuperseded
		}
		operationsTotal.WithLabelValues(string(op.mode), outcomeCancelled).Inc()
		return ctxErr
	}

	failure := classifyOperationError(err)
	if !o.settle(op, func() domain.OperationState {
		return domain.Failed{Mode: op.mode, Failure: failure}
	}) {
		return ErrSuperseded
	}

	operationsTotal.WithLabelValues(string(op.mode), outcomeFailed).Inc()
	failuresTotal.WithLabelValues(string(failure.Kind)).Inc()
	o.logger.Warn().
		Err(err).
		Uint64(applog.FieldGeneration, op.generation).
		Str(applog.FieldMode, string(op.mode)).
		Str(applog.FieldErrorKind, string(failure.Kind)).
		Msg("operation failed")
	return err
}

// appendFragment adds one translation fragment to op and forwards it. It
// reports false when op was superseded.
func (o *Orchestrator) appendFragment(op *operation, fragment string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != op {
		return false
	}
	op.translation.Add(fragment)
	o.state = domain.Loading{Mode: op.mode, Partial: op.translation.String()}
	o.events.TranslationFragment(op.generation, fragment)
	return true
}

// classifyOperationError shows server messages from unsuccessful responses
// verbatim and classifies everything else.
func classifyOperationError(err error) domain.Failure {
	var appErr *apperr.ApplicationError
	if errors.As(err, &appErr) {
		message := appErr.Message
		if message == "" {
			message = apperr.DefaultMessage
		}
		return domain.NewFailure(domain.ErrorKindGeneric, message)
	}
	return apperr.Classify(err)
}

func (o *Orchestrator) abortLocked(reason string) {
	op := o.current
	if op == nil {
		return
	}
	op.cancel()
	o.current = nil
	o.generation++
	operationsTotal.WithLabelValues(string(op.mode), outcomeCancelled).Inc()
	o.logger.Debug().
		Uint64(applog.FieldGeneration, op.generation).
		Str(applog.FieldMode, string(op.mode)).
		Str("reason", reason).
		Msg("operation aborted")
}

func (o *Orchestrator) restingState(mode domain.Mode) domain.OperationState {
	if o.transcript != nil {
		return domain.Ready{Mode: mode}
	}
	return domain.Idle{Mode: mode}
}

// transition replaces the live state and notifies the sink. Callers hold o.mu,
// so sink implementations must not call back into the orchestrator.
func (o *Orchestrator) transition(next domain.OperationState) {
	previous := o.state
	o.state = next

	o.logger.Debug().
		Uint64(applog.FieldGeneration, o.generation).
		Str(applog.FieldMode, string(next.ActiveMode())).
		Str(applog.FieldOldState, string(previous.Phase())).
		Str(applog.FieldNewState, string(next.Phase())).
		Msg("state changed")

	o.events.StateChanged(domain.NewSnapshot(next, o.transcript, o.generation))
	if failed, ok := next.(domain.Failed); ok {
		o.events.OperationFailed(failed.Mode, failed.Failure)
	}
}

func (o *Orchestrator) observeSuccess(op *operation) {
	elapsed := o.now().Sub(op.started)
	operationsTotal.WithLabelValues(string(op.mode), outcomeOK).Inc()
	operationDuration.WithLabelValues(string(op.mode)).Observe(elapsed.Seconds())
	o.logger.Info().
		Uint64(applog.FieldGeneration, op.generation).
		Str(applog.FieldMode, string(op.mode)).
		Dur(applog.FieldDuration, elapsed).
		Msg("operation completed")
}

func (o *Orchestrator) recordHistory(ctx context.Context, videoURL string, mode domain.Mode, result domain.TranscriptResult, elapsed time.Duration) {
	if o.history == nil {
		return
	}
	entry := ports.HistoryEntry{
		VideoURL:     videoURL,
		VideoID:      result.VideoID,
		Mode:         mode,
		Language:     firstNonEmpty(result.Language, o.cfg.Language),
		Source:       result.Source,
		SegmentCount: len(result.Segments),
		WordCount:    result.WordCount,
		Elapsed:      elapsed,
		CreatedAt:    o.now(),
	}
	if err := o.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		o.logger.Warn().Err(err).Msg("failed to record history")
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

type discardSink struct{}

func (discardSink) StateChanged(domain.Snapshot)                {}
func (discardSink) TranslationFragment(uint64, string)          {}
func (discardSink) OperationFailed(domain.Mode, domain.Failure) {}
