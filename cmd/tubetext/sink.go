package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"tubetext/internal/domain"
)

// errFailureShown marks an error whose classified failure was already
// printed by the sink.
var errFailureShown = errors.New("failure already shown")

// terminalSink streams translation fragments to stdout and prints classified
// failures, with a sign-in hint when the failure offers one.
type terminalSink struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	loginURL string
	stream   bool
	shown    bool
}

func newTerminalSink(out, errOut io.Writer) *terminalSink {
	return &terminalSink{out: out, errOut: errOut}
}

func (s *terminalSink) StateChanged(domain.Snapshot) {}

func (s *terminalSink) TranslationFragment(_ uint64, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream {
		fmt.Fprint(s.out, fragment+"\n\n")
	}
}

func (s *terminalSink) OperationFailed(_ domain.Mode, failure domain.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = true
	fmt.Fprintf(s.errOut, "Error: %s\n", failure.Message)
	if failure.OfferSignIn && s.loginURL != "" {
		fmt.Fprintf(s.errOut, "Sign in to continue: %s\n", s.loginURL)
	}
}

func (s *terminalSink) streamFragments(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stream = enabled
}

// reported swaps err for errFailureShown when the sink already printed the
// classified failure behind it.
func (s *terminalSink) reported(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil || !s.shown {
		return err
	}
	s.shown = false
	return fmt.Errorf("%w: %w", errFailureShown, err)
}
