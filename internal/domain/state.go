package domain

import "time"

// Phase is the coarse lifecycle position of the live operation state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseResult  Phase = "result"
	PhaseError   Phase = "error"
)

// OperationState is the single live state of an orchestrator. The concrete
// variants are Idle, Loading, Ready and Failed; no other type satisfies it.
type OperationState interface {
	Phase() Phase
	ActiveMode() Mode
	operationState()
}

// Idle means no operation has produced a result or failure yet for the selected mode.
type Idle struct {
	Mode Mode
}

// Loading means an operation for Mode is in flight. Partial holds translation
// text streamed so far.
type Loading struct {
	Mode    Mode
	Partial string
}

// Ready means the operation for Mode completed. Text carries the derived view
// (summary or translation); Elapsed is set for primary fetches.
type Ready struct {
	Mode    Mode
	Text    string
	Elapsed time.Duration
}

// Failed means the operation for Mode ended with Failure.
type Failed struct {
	Mode    Mode
	Failure Failure
}

func (Idle) Phase() Phase    { return PhaseIdle }
func (Loading) Phase() Phase { return PhaseLoading }
func (Ready) Phase() Phase   { return PhaseResult }
func (Failed) Phase() Phase  { return PhaseError }

func (s Idle) ActiveMode() Mode    { return s.Mode }
func (s Loading) ActiveMode() Mode { return s.Mode }
func (s Ready) ActiveMode() Mode   { return s.Mode }
func (s Failed) ActiveMode() Mode  { return s.Mode }

func (Idle) operationState()    {}
func (Loading) operationState() {}
func (Ready) operationState()   {}
func (Failed) operationState()  {}

// Snapshot is the flattened view of an orchestrator handed to UIs.
type Snapshot struct {
	Phase          Phase             `json:"phase"`
	Mode           Mode              `json:"mode"`
	Transcript     *TranscriptResult `json:"transcript,omitempty"`
	Text           string            `json:"text,omitempty"`
	ElapsedSeconds float64           `json:"elapsedSeconds,omitempty"`
	Failure        *Failure          `json:"failure,omitempty"`
	Generation     uint64            `json:"generation"`
}

// NewSnapshot flattens state together with the session transcript.
func NewSnapshot(state OperationState, transcript *TranscriptResult, generation uint64) Snapshot {
	snap := Snapshot{
		Phase:      state.Phase(),
		Mode:       state.ActiveMode(),
		Transcript: transcript,
		Generation: generation,
	}
	switch s := state.(type) {
	case Idle:
	case Loading:
		snap.Text = s.Partial
	case Ready:
		snap.Text = s.Text
		snap.ElapsedSeconds = s.Elapsed.Seconds()
	case Failed:
		failure := s.Failure
		snap.Failure = &failure
	}
	return snap
}
