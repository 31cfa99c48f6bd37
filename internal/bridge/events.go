package bridge

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"tubetext/internal/domain"
)

const (
	eventState    = "tubetext:state"
	eventFragment = "tubetext:fragment"
	eventError    = "tubetext:error"
)

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type fragmentPayload struct {
	Generation uint64 `json:"generation"`
	Fragment   string `json:"fragment"`
}

type errorPayload struct {
	Mode        domain.Mode      `json:"mode"`
	Kind        domain.ErrorKind `json:"kind"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	OfferSignIn bool             `json:"offerSignIn"`
}

// Events implements ports.EventSink by pushing every event to the hub.
type Events struct {
	hub    *Hub
	logger zerolog.Logger
}

func NewEvents(hub *Hub, logger zerolog.Logger) *Events {
	return &Events{hub: hub, logger: logger}
}

// StateChanged emits orchestrator state to connected UIs.
func (e *Events) StateChanged(snapshot domain.Snapshot) {
	e.emit(eventState, snapshot)
}

// TranslationFragment emits one streamed translation fragment.
func (e *Events) TranslationFragment(generation uint64, fragment string) {
	e.emit(eventFragment, fragmentPayload{Generation: generation, Fragment: fragment})
}

// OperationFailed emits a classified failure for the UI's error modal.
func (e *Events) OperationFailed(mode domain.Mode, failure domain.Failure) {
	e.emit(eventError, errorPayload{
		Mode:        mode,
		Kind:        failure.Kind,
		Title:       errorTitle(failure.Kind),
		Message:     failure.Message,
		OfferSignIn: failure.OfferSignIn,
	})
}

func (e *Events) emit(event string, data any) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		e.logger.Error().Err(err).Str("event", event).Msg("failed to encode event")
		return
	}
	e.hub.Broadcast(msg)
}

func encodeEvent(event string, data any) ([]byte, error) {
	return json.Marshal(envelope{Event: event, Data: data})
}

func errorTitle(kind domain.ErrorKind) string {
	switch kind {
	case domain.ErrorKindRateLimit:
		return "Usage limit reached"
	case domain.ErrorKindAuthRequired:
		return "Sign in required"
	case domain.ErrorKindPremiumRequired:
		return "Premium required"
	default:
		return "Something went wrong"
	}
}
