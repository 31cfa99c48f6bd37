package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"tubetext/internal/apperr"
	"tubetext/internal/domain"
	"tubetext/internal/export"
	"tubetext/internal/usecase"
)

const maxRequestBody = 64 << 10

type submitRequest struct {
	URL  string      `json:"url"`
	Mode domain.Mode `json:"mode"`
}

type translateRequest struct {
	Language string `json:"language"`
}

type modeRequest struct {
	Mode domain.Mode `json:"mode"`
}

type exportRequest struct {
	Path string `json:"path"`
}

type exportResponse struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

type sessionResponse struct {
	User     *domain.User `json:"user"`
	LoginURL string       `json:"loginUrl"`
}

type errorBody struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	OfferSignIn bool   `json:"offerSignIn,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Snapshot())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = s.orch.Snapshot().Mode
	}
	s.respondOperation(w, r, s.orch.Submit(r.Context(), req.URL, req.Mode))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.respondOperation(w, r, s.orch.RequestSummary(r.Context()))
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	s.respondOperation(w, r, s.orch.RequestTranslation(r.Context(), req.Language))
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondOperation(w, r, s.orch.SelectMode(req.Mode))
}

func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	s.orch.Cancel()
	writeJSON(w, http.StatusOK, s.orch.Snapshot())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		req.Path = export.DefaultFileName
	}
	if !filepath.IsLocal(req.Path) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "invalid_path",
			Message: "Export path must stay inside the export directory",
		})
		return
	}
	path := filepath.Join(s.cfg.ExportDir, req.Path)

	written, err := s.orch.ExportPDF(r.Context(), path)
	if err != nil {
		if status, body, ok := useCaseError(err); ok {
			writeJSON(w, status, body)
			return
		}
		writeFailure(w, apperr.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Path: path, Bytes: written})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.session.CurrentUser(r.Context())
	if err != nil {
		writeFailure(w, apperr.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, LoginURL: s.session.LoginURL()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Logout(r.Context()); err != nil {
		writeFailure(w, apperr.Classify(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	target, err := s.session.CheckoutURL(r.Context())
	if err != nil {
		writeFailure(w, apperr.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": target})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	initial, _ := encodeEvent(eventState, s.orch.Snapshot())
	s.hub.Attach(conn, initial)
}

// respondOperation reports the outcome of an orchestrator call. Classified
// failures are part of the state, so they are answered with the snapshot.
func (s *Server) respondOperation(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, s.orch.Snapshot())
		return
	}
	if status, body, ok := useCaseError(err); ok {
		writeJSON(w, status, body)
		return
	}
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}
	writeJSON(w, http.StatusOK, s.orch.Snapshot())
}

func useCaseError(err error) (int, errorBody, bool) {
	switch {
	case errors.Is(err, usecase.ErrBusy):
		return http.StatusConflict, errorBody{Error: "busy", Message: err.Error()}, true
	case errors.Is(err, usecase.ErrNoTranscript):
		return http.StatusConflict, errorBody{Error: "no_transcript", Message: err.Error()}, true
	case errors.Is(err, usecase.ErrSuperseded):
		return http.StatusConflict, errorBody{Error: "superseded", Message: err.Error()}, true
	case errors.Is(err, usecase.ErrEmptyURL), errors.Is(err, usecase.ErrInvalidMode):
		return http.StatusBadRequest, errorBody{Error: "invalid_request", Message: err.Error()}, true
	case errors.Is(err, usecase.ErrExportUnwired):
		return http.StatusNotImplemented, errorBody{Error: "unavailable", Message: err.Error()}, true
	}
	return 0, errorBody{}, false
}

func writeFailure(w http.ResponseWriter, failure domain.Failure) {
	status := http.StatusBadGateway
	switch failure.Kind {
	case domain.ErrorKindRateLimit:
		status = http.StatusTooManyRequests
	case domain.ErrorKindAuthRequired:
		status = http.StatusUnauthorized
	case domain.ErrorKindPremiumRequired:
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, errorBody{
		Error:       string(failure.Kind),
		Message:     failure.Message,
		OfferSignIn: failure.OfferSignIn,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "invalid_request",
			Message: fmt.Sprintf("invalid request body: %v", err),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
