// Package bridge exposes an orchestrator to a local UI over HTTP and pushes
// its events over a websocket.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tubetext/internal/domain"
	"tubetext/internal/ports"
)

const shutdownTimeout = 5 * time.Second

// Orchestrator is the subset of the use case the bridge drives.
type Orchestrator interface {
	Submit(ctx context.Context, videoURL string, mode domain.Mode) error
	RequestSummary(ctx context.Context) error
	RequestTranslation(ctx context.Context, language string) error
	SelectMode(mode domain.Mode) error
	Cancel() bool
	ExportPDF(ctx context.Context, path string) (int64, error)
	Snapshot() domain.Snapshot
}

// Config controls the bridge listener.
type Config struct {
	Addr              string
	RequestsPerMinute int
	AllowedOrigins    []string
	// ExportDir receives exported documents. Export paths are resolved
	// inside it; empty means the working directory.
	ExportDir string
}

// Server is the local HTTP surface of the orchestrator.
type Server struct {
	cfg      Config
	orch     Orchestrator
	session  ports.Session
	hub      *Hub
	logger   zerolog.Logger
	origins  *originSet
	upgrader websocket.Upgrader
	router   chi.Router
}

func NewServer(cfg Config, orch Orchestrator, session ports.Session, hub *Hub, logger zerolog.Logger) *Server {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	s := &Server{
		cfg:     cfg,
		orch:    orch,
		session: session,
		hub:     hub,
		logger:  logger,
		origins: newOriginSet(cfg.AllowedOrigins),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(cors(s.origins))
	r.Use(accessLog(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWebsocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(s.cfg.RequestsPerMinute))
		r.Use(rejectForeignOrigin(s.checkOrigin))
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/state", s.handleState)
		r.Post("/submit", s.handleSubmit)
		r.Post("/summary", s.handleSummary)
		r.Post("/translate", s.handleTranslate)
		r.Post("/mode", s.handleMode)
		r.Post("/cancel", s.handleCancel)
		r.Post("/export", s.handleExport)

		r.Get("/session", s.handleSession)
		r.Post("/session/logout", s.handleLogout)
		r.Post("/session/checkout", s.handleCheckout)
	})
	return r
}

// Handler returns the bridge router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("bridge: listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then disconnects
// websocket clients and drains in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("bridge listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("bridge: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("bridge: shutdown: %w", err)
		}
		s.logger.Info().Msg("bridge stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return s.origins.allows(origin) || origin == "http://"+r.Host
}
