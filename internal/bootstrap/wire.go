package bootstrap

import (
	"fmt"
	"os"

	"tubetext/internal/config"
	"tubetext/internal/export"
	"tubetext/internal/history"
	applog "tubetext/internal/log"
	"tubetext/internal/ports"
	"tubetext/internal/providers/backend"
	"tubetext/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Config       config.Config
	Backend      *backend.Client
	History      *history.Store // nil when history is disabled
	Orchestrator *usecase.Orchestrator
}

// Close releases resources held by the graph.
func (s Services) Close() error {
	if s.History == nil {
		return nil
	}
	return s.History.Close()
}

// BuildWithConfig wires the runtime graph from an already loaded configuration.
func BuildWithConfig(cfg config.Config, eventSink ports.EventSink) (Services, error) {
	applog.Configure(applog.Config{Level: cfg.Log.Level, Output: os.Stderr})

	client, err := backend.NewClient(backend.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.RequestTimeout,
		SessionToken: cfg.Session.Token,
		CookieName:   cfg.Session.CookieName,
	})
	if err != nil {
		return Services{}, err
	}

	opts := []usecase.Option{usecase.WithDocumentWriter(export.NewFileWriter())}

	var store *history.Store
	if !cfg.History.Disabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return Services{}, fmt.Errorf("open history: %w", err)
		}
		opts = append(opts, usecase.WithHistory(store))
	}

	orchestrator := usecase.NewOrchestrator(
		client,
		eventSink,
		usecase.Config{
			Language:          cfg.API.Language,
			TranslateLanguage: cfg.API.TranslateLanguage,
			ChunkSize:         cfg.Stream.ChunkSize,
		},
		opts...,
	)

	return Services{
		Config:       cfg,
		Backend:      client,
		History:      store,
		Orchestrator: orchestrator,
	}, nil
}
