package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"tubetext/internal/config"
	"tubetext/internal/domain"
)

func loadConfig(t *testing.T) (config.Config, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TUBETEXT_ENV_FILE", filepath.Join(home, "missing.env"))
	t.Setenv("TUBETEXT_CONFIG", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg, home
}

func TestBuildSuccess(t *testing.T) {
	cfg, home := loadConfig(t)
	cfg.History.Path = filepath.Join(home, "data", "history.db")

	services, err := BuildWithConfig(cfg, noopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(func() { _ = services.Close() })

	if services.Orchestrator == nil || services.Backend == nil {
		t.Fatalf("expected orchestrator and backend")
	}
	if services.History == nil {
		t.Fatalf("expected history store")
	}
	if _, err := os.Stat(cfg.History.Path); err != nil {
		t.Fatalf("expected history database to be created: %v", err)
	}
	if snap := services.Orchestrator.Snapshot(); snap.Phase != domain.PhaseIdle {
		t.Fatalf("unexpected initial phase: %s", snap.Phase)
	}
}

func TestBuildWithHistoryDisabled(t *testing.T) {
	cfg, _ := loadConfig(t)
	cfg.History.Disabled = true

	services, err := BuildWithConfig(cfg, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.History != nil {
		t.Fatalf("expected no history store")
	}
	if err := services.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildFailsWhenHistoryCannotOpen(t *testing.T) {
	cfg, home := loadConfig(t)
	blocker := filepath.Join(home, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	cfg.History.Path = filepath.Join(blocker, "history.db")

	if _, err := BuildWithConfig(cfg, noopEventSink{}); err == nil {
		t.Fatalf("expected build error when the history directory cannot be created")
	}
}

func TestBuildFailsOnInvalidBaseURL(t *testing.T) {
	cfg, _ := loadConfig(t)
	cfg.API.BaseURL = "://missing-scheme"
	cfg.History.Disabled = true

	if _, err := BuildWithConfig(cfg, noopEventSink{}); err == nil {
		t.Fatalf("expected build error due to invalid api url")
	}
}

type noopEventSink struct{}

func (noopEventSink) StateChanged(_ domain.Snapshot)                  {}
func (noopEventSink) TranslationFragment(_ uint64, _ string)          {}
func (noopEventSink) OperationFailed(_ domain.Mode, _ domain.Failure) {}
