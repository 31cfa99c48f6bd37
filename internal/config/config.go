package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config stores runtime configuration for the client.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Stream  StreamConfig  `yaml:"stream"`
	History HistoryConfig `yaml:"history"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Log     LogConfig     `yaml:"log"`

	// File is the config file that was merged, empty when none was found.
	File string `yaml:"-"`
}

type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Language          string        `yaml:"language"`
	TranslateLanguage string        `yaml:"translate_language"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

type SessionConfig struct {
	Token      string `yaml:"token"`
	CookieName string `yaml:"cookie_name"`
}

type StreamConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

type HistoryConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

type BridgeConfig struct {
	Addr              string   `yaml:"addr"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	ExportDir         string   `yaml:"export_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DefaultBaseURL           = "http://localhost:8000"
	DefaultLanguage          = "en"
	DefaultTranslateLanguage = "Spanish"
	DefaultCookieName        = "tubetext_token"
	DefaultRequestTimeout    = 5 * time.Minute
	DefaultChunkSize         = 4096
	DefaultBridgeAddr        = "127.0.0.1:8787"
	DefaultBridgeRate        = 60
)

// Load resolves configuration from defaults, an optional YAML file, an
// optional .env file and environment variables, in that order of precedence.
func Load() (Config, error) {
	if err := loadDotEnv(envOrDefault("TUBETEXT_ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := defaults(home)

	explicit := strings.TrimSpace(os.Getenv("TUBETEXT_CONFIG"))
	path := firstNonEmpty(explicit, filepath.Join(home, ".config", "tubetext", "config.yaml"))
	if err := mergeFile(&cfg, path, explicit != ""); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)
	normalize(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults(home string) Config {
	return Config{
		API: APIConfig{
			BaseURL:           DefaultBaseURL,
			Language:          DefaultLanguage,
			TranslateLanguage: DefaultTranslateLanguage,
			RequestTimeout:    DefaultRequestTimeout,
		},
		Session: SessionConfig{CookieName: DefaultCookieName},
		Stream:  StreamConfig{ChunkSize: DefaultChunkSize},
		History: HistoryConfig{Path: filepath.Join(home, ".local", "share", "tubetext", "history.db")},
		Bridge: BridgeConfig{
			Addr:              DefaultBridgeAddr,
			RequestsPerMinute: DefaultBridgeRate,
			ExportDir:         filepath.Join(home, "Downloads"),
		},
	}
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %q: %w", path, err)
}

func mergeFile(cfg *Config, path string, required bool) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(contents))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	cfg.File = path
	return nil
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = envOrDefault("TUBETEXT_API_URL", cfg.API.BaseURL)
	cfg.API.Language = envOrDefault("TUBETEXT_LANGUAGE", cfg.API.Language)
	cfg.API.TranslateLanguage = envOrDefault("TUBETEXT_TRANSLATE_LANGUAGE", cfg.API.TranslateLanguage)
	cfg.API.RequestTimeout = time.Duration(envOrDefaultInt("TUBETEXT_REQUEST_TIMEOUT_MS", int(cfg.API.RequestTimeout/time.Millisecond))) * time.Millisecond

	cfg.Session.Token = envOrDefault("TUBETEXT_SESSION_TOKEN", cfg.Session.Token)
	cfg.Session.CookieName = envOrDefault("TUBETEXT_SESSION_COOKIE", cfg.Session.CookieName)

	cfg.Stream.ChunkSize = envOrDefaultInt("TUBETEXT_STREAM_CHUNK_SIZE", cfg.Stream.ChunkSize)

	cfg.History.Path = envOrDefault("TUBETEXT_HISTORY_DB", cfg.History.Path)
	cfg.History.Disabled = envOrDefaultBool("TUBETEXT_HISTORY_DISABLED", cfg.History.Disabled)

	cfg.Bridge.Addr = envOrDefault("TUBETEXT_BRIDGE_ADDR", cfg.Bridge.Addr)
	cfg.Bridge.RequestsPerMinute = envOrDefaultInt("TUBETEXT_BRIDGE_RATE", cfg.Bridge.RequestsPerMinute)
	cfg.Bridge.ExportDir = envOrDefault("TUBETEXT_BRIDGE_EXPORT_DIR", cfg.Bridge.ExportDir)
	if origins := strings.TrimSpace(os.Getenv("TUBETEXT_BRIDGE_ORIGINS")); origins != "" {
		cfg.Bridge.AllowedOrigins = splitList(origins)
	}

	cfg.Log.Level = envOrDefault("LOG_LEVEL", cfg.Log.Level)
}

func normalize(cfg *Config) {
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.API.Language == "" {
		cfg.API.Language = DefaultLanguage
	}
	if cfg.API.TranslateLanguage == "" {
		cfg.API.TranslateLanguage = DefaultTranslateLanguage
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultCookieName
	}
	if cfg.Stream.ChunkSize < 1 {
		cfg.Stream.ChunkSize = DefaultChunkSize
	}
	if cfg.Bridge.Addr == "" {
		cfg.Bridge.Addr = DefaultBridgeAddr
	}
	if cfg.Bridge.RequestsPerMinute <= 0 {
		cfg.Bridge.RequestsPerMinute = DefaultBridgeRate
	}
}

func validate(cfg Config) error {
	parsed, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL %q: %w", cfg.API.BaseURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("invalid API base URL %q: must be an absolute http(s) URL", cfg.API.BaseURL)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
