package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	applog "tubetext/internal/log"
)

const (
	defaultBaseURL    = "http://localhost:8000"
	defaultTimeout    = 5 * time.Minute
	defaultCookieName = "tubetext_token"
	defaultLanguage   = "en"
)

// Config controls how the client reaches the backend.
type Config struct {
	BaseURL      string
	Timeout      time.Duration // applies to every call except the translation stream
	SessionToken string
	CookieName   string
	HTTPClient   *http.Client
	Logger       *zerolog.Logger
}

// Client implements ports.Backend and ports.Session over HTTP.
type Client struct {
	base       string
	baseURL    *url.URL
	timeout    time.Duration
	cookieName string
	http       *http.Client
	logger     zerolog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client-wide timeout: it would cut long translation streams.
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	if cfg.SessionToken != "" {
		httpClient.Jar.SetCookies(baseURL, []*http.Cookie{{
			Name:  cfg.CookieName,
			Value: cfg.SessionToken,
			Path:  "/",
		}})
	}

	logger := applog.WithComponent("backend")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		base:       base,
		baseURL:    baseURL,
		timeout:    cfg.Timeout,
		cookieName: cfg.CookieName,
		http:       httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// do issues one request and returns the response only for 2xx statuses.
// Every other outcome is a *apperr.TransportError.
func (c *Client) do(ctx context.Context, ep endpoint, method string, query url.Values, payload any) (*http.Response, error) {
	target := c.base + ep.path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", ep.name, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", ep.name, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ep.streaming {
		req.Header.Set("Accept", "text/event-stream")
	}

	requestID := applog.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	logger := c.logger.With().
		Str(applog.FieldRequestID, requestID).
		Str(applog.FieldEndpoint, ep.name).
		Str(applog.FieldOperation, method+" "+ep.path).
		Logger()

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		observeRequest(ep.name, outcomeNetwork, time.Since(start))
		transportErr := networkError(ep, err)
		if errors.Is(err, context.Canceled) {
			logger.Debug().Err(err).Msg("backend request cancelled")
		} else {
			logger.Warn().Str(applog.FieldDetail, transportErr.Detail()).Msg("backend request failed")
		}
		return nil, transportErr
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		defer res.Body.Close()
		observeRequest(ep.name, outcomeForStatus(res.StatusCode), time.Since(start))
		transportErr := statusError(ep, res)
		logger.Warn().
			Int(applog.FieldStatus, res.StatusCode).
			Str(applog.FieldErrorKind, string(transportErr.Kind)).
			Str(applog.FieldDetail, transportErr.Detail()).
			Msg("backend returned error status")
		return nil, transportErr
	}

	observeRequest(ep.name, outcomeOK, time.Since(start))
	logger.Debug().
		Int(applog.FieldStatus, res.StatusCode).
		Dur(applog.FieldDuration, time.Since(start)).
		Msg("backend request completed")
	return res, nil
}

func decodeJSON(ep endpoint, res *http.Response, out any) error {
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return invalidResponse(ep, res.StatusCode, err)
	}
	return nil
}

// cancelOnClose releases a request context once the caller is done with the body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
