package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoURL = "https://www.youtube.com/watch?v=abc123"

type backendStub struct {
	transcriptStatus int
	transcriptBody   string
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/video/", "/video/premium/":
		status := b.transcriptStatus
		if status == 0 {
			status = http.StatusOK
		}
		body := b.transcriptBody
		if body == "" {
			body = `{"success":true,"video_id":"abc123","segments":[{"timestamp":"0:00","text":"Hello"},{"timestamp":"0:02","text":"world"}],"word_count":2}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	case "/video/summary":
		var req struct {
			Transcription string `json:"transcription"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]string{"summary": "about " + req.Transcription})
	case "/video/translate":
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"translation\":\"Hola\"}\n\ndata: {\"translation\":\"mundo\"}\n\ndata: {\"done\":true}\n\n"))
	case "/video/pdf/":
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 test"))
	case "/auth/me":
		w.WriteHeader(http.StatusUnauthorized)
	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, stub *backendStub) string {
	t.Helper()
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TUBETEXT_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("TUBETEXT_CONFIG", "")
	t.Setenv("TUBETEXT_API_URL", server.URL)
	t.Setenv("TUBETEXT_HISTORY_DB", filepath.Join(dir, "history.db"))
	t.Setenv("TUBETEXT_SESSION_TOKEN", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestTranscriptPrintsSegments(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, stderr := execute(t, "transcript", videoURL)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "[0:00] Hello\n[0:02] world\n", stdout)
}

func TestTranscriptJSON(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, stderr := execute(t, "transcript", "--json", videoURL)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"video_id": "abc123"`)
}

func TestInvalidLinkIsReportedOnce(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, stderr := execute(t, "transcript", "https://example.com/video")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Error: Please paste a valid YouTube link (e.g. youtube.com/watch?v=...)\n", stderr)
}

func TestRateLimitOffersSignIn(t *testing.T) {
	setup(t, &backendStub{transcriptStatus: http.StatusTooManyRequests, transcriptBody: `{"detail":"__LIMIT__Daily limit reached"}`})

	code, _, stderr := execute(t, "transcript", videoURL)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: Daily limit reached\n")
	assert.Contains(t, stderr, "Sign in to continue: ")
	assert.Contains(t, stderr, "/auth/google/login")
}

func TestSummaryPrintsText(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, stderr := execute(t, "summary", videoURL)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "about Hello world\n", stdout)
}

func TestTranslateStreamsFragments(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, stderr := execute(t, "translate", "--language", "Spanish", videoURL)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Hola\n\nmundo\n\n", stdout)
}

func TestPDFWritesFile(t *testing.T) {
	dir := setup(t, &backendStub{})
	out := filepath.Join(dir, "out", "video.pdf")

	code, _, stderr := execute(t, "pdf", "-o", out, videoURL)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestHistoryListsFetchedTranscripts(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, _ := execute(t, "history")
	require.Equal(t, 0, code)
	assert.Equal(t, "No transcripts yet\n", stdout)

	code, _, stderr := execute(t, "transcript", videoURL)
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr = execute(t, "history")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "MODE")
	assert.Contains(t, stdout, videoURL)
}

func TestWhoamiAnonymous(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, stderr := execute(t, "whoami")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Not signed in. Sign in at ")
}

func TestLoginURL(t *testing.T) {
	setup(t, &backendStub{})

	code, stdout, _ := execute(t, "login-url")
	require.Equal(t, 0, code)
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/auth/google/login\n$`, stdout)
}

func TestUnknownCommandFails(t *testing.T) {
	setup(t, &backendStub{})

	code, _, stderr := execute(t, "karaoke")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command")
}
