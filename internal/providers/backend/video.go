package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tubetext/internal/domain"
	"tubetext/internal/ports"
)

type endpoint struct {
	name        string
	path        string
	failure     string
	rateLimited bool
	streaming   bool
}

var (
	endpointTranscript = endpoint{name: "transcript", path: "/video/", failure: "Server error", rateLimited: true}
	endpointPremium    = endpoint{name: "premium_transcript", path: "/video/premium/", failure: "Server error"}
	endpointSummary    = endpoint{name: "summary", path: "/video/summary", failure: "Summary failed"}
	endpointTranslate  = endpoint{name: "translate", path: "/video/translate", failure: "Translation failed", streaming: true}
	endpointPDF        = endpoint{name: "pdf", path: "/video/pdf/", failure: "PDF download failed"}
)

type summaryRequest struct {
	Transcription string `json:"transcription"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type translateRequest struct {
	Segments []domain.Segment `json:"segments"`
	Language string           `json:"language"`
}

type pdfRequest struct {
	Segments []domain.Segment `json:"segments"`
}

func (c *Client) FetchTranscript(ctx context.Context, req ports.TranscriptRequest) (domain.TranscriptResult, error) {
	return c.fetchTranscript(ctx, endpointTranscript, req)
}

func (c *Client) FetchPremiumTranscript(ctx context.Context, req ports.TranscriptRequest) (domain.TranscriptResult, error) {
	return c.fetchTranscript(ctx, endpointPremium, req)
}

func (c *Client) fetchTranscript(ctx context.Context, ep endpoint, req ports.TranscriptRequest) (domain.TranscriptResult, error) {
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}
	query := url.Values{}
	query.Set("video_url", req.VideoURL)
	query.Set("language", language)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.do(ctx, ep, http.MethodPost, query, nil)
	if err != nil {
		return domain.TranscriptResult{}, err
	}
	defer res.Body.Close()

	var result domain.TranscriptResult
	if err := decodeJSON(ep, res, &result); err != nil {
		return domain.TranscriptResult{}, err
	}
	return result, nil
}

func (c *Client) FetchSummary(ctx context.Context, transcription string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.do(ctx, endpointSummary, http.MethodPost, nil, summaryRequest{Transcription: transcription})
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var out summaryResponse
	if err := decodeJSON(endpointSummary, res, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// OpenTranslation returns the raw event stream. It is bounded only by ctx.
func (c *Client) OpenTranslation(ctx context.Context, segments []domain.Segment, language string) (io.ReadCloser, error) {
	if segments == nil {
		segments = []domain.Segment{}
	}
	res, err := c.do(ctx, endpointTranslate, http.MethodPost, nil, translateRequest{Segments: segments, Language: language})
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

func (c *Client) DownloadPDF(ctx context.Context, segments []domain.Segment) (io.ReadCloser, error) {
	if segments == nil {
		segments = []domain.Segment{}
	}
	ctx, cancel := c.withTimeout(ctx)
	res, err := c.do(ctx, endpointPDF, http.MethodPost, nil, pdfRequest{Segments: segments})
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelOnClose{ReadCloser: res.Body, cancel: cancel}, nil
}
