// Package gemini talks to the Gemini API through the genai SDK.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

var (
	ErrNoKey      = errors.New("no AI API key configured")
	ErrNoResponse = errors.New("model returned no text")
)

// UpstreamError carries a non-2xx response from the model endpoint.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI upstream returned status %d", e.Status)
}

// Message is one prior turn. Role is "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	APIKey          string
	Model           string
	System          string
	History         []Message
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

// Client holds connection settings. The key comes with each call because it can be
// rotated in site settings at any time.
type Client struct {
	BaseURL    string
	APIVersion string
	HTTP       *http.Client
}

// New accepts either a bare host or one ending in the API version, e.g.
// https://generativelanguage.googleapis.com/v1beta.
func New(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(baseURL, "/")
	version := "v1beta"
	if i := strings.LastIndexByte(base, '/'); i > len("https://") {
		if last := base[i+1:]; strings.HasPrefix(last, "v1") {
			base, version = base[:i], last
		}
	}
	return &Client{
		BaseURL:    base + "/",
		APIVersion: version,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

// Chat sends one request with no retry and returns the first candidate's text as-is.
func (c *Client) Chat(ctx context.Context, in ChatRequest) (string, error) {
	if in.APIKey == "" {
		return "", ErrNoKey
	}
	rec := &upstream{}
	client, err := c.connect(ctx, in.APIKey, rec)
	if err != nil {
		return "", err
	}

	contents := make([]*genai.Content, 0, len(in.History)+1)
	for _, m := range in.History {
		role := "user"
		if m.Role == "assistant" || m.Role == "model" {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}})
	}
	contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: in.Prompt}}})

	cfg := &genai.GenerateContentConfig{}
	if in.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: in.System}}}
	}
	if in.Temperature > 0 {
		t := float32(in.Temperature)
		cfg.Temperature = &t
	}
	if in.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(in.MaxOutputTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, in.Model, contents, cfg)
	if err != nil {
		return "", rec.wrap(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}

// ListModels is used to check that a key is accepted.
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	if apiKey == "" {
		return nil, ErrNoKey
	}
	rec := &upstream{}
	client, err := c.connect(ctx, apiKey, rec)
	if err != nil {
		return nil, err
	}
	page, err := client.Models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		return nil, rec.wrap(err)
	}
	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func (c *Client) connect(ctx context.Context, apiKey string, rec *upstream) (*genai.Client, error) {
	next := http.DefaultTransport
	var timeout time.Duration
	if c.HTTP != nil {
		timeout = c.HTTP.Timeout
		if c.HTTP.Transport != nil {
			next = c.HTTP.Transport
		}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout, Transport: &recordingTransport{next: next, rec: rec}},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.BaseURL,
			APIVersion: c.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("AI client: %w", err)
	}
	return client, nil
}

// upstream keeps the last non-2xx reply so callers see the status and body
// the diagnostics page reports.
type upstream struct {
	status int
	body   string
}

func (u *upstream) wrap(err error) error {
	if u.status != 0 {
		return &UpstreamError{Status: u.status, Body: u.body}
	}
	return fmt.Errorf("AI request failed: %w", err)
}

type recordingTransport struct {
	next http.RoundTripper
	rec  *upstream
}

func (t *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(r)
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	t.rec.status, t.rec.body = resp.StatusCode, string(raw)
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

// StripFences removes a surrounding ``` block, as models like to wrap output in one.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
