package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIBackend = (*HTTPBackend)(nil)

const maxErrorBody = 64 << 10

// TokenSource returns the bearer token to send, or "" for none.
type TokenSource func(ctx context.Context) string

// HTTPBackend implements adapter.AIBackend against the platform's REST API.
type HTTPBackend struct {
	base   string // e.g., http://localhost:8000
	client *http.Client
	token  TokenSource
	log    *zerolog.Logger
}

// NewHTTPClient creates an HTTP client with connection pooling. timeout 0
// leaves requests unbounded.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

func NewHTTPBackend(baseURL string, client *http.Client, token TokenSource, logger *zerolog.Logger) (*HTTPBackend, error) {
	if baseURL == "" {
		return nil, errors.New("backend base url empty")
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	if token == nil {
		token = func(context.Context) string { return "" }
	}
	l := logger.With().Str("component", "HTTPBackend").Logger()
	return &HTTPBackend{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
		token:  token,
		log:    &l,
	}, nil
}

func (b *HTTPBackend) Generate(ctx context.Context, prompt string, params adapter.GenerationParameters) (adapter.GenerateResponse, error) {
	reqBody := struct {
		Prompt     string                       `json:"prompt"`
		Parameters adapter.GenerationParameters `json:"parameters"`
	}{Prompt: prompt, Parameters: params}

	var out generateWire
	if err := b.postJSON(ctx, "generate", "/api/v1/generate", reqBody, &out); err != nil {
		return adapter.GenerateResponse{}, err
	}
	return adapter.GenerateResponse{
		JobID:          out.id(),
		URL:            out.URL,
		Prompt:         out.Prompt,
		ProcessingTime: out.processingTime(),
	}, nil
}

func (b *HTTPBackend) Classify(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (adapter.ClassifyResponse, error) {
	var out classifyWire
	if err := b.postImage(ctx, "classify", "/api/v1/classify", img, useAlternateModel, &out); err != nil {
		return adapter.ClassifyResponse{}, err
	}
	class := out.Class
	if class == "" {
		class = out.ClassName
	}
	return adapter.ClassifyResponse{
		JobID: out.id(),
		Result: model.ClassifyResult{
			Class:        class,
			Confidence:   out.Confidence,
			Description:  out.Description,
			Alternatives: out.Alternatives,
		},
		ProcessingTime: out.processingTime(),
	}, nil
}

func (b *HTTPBackend) Detect(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (adapter.DetectResponse, error) {
	var out detectWire
	if err := b.postImage(ctx, "detect", "/api/v1/detect", img, useAlternateModel, &out); err != nil {
		return adapter.DetectResponse{}, err
	}
	return adapter.DetectResponse{
		JobID:          out.id(),
		Result:         model.DetectResult{Objects: out.Objects},
		ProcessingTime: out.processingTime(),
	}, nil
}

func (b *HTTPBackend) Segment(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (adapter.SegmentResponse, error) {
	var out segmentWire
	if err := b.postImage(ctx, "segment", "/api/v1/segment", img, useAlternateModel, &out); err != nil {
		return adapter.SegmentResponse{}, err
	}
	return adapter.SegmentResponse{
		JobID:          out.id(),
		Result:         model.SegmentResult{Segments: out.Segments},
		ProcessingTime: out.processingTime(),
	}, nil
}

func (b *HTTPBackend) Chat(ctx context.Context, message string) (adapter.ChatResponse, error) {
	reqBody := struct {
		Message string `json:"message"`
	}{Message: message}

	var out chatWire
	if err := b.postJSON(ctx, "chat", "/api/v1/chat", reqBody, &out); err != nil {
		return adapter.ChatResponse{}, err
	}
	pt := out.Millis
	if pt == 0 {
		pt = out.MillisSnake
	}
	return adapter.ChatResponse{Response: out.Response, ProcessingTime: pt}, nil
}

func (b *HTTPBackend) ChatHistory(ctx context.Context) ([]model.ChatMessage, error) {
	var out chatHistoryWire
	if err := b.get(ctx, "chat_history", "/api/v1/chat/history", &out); err != nil {
		return nil, err
	}
	msgs := make([]model.ChatMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, model.ChatMessage{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.Time,
		})
	}
	return msgs, nil
}

func (b *HTTPBackend) RecentJobs(ctx context.Context) ([]model.AIJob, error) {
	var out jobsWire
	if err := b.get(ctx, "jobs", "/api/v1/jobs", &out); err != nil {
		return nil, err
	}
	jobs := make([]model.AIJob, 0, len(out.Jobs))
	for _, w := range out.Jobs {
		j, ok, err := w.toModel()
		if err != nil {
			b.log.Warn().Err(err).Str("job_id", string(w.ID)).Msg("skipping undecodable job")
			continue
		}
		if !ok {
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// ---- transport ----

func (b *HTTPBackend) postJSON(ctx context.Context, capability, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", capability, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", capability, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, capability, out)
}

func (b *HTTPBackend) postImage(ctx context.Context, capability, path string, img adapter.ImageUpload, useAlternateModel bool, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filenameOrDefault(img.Filename)))
	h.Set("Content-Type", img.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%s: create part: %w", capability, err)
	}
	if _, err := io.Copy(part, img.Body); err != nil {
		return fmt.Errorf("%s: read image: %w", capability, err)
	}
	if err := mw.WriteField("use_hugging_face", strconv.FormatBool(useAlternateModel)); err != nil {
		return fmt.Errorf("%s: write field: %w", capability, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: close multipart: %w", capability, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+path, &buf)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", capability, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req, capability, out)
}

func (b *HTTPBackend) get(ctx context.Context, capability, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+path, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", capability, err)
	}
	return b.do(req, capability, out)
}

// do sends req once and decodes a 2xx body into out. Every failure comes back
// as *domain.RemoteError.
func (b *HTTPBackend) do(req *http.Request, capability string, out any) error {
	req.Header.Set("Accept", "application/json")
	if tok := b.token(req.Context()); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return &domain.RemoteError{Capability: capability, Message: err.Error(), Err: errors.Join(domain.ErrBackendUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, capability)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RemoteError{
			Capability: capability,
			Message:    fmt.Sprintf("%s: decode response: %v", capability, err),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return nil
}

func decodeError(resp *http.Response, capability string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := ""
	var ew errorWire
	if err := json.Unmarshal(body, &ew); err == nil {
		msg = ew.message()
	}
	if msg == "" {
		msg = fmt.Sprintf("%s http %d", capability, resp.StatusCode)
	}
	return &domain.RemoteError{Capability: capability, Message: msg, StatusCode: resp.StatusCode}
}

func filenameOrDefault(name string) string {
	if name == "" {
		return "image"
	}
	return name
}
