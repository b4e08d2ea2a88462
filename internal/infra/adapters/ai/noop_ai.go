package ai

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"
)

var _ adapter.AIBackend = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIBackend for local/dev runs. It answers
// every capability with canned results after a short delay and keeps its own
// job history so the periodic refresh has something to hydrate.
type NoopAIAdapter struct {
	delay time.Duration
	seq   atomic.Int64

	mu   sync.Mutex
	jobs []model.AIJob // newest first
	chat []model.ChatMessage
}

// NewNoopAIAdapter constructs the noop adapter.
func NewNoopAIAdapter(delay time.Duration) *NoopAIAdapter {
	return &NoopAIAdapter{delay: delay}
}

func (a *NoopAIAdapter) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *NoopAIAdapter) record(st model.ServiceType, prompt string, res model.JobResult) (model.ID, model.Millis) {
	id := model.ID(strconv.FormatInt(a.seq.Add(1), 10))
	pt := model.MillisOf(a.delay)
	a.mu.Lock()
	a.jobs = append([]model.AIJob{{
		ID:             id,
		ServiceType:    st,
		Status:         model.AIJobStatusCompleted,
		Result:         res,
		Prompt:         prompt,
		CreatedAt:      time.Now(),
		ProcessingTime: pt,
	}}, a.jobs...)
	if len(a.jobs) > 20 {
		a.jobs = a.jobs[:20]
	}
	a.mu.Unlock()
	return id, pt
}

func (a *NoopAIAdapter) Generate(ctx context.Context, prompt string, params adapter.GenerationParameters) (adapter.GenerateResponse, error) {
	if err := a.wait(ctx); err != nil {
		return adapter.GenerateResponse{}, err
	}
	n := a.seq.Load() + 1
	url := fmt.Sprintf("https://picsum.photos/seed/%d/%s", n, resolutionPath(params.Resolution))
	id, pt := a.record(model.ServiceGenerate, prompt, model.GenerateResult{URL: url, Prompt: prompt})
	return adapter.GenerateResponse{JobID: id, URL: url, Prompt: prompt, ProcessingTime: pt}, nil
}

func (a *NoopAIAdapter) Classify(ctx context.Context, img adapter.ImageUpload, _ bool) (adapter.ClassifyResponse, error) {
	if err := a.wait(ctx); err != nil {
		return adapter.ClassifyResponse{}, err
	}
	res := model.ClassifyResult{
		Class:       "golden retriever",
		Confidence:  0.94,
		Description: "A medium-sized dog with a dense golden coat.",
		Alternatives: []model.Alternative{
			{Class: "labrador retriever", Confidence: 0.04},
			{Class: "cocker spaniel", Confidence: 0.01},
		},
	}
	id, pt := a.record(model.ServiceClassify, "", res)
	return adapter.ClassifyResponse{JobID: id, Result: res, ProcessingTime: pt}, nil
}

func (a *NoopAIAdapter) Detect(ctx context.Context, img adapter.ImageUpload, _ bool) (adapter.DetectResponse, error) {
	if err := a.wait(ctx); err != nil {
		return adapter.DetectResponse{}, err
	}
	res := model.DetectResult{Objects: []model.DetectedObject{
		{Name: "car", Confidence: 0.92, BBox: model.BBox{X: 25, Y: 30, Width: 40, Height: 35}},
		{Name: "person", Confidence: 0.88, BBox: model.BBox{X: 60, Y: 20, Width: 25, Height: 45}},
		{Name: "building", Confidence: 0.85, BBox: model.BBox{X: 10, Y: 5, Width: 50, Height: 60}},
	}}
	id, pt := a.record(model.ServiceDetect, "", res)
	return adapter.DetectResponse{JobID: id, Result: res, ProcessingTime: pt}, nil
}

func (a *NoopAIAdapter) Segment(ctx context.Context, img adapter.ImageUpload, _ bool) (adapter.SegmentResponse, error) {
	if err := a.wait(ctx); err != nil {
		return adapter.SegmentResponse{}, err
	}
	res := model.SegmentResult{Segments: []model.Segment{
		{Name: "background", Mask: "polygon(0% 0%, 100% 0%, 100% 40%, 0% 40%)", Confidence: 0.95},
		{Name: "foreground object", Mask: "polygon(20% 40%, 80% 40%, 80% 80%, 20% 80%)", Confidence: 0.91},
	}}
	id, pt := a.record(model.ServiceSegment, "", res)
	return adapter.SegmentResponse{JobID: id, Result: res, ProcessingTime: pt}, nil
}

func (a *NoopAIAdapter) Chat(ctx context.Context, message string) (adapter.ChatResponse, error) {
	if err := a.wait(ctx); err != nil {
		return adapter.ChatResponse{}, err
	}
	reply := "This is a noop AI response to: " + message
	a.mu.Lock()
	base := len(a.chat)
	a.chat = append(a.chat,
		model.ChatMessage{ID: model.ID(strconv.Itoa(base + 1)), Role: model.ChatRoleUser, Content: message, Timestamp: time.Now()},
		model.ChatMessage{ID: model.ID(strconv.Itoa(base + 2)), Role: model.ChatRoleAssistant, Content: reply, Timestamp: time.Now()},
	)
	a.mu.Unlock()
	return adapter.ChatResponse{Response: reply, ProcessingTime: model.MillisOf(a.delay)}, nil
}

func (a *NoopAIAdapter) ChatHistory(ctx context.Context) ([]model.ChatMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return model.GetRecentMessages(append([]model.ChatMessage(nil), a.chat...), 50), nil
}

func (a *NoopAIAdapter) RecentJobs(ctx context.Context) ([]model.AIJob, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.AIJob, len(a.jobs))
	for i, j := range a.jobs {
		out[i] = j.Clone()
	}
	return out, nil
}

func resolutionPath(res string) string {
	var w, h int
	if _, err := fmt.Sscanf(res, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return "1024/1024"
	}
	return fmt.Sprintf("%d/%d", w, h)
}
