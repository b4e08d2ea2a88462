package ai

import (
	"context"
	"time"

	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"
	"ai-showcase-client/internal/infra/metrics"
)

var _ adapter.AIBackend = (*instrumentedAI)(nil)

type instrumentedAI struct {
	inner adapter.AIBackend
}

// NewInstrumentedAI records latency, outcome and in-flight count per capability.
func NewInstrumentedAI(inner adapter.AIBackend) adapter.AIBackend {
	return &instrumentedAI{inner: inner}
}

func observe(capability string) func(err error) {
	start := time.Now()
	done := metrics.TrackInflight(capability)
	return func(err error) {
		done()
		metrics.ObserveInvocation(capability, time.Since(start), err == nil)
	}
}

func (i *instrumentedAI) Generate(ctx context.Context, prompt string, params adapter.GenerationParameters) (adapter.GenerateResponse, error) {
	finish := observe("generate")
	resp, err := i.inner.Generate(ctx, prompt, params)
	finish(err)
	return resp, err
}

func (i *instrumentedAI) Classify(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.ClassifyResponse, error) {
	finish := observe("classify")
	resp, err := i.inner.Classify(ctx, img, alt)
	finish(err)
	return resp, err
}

func (i *instrumentedAI) Detect(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.DetectResponse, error) {
	finish := observe("detect")
	resp, err := i.inner.Detect(ctx, img, alt)
	finish(err)
	return resp, err
}

func (i *instrumentedAI) Segment(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.SegmentResponse, error) {
	finish := observe("segment")
	resp, err := i.inner.Segment(ctx, img, alt)
	finish(err)
	return resp, err
}

func (i *instrumentedAI) Chat(ctx context.Context, message string) (adapter.ChatResponse, error) {
	finish := observe("chat")
	resp, err := i.inner.Chat(ctx, message)
	finish(err)
	return resp, err
}

func (i *instrumentedAI) ChatHistory(ctx context.Context) ([]model.ChatMessage, error) {
	finish := observe("chat_history")
	msgs, err := i.inner.ChatHistory(ctx)
	finish(err)
	return msgs, err
}

func (i *instrumentedAI) RecentJobs(ctx context.Context) ([]model.AIJob, error) {
	finish := observe("jobs")
	jobs, err := i.inner.RecentJobs(ctx)
	finish(err)
	return jobs, err
}
