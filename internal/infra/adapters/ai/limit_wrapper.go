package ai

import (
	"context"

	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIBackend = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.AIBackend
	sem   chan struct{}
}

// NewLimitedAI caps concurrent backend calls. maxConcurrent <= 0 returns
// inner unchanged. Waiting for a slot respects ctx.
func NewLimitedAI(inner adapter.AIBackend, maxConcurrent int) adapter.AIBackend {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedAI) release() { <-l.sem }

func (l *limitedAI) Generate(ctx context.Context, prompt string, params adapter.GenerationParameters) (adapter.GenerateResponse, error) {
	if err := l.acquire(ctx); err != nil {
		return adapter.GenerateResponse{}, err
	}
	defer l.release()
	return l.inner.Generate(ctx, prompt, params)
}

func (l *limitedAI) Classify(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.ClassifyResponse, error) {
	if err := l.acquire(ctx); err != nil {
		return adapter.ClassifyResponse{}, err
	}
	defer l.release()
	return l.inner.Classify(ctx, img, alt)
}

func (l *limitedAI) Detect(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.DetectResponse, error) {
	if err := l.acquire(ctx); err != nil {
		return adapter.DetectResponse{}, err
	}
	defer l.release()
	return l.inner.Detect(ctx, img, alt)
}

func (l *limitedAI) Segment(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.SegmentResponse, error) {
	if err := l.acquire(ctx); err != nil {
		return adapter.SegmentResponse{}, err
	}
	defer l.release()
	return l.inner.Segment(ctx, img, alt)
}

func (l *limitedAI) Chat(ctx context.Context, message string) (adapter.ChatResponse, error) {
	if err := l.acquire(ctx); err != nil {
		return adapter.ChatResponse{}, err
	}
	defer l.release()
	return l.inner.Chat(ctx, message)
}

// Reads bypass the limiter so the refresh loop never queues behind uploads.
func (l *limitedAI) ChatHistory(ctx context.Context) ([]model.ChatMessage, error) {
	return l.inner.ChatHistory(ctx)
}

func (l *limitedAI) RecentJobs(ctx context.Context) ([]model.AIJob, error) {
	return l.inner.RecentJobs(ctx)
}
