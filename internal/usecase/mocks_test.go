//go:build !integration

package usecase

import (
	"context"
	"sync"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"
)

// ---- Fakes ----

type fakeAI struct {
	generate    func(ctx context.Context, prompt string, p adapter.GenerationParameters) (adapter.GenerateResponse, error)
	classify    func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.ClassifyResponse, error)
	detect      func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.DetectResponse, error)
	segment     func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.SegmentResponse, error)
	chat        func(ctx context.Context, message string) (adapter.ChatResponse, error)
	chatHistory func(ctx context.Context) ([]model.ChatMessage, error)
	recentJobs  func(ctx context.Context) ([]model.AIJob, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeAI) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAI) Generate(ctx context.Context, prompt string, p adapter.GenerationParameters) (adapter.GenerateResponse, error) {
	f.hit()
	return f.generate(ctx, prompt, p)
}
func (f *fakeAI) Classify(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.ClassifyResponse, error) {
	f.hit()
	return f.classify(ctx, img, alt)
}
func (f *fakeAI) Detect(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.DetectResponse, error) {
	f.hit()
	return f.detect(ctx, img, alt)
}
func (f *fakeAI) Segment(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.SegmentResponse, error) {
	f.hit()
	return f.segment(ctx, img, alt)
}
func (f *fakeAI) Chat(ctx context.Context, message string) (adapter.ChatResponse, error) {
	f.hit()
	return f.chat(ctx, message)
}
func (f *fakeAI) ChatHistory(ctx context.Context) ([]model.ChatMessage, error) {
	return f.chatHistory(ctx)
}
func (f *fakeAI) RecentJobs(ctx context.Context) ([]model.AIJob, error) {
	return f.recentJobs(ctx)
}

type recNotifier struct {
	mu  sync.Mutex
	got []adapter.Notification
}

func (r *recNotifier) Notify(n adapter.Notification) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

func (r *recNotifier) All() []adapter.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]adapter.Notification(nil), r.got...)
}

type recInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (r *recInvalidator) Invalidate(key string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *recInvalidator) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

type memTokens struct {
	mu       sync.Mutex
	tok      string
	err      error
	clearErr error
}

func (m *memTokens) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.tok == "" {
		return "", domain.ErrNotFound
	}
	return m.tok, nil
}
func (m *memTokens) Set(ctx context.Context, t string) error {
	m.mu.Lock()
	m.tok = t
	m.mu.Unlock()
	return nil
}
func (m *memTokens) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.tok = ""
	return nil
}
