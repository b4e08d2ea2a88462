//go:build !integration

package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"
	"ai-showcase-client/internal/infra/logging"
	"ai-showcase-client/internal/store"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newUC(t *testing.T, ai *fakeAI) (*invocationUC, *store.Store, *recNotifier, *recInvalidator, *[]model.ProcessingStatus) {
	t.Helper()
	var mu sync.Mutex
	statuses := []model.ProcessingStatus{}
	st := store.New(store.WithMutationHook(func(op string, s store.State) {
		if op == "set_processing_status" {
			mu.Lock()
			statuses = append(statuses, s.ProcessingStatus)
			mu.Unlock()
		}
	}))
	notes := &recNotifier{}
	inv := &recInvalidator{}
	uc := NewInvocationUseCase(st, ai, notes, inv, logging.Nop(), true)
	uc.now = func() time.Time { return fixedNow }
	return uc, st, notes, inv, &statuses
}

func pngUpload() adapter.ImageUpload {
	return adapter.ImageUpload{Filename: "a.png", ContentType: "image/png", Body: strings.NewReader("png")}
}

func TestGenerate_Success(t *testing.T) {
	var gotParams adapter.GenerationParameters
	ai := &fakeAI{generate: func(ctx context.Context, prompt string, p adapter.GenerationParameters) (adapter.GenerateResponse, error) {
		gotParams = p
		return adapter.GenerateResponse{JobID: "1", URL: "http://x/1.jpg", Prompt: prompt, ProcessingTime: model.MillisOf(1200 * time.Millisecond)}, nil
	}}
	uc, st, notes, inv, statuses := newUC(t, ai)

	job, err := uc.Generate(context.Background(), "a red cube", adapter.GenerationParameters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotParams != adapter.DefaultGenerationParameters() {
		t.Fatalf("defaults not applied: %+v", gotParams)
	}

	jobs := st.RecentJobs()
	if len(jobs) != 1 {
		t.Fatalf("want 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ID != "1" || j.ServiceType != model.ServiceGenerate || j.Status != model.AIJobStatusCompleted {
		t.Fatalf("unexpected job: %+v", j)
	}
	if j.ProcessingTime.Duration() != 1200*time.Millisecond || !j.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected timing: %+v", j)
	}
	if r, ok := j.Result.(model.GenerateResult); !ok || r.URL != "http://x/1.jpg" {
		t.Fatalf("unexpected result: %#v", j.Result)
	}
	if job.ID != j.ID {
		t.Fatalf("returned job differs from stored: %+v", job)
	}
	if img := st.LastGeneratedImage(); img == nil || *img != "http://x/1.jpg" {
		t.Fatalf("last image not set: %v", img)
	}
	if st.ProcessingStatus().IsProcessing {
		t.Fatal("processing should be reset")
	}

	got := *statuses
	if len(got) != 2 {
		t.Fatalf("want 2 status transitions, got %d", len(got))
	}
	if !got[0].IsProcessing || got[0].Message != "Generating image..." {
		t.Fatalf("first status: %+v", got[0])
	}
	if step, total, ok := got[0].Progress(); !ok || step != 1 || total != 50 {
		t.Fatalf("progress: %d/%d %v", step, total, ok)
	}
	if got[0].EstimatedTime.Duration() != 30*time.Second {
		t.Fatalf("estimate: %v", got[0].EstimatedTime.Duration())
	}
	if keys := inv.Keys(); len(keys) != 1 || keys[0] != QueryJobs {
		t.Fatalf("invalidations: %v", keys)
	}
	if n := notes.All(); len(n) != 1 || n[0].Variant == adapter.VariantDestructive {
		t.Fatalf("expected one success toast, got %+v", n)
	}
}

func TestClassify_Failure(t *testing.T) {
	ai := &fakeAI{classify: func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.ClassifyResponse, error) {
		return adapter.ClassifyResponse{}, &domain.RemoteError{Capability: "classify", Message: "bad image", StatusCode: 500}
	}}
	uc, st, notes, inv, statuses := newUC(t, ai)
	st.AddJob(model.AIJob{ID: "old", ServiceType: model.ServiceDetect, Status: model.AIJobStatusCompleted})

	_, err := uc.Classify(context.Background(), pngUpload(), false)
	var re *domain.RemoteError
	if !errors.As(err, &re) || re.Error() != "bad image" {
		t.Fatalf("want RemoteError(bad image), got %v", err)
	}

	if jobs := st.RecentJobs(); len(jobs) != 1 || jobs[0].ID != "old" {
		t.Fatalf("job list must be untouched: %+v", jobs)
	}
	if st.ProcessingStatus().IsProcessing {
		t.Fatal("processing should be reset")
	}
	if got := *statuses; len(got) != 2 || got[0].EstimatedTime.Duration() != 2*time.Second {
		t.Fatalf("statuses: %+v", got)
	}
	n := notes.All()
	if len(n) != 1 || n[0].Variant != adapter.VariantDestructive || n[0].Description != "bad image" || n[0].Title != "Classification Failed" {
		t.Fatalf("unexpected toasts: %+v", n)
	}
	if len(inv.Keys()) != 0 {
		t.Fatalf("no invalidation on failure, got %v", inv.Keys())
	}
}

func TestImageCapabilities_SuccessToasts(t *testing.T) {
	ai := &fakeAI{
		classify: func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.ClassifyResponse, error) {
			return adapter.ClassifyResponse{JobID: "c", Result: model.ClassifyResult{Class: "cat", Confidence: 0.873}}, nil
		},
		detect: func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.DetectResponse, error) {
			return adapter.DetectResponse{JobID: "d", Result: model.DetectResult{Objects: make([]model.DetectedObject, 3)}}, nil
		},
		segment: func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.SegmentResponse, error) {
			return adapter.SegmentResponse{Result: model.SegmentResult{Segments: make([]model.Segment, 2)}}, nil
		},
	}
	uc, st, notes, _, _ := newUC(t, ai)
	uc.newJobID = func() model.ID { return "generated" }
	ctx := context.Background()

	if _, err := uc.Classify(ctx, pngUpload(), true); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Detect(ctx, pngUpload(), false); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Segment(ctx, pngUpload(), false); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"Identified as: cat (87% confidence)",
		"Found 3 objects in the image.",
		"Image segmented into 2 regions.",
	}
	n := notes.All()
	if len(n) != len(want) {
		t.Fatalf("want %d toasts, got %+v", len(want), n)
	}
	for i, w := range want {
		if n[i].Description != w {
			t.Errorf("toast %d: got %q want %q", i, n[i].Description, w)
		}
	}

	jobs := st.RecentJobs()
	if len(jobs) != 3 || jobs[0].ID != "generated" || jobs[0].ServiceType != model.ServiceSegment {
		t.Fatalf("newest first with client id fallback, got %+v", jobs)
	}
	if jobs[2].ServiceType != model.ServiceClassify {
		t.Fatalf("oldest should be classify: %+v", jobs[2])
	}
}

func TestValidation_NoStateChange(t *testing.T) {
	ai := &fakeAI{}
	uc, st, notes, _, statuses := newUC(t, ai)
	ctx := context.Background()
	v0 := st.Snapshot().Version

	cases := []struct {
		name string
		call func() error
	}{
		{"empty prompt", func() error { _, err := uc.Generate(ctx, "   ", adapter.GenerationParameters{}); return err }},
		{"missing file", func() error { _, err := uc.Classify(ctx, adapter.ImageUpload{ContentType: "image/png"}, false); return err }},
		{"non image", func() error {
			_, err := uc.Detect(ctx, adapter.ImageUpload{ContentType: "text/plain", Body: strings.NewReader("x")}, false)
			return err
		}},
		{"empty chat", func() error { _, err := uc.Chat(ctx, ""); return err }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.call(); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("want ErrInvalidArgument, got %v", err)
			}
		})
	}

	if st.Snapshot().Version != v0 || len(*statuses) != 0 || len(notes.All()) != 0 || ai.Calls() != 0 {
		t.Fatal("validation failures must not touch state, toast, or call the backend")
	}
}

func TestChat_Ordering(t *testing.T) {
	ai := &fakeAI{chat: func(ctx context.Context, message string) (adapter.ChatResponse, error) {
		return adapter.ChatResponse{Response: "re: " + message}, nil
	}}
	uc, st, _, inv, statuses := newUC(t, ai)
	ctx := context.Background()

	if _, err := uc.Chat(ctx, "hi"); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Chat(ctx, "bye"); err != nil {
		t.Fatal(err)
	}

	msgs := st.ChatMessages()
	want := []struct {
		role    model.ChatRole
		content string
	}{
		{model.ChatRoleUser, "hi"},
		{model.ChatRoleAssistant, "re: hi"},
		{model.ChatRoleUser, "bye"},
		{model.ChatRoleAssistant, "re: bye"},
	}
	if len(msgs) != len(want) {
		t.Fatalf("want %d messages, got %d", len(want), len(msgs))
	}
	seen := map[model.ID]bool{}
	for i, w := range want {
		if msgs[i].Role != w.role || msgs[i].Content != w.content {
			t.Errorf("message %d: got %s/%q", i, msgs[i].Role, msgs[i].Content)
		}
		if !msgs[i].Timestamp.Equal(fixedNow) {
			t.Errorf("message %d: timestamp %v, want %v", i, msgs[i].Timestamp, fixedNow)
		}
		if seen[msgs[i].ID] {
			t.Errorf("duplicate message id %s", msgs[i].ID)
		}
		seen[msgs[i].ID] = true
	}
	if len(*statuses) != 0 {
		t.Fatal("chat must not drive processing status")
	}
	if len(st.RecentJobs()) != 0 {
		t.Fatal("chat must not record jobs")
	}
	if keys := inv.Keys(); len(keys) != 2 || keys[0] != QueryChatHistory {
		t.Fatalf("invalidations: %v", keys)
	}
}

func TestChat_FailureKeepsUserTurn(t *testing.T) {
	ai := &fakeAI{chat: func(ctx context.Context, message string) (adapter.ChatResponse, error) {
		return adapter.ChatResponse{}, errors.New("connection refused")
	}}
	uc, st, notes, _, _ := newUC(t, ai)

	_, err := uc.Chat(context.Background(), "hi")
	var re *domain.RemoteError
	if !errors.As(err, &re) || re.Capability != model.ServiceChat {
		t.Fatalf("want chat RemoteError, got %v", err)
	}
	if msgs := st.ChatMessages(); len(msgs) != 1 || msgs[0].Role != model.ChatRoleUser {
		t.Fatalf("user turn should remain: %+v", msgs)
	}
	if n := notes.All(); len(n) != 1 || n[0].Title != "Chat Error" || n[0].Description != "connection refused" {
		t.Fatalf("unexpected toasts: %+v", n)
	}
}

func TestCancel_LateSuccessStillCommits(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	ai := &fakeAI{segment: func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.SegmentResponse, error) {
		close(started)
		<-release
		return adapter.SegmentResponse{JobID: "late"}, nil
	}}
	uc, st, _, _, _ := newUC(t, ai)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Segment(context.Background(), pngUpload(), false)
		done <- err
	}()

	<-started
	if !st.ProcessingStatus().IsProcessing {
		t.Fatal("should be processing while the call is in flight")
	}
	uc.Cancel()
	if st.ProcessingStatus().IsProcessing {
		t.Fatal("cancel should reset the indicator")
	}
	if len(st.RecentJobs()) != 0 {
		t.Fatal("no job before completion")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs := st.RecentJobs(); len(jobs) != 1 || jobs[0].ID != "late" {
		t.Fatalf("late success should commit: %+v", jobs)
	}
}

func TestConcurrentInvocations(t *testing.T) {
	ai := &fakeAI{detect: func(ctx context.Context, img adapter.ImageUpload, alt bool) (adapter.DetectResponse, error) {
		return adapter.DetectResponse{}, nil
	}}
	uc, st, _, _, _ := newUC(t, ai)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Detect(context.Background(), pngUpload(), false)
		}()
	}
	wg.Wait()

	if n := len(st.RecentJobs()); n != store.DefaultJobCap {
		t.Fatalf("want %d jobs, got %d", store.DefaultJobCap, n)
	}
	if st.ProcessingStatus().IsProcessing {
		t.Fatal("last completion should leave status idle")
	}
}

func TestRefreshJobsAndChatHistory(t *testing.T) {
	server := []model.AIJob{
		{ID: "9", ServiceType: model.ServiceGenerate, Status: model.AIJobStatusCompleted},
		{ID: "8", ServiceType: model.ServiceClassify, Status: model.AIJobStatusFailed},
	}
	ai := &fakeAI{
		recentJobs: func(ctx context.Context) ([]model.AIJob, error) { return server, nil },
		chatHistory: func(ctx context.Context) ([]model.ChatMessage, error) {
			return []model.ChatMessage{{ID: "1", Role: model.ChatRoleUser, Content: "hi"}}, nil
		},
	}
	uc, st, _, _, _ := newUC(t, ai)
	st.AddJob(model.AIJob{ID: "optimistic", ServiceType: model.ServiceDetect})

	if err := uc.RefreshJobs(context.Background()); err != nil {
		t.Fatal(err)
	}
	jobs := st.RecentJobs()
	if len(jobs) != 2 || jobs[0].ID != "9" || jobs[1].Status != model.AIJobStatusFailed {
		t.Fatalf("server list should replace local: %+v", jobs)
	}

	if err := uc.LoadChatHistory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if msgs := st.ChatMessages(); len(msgs) != 1 || msgs[0].Content != "hi" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}

func TestRefreshJobs_ErrorLeavesState(t *testing.T) {
	ai := &fakeAI{recentJobs: func(ctx context.Context) ([]model.AIJob, error) {
		return nil, errors.New("down")
	}}
	uc, st, _, _, _ := newUC(t, ai)
	st.AddJob(model.AIJob{ID: "keep", ServiceType: model.ServiceDetect})

	if err := uc.RefreshJobs(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if jobs := st.RecentJobs(); len(jobs) != 1 || jobs[0].ID != "keep" {
		t.Fatalf("state should be untouched: %+v", jobs)
	}
}
