package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"
	"ai-showcase-client/internal/infra/i18n"
	"ai-showcase-client/internal/infra/logging"
	"ai-showcase-client/internal/store"
)

// Query keys understood by the refresher.
const (
	QueryJobs        = "jobs"
	QueryChatHistory = "chat_history"
)

// Translator resolves user-facing notification texts.
type Translator interface {
	T(key string, args ...interface{}) string
}

// Invalidator marks a query key stale so it is refetched.
type Invalidator interface {
	Invalidate(key string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(string) {}

// Compile-time check
var _ InvocationUseCase = (*invocationUC)(nil)

type InvocationUseCase interface {
	Generate(ctx context.Context, prompt string, params adapter.GenerationParameters) (model.AIJob, error)
	Classify(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (model.AIJob, error)
	Detect(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (model.AIJob, error)
	Segment(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (model.AIJob, error)
	Chat(ctx context.Context, message string) (model.ChatMessage, error)
	LoadChatHistory(ctx context.Context) error
	RefreshJobs(ctx context.Context) error
	Cancel()
}

type invocationUC struct {
	store   *store.Store
	ai      adapter.AIBackend
	notify  adapter.Notifier
	queries Invalidator
	msgs    Translator
	log     *zerolog.Logger
	devMode bool

	now      func() time.Time
	newJobID func() model.ID
	newMsgID func() model.ID
}

func NewInvocationUseCase(st *store.Store, ai adapter.AIBackend, notify adapter.Notifier, queries Invalidator, logger *zerolog.Logger, devMode bool) *invocationUC {
	l := logger.With().Str("component", "InvocationUseCase").Logger()
	if queries == nil {
		queries = noopInvalidator{}
	}
	return &invocationUC{
		store:    st,
		ai:       ai,
		notify:   notify,
		queries:  queries,
		msgs:     i18n.Default(),
		log:      &l,
		devMode:  devMode,
		now:      time.Now,
		newJobID: func() model.ID { return model.ID(uuid.NewString()) },
		newMsgID: func() model.ID { return model.ID(ulid.Make().String()) },
	}
}

// WithTranslator swaps the notification catalog.
func (u *invocationUC) WithTranslator(t Translator) *invocationUC {
	if t != nil {
		u.msgs = t
	}
	return u
}

// invocation describes the per-capability parts of the shared lifecycle.
type invocation struct {
	service     model.ServiceType
	step, total int
}

func estimate(id string) model.Millis {
	if svc, ok := model.LookupService(id); ok {
		return model.MillisOf(svc.Estimate)
	}
	return 0
}

// invoke runs the lifecycle shared by generate/classify/detect/segment:
// processing -> one backend call -> idle -> job or destructive toast.
func (u *invocationUC) invoke(ctx context.Context, inv invocation, call func(context.Context) (model.AIJob, error)) (model.AIJob, error) {
	capability := string(inv.service)
	ctx = logging.WithCapability(ctx, capability)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "InvocationUC."+capability)()

	u.store.SetProcessingStatus(model.ProcessingStatus{
		IsProcessing:  true,
		Message:       u.msgs.T(capability + ".processing"),
		CurrentStep:   inv.step,
		TotalSteps:    inv.total,
		EstimatedTime: estimate(capability),
	})

	start := time.Now()
	job, err := call(ctx)
	u.store.SetProcessingStatus(model.Idle())

	if err != nil {
		re := domain.AsRemote(capability, err)
		log.Warn().Err(re).Int("status_code", re.StatusCode).Dur("elapsed", time.Since(start)).Msg("invocation failed")
		u.notify.Notify(adapter.Notification{
			Title:       u.msgs.T(capability + ".failed.title"),
			Description: re.Error(),
			Variant:     adapter.VariantDestructive,
		})
		return model.AIJob{}, re
	}

	if job.ID == "" {
		job.ID = u.newJobID()
	}
	job.ServiceType = inv.service
	job.Status = model.AIJobStatusCompleted
	job.CreatedAt = u.now()
	u.store.AddJob(job)
	u.queries.Invalidate(QueryJobs)

	log.Info().Str("job_id", string(job.ID)).Dur("elapsed", time.Since(start)).Msg("invocation completed")
	return job, nil
}

func (u *invocationUC) Generate(ctx context.Context, prompt string, params adapter.GenerationParameters) (model.AIJob, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return model.AIJob{}, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidArgument)
	}
	params = withGenerationDefaults(params)

	inv := invocation{service: model.ServiceGenerate, step: 1, total: params.Steps}
	job, err := u.invoke(ctx, inv, func(ctx context.Context) (model.AIJob, error) {
		u.log.Debug().Str("prompt", logging.Redact(prompt, u.devMode)).Str("style", params.Style).Msg("generate")
		resp, err := u.ai.Generate(ctx, prompt, params)
		if err != nil {
			return model.AIJob{}, err
		}
		if resp.Prompt == "" {
			resp.Prompt = prompt
		}
		return model.AIJob{
			ID:             resp.JobID,
			Result:         model.GenerateResult{URL: resp.URL, Prompt: resp.Prompt},
			Prompt:         resp.Prompt,
			ProcessingTime: resp.ProcessingTime,
		}, nil
	})
	if err != nil {
		return job, err
	}

	url := job.Result.(model.GenerateResult).URL
	u.store.SetLastGeneratedImage(&url)
	u.notify.Notify(adapter.Notification{
		Title:       u.msgs.T("generate.success.title"),
		Description: u.msgs.T("generate.success.body"),
	})
	return job, nil
}

func (u *invocationUC) Classify(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (model.AIJob, error) {
	if err := validateImage(img); err != nil {
		return model.AIJob{}, err
	}
	inv := invocation{service: model.ServiceClassify}
	job, err := u.invoke(ctx, inv, func(ctx context.Context) (model.AIJob, error) {
		resp, err := u.ai.Classify(ctx, img, useAlternateModel)
		if err != nil {
			return model.AIJob{}, err
		}
		return model.AIJob{ID: resp.JobID, Result: resp.Result, ProcessingTime: resp.ProcessingTime}, nil
	})
	if err != nil {
		return job, err
	}

	res := job.Result.(model.ClassifyResult)
	u.notify.Notify(adapter.Notification{
		Title:       u.msgs.T("classify.success.title"),
		Description: u.msgs.T("classify.success.body", res.Class, int(math.Round(res.Confidence*100))),
	})
	return job, nil
}

func (u *invocationUC) Detect(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (model.AIJob, error) {
	if err := validateImage(img); err != nil {
		return model.AIJob{}, err
	}
	inv := invocation{service: model.ServiceDetect}
	job, err := u.invoke(ctx, inv, func(ctx context.Context) (model.AIJob, error) {
		resp, err := u.ai.Detect(ctx, img, useAlternateModel)
		if err != nil {
			return model.AIJob{}, err
		}
		return model.AIJob{ID: resp.JobID, Result: resp.Result, ProcessingTime: resp.ProcessingTime}, nil
	})
	if err != nil {
		return job, err
	}

	res := job.Result.(model.DetectResult)
	u.notify.Notify(adapter.Notification{
		Title:       u.msgs.T("detect.success.title"),
		Description: u.msgs.T("detect.success.body", len(res.Objects)),
	})
	return job, nil
}

func (u *invocationUC) Segment(ctx context.Context, img adapter.ImageUpload, useAlternateModel bool) (model.AIJob, error) {
	if err := validateImage(img); err != nil {
		return model.AIJob{}, err
	}
	inv := invocation{service: model.ServiceSegment}
	job, err := u.invoke(ctx, inv, func(ctx context.Context) (model.AIJob, error) {
		resp, err := u.ai.Segment(ctx, img, useAlternateModel)
		if err != nil {
			return model.AIJob{}, err
		}
		return model.AIJob{ID: resp.JobID, Result: resp.Result, ProcessingTime: resp.ProcessingTime}, nil
	})
	if err != nil {
		return job, err
	}

	res := job.Result.(model.SegmentResult)
	u.notify.Notify(adapter.Notification{
		Title:       u.msgs.T("segment.success.title"),
		Description: u.msgs.T("segment.success.body", len(res.Segments)),
	})
	return job, nil
}

// Chat appends the user turn before calling the backend and the assistant
// turn after. It does not drive ProcessingStatus and never records a job.
// On failure the user turn stays in the transcript.
func (u *invocationUC) Chat(ctx context.Context, message string) (model.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.ChatMessage{}, fmt.Errorf("%w: message is empty", domain.ErrInvalidArgument)
	}
	ctx = logging.WithCapability(ctx, model.ServiceChat)
	log := logging.With(ctx, u.log)

	u.store.AddChatMessage(model.NewChatMessage(u.newMsgID(), model.ChatRoleUser, message, u.now()))

	resp, err := u.ai.Chat(ctx, message)
	if err != nil {
		re := domain.AsRemote(model.ServiceChat, err)
		log.Warn().Err(re).Int("status_code", re.StatusCode).Msg("chat failed")
		u.notify.Notify(adapter.Notification{
			Title:       u.msgs.T("chat.failed.title"),
			Description: re.Error(),
			Variant:     adapter.VariantDestructive,
		})
		return model.ChatMessage{}, re
	}

	reply := model.NewChatMessage(u.newMsgID(), model.ChatRoleAssistant, resp.Response, u.now())
	u.store.AddChatMessage(reply)
	u.queries.Invalidate(QueryChatHistory)
	return reply, nil
}

func (u *invocationUC) LoadChatHistory(ctx context.Context) error {
	msgs, err := u.ai.ChatHistory(ctx)
	if err != nil {
		return domain.AsRemote(QueryChatHistory, err)
	}
	u.store.SetChatMessages(msgs)
	return nil
}

func (u *invocationUC) RefreshJobs(ctx context.Context) error {
	jobs, err := u.ai.RecentJobs(ctx)
	if err != nil {
		return domain.AsRemote(QueryJobs, err)
	}
	u.store.SetRecentJobs(jobs)
	return nil
}

// Cancel only clears the processing indicator. The request keeps running and
// commits its job if it later succeeds.
func (u *invocationUC) Cancel() {
	u.store.SetProcessingStatus(model.Idle())
	u.log.Debug().Msg("processing status cancelled")
}

func withGenerationDefaults(p adapter.GenerationParameters) adapter.GenerationParameters {
	d := adapter.DefaultGenerationParameters()
	if p.Style == "" {
		p.Style = d.Style
	}
	if p.Resolution == "" {
		p.Resolution = d.Resolution
	}
	if p.GuidanceScale <= 0 {
		p.GuidanceScale = d.GuidanceScale
	}
	if p.Steps <= 0 {
		p.Steps = d.Steps
	}
	return p
}

func validateImage(img adapter.ImageUpload) error {
	if img.Body == nil {
		return fmt.Errorf("%w: image file is required", domain.ErrInvalidArgument)
	}
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return fmt.Errorf("%w: File must be an image", domain.ErrInvalidArgument)
	}
	return nil
}
