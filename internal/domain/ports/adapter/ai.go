package adapter

import (
	"context"
	"io"

	"ai-showcase-client/internal/domain/model"
)

// GenerationParameters tune image generation.
type GenerationParameters struct {
	Style         string  `json:"style"`
	Resolution    string  `json:"resolution"`
	GuidanceScale float64 `json:"guidance_scale"`
	Steps         int     `json:"steps"`
}

// DefaultGenerationParameters mirrors the backend's defaults.
func DefaultGenerationParameters() GenerationParameters {
	return GenerationParameters{
		Style:         "photorealistic",
		Resolution:    "1024x1024",
		GuidanceScale: 7.5,
		Steps:         50,
	}
}

// ImageUpload is a file handed to classify/detect/segment.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// GenerateResponse is the normalized backend reply to a generate call.
type GenerateResponse struct {
	JobID          model.ID
	URL            string
	Prompt         string
	ProcessingTime model.Millis
}

type ClassifyResponse struct {
	JobID          model.ID
	Result         model.ClassifyResult
	ProcessingTime model.Millis
}

type DetectResponse struct {
	JobID          model.ID
	Result         model.DetectResult
	ProcessingTime model.Millis
}

type SegmentResponse struct {
	JobID          model.ID
	Result         model.SegmentResult
	ProcessingTime model.Millis
}

type ChatResponse struct {
	Response       string
	ProcessingTime model.Millis
}

// AIBackend is the port for the remote AI platform. Every method issues
// exactly one request; none retries.
type AIBackend interface {
	Generate(ctx context.Context, prompt string, params GenerationParameters) (GenerateResponse, error)
	Classify(ctx context.Context, img ImageUpload, useAlternateModel bool) (ClassifyResponse, error)
	Detect(ctx context.Context, img ImageUpload, useAlternateModel bool) (DetectResponse, error)
	Segment(ctx context.Context, img ImageUpload, useAlternateModel bool) (SegmentResponse, error)
	Chat(ctx context.Context, message string) (ChatResponse, error)
	ChatHistory(ctx context.Context) ([]model.ChatMessage, error)
	RecentJobs(ctx context.Context) ([]model.AIJob, error)
}
