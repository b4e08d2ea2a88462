package model

import "time"

type ServiceBadge string

const (
	ServiceBadgeActive ServiceBadge = "active"
	ServiceBadgeReady  ServiceBadge = "ready"
)

// ServiceChat is the chat capability id. It is not a ServiceType because chat
// never produces a Job.
const ServiceChat = "chat"

// AIService is read-only catalog metadata for one capability.
type AIService struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	AvgTime     string       `json:"avgTime"`
	Status      ServiceBadge `json:"status"`

	// Estimate feeds ProcessingStatus.EstimatedTime. It is a UI hint only.
	Estimate time.Duration `json:"-"`
}

var catalog = []AIService{
	{
		ID:          string(ServiceGenerate),
		Name:        "Image Generation",
		Description: "Create stunning images from text prompts using advanced AI models",
		Icon:        "fas fa-palette",
		AvgTime:     "~30s avg",
		Status:      ServiceBadgeActive,
		Estimate:    30 * time.Second,
	},
	{
		ID:          string(ServiceClassify),
		Name:        "Classification",
		Description: "Identify and categorize objects in images with confidence scores",
		Icon:        "fas fa-search",
		AvgTime:     "~2s avg",
		Status:      ServiceBadgeReady,
		Estimate:    2 * time.Second,
	},
	{
		ID:          string(ServiceDetect),
		Name:        "Object Detection",
		Description: "Locate and identify multiple objects with bounding boxes",
		Icon:        "fas fa-bullseye",
		AvgTime:     "~5s avg",
		Status:      ServiceBadgeReady,
		Estimate:    5 * time.Second,
	},
	{
		ID:          string(ServiceSegment),
		Name:        "Segmentation",
		Description: "Precise pixel-level object segmentation and masking",
		Icon:        "fas fa-cut",
		AvgTime:     "~8s avg",
		Status:      ServiceBadgeReady,
		Estimate:    8 * time.Second,
	},
	{
		ID:          ServiceChat,
		Name:        "AI Chatbot",
		Description: "Intelligent conversations with context-aware responses",
		Icon:        "fas fa-comments",
		AvgTime:     "~1s avg",
		Status:      ServiceBadgeReady,
		Estimate:    time.Second,
	},
}

// Catalog returns a copy of the static service catalog.
func Catalog() []AIService {
	out := make([]AIService, len(catalog))
	copy(out, catalog)
	return out
}

// LookupService finds a catalog entry by id.
func LookupService(id string) (AIService, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return AIService{}, false
}
