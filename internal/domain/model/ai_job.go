package model

import (
	"time"
)

type ServiceType string

const (
	ServiceGenerate ServiceType = "generate"
	ServiceClassify ServiceType = "classify"
	ServiceDetect   ServiceType = "detect"
	ServiceSegment  ServiceType = "segment"
)

// Valid reports whether s is one of the job-producing capabilities. Chat is
// a capability too but never produces a Job.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceGenerate, ServiceClassify, ServiceDetect, ServiceSegment:
		return true
	}
	return false
}

type AIJobStatus string

const (
	AIJobStatusPending    AIJobStatus = "pending"
	AIJobStatusProcessing AIJobStatus = "processing"
	AIJobStatusCompleted  AIJobStatus = "completed"
	// AIJobStatusFailed is only ever produced server-side; it reaches the client
	// through job-history hydration.
	AIJobStatusFailed AIJobStatus = "failed"
)

func (s AIJobStatus) Valid() bool {
	switch s {
	case AIJobStatusPending, AIJobStatusProcessing, AIJobStatusCompleted, AIJobStatusFailed:
		return true
	}
	return false
}

// AIJob is one completed or in-flight service invocation.
// Result must be read according to ServiceType.
type AIJob struct {
	ID             ID          `json:"id"`
	ServiceType    ServiceType `json:"serviceType"`
	Status         AIJobStatus `json:"status"`
	Result         JobResult   `json:"result,omitempty"`
	Prompt         string      `json:"prompt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	ProcessingTime Millis      `json:"processingTime,omitempty"`
}

// Clone returns a deep copy; result slices are not shared.
func (j AIJob) Clone() AIJob {
	if j.Result != nil {
		j.Result = j.Result.clone()
	}
	return j
}

// AIJobPatch carries the fields UpdateJob merges. Nil fields are left alone.
type AIJobPatch struct {
	Status         *AIJobStatus
	Result         JobResult
	Prompt         *string
	ProcessingTime *Millis
}

// Apply merges p into j.
func (p AIJobPatch) Apply(j *AIJob) {
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Result != nil {
		j.Result = p.Result.clone()
	}
	if p.Prompt != nil {
		j.Prompt = *p.Prompt
	}
	if p.ProcessingTime != nil {
		j.ProcessingTime = *p.ProcessingTime
	}
}
