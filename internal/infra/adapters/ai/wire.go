package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-showcase-client/internal/domain/model"
)

// The backend speaks snake_case (job_id, processing_time, service_type) while
// some deployments put a camelCase proxy in front; every wire type accepts both.

type flexTime struct{ time.Time }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

type jobRef struct {
	JobID       model.ID     `json:"jobId"`
	JobIDSnake  model.ID     `json:"job_id"`
	Millis      model.Millis `json:"processingTime"`
	MillisSnake model.Millis `json:"processing_time"`
}

func (r jobRef) id() model.ID {
	if r.JobID != "" {
		return r.JobID
	}
	return r.JobIDSnake
}

func (r jobRef) processingTime() model.Millis {
	if r.Millis != 0 {
		return r.Millis
	}
	return r.MillisSnake
}

type generateWire struct {
	jobRef
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

type classifyWire struct {
	jobRef
	Class        string              `json:"class"`
	ClassName    string              `json:"class_name"`
	Confidence   float64             `json:"confidence"`
	Description  string              `json:"description"`
	Alternatives []model.Alternative `json:"alternatives"`
}

type detectWire struct {
	jobRef
	Objects []model.DetectedObject `json:"objects"`
}

type segmentWire struct {
	jobRef
	Segments []model.Segment `json:"segments"`
}

type chatWire struct {
	Response    string       `json:"response"`
	Millis      model.Millis `json:"processingTime"`
	MillisSnake model.Millis `json:"processing_time"`
}

type chatMessageWire struct {
	ID        model.ID       `json:"id"`
	Role      model.ChatRole `json:"role"`
	Content   string         `json:"content"`
	Timestamp flexTime       `json:"timestamp"`
}

type chatHistoryWire struct {
	Messages []chatMessageWire `json:"messages"`
}

type jobWire struct {
	ID               model.ID          `json:"id"`
	ServiceType      model.ServiceType `json:"serviceType"`
	ServiceTypeSnake model.ServiceType `json:"service_type"`
	Status           model.AIJobStatus `json:"status"`
	Result           json.RawMessage   `json:"result"`
	Prompt           *string           `json:"prompt"`
	CreatedAt        *flexTime         `json:"createdAt"`
	CreatedAtSnake   *flexTime         `json:"created_at"`
	Millis           model.Millis      `json:"processingTime"`
	MillisSnake      model.Millis      `json:"processing_time"`
}

type jobsWire struct {
	Jobs []jobWire `json:"jobs"`
}

// toModel converts a server job. ok is false for entries the client cannot
// interpret (unknown service type).
func (w jobWire) toModel() (model.AIJob, bool, error) {
	st := w.ServiceType
	if st == "" {
		st = w.ServiceTypeSnake
	}
	if !st.Valid() {
		return model.AIJob{}, false, nil
	}
	res, err := model.DecodeResult(st, w.Result)
	if err != nil {
		return model.AIJob{}, false, err
	}
	j := model.AIJob{
		ID:          w.ID,
		ServiceType: st,
		Status:      w.Status,
		Result:      res,
	}
	if w.Prompt != nil {
		j.Prompt = *w.Prompt
	}
	switch {
	case w.CreatedAt != nil:
		j.CreatedAt = w.CreatedAt.Time
	case w.CreatedAtSnake != nil:
		j.CreatedAt = w.CreatedAtSnake.Time
	}
	j.ProcessingTime = w.Millis
	if j.ProcessingTime == 0 {
		j.ProcessingTime = w.MillisSnake
	}
	if !j.Status.Valid() {
		j.Status = model.AIJobStatusPending
	}
	return j, true, nil
}

type errorWire struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// message extracts the human-readable text of an error body.
func (e errorWire) message() string {
	if len(e.Detail) > 0 && string(e.Detail) != "null" {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil {
			return s
		}
		// FastAPI validation errors: [{"msg": "..."}]
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(e.Detail, &list); err == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, it := range list {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		return string(e.Detail)
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
