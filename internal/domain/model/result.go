package model

import (
	"encoding/json"
	"fmt"
)

// JobResult is the service-specific payload of a Job. The concrete type is
// fixed by the job's ServiceType.
type JobResult interface {
	Service() ServiceType
	clone() JobResult
}

type GenerateResult struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt,omitempty"`
}

func (GenerateResult) Service() ServiceType { return ServiceGenerate }
func (r GenerateResult) clone() JobResult   { return r }

type Alternative struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type ClassifyResult struct {
	Class        string        `json:"class"`
	Confidence   float64       `json:"confidence"`
	Description  string        `json:"description,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

func (ClassifyResult) Service() ServiceType { return ServiceClassify }
func (r ClassifyResult) clone() JobResult {
	r.Alternatives = append([]Alternative(nil), r.Alternatives...)
	return r
}

// BBox is expressed in percent of the image width/height, anchored top-left,
// so overlays scale with the rendered image. Decoding clamps every component
// into [0, 100], so a box read from the backend never overflows the overlay
// and may not re-encode to the exact input.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MarshalJSON emits the backend's [x, y, w, h] array form.
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.Width, b.Height})
}

// UnmarshalJSON reads [x, y, w, h] and clamps each value into [0, 100].
func (b *BBox) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if len(arr) != 4 {
		return fmt.Errorf("bbox: want 4 values, got %d", len(arr))
	}
	b.X, b.Y, b.Width, b.Height = clampPct(arr[0]), clampPct(arr[1]), clampPct(arr[2]), clampPct(arr[3])
	return nil
}

func clampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

type DetectedObject struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}

type DetectResult struct {
	Objects []DetectedObject `json:"objects"`
}

func (DetectResult) Service() ServiceType { return ServiceDetect }
func (r DetectResult) clone() JobResult {
	r.Objects = append([]DetectedObject(nil), r.Objects...)
	return r
}

// Segment is one named mask region. Mask is an opaque backend encoding
// (e.g. a CSS polygon or RLE string).
type Segment struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Mask       string  `json:"mask"`
}

type SegmentResult struct {
	Segments []Segment `json:"segments"`
}

func (SegmentResult) Service() ServiceType { return ServiceSegment }
func (r SegmentResult) clone() JobResult {
	r.Segments = append([]Segment(nil), r.Segments...)
	return r
}

// DecodeResult interprets raw according to st. An empty or null payload
// yields a nil result.
func DecodeResult(st ServiceType, raw json.RawMessage) (JobResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch st {
	case ServiceGenerate:
		var r GenerateResult
		err := json.Unmarshal(raw, &r)
		return r, err
	case ServiceClassify:
		var r ClassifyResult
		err := json.Unmarshal(raw, &r)
		return r, err
	case ServiceDetect:
		var r DetectResult
		err := json.Unmarshal(raw, &r)
		return r, err
	case ServiceSegment:
		var r SegmentResult
		err := json.Unmarshal(raw, &r)
		return r, err
	}
	return nil, fmt.Errorf("unknown service type %q", st)
}

// UnmarshalJSON decodes Result by looking at serviceType first.
func (j *AIJob) UnmarshalJSON(data []byte) error {
	type alias AIJob
	aux := struct {
		*alias
		Result json.RawMessage `json:"result"`
	}{alias: (*alias)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	res, err := DecodeResult(j.ServiceType, aux.Result)
	if err != nil {
		return fmt.Errorf("job %s result: %w", j.ID, err)
	}
	j.Result = res
	return nil
}
