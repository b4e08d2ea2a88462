package model

// ProcessingStatus describes whether an invocation is in flight.
// A zero CurrentStep/TotalSteps/EstimatedTime means unset. Once IsProcessing
// is false the other fields are leftovers of the previous run and carry no
// meaning; read them through Progress.
type ProcessingStatus struct {
	IsProcessing  bool   `json:"isProcessing"`
	Message       string `json:"message,omitempty"`
	CurrentStep   int    `json:"currentStep,omitempty"`
	TotalSteps    int    `json:"totalSteps,omitempty"`
	EstimatedTime Millis `json:"estimatedTime,omitempty"`
}

// Idle is the status every invocation returns to.
func Idle() ProcessingStatus { return ProcessingStatus{IsProcessing: false} }

// Progress returns step progress only while processing and when both step
// fields are set.
func (p ProcessingStatus) Progress() (step, total int, ok bool) {
	if !p.IsProcessing || p.CurrentStep <= 0 || p.TotalSteps <= 0 {
		return 0, 0, false
	}
	return p.CurrentStep, p.TotalSteps, true
}
