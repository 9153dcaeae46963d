package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call-log metrics.
type CallsSummaryRequest struct {
	Range    TimeRange `json:"range"`
	CallType string    `json:"call_type,omitempty"`
}

type CallsSummary struct {
	CallType string `json:"call_type,omitempty"`

	TotalCalls      int `json:"total_calls"`
	ScheduledCalls  int `json:"scheduled_calls"`
	QueuedCalls     int `json:"queued_calls"`
	InProgressCalls int `json:"in_progress_calls"`
	CompletedCalls  int `json:"completed_calls"`
	FailedCalls     int `json:"failed_calls"`

	ByCallType map[string]int `json:"by_call_type"`

	CompletionRate float64 `json:"completion_rate"`
}

// PatientActivityRequest requests the recent call history for one patient.
type PatientActivityRequest struct {
	PatientID string    `json:"patient_id"`
	Range     TimeRange `json:"range"`
}

type PatientActivity struct {
	PatientID      string     `json:"patient_id"`
	TotalCalls     int        `json:"total_calls"`
	CompletedCalls int        `json:"completed_calls"`
	FailedCalls    int        `json:"failed_calls"`
	LastCompleted  *time.Time `json:"last_completed,omitempty"`
}
