package calllog

import "time"

// CallLog is one attempted or scheduled patient call.
//
// Provider-specific identifiers (Twilio call sid, ElevenLabs conversation id)
// are stored as the opaque provider_call_id; the domain model stays
// provider-agnostic.
type CallLog struct {
	ID        string `json:"id" db:"id"`
	PatientID string `json:"patient_id" db:"patient_id"`

	// CallType mirrors the message category that produced the call
	// (medication_reminder, weekly_checkin, ...), or a free-form label for
	// test calls.
	CallType string `json:"call_type" db:"call_type"`

	Status Status `json:"status" db:"status"`

	MessageText string `json:"message_text" db:"message_text"`

	Provider       string `json:"provider,omitempty" db:"provider"`
	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`

	ScheduledTime time.Time  `json:"scheduled_time" db:"scheduled_time"`
	CompletedTime *time.Time `json:"completed_time,omitempty" db:"completed_time"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusQueued, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}
