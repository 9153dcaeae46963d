package telephony

import (
	"context"
	"errors"
)

// Provider contracts used by business logic.
//
// Rules:
// - No provider SDK or REST calls outside telephony adapters.
// - Keep request/response types provider-agnostic; vendor identifiers travel
//   back as opaque strings.

// ErrProviderUnavailable indicates the adapter is disabled or missing
// credentials. Callers degrade to a logged failure; nothing fatal.
var ErrProviderUnavailable = errors.New("telephony: provider unavailable")

// VoiceProvider places outbound calls.
type VoiceProvider interface {
	Name() string
	HealthCheck(ctx context.Context) error
	PlaceCall(ctx context.Context, req OutboundCallRequest) (OutboundCallResult, error)
}

// MessageProvider sends SMS.
type MessageProvider interface {
	Name() string
	SendSMS(ctx context.Context, req SMSRequest) (SMSResult, error)
}

// OutboundCallRequest describes one call to place.
type OutboundCallRequest struct {
	// To is the destination in E.164.
	To string `json:"to"`

	// Message is the text spoken to the patient, or the prompt handed to a
	// conversational agent, depending on the adapter.
	Message string `json:"message"`

	// PatientID is optional and used for tracking only.
	PatientID string `json:"patient_id,omitempty"`
}

// OutboundCallResult carries the provider's opaque call identifier.
type OutboundCallResult struct {
	Provider       string `json:"provider"`
	ProviderCallID string `json:"provider_call_id"`
}

type SMSRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type SMSResult struct {
	Provider          string `json:"provider"`
	ProviderMessageID string `json:"provider_message_id"`
}
