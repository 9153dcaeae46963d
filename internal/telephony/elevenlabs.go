package telephony

import (
	"context"
	"fmt"

	"carecall-platform/internal/elevenlabs"
)

// ElevenLabsProvider adapts the conversational-AI client to the voice
// provider contract. The agent handles speech and turn-taking; we hand it the
// destination number and the prompt built from the patient's call request.
type ElevenLabsProvider struct {
	client *elevenlabs.Client
}

// NewElevenLabsProvider accepts a nil client; the adapter then reports
// ErrProviderUnavailable instead of failing process startup.
func NewElevenLabsProvider(client *elevenlabs.Client) *ElevenLabsProvider {
	return &ElevenLabsProvider{client: client}
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

func (p *ElevenLabsProvider) HealthCheck(ctx context.Context) error {
	if p.client == nil {
		return ErrProviderUnavailable
	}
	return nil
}

func (p *ElevenLabsProvider) PlaceCall(ctx context.Context, req OutboundCallRequest) (OutboundCallResult, error) {
	if p.client == nil {
		return OutboundCallResult{}, ErrProviderUnavailable
	}
	resp, err := p.client.OutboundCall(ctx, elevenlabs.OutboundCallRequest{
		To:     req.To,
		Prompt: req.Message,
	})
	if err != nil {
		return OutboundCallResult{}, fmt.Errorf("elevenlabs: outbound call: %w", err)
	}

	id := resp.CallSid
	if id == "" {
		// The vendor occasionally omits the sid while still placing the call.
		id = resp.ConversationID
	}
	return OutboundCallResult{Provider: p.Name(), ProviderCallID: id}, nil
}
