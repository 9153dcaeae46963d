package telephony

import (
	"context"
	"fmt"
	"strings"

	"carecall-platform/internal/twilioclient"
)

// TwilioProvider adapts the Twilio REST client to the provider contracts.
//
// Two call modes, matching how the service is deployed:
// - with a public webhook base URL, Twilio fetches the call document from
//   /webhooks/twilio/voice;
// - without one (local testing), the call document is rendered inline and
//   sent with the call request.
type TwilioProvider struct {
	client *twilioclient.Client
	opts   TwilioProviderOptions
}

type TwilioProviderOptions struct {
	FromNumber     string
	WebhookBaseURL string
	Render         RenderSettings
}

// NewTwilioProvider accepts a nil client; the adapter then reports
// ErrProviderUnavailable instead of failing process startup.
func NewTwilioProvider(client *twilioclient.Client, opts TwilioProviderOptions) *TwilioProvider {
	return &TwilioProvider{client: client, opts: opts}
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) HealthCheck(ctx context.Context) error {
	if p.client == nil {
		return ErrProviderUnavailable
	}
	return nil
}

func (p *TwilioProvider) PlaceCall(ctx context.Context, req OutboundCallRequest) (OutboundCallResult, error) {
	if p.client == nil || p.opts.FromNumber == "" {
		return OutboundCallResult{}, ErrProviderUnavailable
	}

	call := twilioclient.CallRequest{To: req.To, From: p.opts.FromNumber}
	if p.opts.WebhookBaseURL != "" {
		call.CallbackURL = strings.TrimRight(p.opts.WebhookBaseURL, "/") + "/webhooks/twilio/voice"
	} else {
		twiml, err := RenderTwiML(messageDocument(req.Message), p.opts.Render)
		if err != nil {
			return OutboundCallResult{}, fmt.Errorf("twilio: build call document: %w", err)
		}
		call.TwiML = twiml
	}

	resp, err := p.client.CreateCall(ctx, call)
	if err != nil {
		return OutboundCallResult{}, fmt.Errorf("twilio: create call: %w", err)
	}
	return OutboundCallResult{Provider: p.Name(), ProviderCallID: resp.Sid}, nil
}

func (p *TwilioProvider) SendSMS(ctx context.Context, req SMSRequest) (SMSResult, error) {
	if p.client == nil || p.opts.FromNumber == "" {
		return SMSResult{}, ErrProviderUnavailable
	}
	resp, err := p.client.SendMessage(ctx, twilioclient.MessageRequest{
		To:   req.To,
		From: p.opts.FromNumber,
		Body: req.Body,
	})
	if err != nil {
		return SMSResult{}, fmt.Errorf("twilio: send message: %w", err)
	}
	return SMSResult{Provider: p.Name(), ProviderMessageID: resp.Sid}, nil
}

// messageDocument wraps a plain spoken message into a terminated document.
// Any "Press 1" suffix from message templates predating the DTMF retirement
// is stripped before speaking.
func messageDocument(message string) Document {
	if i := strings.Index(message, "\n\nPress 1"); i >= 0 {
		message = message[:i]
	}
	message = strings.TrimSpace(message)

	var d Document
	d.Speak(message).Hangup()
	return d
}
