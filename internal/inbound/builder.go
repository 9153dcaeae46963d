package inbound

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carecall-platform/internal/patients"
	"carecall-platform/internal/telephony"
)

// ResponseBuilder constructs the call-control document for an inbound caller.
//
// Contract:
// - Every input produces a valid, terminated document; there is no failure
//   path. Unknown callers and malformed schedules degrade to greetings.
// - Message selection: the caller's first stored schedule entry strictly
//   after now wins (stored order, not sorted); otherwise a personalized
//   fallback; unknown caller gets the generic greeting.
// - When a conversational agent is attached, the document redirects the call
//   to the agent with the selected message as its opening context.

// PatientLookup resolves a caller's phone number to a patient record.
type PatientLookup interface {
	GetByPhone(ctx context.Context, phone string) (patients.Patient, error)
}

// AgentRedirector builds the conversational agent's inbound webhook URL.
type AgentRedirector interface {
	InboundCallURL(initialMessage string) string
}

type ResponseBuilder struct {
	Patients PatientLookup

	// Agent is nil when the conversational provider is disabled; the builder
	// then speaks the message itself and hangs up.
	Agent AgentRedirector

	// OrgName is spoken in greetings and closings.
	OrgName string

	// EnableDTMF re-enables the legacy "press 1" gather between the message
	// and the closing line. KeypressURL is its callback.
	EnableDTMF  bool
	KeypressURL string

	Now func() time.Time
}

// Build produces the document for one inbound call.
func (b ResponseBuilder) Build(ctx context.Context, callerNumber string) telephony.Document {
	message := b.selectMessage(ctx, callerNumber)

	if b.Agent != nil {
		var d telephony.Document
		d.Redirect(b.Agent.InboundCallURL(message))
		return d
	}

	var d telephony.Document
	d.Speak(message)
	if b.EnableDTMF && b.KeypressURL != "" {
		d.Gather("Press 1 to leave a message.", b.KeypressURL, 1, 5)
	}
	d.Speak(fmt.Sprintf("Thank you for calling %s. Goodbye.", b.orgName()))
	d.Hangup()
	return d
}

func (b ResponseBuilder) selectMessage(ctx context.Context, callerNumber string) string {
	callerNumber = strings.TrimSpace(callerNumber)

	var p patients.Patient
	found := false
	if b.Patients != nil && callerNumber != "" {
		if got, err := b.Patients.GetByPhone(ctx, callerNumber); err == nil {
			p = got
			found = true
		}
	}
	if !found {
		return fmt.Sprintf("Hello, this is %s. Thank you for calling.", b.orgName())
	}

	schedule := patients.ParseSchedule(p.CallSchedule)
	if next, ok := patients.NextUpcoming(schedule, b.now()); ok {
		if text := strings.TrimSpace(next.MessageText); text != "" {
			return text
		}
		return fmt.Sprintf("Hello, this is %s.", b.orgName())
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Patient"
	}
	return fmt.Sprintf("Hello %s, this is %s. Thank you for your call.", name, b.orgName())
}

func (b ResponseBuilder) orgName() string {
	if b.OrgName != "" {
		return b.OrgName
	}
	return "CareCall"
}

func (b ResponseBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
