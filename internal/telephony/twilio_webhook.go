package telephony

import (
	"net/http"
	"strings"
)

// TwilioVoiceForm captures the subset of voice webhook fields we care about.
// Twilio sends application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/voice/twiml
//
// Keep it minimal and provider-adapter-only.
// Business decisions (which message to speak) are not made here.

type TwilioVoiceForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	Direction  string
	CallStatus string
	CallerName string

	// Digits is set on gather callbacks (legacy DTMF flow).
	Digits string

	// RecordingUrl is set on recording callbacks (legacy flow).
	RecordingURL string
}

func ParseTwilioVoiceForm(r *http.Request) (TwilioVoiceForm, error) {
	if err := r.ParseForm(); err != nil {
		return TwilioVoiceForm{}, err
	}
	f := TwilioVoiceForm{
		CallSid:      r.PostFormValue("CallSid"),
		AccountSid:   r.PostFormValue("AccountSid"),
		From:         trimCaller(r.PostFormValue("From")),
		To:           trimCaller(r.PostFormValue("To")),
		Direction:    r.PostFormValue("Direction"),
		CallStatus:   r.PostFormValue("CallStatus"),
		CallerName:   r.PostFormValue("CallerName"),
		Digits:       r.PostFormValue("Digits"),
		RecordingURL: r.PostFormValue("RecordingUrl"),
	}
	return f, nil
}

func trimCaller(s string) string {
	// Twilio sometimes sends "anonymous" or empty; keep as-is beyond trimming.
	return strings.TrimSpace(s)
}
