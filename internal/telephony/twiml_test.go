package telephony

import (
	"strings"
	"testing"
)

func TestRenderTwiML_SpeakAndHangup(t *testing.T) {
	var d Document
	d.Speak("Hello there.").Hangup()

	out, err := RenderTwiML(d, RenderSettings{Voice: "alice", Language: "en-US"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<Say voice="alice" language="en-US">Hello there.</Say>`) {
		t.Fatalf("missing say verb: %s", out)
	}
	if !strings.Contains(out, "<Hangup") {
		t.Fatalf("missing hangup verb: %s", out)
	}
	if !strings.HasPrefix(out, "<?xml") {
		t.Fatalf("missing xml header: %s", out)
	}
}

func TestRenderTwiML_GatherNestsPrompt(t *testing.T) {
	var d Document
	d.Speak("Main message.")
	d.Gather("Press 1 to leave a message.", "/keypress", 1, 5)
	d.Hangup()

	out, err := RenderTwiML(d, RenderSettings{Voice: "alice"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<Gather numDigits="1" action="/keypress" method="POST" timeout="5">`) {
		t.Fatalf("unexpected gather attributes: %s", out)
	}
	if !strings.Contains(out, "Press 1 to leave a message.") {
		t.Fatalf("gather prompt missing: %s", out)
	}
}

func TestRenderTwiML_Redirect(t *testing.T) {
	var d Document
	d.Redirect("https://api.example.com/handoff?x=1")

	out, err := RenderTwiML(d, RenderSettings{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<Redirect method="POST">`) {
		t.Fatalf("redirect verb missing: %s", out)
	}
	if !strings.Contains(out, "https://api.example.com/handoff?x=1") {
		t.Fatalf("redirect url missing: %s", out)
	}
}

func TestRenderTwiML_RejectsUnterminated(t *testing.T) {
	var d Document
	d.Speak("No ending.")
	if _, err := RenderTwiML(d, RenderSettings{}); err == nil {
		t.Fatalf("expected error for unterminated document")
	}
	if _, err := RenderTwiML(Document{}, RenderSettings{}); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestRenderTwiML_RejectsEmptySpeakText(t *testing.T) {
	var d Document
	d.Speak("  ").Hangup()
	if _, err := RenderTwiML(d, RenderSettings{}); err == nil {
		t.Fatalf("expected error for empty speak text")
	}
}

func TestDocumentTerminated(t *testing.T) {
	var d Document
	if d.Terminated() {
		t.Fatalf("empty document is not terminated")
	}
	d.Speak("x")
	if d.Terminated() {
		t.Fatalf("speak does not terminate")
	}
	d.Hangup()
	if !d.Terminated() {
		t.Fatalf("hangup terminates")
	}

	var r Document
	r.Redirect("https://example.com")
	if !r.Terminated() {
		t.Fatalf("redirect terminates")
	}
}
