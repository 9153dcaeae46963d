package telephony

// Document is an ordered sequence of call-control instructions produced for a
// single inbound or outbound call. It is transient: rendered to the provider's
// markup and returned to the HTTP layer, never stored.
//
// Invariant: a document handed to a renderer always terminates in a
// call-ending instruction (hangup or redirect). The builder helpers below keep
// that invariant; RenderTwiML rejects documents that violate it.

type Document struct {
	Instructions []Instruction
}

type InstructionKind string

const (
	InstructionSpeak    InstructionKind = "speak"
	InstructionGather   InstructionKind = "gather"
	InstructionRecord   InstructionKind = "record"
	InstructionRedirect InstructionKind = "redirect"
	InstructionHangup   InstructionKind = "hangup"
)

// Instruction is one provider-agnostic call-control step.
// Only the fields relevant to the Kind are set.
type Instruction struct {
	Kind InstructionKind

	// Speak / Gather prompt
	Text string

	// Redirect / Gather / Record callback target
	URL    string
	Method string

	// Gather
	NumDigits      int
	TimeoutSeconds int

	// Record
	MaxLengthSeconds int
}

// Speak appends a spoken line.
func (d *Document) Speak(text string) *Document {
	d.Instructions = append(d.Instructions, Instruction{Kind: InstructionSpeak, Text: text})
	return d
}

// Gather appends a digit-collection step with a spoken prompt.
func (d *Document) Gather(prompt, actionURL string, numDigits, timeoutSeconds int) *Document {
	d.Instructions = append(d.Instructions, Instruction{
		Kind:           InstructionGather,
		Text:           prompt,
		URL:            actionURL,
		Method:         "POST",
		NumDigits:      numDigits,
		TimeoutSeconds: timeoutSeconds,
	})
	return d
}

// Record appends a recording step.
func (d *Document) Record(actionURL string, maxLengthSeconds int) *Document {
	d.Instructions = append(d.Instructions, Instruction{
		Kind:             InstructionRecord,
		URL:              actionURL,
		Method:           "POST",
		MaxLengthSeconds: maxLengthSeconds,
	})
	return d
}

// Redirect appends a call-ending redirect to an external handler.
func (d *Document) Redirect(url string) *Document {
	d.Instructions = append(d.Instructions, Instruction{Kind: InstructionRedirect, URL: url, Method: "POST"})
	return d
}

// Hangup appends the call-ending hangup instruction.
func (d *Document) Hangup() *Document {
	d.Instructions = append(d.Instructions, Instruction{Kind: InstructionHangup})
	return d
}

// Terminated reports whether the document ends the call.
// Redirect counts as terminal: control passes to the redirect target.
func (d Document) Terminated() bool {
	if len(d.Instructions) == 0 {
		return false
	}
	switch d.Instructions[len(d.Instructions)-1].Kind {
	case InstructionHangup, InstructionRedirect:
		return true
	default:
		return false
	}
}
