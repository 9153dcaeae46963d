package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
)

// Minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include primitives we need at the adapter boundary.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName   xml.Name `xml:"Gather"`
	NumDigits int      `xml:"numDigits,attr,omitempty"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	Timeout   int      `xml:"timeout,attr,omitempty"`
	Say       *twimlSay
}

type twimlRecord struct {
	XMLName   xml.Name `xml:"Record"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	MaxLength int      `xml:"maxLength,attr,omitempty"`
}

// RenderSettings carries the voice attributes applied to all spoken verbs.
type RenderSettings struct {
	Voice    string
	Language string
}

// RenderTwiML maps a Document to TwiML.
// It enforces the termination invariant: an empty or unterminated document is
// an error rather than a response that would leave the call open.
func RenderTwiML(doc Document, s RenderSettings) (string, error) {
	if !doc.Terminated() {
		return "", errors.New("telephony: document must terminate in hangup or redirect")
	}

	var r twimlResponse
	for _, in := range doc.Instructions {
		switch in.Kind {
		case InstructionSpeak:
			if strings.TrimSpace(in.Text) == "" {
				return "", errors.New("telephony: speak instruction requires text")
			}
			r.Verbs = append(r.Verbs, twimlSay{Voice: s.Voice, Language: s.Language, Text: in.Text})
		case InstructionGather:
			g := twimlGather{
				NumDigits: in.NumDigits,
				Action:    in.URL,
				Method:    in.Method,
				Timeout:   in.TimeoutSeconds,
			}
			if strings.TrimSpace(in.Text) != "" {
				g.Say = &twimlSay{Voice: s.Voice, Language: s.Language, Text: in.Text}
			}
			r.Verbs = append(r.Verbs, g)
		case InstructionRecord:
			r.Verbs = append(r.Verbs, twimlRecord{Action: in.URL, Method: in.Method, MaxLength: in.MaxLengthSeconds})
		case InstructionRedirect:
			if strings.TrimSpace(in.URL) == "" {
				return "", errors.New("telephony: redirect instruction requires a url")
			}
			r.Verbs = append(r.Verbs, twimlRedirect{Method: in.Method, URL: in.URL})
		case InstructionHangup:
			r.Verbs = append(r.Verbs, twimlHangup{})
		default:
			return "", errors.New("telephony: unknown instruction kind")
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
