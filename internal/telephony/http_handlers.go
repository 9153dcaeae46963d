package telephony

import (
	"context"
	"net/http"

	"carecall-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DocumentBuilder produces the call-control document for an inbound caller.
// Implemented by internal/inbound; injected here so webhook code stays free of
// patient lookups and template selection.
type DocumentBuilder interface {
	Build(ctx context.Context, callerNumber string) Document
}

// TwilioWebhookHandler converts Twilio voice webhooks to internal types,
// delegates document construction to the injected builder, and writes TwiML.
//
// No business logic here.
type TwilioWebhookHandler struct {
	Builder DocumentBuilder
	Render  RenderSettings
}

func (h TwilioWebhookHandler) HandleInboundCall(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Builder == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "inbound builder not configured"})
		return
	}

	form, err := ParseTwilioVoiceForm(c.Request)
	if err != nil {
		log.Warn("twilio webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	doc := h.Builder.Build(c.Request.Context(), form.From)
	h.writeDocument(c, doc)
}

// HandleKeypress answers gather callbacks from the retired DTMF flow.
// Callers on old in-flight calls still hit this endpoint, so it stays routable
// and always answers with the retirement notice.
func (h TwilioWebhookHandler) HandleKeypress(c *gin.Context) {
	h.writeDocument(c, retiredFeatureDocument())
}

// HandleRecording answers recording callbacks from the retired DTMF flow.
func (h TwilioWebhookHandler) HandleRecording(c *gin.Context) {
	log := logger.FromGin(c)
	if form, err := ParseTwilioVoiceForm(c.Request); err == nil && form.RecordingURL != "" {
		log.Info("discarding recording from retired flow", "call_sid", form.CallSid)
	}
	h.writeDocument(c, retiredFeatureDocument())
}

func (h TwilioWebhookHandler) writeDocument(c *gin.Context, doc Document) {
	log := logger.FromGin(c)

	twiml, err := RenderTwiML(doc, h.Render)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}

	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}

func retiredFeatureDocument() Document {
	var d Document
	d.Speak("This feature is no longer available. Thank you for calling. Goodbye.").Hangup()
	return d
}
