package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Config controls how the ElevenLabs conversational-AI client behaves.
type Config struct {
	BaseURL string
	APIKey  string

	// AgentID and PhoneNumberID identify the conversational agent and the
	// Twilio number imported into ElevenLabs that it answers and dials from.
	AgentID       string
	PhoneNumberID string

	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client wraps the convai telephony endpoints.
type Client struct {
	apiKey        string
	agentID       string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
	maxRetries    int
	backoff       time.Duration
	logger        *slog.Logger
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("elevenlabs: api key is required")
	}
	if strings.TrimSpace(cfg.AgentID) == "" {
		return nil, errors.New("elevenlabs: agent id is required")
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, errors.New("elevenlabs: phone number id is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:        cfg.APIKey,
		agentID:       cfg.AgentID,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       baseURL,
		httpClient:    httpClient,
		maxRetries:    maxRetries,
		backoff:       backoff,
		logger:        logger,
	}, nil
}

// OutboundCallRequest asks the agent to dial a patient.
type OutboundCallRequest struct {
	To string

	// Prompt is handed to the agent as metadata.custom_prompt and becomes its
	// opening context for the conversation.
	Prompt string
}

// OutboundCallResponse carries the vendor identifiers for the placed call.
type OutboundCallResponse struct {
	Success        bool   `json:"success"`
	CallSid        string `json:"call_sid"`
	ConversationID string `json:"conversation_id"`
}

// OutboundCall places an agent call through the convai Twilio bridge.
func (c *Client) OutboundCall(ctx context.Context, req OutboundCallRequest) (*OutboundCallResponse, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, errors.New("elevenlabs: to number required")
	}
	payload := struct {
		AgentID            string            `json:"agent_id"`
		AgentPhoneNumberID string            `json:"agent_phone_number_id"`
		ToNumber           string            `json:"to_number"`
		Metadata           map[string]string `json:"metadata,omitempty"`
	}{
		AgentID:            c.agentID,
		AgentPhoneNumberID: c.phoneNumberID,
		ToNumber:           req.To,
	}
	if strings.TrimSpace(req.Prompt) != "" {
		payload.Metadata = map[string]string{"custom_prompt": req.Prompt}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal outbound call: %w", err)
	}

	data, err := c.invoke(ctx, "/v1/convai/twilio/outbound-call", body)
	if err != nil {
		return nil, err
	}
	var out OutboundCallResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("elevenlabs: decode outbound call response: %w", err)
	}
	return &out, nil
}

// InboundCallURL builds the convai webhook URL an inbound call is redirected
// to. initialMessage rides along as agent context when non-empty.
func (c *Client) InboundCallURL(initialMessage string) string {
	q := url.Values{}
	q.Set("agent_id", c.agentID)
	q.Set("phone_number_id", c.phoneNumberID)
	if strings.TrimSpace(initialMessage) != "" {
		q.Set("context", initialMessage)
		q.Set("initial_message", initialMessage)
	}
	return c.baseURL + "/v1/convai/twilio/inbound-call?" + q.Encode()
}

// APIError is a non-2xx response from ElevenLabs.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: api error status=%d detail=%q", e.StatusCode, e.Detail)
}

func (c *Client) invoke(ctx context.Context, path string, body []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("elevenlabs: build request: %w", err)
		}
		req.Header.Set("xi-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == c.maxRetries {
				return nil, fmt.Errorf("elevenlabs: http error: %w", err)
			}
			lastErr = err
			c.logRetry(path, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("elevenlabs: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(data))}
		if resp.StatusCode < 500 || attempt == c.maxRetries {
			return nil, apiErr
		}
		lastErr = apiErr
		c.logRetry(path, attempt, resp.StatusCode, apiErr)
		if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("elevenlabs: retries exhausted: %w", lastErr)
}

func (c *Client) logRetry(path string, attempt, status int, err error) {
	c.logger.Warn("elevenlabs request retry",
		"path", path,
		"attempt", attempt+1,
		"status", status,
		"err", err,
	)
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	d := c.backoff * time.Duration(attempt+1)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
