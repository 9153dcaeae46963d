package twilioclient

import (
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

const (
	defaultBaseURL   = "https://api.twilio.com/2010-04-01"
	defaultUserAgent = "carecall-voice/0.1"
)

// Config controls how the Twilio client behaves.
type Config struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client wraps the Twilio REST endpoints used for voice calls and SMS.
// It deliberately avoids the vendor SDK; only two resources are needed.
type Client struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, errors.New("twilioclient: account sid is required")
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("twilioclient: auth token is required")
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
			timeout = 10 * time.Second
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
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// CallRequest creates one outbound call. Exactly one of TwiML or CallbackURL
// must be set: TwiML executes inline, CallbackURL makes Twilio fetch the call
// document from our webhook.
type CallRequest struct {
	To   string
	From string

	TwiML       string
	CallbackURL string
}

func (r CallRequest) validate() error {
	if strings.TrimSpace(r.To) == "" {
		return errors.New("twilioclient: to number required")
	}
	if strings.TrimSpace(r.From) == "" {
		return errors.New("twilioclient: from number required")
	}
	hasTwiML := strings.TrimSpace(r.TwiML) != ""
	hasURL := strings.TrimSpace(r.CallbackURL) != ""
	if hasTwiML == hasURL {
		return errors.New("twilioclient: exactly one of twiml or callback url required")
	}
	return nil
}

// CallResponse is the subset of Twilio's call resource we consume.
type CallResponse struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
	From   string `json:"from"`
}

// CreateCall places an outbound call.
func (c *Client) CreateCall(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	if strings.TrimSpace(req.TwiML) != "" {
		form.Set("Twiml", req.TwiML)
	} else {
		form.Set("Url", req.CallbackURL)
		form.Set("Method", http.MethodPost)
	}
	data, err := c.invoke(ctx, fmt.Sprintf("/Accounts/%s/Calls.json", c.accountSID), form)
	if err != nil {
		return nil, err
	}
	var out CallResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("twilioclient: decode call response: %w", err)
	}
	return &out, nil
}

// MessageRequest sends one SMS.
type MessageRequest struct {
	To   string
	From string
	Body string
}

func (r MessageRequest) validate() error {
	if strings.TrimSpace(r.To) == "" {
		return errors.New("twilioclient: to number required")
	}
	if strings.TrimSpace(r.From) == "" {
		return errors.New("twilioclient: from number required")
	}
	if strings.TrimSpace(r.Body) == "" {
		return errors.New("twilioclient: message body required")
	}
	return nil
}

// MessageResponse is the subset of Twilio's message resource we consume.
type MessageResponse struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

// SendMessage sends an SMS.
func (c *Client) SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Body", req.Body)
	data, err := c.invoke(ctx, fmt.Sprintf("/Accounts/%s/Messages.json", c.accountSID), form)
	if err != nil {
		return nil, err
	}
	var out MessageResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("twilioclient: decode message response: %w", err)
	}
	return &out, nil
}

// APIError is a non-2xx response from Twilio.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilioclient: api error status=%d code=%d message=%q", e.StatusCode, e.Code, e.Message)
}

func (c *Client) invoke(ctx context.Context, path string, form url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	body := form.Encode()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("twilioclient: build request: %w", err)
		}
		req.SetBasicAuth(c.accountSID, c.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == c.maxRetries {
				return nil, fmt.Errorf("twilioclient: http error: %w", err)
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
			return nil, fmt.Errorf("twilioclient: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		apiErr.StatusCode = resp.StatusCode
		if resp.StatusCode < 500 || attempt == c.maxRetries {
			return nil, apiErr
		}
		lastErr = apiErr
		c.logRetry(path, attempt, resp.StatusCode, apiErr)
		if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("twilioclient: retries exhausted: %w", lastErr)
}

func (c *Client) logRetry(path string, attempt, status int, err error) {
	c.logger.Warn("twilio request retry",
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
