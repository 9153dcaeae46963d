package twilioclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		AccountSID: "AC123",
		AuthToken:  "token",
		BaseURL:    srv.URL,
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestCreateCall_InlineTwiML(t *testing.T) {
	var gotPath, gotTwiml, gotTo string
	var gotUser, gotPass string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotTwiml = r.PostFormValue("Twiml")
		gotTo = r.PostFormValue("To")
		_ = json.NewEncoder(w).Encode(CallResponse{Sid: "CA1", Status: "queued"})
	})

	resp, err := c.CreateCall(context.Background(), CallRequest{
		To:    "+15550001111",
		From:  "+15550002222",
		TwiML: "<Response><Hangup/></Response>",
	})
	if err != nil {
		t.Fatalf("create call: %v", err)
	}
	if resp.Sid != "CA1" {
		t.Fatalf("unexpected sid %q", resp.Sid)
	}
	if gotPath != "/Accounts/AC123/Calls.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotUser != "AC123" || gotPass != "token" {
		t.Fatalf("basic auth not set: %q/%q", gotUser, gotPass)
	}
	if gotTwiml == "" || gotTo != "+15550001111" {
		t.Fatalf("form fields missing: twiml=%q to=%q", gotTwiml, gotTo)
	}
}

func TestCreateCall_WebhookMode(t *testing.T) {
	var gotURL, gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotURL = r.PostFormValue("Url")
		gotMethod = r.PostFormValue("Method")
		_ = json.NewEncoder(w).Encode(CallResponse{Sid: "CA2"})
	})

	_, err := c.CreateCall(context.Background(), CallRequest{
		To:          "+15550001111",
		From:        "+15550002222",
		CallbackURL: "https://example.com/webhooks/twilio/voice",
	})
	if err != nil {
		t.Fatalf("create call: %v", err)
	}
	if gotURL != "https://example.com/webhooks/twilio/voice" || gotMethod != "POST" {
		t.Fatalf("callback fields wrong: url=%q method=%q", gotURL, gotMethod)
	}
}

func TestCreateCall_RejectsAmbiguousRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("server should not be hit")
	})

	_, err := c.CreateCall(context.Background(), CallRequest{To: "+1", From: "+2"})
	if err == nil {
		t.Fatalf("expected validation error with neither twiml nor url")
	}
	_, err = c.CreateCall(context.Background(), CallRequest{To: "+1", From: "+2", TwiML: "x", CallbackURL: "y"})
	if err == nil {
		t.Fatalf("expected validation error with both twiml and url")
	}
}

func TestInvoke_RetriesServerErrors(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(CallResponse{Sid: "CA3"})
	})

	resp, err := c.CreateCall(context.Background(), CallRequest{To: "+1555", From: "+1556", TwiML: "x"})
	if err != nil {
		t.Fatalf("expected recovery after retries: %v", err)
	}
	if resp.Sid != "CA3" || attempts != 3 {
		t.Fatalf("unexpected result sid=%q attempts=%d", resp.Sid, attempts)
	}
}

func TestInvoke_ClientErrorNotRetried(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 21211, "message": "invalid to number"})
	})

	_, err := c.SendMessage(context.Background(), MessageRequest{To: "+1", From: "+2", Body: "hi"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 400 || apiErr.Code != 21211 {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if attempts != 1 {
		t.Fatalf("4xx should not retry, attempts=%d", attempts)
	}
}
