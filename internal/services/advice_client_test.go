package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/velvetdesk/agencyops-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestAdviceClient(t *testing.T, baseURL string) *adviceClient {
	t.Helper()
	return &adviceClient{
		apiKey:      "sk-test",
		baseURL:     baseURL,
		model:       "gpt-4o-mini",
		temperature: 0.4,
		maxTokens:   500,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		log:         testLogger(t),
	}
}

func TestChatJSON(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}],"usage":{"prompt_tokens":100,"completion_tokens":50,"total_tokens":150}}`))
	}))
	defer srv.Close()

	c := newTestAdviceClient(t, srv.URL)
	content, usage, err := c.ChatJSON(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("ChatJSON: %v", err)
	}
	if content != `{"ok":true}` {
		t.Errorf("content = %q", content)
	}
	if usage == nil || usage.TotalTokens != 150 {
		t.Errorf("usage = %+v", usage)
	}
	if gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %q, want json_object", gotReq.ResponseFormat.Type)
	}
	if gotReq.Temperature != 0.4 || gotReq.MaxTokens != 500 {
		t.Errorf("temperature/max_tokens = %v/%v", gotReq.Temperature, gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestChatJSONNotConfigured(t *testing.T) {
	c := newTestAdviceClient(t, "http://unused")
	c.apiKey = ""
	_, _, err := c.ChatJSON(context.Background(), "sys", "user")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestChatJSONAPIError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c := newTestAdviceClient(t, srv.URL)
	_, _, err := c.ChatJSON(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error on 429")
	}
	// Single attempt only. Hints are perishable; a retried answer arrives
	// after the conversation has moved on.
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestChatJSONNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestAdviceClient(t, srv.URL)
	if _, _, err := c.ChatJSON(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
