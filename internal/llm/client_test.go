package llm

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/furydoc/cybersyn/internal/research"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	c, err := New(opts, log.New(testWriter{t}, "", 0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Options{}, nil)
	if err == nil || !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("err = %v, want missing api key", err)
	}
}

func TestCompletePrependsSystemPrompt(t *testing.T) {
	var got chatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the answer"}},
			},
		})
	})

	c := newTestClient(t, Options{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		SystemPrompt: "you are a research assistant",
	})

	content, err := c.Complete(context.Background(), []research.Message{
		{Role: research.RoleSystem, Content: "caller system prompt"},
		{Role: research.RoleUser, Content: "hello"},
	}, research.GenOptions{Model: "test/model", Temperature: 0.7, MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "the answer" {
		t.Fatalf("content = %q", content)
	}

	if got.Model != "test/model" || got.Temperature != 0.7 || got.MaxTokens != 100 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "you are a research assistant" {
		t.Errorf("system message = %+v", got.Messages[0])
	}
	// Caller-supplied system messages are dropped, not forwarded.
	if got.Messages[1].Role != "user" {
		t.Errorf("second message = %+v", got.Messages[1])
	}
}

func TestCompleteDefaultsModel(t *testing.T) {
	var got chatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	})

	c := newTestClient(t, Options{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.Complete(context.Background(), []research.Message{{Role: research.RoleUser, Content: "q"}}, research.GenOptions{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Model != DefaultModel {
		t.Errorf("model = %q, want default", got.Model)
	}
}

func TestCompleteErrorIncludesBody(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	c := newTestClient(t, Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), []research.Message{{Role: research.RoleUser, Content: "q"}}, research.GenOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v, want status and body", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	c := newTestClient(t, Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), []research.Message{{Role: research.RoleUser, Content: "q"}}, research.GenOptions{})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("err = %v, want no choices", err)
	}
}

func TestCuratedModels(t *testing.T) {
	models := CuratedModels()
	if len(models) == 0 {
		t.Fatal("empty model list")
	}
	if models[0].ID != DefaultModel {
		t.Errorf("first model = %q, want the default first", models[0].ID)
	}
	for _, m := range models {
		if m.ID == "" || m.Name == "" || m.Provider == "" {
			t.Errorf("incomplete model entry: %+v", m)
		}
	}
}
