package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pagebrief/internal/domain"
)

type recordedCompletionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type fakeEndpoint struct {
	mu       sync.Mutex
	requests []recordedCompletionRequest
	status   int
	content  string
}

func (e *fakeEndpoint) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /models", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"object":"list","data":[{"id":"llama3.2","object":"model"}]}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req recordedCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		e.mu.Lock()
		e.requests = append(e.requests, req)
		status := e.status
		content := e.content
		e.mu.Unlock()

		if status != 0 && status != http.StatusOK {
			http.Error(w, "backend failure", status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	})

	return mux
}

func (e *fakeEndpoint) recorded() []recordedCompletionRequest {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]recordedCompletionRequest(nil), e.requests...)
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(Config{
		BaseURL: baseURL,
		APIKey:  "ollama",
		Model:   "llama3.2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return client
}

func TestNewRequiresBaseURLAndModel(t *testing.T) {
	if _, err := New(Config{Model: "llama3.2"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}

	if _, err := New(Config{BaseURL: "http://localhost:11434/v1"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestCompleteReturnsFirstChoiceContent(t *testing.T) {
	endpoint := &fakeEndpoint{content: "# Summary\nHello."}
	server := httptest.NewServer(endpoint.handler(t))
	defer server.Close()

	client := newTestClient(t, server.URL)

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: "system instruction"},
		{Role: domain.RoleUser, Content: "user content"},
	}

	content, err := client.Complete(context.Background(), messages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content != "# Summary\nHello." {
		t.Fatalf("unexpected content: %q", content)
	}

	requests := endpoint.recorded()
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}

	req := requests[0]
	if req.Model != "llama3.2" {
		t.Fatalf("unexpected model: %q", req.Model)
	}

	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}

	if req.Messages[0].Role != "system" || req.Messages[0].Content != "system instruction" {
		t.Fatalf("unexpected first message: %+v", req.Messages[0])
	}

	if req.Messages[1].Role != "user" || req.Messages[1].Content != "user content" {
		t.Fatalf("unexpected second message: %+v", req.Messages[1])
	}
}

func TestCompleteWrapsBackendFailure(t *testing.T) {
	endpoint := &fakeEndpoint{status: http.StatusInternalServerError}
	server := httptest.NewServer(endpoint.handler(t))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleUser, Content: "user content"},
	})
	if err == nil {
		t.Fatal("expected error for backend failure")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}

	if transportErr.Endpoint != server.URL {
		t.Fatalf("unexpected endpoint in error: %q", transportErr.Endpoint)
	}
}

func TestCompleteRejectsUnknownRole(t *testing.T) {
	client := newTestClient(t, "http://localhost:11434/v1")

	_, err := client.Complete(context.Background(), []domain.Message{
		{Role: domain.Role("assistant"), Content: "text"},
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestPing(t *testing.T) {
	endpoint := &fakeEndpoint{}
	server := httptest.NewServer(endpoint.handler(t))
	defer server.Close()

	if err := newTestClient(t, server.URL).Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	server.Close()

	err := newTestClient(t, server.URL).Ping(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}
