package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-studypartner-be/pkg/llm"
)

func newCaptureServer(t *testing.T, body *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		*body = b
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "test",
			Message: ollamaMessage{Role: "assistant", Content: "ok"},
			Done:    true,
		})
	}))
}

func TestChatSendsExplicitZeroTemperature(t *testing.T) {
	var body []byte
	srv := newCaptureServer(t, &body)
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "test-model")
	if _, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "classify"}}, llm.WithTemperature(0)); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	var req struct {
		Options map[string]json.Number `json:"options"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	temp, ok := req.Options["temperature"]
	if !ok {
		t.Fatalf("temperature missing from request options: %s", body)
	}
	if temp.String() != "0" {
		t.Errorf("temperature = %s, want 0", temp)
	}
}

func TestChatDefaultsTemperature(t *testing.T) {
	var body []byte
	srv := newCaptureServer(t, &body)
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "test-model")
	if _, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	var req struct {
		Options map[string]float64 `json:"options"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if req.Options["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want the 0.7 default", req.Options["temperature"])
	}
}
