package draft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIGenerator_Generate(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini-2024",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Three of Cups opens the spread."}},
			},
		})
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini"})

	out, err := g.Generate(context.Background(), Prompt{
		SessionID:  "sess-1",
		SpreadSize: 3,
		Cards:      []string{"assets/card-3.png"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Model != "gpt-4o-mini-2024" || out.Content == "" {
		t.Fatalf("unexpected generation: %+v", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("missing auth header: %q", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" || len(gotReq.Messages) != 2 {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
	if !strings.Contains(gotReq.Messages[1].Content, "assets/card-3.png") {
		t.Fatalf("prompt missing revealed card")
	}
}

func TestOpenAIGenerator_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test"})
	if _, err := g.Generate(context.Background(), Prompt{Cards: []string{"x"}}); err == nil {
		t.Fatalf("expected error on non-200")
	}
}

func TestOpenAIGenerator_RefusesEmptyPrompt(t *testing.T) {
	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: "http://unreachable.invalid"})
	if _, err := g.Generate(context.Background(), Prompt{}); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}
