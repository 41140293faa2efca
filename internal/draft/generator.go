package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Prompt is the material a generator may see. Cards holds only card refs
// that have already been revealed in the session; callers must never put
// undrawn cards here.
type Prompt struct {
	SessionID  string
	SpreadSize int
	Cards      []string
}

// Generation is the generator's output.
type Generation struct {
	Model   string
	Content string
}

// Generator produces an interpretation draft from revealed cards.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (Generation, error)
}

// OpenAIConfig configures the chat completions endpoint and HTTP behavior.
type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type openAIGenerator struct {
	cfg OpenAIConfig
}

// NewOpenAIGenerator builds a Generator backed by an OpenAI-compatible
// chat completions API.
func NewOpenAIGenerator(cfg OpenAIConfig) Generator {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &openAIGenerator{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are drafting notes for a professional card reader. " +
	"Write a short interpretation of the cards listed, position by position. " +
	"The draft is internal material for the reader, not the client."

func (g *openAIGenerator) Generate(ctx context.Context, p Prompt) (Generation, error) {
	if len(p.Cards) == 0 {
		return Generation{}, fmt.Errorf("draft: prompt has no cards")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spread of %d, %d card(s) revealed so far:\n", p.SpreadSize, len(p.Cards))
	for i, c := range p.Cards {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: b.String()},
		},
	})
	if err != nil {
		return Generation{}, fmt.Errorf("draft: marshal request: %w", err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Generation{}, fmt.Errorf("draft: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return Generation{}, fmt.Errorf("draft: call generator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Generation{}, fmt.Errorf("draft: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Generation{}, fmt.Errorf("draft: generator returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Generation{}, fmt.Errorf("draft: decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return Generation{}, fmt.Errorf("draft: generator returned no content")
	}

	model := out.Model
	if model == "" {
		model = g.cfg.Model
	}
	return Generation{Model: model, Content: out.Choices[0].Message.Content}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StaticGenerator returns a canned draft. Used in tests and local runs
// without an API key.
type StaticGenerator struct {
	Model   string
	Content string

	// LastPrompt records the most recent prompt for assertions.
	LastPrompt Prompt
	Calls      int
	Err        error
}

func (g *StaticGenerator) Generate(ctx context.Context, p Prompt) (Generation, error) {
	g.LastPrompt = p
	g.Calls++
	if g.Err != nil {
		return Generation{}, g.Err
	}
	model := g.Model
	if model == "" {
		model = "static"
	}
	content := g.Content
	if content == "" {
		content = fmt.Sprintf("Draft interpretation of %d card(s): %s", len(p.Cards), strings.Join(p.Cards, ", "))
	}
	return Generation{Model: model, Content: content}, nil
}
