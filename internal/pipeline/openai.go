// =============================================================================
// openai.go - Chat Completions Client
// =============================================================================
//
// Minimal client for the OpenAI chat-completions endpoint, used by the
// AI-enriched formatter. Raw net/http with a JSON body map on the way out and
// a narrow struct on the way in.
//
// =============================================================================
package pipeline

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

// openAIClient calls the chat-completions API.
type openAIClient struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	apiBase     string
	client      *http.Client
}

func newOpenAIClient(cfg EnrichConfig) *openAIClient {
	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		apiBase:     strings.TrimRight(cfg.APIBase, "/"),
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

// chatResponse is the slice of the completions payload we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends one system+user exchange and returns the model's
// reply text.
func (c *openAIClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai chat error: %s: %s", resp.Status, clipRunes(string(bodyBytes), 300))
	}

	var r chatResponse
	if err := json.Unmarshal(bodyBytes, &r); err != nil {
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
