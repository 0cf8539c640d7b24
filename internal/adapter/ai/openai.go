// Package ai implements ports.AIProvider for the supported generative
// backends and the factory that resolves them by name.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/qaforge/qaforge/internal/config"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	openAISystem  = "You are a Senior QA Engineer with extensive experience."
)

// OpenAIProvider generates text through the OpenAI chat completions API
type OpenAIProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAI-backed provider
func NewOpenAIProvider(cfg config.AIConfig, httpClient *http.Client) *OpenAIProvider {
	model := cfg.OpenAIModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		apiKey:     cfg.OpenAIKey,
		model:      model,
		baseURL:    openAIBaseURL,
		httpClient: httpClient,
	}
}

// Name identifies the provider
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Generate sends the prompt as a single-turn chat completion
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": openAISystem},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  1000,
		"temperature": 0.7,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API error: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return response.Choices[0].Message.Content, nil
}
