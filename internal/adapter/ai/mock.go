package ai

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider returns canned deterministic answers. It backs local
// development and integration tests when no real AI credentials exist.
type MockProvider struct {
	name string
}

// NewMockProvider creates a mock provider that reports the given name
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

// Name identifies the provider
func (p *MockProvider) Name() string {
	return p.name
}

// Generate produces a canned answer shaped by the prompt contents
func (p *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "bug report"):
		return "Title of the Card: [Mock] - Generated bug report\n\n" +
			"Description:\nContext: generated by the mock provider\n" +
			"Reproduction: 1. run with mock mode enabled\n" +
			"Expected: real provider output\nActual: canned output", nil
	case strings.Contains(lower, "test case"):
		return "1. happy path: main flow succeeds\n2. edge: empty input rejected\n3. error: backend unavailable", nil
	default:
		return fmt.Sprintf("mock analysis for prompt of %d characters", len(prompt)), nil
	}
}
