package ports

import "context"

// AIProvider defines the interface for generative AI backends
type AIProvider interface {
	// Generate sends a prompt and returns the model's text completion
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider for logging and response metadata
	Name() string
}

// AIProviderFactory resolves a provider by its configured name
type AIProviderFactory interface {
	// Provider returns the provider registered under name
	Provider(name string) (AIProvider, error)
}
