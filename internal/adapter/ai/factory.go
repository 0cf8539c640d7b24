package ai

import (
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// Factory resolves AI providers by their configured name. Only providers
// whose credentials are present get registered; in mock mode every known
// name resolves to the mock provider.
type Factory struct {
	providers map[string]ports.AIProvider
}

// NewFactory builds the provider registry from configuration
func NewFactory(cfg config.AIConfig, logger *logrus.Logger) *Factory {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	providers := make(map[string]ports.AIProvider)

	if cfg.MockMode {
		providers["openai"] = NewMockProvider("openai")
		providers["stackspot"] = NewMockProvider("stackspot")
		logger.Warn("AI mock mode enabled, all providers return canned answers")
		return &Factory{providers: providers}
	}

	if cfg.OpenAIKey != "" {
		providers["openai"] = NewOpenAIProvider(cfg, httpClient)
	}
	if cfg.StackSpotClientID != "" && cfg.StackSpotClientKey != "" && cfg.StackSpotRealm != "" && cfg.StackSpotAgentID != "" {
		providers["stackspot"] = NewStackSpotProvider(cfg, httpClient)
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	logger.WithField("providers", names).Info("AI providers registered")

	return &Factory{providers: providers}
}

// Provider returns the provider registered under name
func (f *Factory) Provider(name string) (ports.AIProvider, error) {
	provider, ok := f.providers[name]
	if !ok {
		return nil, apperror.NewBadRequest("unknown or unconfigured AI service: " + name)
	}
	return provider, nil
}
