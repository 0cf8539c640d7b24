package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

const requirementsPlaceholder = "{{requirements}}"

// Prompt templates per analysis type. The placeholder is replaced with the
// submitted requirement text.
var promptTemplates = map[string]string{
	"card_QA_writer": `You are a senior QA analyst. Rewrite the requirements below as a well-structured QA card with acceptance criteria, preconditions and a test checklist. Be objective and keep the original language of the requirements.

Requirements:
` + requirementsPlaceholder,

	"test_case_flow_classifier": `You are a senior QA analyst. From the requirements below, derive the test cases and classify each one as happy path, alternative flow or exception flow. Present them as a numbered list with a one-line rationale per case.

Requirements:
` + requirementsPlaceholder,

	"swagger_postman": `You are a senior QA analyst. From the API specification below, generate a Postman collection (JSON) covering every endpoint with positive and negative test requests, including expected status codes.

Specification:
` + requirementsPlaceholder,

	"swagger_python": `You are a senior QA analyst. From the API specification below, generate Python test code using pytest and requests covering every endpoint with positive and negative cases, including expected status codes.

Specification:
` + requirementsPlaceholder,
}

// AnalyzeRequest represents a requirement analysis request
type AnalyzeRequest struct {
	Requirements string `json:"requirements"`
	Service      string `json:"service"`
	AnalysisType string `json:"analysisType"`
}

// AnalyzeResponse carries the generated analysis
type AnalyzeResponse struct {
	Result   string `json:"result"`
	Provider string `json:"provider"`
}

// AnalyzeUseCase proxies requirement analysis to a generative AI provider
type AnalyzeUseCase struct {
	providers ports.AIProviderFactory
	logger    *logrus.Logger
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase(providers ports.AIProviderFactory, logger *logrus.Logger) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		providers: providers,
		logger:    logger,
	}
}

// AnalysisTypes returns the supported analysis types
func (uc *AnalyzeUseCase) AnalysisTypes() []string {
	types := make([]string, 0, len(promptTemplates))
	for name := range promptTemplates {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Analyze renders the prompt for the requested analysis type and asks the
// selected provider for a completion
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if strings.TrimSpace(req.Requirements) == "" {
		return nil, apperror.NewBadRequest("requirements text is required")
	}
	template, ok := promptTemplates[req.AnalysisType]
	if !ok {
		return nil, apperror.NewBadRequest(fmt.Sprintf("unsupported analysis type %q", req.AnalysisType))
	}

	provider, err := uc.providers.Provider(req.Service)
	if err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}

	prompt := strings.ReplaceAll(template, requirementsPlaceholder, req.Requirements)
	result, err := provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis: %w", err)
	}

	uc.logger.WithFields(logrus.Fields{
		"provider": provider.Name(),
		"type":     req.AnalysisType,
	}).Info("analysis generated")

	return &AnalyzeResponse{
		Result:   result,
		Provider: provider.Name(),
	}, nil
}
