package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qaforge/qaforge/pkg/apperror"
)

func TestAnalyze(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Generate", mock.Anything, mock.Anything).Return("1. happy path: login succeeds", nil)

	uc := NewAnalyzeUseCase(&stubFactory{provider: provider}, testLogger())
	resp, err := uc.Analyze(context.Background(), AnalyzeRequest{
		Requirements: "Users must be able to log in with email and password",
		Service:      "openai",
		AnalysisType: "test_case_flow_classifier",
	})

	require.NoError(t, err)
	assert.Equal(t, "1. happy path: login succeeds", resp.Result)
	assert.Equal(t, "mock", resp.Provider)

	// the prompt must embed the submitted requirements
	call := provider.Calls[0]
	assert.Contains(t, call.Arguments.String(1), "log in with email and password")
}

func TestAnalyze_EmptyRequirements(t *testing.T) {
	uc := NewAnalyzeUseCase(&stubFactory{provider: new(MockProvider)}, testLogger())

	_, err := uc.Analyze(context.Background(), AnalyzeRequest{
		Requirements: "   ",
		Service:      "openai",
		AnalysisType: "card_QA_writer",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadRequest))
}

func TestAnalyze_UnknownType(t *testing.T) {
	uc := NewAnalyzeUseCase(&stubFactory{provider: new(MockProvider)}, testLogger())

	_, err := uc.Analyze(context.Background(), AnalyzeRequest{
		Requirements: "some requirements",
		Service:      "openai",
		AnalysisType: "tarot_reading",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadRequest))
}

func TestAnalyze_UnknownProvider(t *testing.T) {
	uc := NewAnalyzeUseCase(&stubFactory{}, testLogger())

	_, err := uc.Analyze(context.Background(), AnalyzeRequest{
		Requirements: "some requirements",
		Service:      "watson",
		AnalysisType: "card_QA_writer",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadRequest))
}

func TestAnalysisTypes(t *testing.T) {
	uc := NewAnalyzeUseCase(&stubFactory{}, testLogger())

	types := uc.AnalysisTypes()

	assert.Equal(t, []string{
		"card_QA_writer",
		"swagger_postman",
		"swagger_python",
		"test_case_flow_classifier",
	}, types)
}
