package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

var (
	cardKeyPattern    = regexp.MustCompile(`^[A-Z]+-\d+$`)
	projectKeyPattern = regexp.MustCompile(`^[A-Z]+$`)
)

const bugReportTemplate = `You are a senior QA analyst. Rewrite the raw bug notes below as a structured bug report. Answer in the language of the notes. Use exactly this layout:

Title of the Card: [Area] - short description
Description:
Context: what the tester was doing
Reproduction: numbered steps
Expected: what should happen
Actual: what happens instead

Raw notes:
` + requirementsPlaceholder

// CreateBugRequest represents a bug creation request
type CreateBugRequest struct {
	IssueType   string `json:"issueType"`
	ProjectKey  string `json:"projectKey"`
	Description string `json:"description"`
	ParentKey   string `json:"parentKey,omitempty"`
	AIService   string `json:"aiService"`
}

// CreateBugResponse describes the issue created in the tracker
type CreateBugResponse struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	ParentKey   string `json:"parentKey,omitempty"`
	Provider    string `json:"provider"`
}

// BugUseCase creates tracker bugs from free-form notes, using an AI provider
// to structure the report
type BugUseCase struct {
	tracker   ports.IssueTracker
	providers ports.AIProviderFactory
	cfg       config.DashboardConfig
	logger    *logrus.Logger
}

// NewBugUseCase creates a new bug use case
func NewBugUseCase(tracker ports.IssueTracker, providers ports.AIProviderFactory, cfg config.DashboardConfig, logger *logrus.Logger) *BugUseCase {
	return &BugUseCase{
		tracker:   tracker,
		providers: providers,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateBug validates the request, has the AI structure the report and
// creates the issue in the tracker
func (uc *BugUseCase) CreateBug(ctx context.Context, req CreateBugRequest) (*CreateBugResponse, error) {
	issueType, err := uc.resolveIssueType(req.IssueType)
	if err != nil {
		return nil, err
	}
	projectKey := strings.ToUpper(strings.TrimSpace(req.ProjectKey))
	if !projectKeyPattern.MatchString(projectKey) {
		return nil, apperror.NewBadRequest("projectKey must contain only letters")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperror.NewBadRequest("description is required")
	}

	parentKey := strings.ToUpper(strings.TrimSpace(req.ParentKey))
	if issueType == uc.cfg.SubBugType {
		if parentKey == "" {
			return nil, apperror.NewBadRequest("parentKey is required for sub-bugs")
		}
		if !cardKeyPattern.MatchString(parentKey) {
			return nil, apperror.NewBadRequest("parentKey must have the form PROJECT-123")
		}
		parent, err := uc.tracker.GetIssue(ctx, parentKey)
		if err != nil {
			return nil, apperror.NewBadRequest(fmt.Sprintf("parent issue %s not found or not accessible", parentKey))
		}
		uc.logger.WithFields(logrus.Fields{
			"parent":  parent.Key,
			"summary": parent.Summary,
		}).Info("parent issue validated")
	} else if parentKey != "" {
		return nil, apperror.NewBadRequest("parentKey is only valid for sub-bugs")
	}

	provider, err := uc.providers.Provider(req.AIService)
	if err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}
	prompt := strings.ReplaceAll(bugReportTemplate, requirementsPlaceholder, req.Description)
	draft, err := provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to structure bug report: %w", err)
	}

	summary, description := parseBugDraft(draft)

	key, err := uc.tracker.CreateIssue(ctx, ports.NewIssue{
		ProjectKey:  projectKey,
		Type:        issueType,
		Summary:     summary,
		Description: description,
		ParentKey:   parentKey,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.WithFields(logrus.Fields{
		"key":     key,
		"type":    issueType,
		"project": projectKey,
	}).Info("bug created")

	return &CreateBugResponse{
		Key:         key,
		Summary:     summary,
		Description: description,
		ParentKey:   parentKey,
		Provider:    provider.Name(),
	}, nil
}

func (uc *BugUseCase) resolveIssueType(issueType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(issueType)) {
	case "bug":
		return uc.cfg.BugType, nil
	case "sub_bug", "sub-bug":
		return uc.cfg.SubBugType, nil
	default:
		return "", apperror.NewBadRequest(`issueType must be "bug" or "sub_bug"`)
	}
}

// parseBugDraft splits the AI's structured report into summary and
// description. The summary is the "Title of the Card:" (or "Title:") line;
// everything after it is the description. Drafts without a title line fall
// back to the first line as summary.
func parseBugDraft(draft string) (string, string) {
	lines := strings.Split(draft, "\n")

	summary := ""
	descriptionLines := make([]string, 0, len(lines))
	foundTitle := false
	skipEmptyAfterTitle := false

	for _, line := range lines {
		if !foundTitle && (strings.HasPrefix(line, "Title of the Card:") || strings.HasPrefix(line, "Title:")) {
			_, title, _ := strings.Cut(line, ":")
			summary = strings.TrimSpace(title)
			foundTitle = true
			skipEmptyAfterTitle = true
			continue
		}
		if foundTitle {
			if skipEmptyAfterTitle && strings.TrimSpace(line) == "" {
				skipEmptyAfterTitle = false
				continue
			}
			skipEmptyAfterTitle = false
			descriptionLines = append(descriptionLines, line)
		}
	}

	if !foundTitle {
		trimmed := strings.TrimSpace(draft)
		if trimmed == "" {
			return "Bug report", ""
		}
		first, rest, _ := strings.Cut(trimmed, "\n")
		return strings.TrimSpace(first), strings.TrimSpace(rest)
	}
	if summary == "" {
		summary = "Bug report"
	}
	return summary, strings.TrimRight(strings.Join(descriptionLines, "\n"), "\n")
}
