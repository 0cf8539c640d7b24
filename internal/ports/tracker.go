package ports

import (
	"context"

	"github.com/qaforge/qaforge/internal/domain"
)

// Project is a tracker project reference
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Board is an agile board as reported by the tracker
type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// FullIssue is the heavier per-issue projection with its change history
type FullIssue struct {
	Key       string
	Type      string
	Summary   string
	Status    string
	Created   string
	Histories []domain.ChangeHistory
}

// NewIssue is the input for creating an issue in the tracker
type NewIssue struct {
	ProjectKey  string
	Type        string
	Summary     string
	Description string
	ParentKey   string
}

// IssueTracker defines the interface to the external issue tracker.
// Implementations return pkg/apperror typed errors for auth, permission and
// malformed-query failures and propagate transport errors otherwise.
// All calls are single-attempt; nothing retries.
type IssueTracker interface {
	// SearchIssues retrieves every issue matching the query, transparently
	// following the tracker's pagination until the last page
	SearchIssues(ctx context.Context, query string, fields []string, pageSize int) ([]domain.IssueRecord, error)

	// GetIssue retrieves a single issue including its change history
	GetIssue(ctx context.Context, key string) (*FullIssue, error)

	// GetProject retrieves a project's key and name; falls back to
	// {key, ""} when the project is not found or not visible
	GetProject(ctx context.Context, key string) (*Project, error)

	// ListProjects lists the projects visible to the configured credentials
	ListProjects(ctx context.Context) ([]Project, error)

	// GetBoards lists the agile boards of a project
	GetBoards(ctx context.Context, projectKey string) ([]Board, error)

	// GetSprints lists a board's sprints filtered by state
	GetSprints(ctx context.Context, boardID int, state domain.SprintState) ([]domain.SprintInfo, error)

	// CreateIssue creates an issue and returns its key
	CreateIssue(ctx context.Context, issue NewIssue) (string, error)
}
