package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/ports"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDashboardConfig() config.DashboardConfig {
	return config.DashboardConfig{
		Timezone:           "UTC",
		BugType:            "Bug",
		SubBugType:         "Sub-Bug",
		CanceledStatus:     "Cancelado",
		ClosedStatuses:     []string{"Applied in production", "Concluído", "Done", "Resolved", "Closed"},
		TargetStatuses:     []string{"Ready to test", "In Test"},
		ExcludedIssueTypes: []string{"Sub-task", "Spike", "Epic", "Operational", "Sub-Bug"},
		ExcludedStatuses:   []string{"Backlog", "Code review", "In Development"},
		BoardMarker:        "Scrum",

		StatusTimeMaxIssues: 100,
		CustomRangeMonths:   3,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

// MockTracker is a mock implementation of ports.IssueTracker
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) SearchIssues(ctx context.Context, query string, fields []string, pageSize int) ([]domain.IssueRecord, error) {
	args := m.Called(ctx, query, fields, pageSize)
	var issues []domain.IssueRecord
	if v := args.Get(0); v != nil {
		issues = v.([]domain.IssueRecord)
	}
	return issues, args.Error(1)
}

func (m *MockTracker) GetIssue(ctx context.Context, key string) (*ports.FullIssue, error) {
	args := m.Called(ctx, key)
	var issue *ports.FullIssue
	if v := args.Get(0); v != nil {
		issue = v.(*ports.FullIssue)
	}
	return issue, args.Error(1)
}

func (m *MockTracker) GetProject(ctx context.Context, key string) (*ports.Project, error) {
	args := m.Called(ctx, key)
	var project *ports.Project
	if v := args.Get(0); v != nil {
		project = v.(*ports.Project)
	}
	return project, args.Error(1)
}

func (m *MockTracker) ListProjects(ctx context.Context) ([]ports.Project, error) {
	args := m.Called(ctx)
	var projects []ports.Project
	if v := args.Get(0); v != nil {
		projects = v.([]ports.Project)
	}
	return projects, args.Error(1)
}

func (m *MockTracker) GetBoards(ctx context.Context, projectKey string) ([]ports.Board, error) {
	args := m.Called(ctx, projectKey)
	var boards []ports.Board
	if v := args.Get(0); v != nil {
		boards = v.([]ports.Board)
	}
	return boards, args.Error(1)
}

func (m *MockTracker) GetSprints(ctx context.Context, boardID int, state domain.SprintState) ([]domain.SprintInfo, error) {
	args := m.Called(ctx, boardID, state)
	var sprints []domain.SprintInfo
	if v := args.Get(0); v != nil {
		sprints = v.([]domain.SprintInfo)
	}
	return sprints, args.Error(1)
}

func (m *MockTracker) CreateIssue(ctx context.Context, issue ports.NewIssue) (string, error) {
	args := m.Called(ctx, issue)
	return args.String(0), args.Error(1)
}

// MockProvider is a mock implementation of ports.AIProvider
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

// stubFactory resolves every known name to the same provider
type stubFactory struct {
	provider ports.AIProvider
}

func (f *stubFactory) Provider(name string) (ports.AIProvider, error) {
	if f.provider == nil {
		return nil, fmt.Errorf("unknown AI service %q", name)
	}
	return f.provider, nil
}

// MockUserRepo is a mock implementation of ports.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	var users []*domain.User
	if v := args.Get(0); v != nil {
		users = v.([]*domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockLimiter is a mock implementation of ports.LoginLimiter
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) RecordFailure(ctx context.Context, email string, window time.Duration) (int, error) {
	args := m.Called(ctx, email, window)
	return args.Int(0), args.Error(1)
}

func (m *MockLimiter) Failures(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *MockLimiter) Reset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
