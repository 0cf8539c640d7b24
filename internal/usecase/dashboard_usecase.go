package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/jql"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// DashboardRequest represents a dashboard aggregation request
type DashboardRequest struct {
	ProjectKey string               `json:"projectKey"`
	Period     domain.PeriodRequest `json:"period"`
}

// MetaDTO carries request provenance alongside the data
type MetaDTO struct {
	Query       string    `json:"query"`
	IssueCount  int       `json:"issueCount"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// DashboardResponse is the full dashboard payload
type DashboardResponse struct {
	Project ports.Project           `json:"project"`
	Period  PeriodDTO               `json:"period"`
	Metrics domain.DashboardMetrics `json:"metrics"`
	Series  domain.DailySeries      `json:"series"`
	Meta    MetaDTO                 `json:"meta"`
}

// DashboardUseCase computes the QA performance dashboard live from the
// issue tracker. Nothing is cached; every request recomputes.
type DashboardUseCase struct {
	tracker  ports.IssueTracker
	cfg      config.DashboardConfig
	pageSize int
	periods  *periodService
	logger   *logrus.Logger
}

// NewDashboardUseCase creates a new dashboard use case
func NewDashboardUseCase(tracker ports.IssueTracker, cfg config.DashboardConfig, pageSize int, logger *logrus.Logger, now func() time.Time) (*DashboardUseCase, error) {
	periods, err := newPeriodService(tracker, cfg, now)
	if err != nil {
		return nil, err
	}
	return &DashboardUseCase{
		tracker:  tracker,
		cfg:      cfg,
		pageSize: pageSize,
		periods:  periods,
		logger:   logger,
	}, nil
}

// GetDashboard resolves the period, fetches the period's defects and
// aggregates metrics and daily series
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, req DashboardRequest) (*DashboardResponse, error) {
	if req.ProjectKey == "" {
		return nil, apperror.NewBadRequest("projectKey is required")
	}

	period, err := uc.periods.resolve(ctx, req.ProjectKey, req.Period)
	if err != nil {
		return nil, err
	}

	query := jql.BuildDefectsQuery(req.ProjectKey, period.StartISO(), period.EndISO(), uc.cfg.BugType, uc.cfg.SubBugType)

	issues, err := uc.tracker.SearchIssues(ctx, query, []string{"issuetype", "status", "created", "summary"}, uc.pageSize)
	if err != nil {
		return nil, err
	}

	uc.logger.WithFields(logrus.Fields{
		"project": req.ProjectKey,
		"period":  fmt.Sprintf("%s..%s", period.StartISO(), period.EndISO()),
		"issues":  len(issues),
	}).Info("dashboard aggregation")

	rules := domain.ClassificationRules{
		BugType:        uc.cfg.BugType,
		SubBugType:     uc.cfg.SubBugType,
		CanceledStatus: uc.cfg.CanceledStatus,
		ClosedStatuses: uc.cfg.ClosedStatuses,
	}
	metrics, series := domain.AggregateDefects(issues, period.Days(), rules, uc.periods.loc)

	project, err := uc.tracker.GetProject(ctx, req.ProjectKey)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		Project: *project,
		Period:  periodDTO(period),
		Metrics: metrics,
		Series:  series,
		Meta: MetaDTO{
			Query:       query,
			IssueCount:  len(issues),
			GeneratedAt: uc.periods.now().In(uc.periods.loc),
		},
	}, nil
}

// ListProjects lists the tracker projects available to the dashboard
func (uc *DashboardUseCase) ListProjects(ctx context.Context) ([]ports.Project, error) {
	projects, err := uc.tracker.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return projects, nil
}
