package usecase

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/jql"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// StatusTimeRequest represents a status-time report request
type StatusTimeRequest struct {
	ProjectKey string               `json:"projectKey"`
	Period     domain.PeriodRequest `json:"period"`
}

// StatusTimeRow is the per-issue line of the report
type StatusTimeRow struct {
	Key              string  `json:"key"`
	Type             string  `json:"type"`
	Summary          string  `json:"summary"`
	Status           string  `json:"status"`
	ReadyToTestHours float64 `json:"readyToTestHours"`
	InTestHours      float64 `json:"inTestHours"`
	TotalHours       float64 `json:"totalHours"`
}

// StatusTimeSummary rolls the report rows up into totals and averages
type StatusTimeSummary struct {
	Count                 int     `json:"count"`
	TotalReadyToTestHours float64 `json:"totalReadyToTestHours"`
	TotalInTestHours      float64 `json:"totalInTestHours"`
	TotalHours            float64 `json:"totalHours"`
	AvgReadyToTestHours   float64 `json:"avgReadyToTestHours"`
	AvgInTestHours        float64 `json:"avgInTestHours"`
}

// StatusTimeResponse is the full status-time report payload
type StatusTimeResponse struct {
	Project ports.Project     `json:"project"`
	Period  PeriodDTO         `json:"period"`
	Issues  []StatusTimeRow   `json:"issues"`
	Summary StatusTimeSummary `json:"summary"`
	Meta    MetaDTO           `json:"meta"`
}

// StatusTimeUseCase builds the time-in-testing-status report. The per-issue
// change history fetch loop is sequential and is the latency hot spot; the
// issue cap bounds it.
type StatusTimeUseCase struct {
	tracker  ports.IssueTracker
	cfg      config.DashboardConfig
	pageSize int
	periods  *periodService
	logger   *logrus.Logger
}

// NewStatusTimeUseCase creates a new status-time use case
func NewStatusTimeUseCase(tracker ports.IssueTracker, cfg config.DashboardConfig, pageSize int, logger *logrus.Logger, now func() time.Time) (*StatusTimeUseCase, error) {
	periods, err := newPeriodService(tracker, cfg, now)
	if err != nil {
		return nil, err
	}
	return &StatusTimeUseCase{
		tracker:  tracker,
		cfg:      cfg,
		pageSize: pageSize,
		periods:  periods,
		logger:   logger,
	}, nil
}

// BuildReport computes per-issue time spent in the two target testing
// statuses for issues created in the period
func (uc *StatusTimeUseCase) BuildReport(ctx context.Context, req StatusTimeRequest) (*StatusTimeResponse, error) {
	if req.ProjectKey == "" {
		return nil, apperror.NewBadRequest("projectKey is required")
	}

	period, err := uc.periods.resolve(ctx, req.ProjectKey, req.Period)
	if err != nil {
		return nil, err
	}

	query := jql.BuildStatusTimeQuery(req.ProjectKey, period.StartISO(), period.EndISO(),
		uc.cfg.ExcludedIssueTypes, uc.cfg.ExcludedStatuses)

	candidates, err := uc.tracker.SearchIssues(ctx, query, []string{"issuetype", "status", "created", "summary"}, uc.pageSize)
	if err != nil {
		return nil, err
	}
	if len(candidates) > uc.cfg.StatusTimeMaxIssues {
		candidates = candidates[:uc.cfg.StatusTimeMaxIssues]
	}

	readyStatus := uc.cfg.TargetStatuses[0]
	inTestStatus := uc.cfg.TargetStatuses[1]
	now := uc.periods.now().In(uc.periods.loc)

	rows := make([]StatusTimeRow, 0, len(candidates))
	summary := StatusTimeSummary{}
	for _, candidate := range candidates {
		issue, err := uc.tracker.GetIssue(ctx, candidate.Key)
		if err != nil {
			// a single broken issue must not fail the batch
			uc.logger.WithError(err).WithField("issue", candidate.Key).Warn("skipping issue: fetch failed")
			continue
		}
		if issue.Status == uc.cfg.CanceledStatus {
			continue
		}
		created, ok := domain.ParseTrackerTime(issue.Created)
		if !ok {
			uc.logger.WithField("issue", issue.Key).Warn("skipping issue: unparsable creation timestamp")
			continue
		}

		changes := domain.StatusChangesFromHistory(issue.Histories)
		durations := domain.TimeInStatuses(created, changes, uc.cfg.TargetStatuses, now)

		row := StatusTimeRow{
			Key:              issue.Key,
			Type:             issue.Type,
			Summary:          issue.Summary,
			Status:           issue.Status,
			ReadyToTestHours: domain.HoursRounded(durations[readyStatus]),
			InTestHours:      domain.HoursRounded(durations[inTestStatus]),
		}
		row.TotalHours = domain.HoursRounded(durations[readyStatus] + durations[inTestStatus])
		rows = append(rows, row)

		summary.TotalReadyToTestHours += row.ReadyToTestHours
		summary.TotalInTestHours += row.InTestHours
		summary.TotalHours += row.TotalHours
	}

	summary.Count = len(rows)
	summary.TotalReadyToTestHours = round2(summary.TotalReadyToTestHours)
	summary.TotalInTestHours = round2(summary.TotalInTestHours)
	summary.TotalHours = round2(summary.TotalHours)
	if summary.Count > 0 {
		summary.AvgReadyToTestHours = round2(summary.TotalReadyToTestHours / float64(summary.Count))
		summary.AvgInTestHours = round2(summary.TotalInTestHours / float64(summary.Count))
	}

	uc.logger.WithFields(logrus.Fields{
		"project":    req.ProjectKey,
		"candidates": len(candidates),
		"rows":       summary.Count,
	}).Info("status-time report")

	project, err := uc.tracker.GetProject(ctx, req.ProjectKey)
	if err != nil {
		return nil, err
	}

	return &StatusTimeResponse{
		Project: *project,
		Period:  periodDTO(period),
		Issues:  rows,
		Summary: summary,
		Meta: MetaDTO{
			Query:       query,
			IssueCount:  len(candidates),
			GeneratedAt: now,
		},
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
