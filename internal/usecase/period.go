package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// periodService resolves reporting periods for the dashboard use cases,
// backing sprint periods with the tracker's agile board data.
type periodService struct {
	tracker ports.IssueTracker
	cfg     config.DashboardConfig
	loc     *time.Location
	now     func() time.Time
}

func newPeriodService(tracker ports.IssueTracker, cfg config.DashboardConfig, now func() time.Time) (*periodService, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	if now == nil {
		now = time.Now
	}
	return &periodService{
		tracker: tracker,
		cfg:     cfg,
		loc:     loc,
		now:     now,
	}, nil
}

func (s *periodService) resolve(ctx context.Context, projectKey string, req domain.PeriodRequest) (*domain.ResolvedPeriod, error) {
	resolver := &domain.PeriodResolver{
		Lookup:         s.lookupSprint,
		Now:            s.now,
		Location:       s.loc,
		MaxRangeMonths: s.cfg.CustomRangeMonths,
	}
	return resolver.Resolve(ctx, projectKey, req)
}

// lookupSprint finds the relevant sprint across the project's scrum boards.
// Current sprint: latest start among active sprints. Previous sprint: latest
// end among closed sprints.
func (s *periodService) lookupSprint(ctx context.Context, projectKey string, state domain.SprintState) (*domain.SprintInfo, error) {
	boards, err := s.tracker.GetBoards(ctx, projectKey)
	if err != nil {
		return nil, err
	}

	marker := strings.ToLower(s.cfg.BoardMarker)
	candidates := make([]ports.Board, 0, len(boards))
	for _, board := range boards {
		if !strings.EqualFold(board.Type, "scrum") {
			continue
		}
		if marker != "" && !strings.Contains(strings.ToLower(board.Name), marker) {
			continue
		}
		candidates = append(candidates, board)
	}
	if len(candidates) == 0 {
		return nil, apperror.NewSprintUnavailable(
			fmt.Sprintf("no scrum board matching %q found for project %s", s.cfg.BoardMarker, projectKey))
	}

	var best *domain.SprintInfo
	for _, board := range candidates {
		sprints, err := s.tracker.GetSprints(ctx, board.ID, state)
		if err != nil {
			return nil, err
		}
		for i := range sprints {
			sprint := sprints[i]
			sprint.BoardID = board.ID
			sprint.BoardName = board.Name
			if best == nil || laterSprint(sprint, *best, state) {
				chosen := sprint
				best = &chosen
			}
		}
	}
	return best, nil
}

func laterSprint(candidate, current domain.SprintInfo, state domain.SprintState) bool {
	if state == domain.SprintStateClosed {
		return candidate.EndDate.After(current.EndDate)
	}
	return candidate.StartDate.After(current.StartDate)
}

func periodDTO(period *domain.ResolvedPeriod) PeriodDTO {
	return PeriodDTO{
		Type:      string(period.Type),
		StartDate: period.StartISO(),
		EndDate:   period.EndISO(),
		Timezone:  period.Timezone,
		Source:    period.Source,
		Sprint:    period.Sprint,
	}
}

// PeriodDTO is the resolved period as serialized in responses
type PeriodDTO struct {
	Type      string             `json:"type"`
	StartDate string             `json:"startDate"`
	EndDate   string             `json:"endDate"`
	Timezone  string             `json:"timezone"`
	Source    string             `json:"source"`
	Sprint    *domain.SprintInfo `json:"sprint,omitempty"`
}
