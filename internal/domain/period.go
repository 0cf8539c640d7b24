package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/qaforge/qaforge/pkg/apperror"
)

// PeriodType identifies how a reporting period is resolved
type PeriodType string

const (
	PeriodMonthCurrent   PeriodType = "month_current"
	PeriodCustom         PeriodType = "custom"
	PeriodSprintCurrent  PeriodType = "sprint_current"
	PeriodSprintPrevious PeriodType = "sprint_previous"
)

// SprintState selects which sprints a lookup should consider
type SprintState string

const (
	SprintStateActive SprintState = "active"
	SprintStateClosed SprintState = "closed"
)

const isoDateLayout = "2006-01-02"

// SprintInfo describes the sprint a period was resolved from
type SprintInfo struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	BoardID   int       `json:"boardId"`
	BoardName string    `json:"boardName"`
}

// PeriodRequest is the raw period spec as submitted by a caller
type PeriodRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// ResolvedPeriod is a concrete date range in the reporting timezone.
// StartDate and EndDate are midnight-normalized and inclusive.
type ResolvedPeriod struct {
	Type      PeriodType  `json:"type"`
	StartDate time.Time   `json:"-"`
	EndDate   time.Time   `json:"-"`
	Timezone  string      `json:"timezone"`
	Source    string      `json:"source"`
	Sprint    *SprintInfo `json:"sprint,omitempty"`
}

// StartISO returns the period start as an ISO date
func (p *ResolvedPeriod) StartISO() string {
	return p.StartDate.Format(isoDateLayout)
}

// EndISO returns the period end as an ISO date
func (p *ResolvedPeriod) EndISO() string {
	return p.EndDate.Format(isoDateLayout)
}

// Days returns the inclusive list of ISO dates covered by the period
func (p *ResolvedPeriod) Days() []string {
	return ListDays(p.StartDate, p.EndDate)
}

// SprintLookup locates the relevant sprint for a project. Implementations
// return typed errors from pkg/apperror so the caller never inspects
// message text.
type SprintLookup func(ctx context.Context, projectKey string, state SprintState) (*SprintInfo, error)

// PeriodResolver turns a PeriodRequest into a ResolvedPeriod
type PeriodResolver struct {
	Lookup         SprintLookup
	Now            func() time.Time
	Location       *time.Location
	MaxRangeMonths int
}

// Resolve resolves the requested period against today's date and, for sprint
// periods, against the tracker's board data.
func (r *PeriodResolver) Resolve(ctx context.Context, projectKey string, req PeriodRequest) (*ResolvedPeriod, error) {
	today := dateOnly(r.Now().In(r.Location))

	switch PeriodType(req.Type) {
	case PeriodMonthCurrent:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, r.Location)
		return &ResolvedPeriod{
			Type:      PeriodMonthCurrent,
			StartDate: start,
			EndDate:   today,
			Timezone:  r.Location.String(),
			Source:    "calendar",
		}, nil

	case PeriodCustom:
		start, err := parseISODate(req.StartDate, r.Location)
		if err != nil {
			return nil, apperror.NewInvalidPeriod(fmt.Sprintf("invalid start date %q", req.StartDate))
		}
		end, err := parseISODate(req.EndDate, r.Location)
		if err != nil {
			return nil, apperror.NewInvalidPeriod(fmt.Sprintf("invalid end date %q", req.EndDate))
		}
		if start.After(end) {
			return nil, apperror.NewInvalidPeriod("start date is after end date")
		}
		if end.After(today) {
			return nil, apperror.NewInvalidPeriod("end date is in the future")
		}
		// end must fall strictly before start + N months
		if !end.Before(start.AddDate(0, r.MaxRangeMonths, 0)) {
			return nil, apperror.NewInvalidPeriod(fmt.Sprintf("period may span at most %d months", r.MaxRangeMonths))
		}
		return &ResolvedPeriod{
			Type:      PeriodCustom,
			StartDate: start,
			EndDate:   end,
			Timezone:  r.Location.String(),
			Source:    "custom",
		}, nil

	case PeriodSprintCurrent, PeriodSprintPrevious:
		state := SprintStateActive
		if PeriodType(req.Type) == PeriodSprintPrevious {
			state = SprintStateClosed
		}
		sprint, err := r.Lookup(ctx, projectKey, state)
		if err != nil {
			return nil, err
		}
		if sprint == nil {
			return nil, apperror.NewSprintUnavailable(fmt.Sprintf("no %s sprint found for project %s", state, projectKey))
		}
		if sprint.StartDate.IsZero() || sprint.EndDate.IsZero() {
			return nil, apperror.NewSprintUnavailableDetail(
				fmt.Sprintf("sprint %q has no date range", sprint.Name),
				"sprint is missing a start or end date",
			)
		}
		start := dateOnly(sprint.StartDate.In(r.Location))
		end := dateOnly(sprint.EndDate.In(r.Location))
		if end.After(today) {
			end = today
		}
		return &ResolvedPeriod{
			Type:      PeriodType(req.Type),
			StartDate: start,
			EndDate:   end,
			Timezone:  r.Location.String(),
			Source:    "sprint",
			Sprint:    sprint,
		}, nil

	default:
		return nil, apperror.NewInvalidPeriod(fmt.Sprintf("unknown period type %q", req.Type))
	}
}

// ListDays returns the inclusive list of ISO dates between start and end
func ListDays(start, end time.Time) []string {
	days := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(isoDateLayout))
	}
	return days
}

// parseISODate parses the date part of an ISO timestamp. Longer inputs are
// truncated to their date prefix so full timestamps are accepted.
func parseISODate(value string, loc *time.Location) (time.Time, error) {
	if len(value) < len(isoDateLayout) {
		return time.Time{}, fmt.Errorf("date too short: %q", value)
	}
	return time.ParseInLocation(isoDateLayout, value[:len(isoDateLayout)], loc)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
