package domain

import (
	"math"
	"time"
)

// IssueRecord is the slim issue projection the dashboard works with
type IssueRecord struct {
	Key     string    `json:"key"`
	Type    string    `json:"type"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
	Summary string    `json:"summary,omitempty"`
}

// ClassificationRules defines how issues are classified for the dashboard.
// Injected from configuration so workflow renames never touch this package.
type ClassificationRules struct {
	BugType        string
	SubBugType     string
	CanceledStatus string
	ClosedStatuses []string
}

// DefectLeakage measures the share of valid defects that escaped to
// production (bugs) versus those caught before release (sub-bugs)
type DefectLeakage struct {
	RatePercent       float64 `json:"ratePercent"`
	ProductionBugs    int     `json:"productionBugs"`
	TotalDefectsValid int     `json:"totalDefectsValid"`
}

// DefectValidRate measures the share of reported defects that were valid
type DefectValidRate struct {
	RatePercent       float64 `json:"ratePercent"`
	TotalDefectsValid int     `json:"totalDefectsValid"`
	TotalReported     int     `json:"totalReported"`
}

// DefectsRatio relates pre-release sub-bugs to production bugs.
// Ratio is nil when there are no valid bugs; the ratio is undefined then,
// which is not the same as zero.
type DefectsRatio struct {
	Ratio        *float64 `json:"ratio"`
	SubBugsValid int      `json:"subBugsValid"`
	BugsValid    int      `json:"bugsValid"`
}

// Breakdown is a closed/open/total triple over valid issues
type Breakdown struct {
	Closed int `json:"closed"`
	Open   int `json:"open"`
	Total  int `json:"total"`
}

// DashboardMetrics aggregates the period's defect metrics
type DashboardMetrics struct {
	DefectLeakage    DefectLeakage   `json:"defectLeakage"`
	DefectValidRate  DefectValidRate `json:"defectValidRate"`
	DefectsRatio     DefectsRatio    `json:"defectsRatio"`
	DefectsBreakdown Breakdown       `json:"defectsBreakdown"`
	BugsBreakdown    Breakdown       `json:"bugsBreakdown"`
}

// SeriesPoint is one day's value of a rate series with its raw counts
type SeriesPoint struct {
	Numerator   int     `json:"numerator"`
	Denominator int     `json:"denominator"`
	Value       float64 `json:"value"`
}

// DailySeries holds the per-day chart data for the period. All arrays are
// parallel to Labels and zero-filled for days without issues.
type DailySeries struct {
	Labels    []string      `json:"labels"`
	Leakage   []SeriesPoint `json:"leakage"`
	ValidRate []SeriesPoint `json:"validRate"`
}

type dayCounts struct {
	reported int
	valid    int
	bugs     int
}

// AggregateDefects computes the dashboard metrics and daily series for a set
// of fetched issues over the period's inclusive day list. Pure function:
// same inputs always produce identical output.
func AggregateDefects(issues []IssueRecord, days []string, rules ClassificationRules, loc *time.Location) (DashboardMetrics, DailySeries) {
	closed := make(map[string]bool, len(rules.ClosedStatuses))
	for _, s := range rules.ClosedStatuses {
		closed[s] = true
	}
	daySet := make(map[string]bool, len(days))
	for _, d := range days {
		daySet[d] = true
	}
	perDay := make(map[string]*dayCounts, len(days))

	var (
		totalReported int
		totalValid    int
		bugsValid     int
		subBugsValid  int
		bugsClosed    int
		subBugsClosed int
	)

	for _, issue := range issues {
		isBug := issue.Type == rules.BugType
		isSubBug := issue.Type == rules.SubBugType
		if !isBug && !isSubBug {
			continue
		}

		valid := issue.Status != rules.CanceledStatus
		isClosed := closed[issue.Status]

		totalReported++
		if valid {
			totalValid++
			if isBug {
				bugsValid++
				if isClosed {
					bugsClosed++
				}
			} else {
				subBugsValid++
				if isClosed {
					subBugsClosed++
				}
			}
		}

		// Issues created at a period boundary can land outside the day list
		// after timezone conversion; those do not contribute to the series.
		day := issue.Created.In(loc).Format(isoDateLayout)
		if !daySet[day] {
			continue
		}
		counts := perDay[day]
		if counts == nil {
			counts = &dayCounts{}
			perDay[day] = counts
		}
		counts.reported++
		if valid {
			counts.valid++
			if isBug {
				counts.bugs++
			}
		}
	}

	metrics := DashboardMetrics{
		DefectLeakage: DefectLeakage{
			RatePercent:       ratePercent(bugsValid, totalValid),
			ProductionBugs:    bugsValid,
			TotalDefectsValid: totalValid,
		},
		DefectValidRate: DefectValidRate{
			RatePercent:       ratePercent(totalValid, totalReported),
			TotalDefectsValid: totalValid,
			TotalReported:     totalReported,
		},
		DefectsRatio: DefectsRatio{
			SubBugsValid: subBugsValid,
			BugsValid:    bugsValid,
		},
		DefectsBreakdown: Breakdown{
			Closed: subBugsClosed,
			Open:   subBugsValid - subBugsClosed,
			Total:  subBugsValid,
		},
		BugsBreakdown: Breakdown{
			Closed: bugsClosed,
			Open:   bugsValid - bugsClosed,
			Total:  bugsValid,
		},
	}
	if bugsValid > 0 {
		ratio := round2(float64(subBugsValid) / float64(bugsValid))
		metrics.DefectsRatio.Ratio = &ratio
	}

	series := DailySeries{
		Labels:    days,
		Leakage:   make([]SeriesPoint, 0, len(days)),
		ValidRate: make([]SeriesPoint, 0, len(days)),
	}
	for _, day := range days {
		counts := perDay[day]
		if counts == nil {
			counts = &dayCounts{}
		}
		series.Leakage = append(series.Leakage, SeriesPoint{
			Numerator:   counts.bugs,
			Denominator: counts.valid,
			Value:       ratePercent(counts.bugs, counts.valid),
		})
		series.ValidRate = append(series.ValidRate, SeriesPoint{
			Numerator:   counts.valid,
			Denominator: counts.reported,
			Value:       ratePercent(counts.valid, counts.reported),
		})
	}

	return metrics, series
}

func ratePercent(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0.0
	}
	return round2(float64(numerator) / float64(denominator) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HoursRounded converts a duration to hours rounded to 2 decimals
func HoursRounded(d time.Duration) float64 {
	return round2(d.Hours())
}
