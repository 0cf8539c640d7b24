package domain

import (
	"reflect"
	"testing"
	"time"
)

func testRules() ClassificationRules {
	return ClassificationRules{
		BugType:        "Bug",
		SubBugType:     "Sub-Bug",
		CanceledStatus: "Canceled",
		ClosedStatuses: []string{"Applied in production", "Concluído", "Done", "Resolved", "Closed"},
	}
}

func mayDays() []string {
	return ListDays(
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	)
}

func TestAggregateDefects_Example(t *testing.T) {
	issues := []IssueRecord{
		{Key: "PROJ-1", Type: "Bug", Status: "Done", Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{Key: "PROJ-2", Type: "Bug", Status: "Canceled", Created: time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)},
		{Key: "PROJ-3", Type: "Sub-Bug", Status: "Open", Created: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)},
	}

	metrics, _ := AggregateDefects(issues, mayDays(), testRules(), time.UTC)

	if metrics.DefectValidRate.TotalReported != 3 {
		t.Errorf("Expected totalReported 3, got %d", metrics.DefectValidRate.TotalReported)
	}
	if metrics.DefectValidRate.TotalDefectsValid != 2 {
		t.Errorf("Expected totalDefectsValid 2, got %d", metrics.DefectValidRate.TotalDefectsValid)
	}
	if metrics.DefectLeakage.ProductionBugs != 1 {
		t.Errorf("Expected 1 valid production bug, got %d", metrics.DefectLeakage.ProductionBugs)
	}
	if metrics.DefectLeakage.RatePercent != 50.0 {
		t.Errorf("Expected leakage 50.0, got %v", metrics.DefectLeakage.RatePercent)
	}
	if metrics.DefectsRatio.Ratio == nil || *metrics.DefectsRatio.Ratio != 1.0 {
		t.Errorf("Expected ratio 1.0, got %v", metrics.DefectsRatio.Ratio)
	}
	if metrics.BugsBreakdown.Closed != 1 || metrics.BugsBreakdown.Open != 0 || metrics.BugsBreakdown.Total != 1 {
		t.Errorf("Unexpected bugs breakdown: %+v", metrics.BugsBreakdown)
	}
	if metrics.DefectsBreakdown.Closed != 0 || metrics.DefectsBreakdown.Open != 1 || metrics.DefectsBreakdown.Total != 1 {
		t.Errorf("Unexpected defects breakdown: %+v", metrics.DefectsBreakdown)
	}
}

func TestAggregateDefects_DefectsBreakdownCountsSubBugsOnly(t *testing.T) {
	issues := []IssueRecord{
		{Key: "PROJ-1", Type: "Bug", Status: "Done", Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{Key: "PROJ-2", Type: "Sub-Bug", Status: "Open", Created: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)},
	}

	metrics, _ := AggregateDefects(issues, mayDays(), testRules(), time.UTC)

	if metrics.DefectsBreakdown.Closed != 0 || metrics.DefectsBreakdown.Open != 1 || metrics.DefectsBreakdown.Total != 1 {
		t.Errorf("Expected sub-bug-only breakdown {0 1 1}, got %+v", metrics.DefectsBreakdown)
	}
	if metrics.BugsBreakdown.Closed != 1 || metrics.BugsBreakdown.Open != 0 || metrics.BugsBreakdown.Total != 1 {
		t.Errorf("Unexpected bugs breakdown: %+v", metrics.BugsBreakdown)
	}
}

func TestAggregateDefects_RatioNilWhenNoValidBugs(t *testing.T) {
	issues := []IssueRecord{
		{Key: "PROJ-1", Type: "Sub-Bug", Status: "Open", Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{Key: "PROJ-2", Type: "Bug", Status: "Canceled", Created: time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)},
	}

	metrics, _ := AggregateDefects(issues, mayDays(), testRules(), time.UTC)

	if metrics.DefectsRatio.Ratio != nil {
		t.Errorf("Expected nil ratio when there are no valid bugs, got %v", *metrics.DefectsRatio.Ratio)
	}
	if metrics.DefectsRatio.SubBugsValid != 1 {
		t.Errorf("Expected 1 valid sub-bug, got %d", metrics.DefectsRatio.SubBugsValid)
	}
}

func TestAggregateDefects_ZeroGuards(t *testing.T) {
	metrics, series := AggregateDefects(nil, mayDays(), testRules(), time.UTC)

	if metrics.DefectLeakage.RatePercent != 0.0 {
		t.Errorf("Expected leakage 0.0 with no issues, got %v", metrics.DefectLeakage.RatePercent)
	}
	if metrics.DefectValidRate.RatePercent != 0.0 {
		t.Errorf("Expected valid rate 0.0 with no issues, got %v", metrics.DefectValidRate.RatePercent)
	}
	for i, point := range series.ValidRate {
		if point.Value != 0.0 || point.Numerator != 0 || point.Denominator != 0 {
			t.Errorf("Expected zero-filled point at index %d, got %+v", i, point)
		}
	}
}

func TestAggregateDefects_SeriesZeroFill(t *testing.T) {
	days := ListDays(
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
	)
	issues := []IssueRecord{
		{Key: "PROJ-1", Type: "Bug", Status: "Done", Created: time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)},
	}

	_, series := AggregateDefects(issues, days, testRules(), time.UTC)

	if len(series.Labels) != 7 {
		t.Fatalf("Expected 7 labels, got %d", len(series.Labels))
	}
	if len(series.Leakage) != 7 || len(series.ValidRate) != 7 {
		t.Fatalf("Expected series parallel to labels, got %d/%d", len(series.Leakage), len(series.ValidRate))
	}
	if series.ValidRate[2].Numerator != 1 || series.ValidRate[2].Value != 100.0 {
		t.Errorf("Expected the single issue on 2024-05-03, got %+v", series.ValidRate[2])
	}
	for i, point := range series.ValidRate {
		if i == 2 {
			continue
		}
		if point.Numerator != 0 || point.Denominator != 0 {
			t.Errorf("Expected zero-filled day at index %d, got %+v", i, point)
		}
	}
}

func TestAggregateDefects_SkipsOtherIssueTypes(t *testing.T) {
	issues := []IssueRecord{
		{Key: "PROJ-1", Type: "Story", Status: "Done", Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{Key: "PROJ-2", Type: "Task", Status: "Open", Created: time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)},
		{Key: "PROJ-3", Type: "Bug", Status: "Open", Created: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}

	metrics, _ := AggregateDefects(issues, mayDays(), testRules(), time.UTC)

	if metrics.DefectValidRate.TotalReported != 1 {
		t.Errorf("Expected only the bug to be counted, got totalReported %d", metrics.DefectValidRate.TotalReported)
	}
}

func TestAggregateDefects_IgnoresDaysOutsidePeriod(t *testing.T) {
	issues := []IssueRecord{
		{Key: "PROJ-1", Type: "Bug", Status: "Open", Created: time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC)},
		{Key: "PROJ-2", Type: "Bug", Status: "Open", Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}

	metrics, series := AggregateDefects(issues, mayDays(), testRules(), time.UTC)

	// both count toward totals, only the in-period one appears in the series
	if metrics.DefectValidRate.TotalReported != 2 {
		t.Errorf("Expected totalReported 2, got %d", metrics.DefectValidRate.TotalReported)
	}
	if series.ValidRate[0].Numerator != 1 {
		t.Errorf("Expected 1 issue on the first day, got %d", series.ValidRate[0].Numerator)
	}
}

func TestAggregateDefects_Idempotent(t *testing.T) {
	issues := []IssueRecord{
		{Key: "PROJ-1", Type: "Bug", Status: "Done", Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{Key: "PROJ-2", Type: "Sub-Bug", Status: "Open", Created: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)},
		{Key: "PROJ-3", Type: "Bug", Status: "Canceled", Created: time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)},
	}
	days := mayDays()
	rules := testRules()

	metrics1, series1 := AggregateDefects(issues, days, rules, time.UTC)
	metrics2, series2 := AggregateDefects(issues, days, rules, time.UTC)

	if !reflect.DeepEqual(metrics1, metrics2) {
		t.Error("Expected identical metrics across runs")
	}
	if !reflect.DeepEqual(series1, series2) {
		t.Error("Expected identical series across runs")
	}
}
