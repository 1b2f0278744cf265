package github

import (
	"fmt"
	"testing"

	"github.com/stsysd/kusa/model"
)

// 合成データは構造が決定的でカウント値のみが乱数のため、
// テストは構造的な契約だけを検証する。
func TestSyntheticCalendar_Structure(t *testing.T) {
	for _, year := range []int{2023, 2024} { // 平年とうるう年
		t.Run(fmt.Sprintf("year_%d", year), func(t *testing.T) {
			cal := SyntheticCalendar(model.Year(year))

			if len(cal.Weeks) == 0 {
				t.Fatal("Expected non-empty weeks")
			}

			firstWeek := cal.Weeks[0]
			firstDay := firstWeek.ContributionDays[0]
			if firstDay.Date != model.Date(fmt.Sprintf("%d-01-01", year)) {
				t.Errorf("Expected first day Jan 1, got %s", firstDay.Date)
			}

			lastWeek := cal.Weeks[len(cal.Weeks)-1]
			lastDay := lastWeek.ContributionDays[len(lastWeek.ContributionDays)-1]
			if lastDay.Date != model.Date(fmt.Sprintf("%d-12-31", year)) {
				t.Errorf("Expected last day Dec 31, got %s", lastDay.Date)
			}

			expectedDays := 365
			if year%4 == 0 {
				expectedDays = 366
			}
			totalDays := 0
			for i, week := range cal.Weeks {
				n := len(week.ContributionDays)
				if n == 0 || n > 7 {
					t.Fatalf("Week %d holds %d days", i, n)
				}
				// 最終週以外は7日であること
				if i < len(cal.Weeks)-1 && n != 7 {
					t.Errorf("Week %d holds %d days, expected 7", i, n)
				}
				totalDays += n
			}
			if totalDays != expectedDays {
				t.Errorf("Expected %d days, got %d", expectedDays, totalDays)
			}

			if err := cal.Validate(); err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestSyntheticCalendar_TotalMatchesSum(t *testing.T) {
	cal := SyntheticCalendar(model.Year(2024))
	if cal.TotalContributions != cal.SumCounts() {
		t.Errorf("Expected total %d to equal sum %d", cal.TotalContributions, cal.SumCounts())
	}
}

func TestSyntheticCalendar_CountsInRange(t *testing.T) {
	cal := SyntheticCalendar(model.Year(2024))
	for _, week := range cal.Weeks {
		for _, d := range week.ContributionDays {
			if d.ContributionCount < 0 || d.ContributionCount > 7 {
				t.Fatalf("Count %d on %s out of range [0, 7]", d.ContributionCount, d.Date)
			}
		}
	}
}
