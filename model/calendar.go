// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import "fmt"

// ContributionDay は1日分のコントリビューション数を表すモデルです。
type ContributionDay struct {
	Date              Date `json:"date"`              // 日付 (YYYY-MM-DD)
	ContributionCount int  `json:"contributionCount"` // コントリビューション数
}

// Week は最大7日分のContributionDayの並びです。
type Week struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

// Calendar は1年分のコントリビューションカレンダーを表すモデルです。
type Calendar struct {
	TotalContributions int    `json:"totalContributions"` // 全日数の合計
	Weeks              []Week `json:"weeks"`              // 週ごとの並び（昇順）
}

// CalendarSource はカレンダーの取得元を表します。
type CalendarSource string

const (
	// SourceGitHub はGitHub GraphQL APIから取得したカレンダーを示します。
	SourceGitHub CalendarSource = "github"
	// SourceSynthetic はフォールバックとして生成されたカレンダーを示します。
	SourceSynthetic CalendarSource = "synthetic"
)

// CalendarResult はカレンダー取得結果とその取得元を保持します。
// 取得に失敗した場合でもSource=SourceSyntheticの結果が返るため、
// 呼び出し側がフォールバック経路を取りこぼすことはありません。
type CalendarResult struct {
	Calendar *Calendar      `json:"calendar"`
	Source   CalendarSource `json:"source"`
}

// Validate はカレンダーの構造的な整合性を検証します。
func (c *Calendar) Validate() error {
	for _, week := range c.Weeks {
		if len(week.ContributionDays) == 0 || len(week.ContributionDays) > 7 {
			return NewValidationError(fmt.Sprintf("week must hold 1 to 7 days, got %d", len(week.ContributionDays)))
		}
		for _, day := range week.ContributionDays {
			if !day.Date.IsValid() {
				return NewValidationError(fmt.Sprintf("invalid date: %q", day.Date))
			}
			if day.ContributionCount < 0 {
				return NewValidationError(fmt.Sprintf("negative contribution count on %s", day.Date))
			}
		}
	}
	return nil
}

// Day は指定した日付のContributionDayを返します。
func (c *Calendar) Day(date Date) (ContributionDay, bool) {
	for _, week := range c.Weeks {
		for _, day := range week.ContributionDays {
			if day.Date == date {
				return day, true
			}
		}
	}
	return ContributionDay{}, false
}

// SumCounts は全日数のコントリビューション数を合計します。
func (c *Calendar) SumCounts() int {
	var total int
	for _, week := range c.Weeks {
		for _, day := range week.ContributionDays {
			total += day.ContributionCount
		}
	}
	return total
}
