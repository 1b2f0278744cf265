// Package stats はコントリビューションカレンダーから統計値を導出します。
package stats

import (
	"github.com/stsysd/kusa/model"
)

// Stats はカレンダーから導出された統計値です。
type Stats struct {
	// TopDays は各月の最大コントリビューション日の集合です（月ごとに高々1日）。
	TopDays map[model.Date]struct{}
	// GlobalMaxDate は年間を通じた最大の日です。全日が0の場合は空文字列です。
	GlobalMaxDate model.Date
	// GlobalMaxCount はGlobalMaxDateのコントリビューション数です。
	GlobalMaxCount int
}

// IsTopDay は指定した日付が月間最大日かどうかを返します。
func (s Stats) IsTopDay(date model.Date) bool {
	_, ok := s.TopDays[date]
	return ok
}

type monthlyMax struct {
	count int
	date  model.Date
}

// Derive はカレンダー全体を時系列順に走査し、月間最大日と年間最大日を求めます。
// コントリビューション数が0の日は対象外です。同数の場合は先に現れた日が優先
// されます（厳密な大なり比較で更新するため）。
func Derive(cal *model.Calendar) Stats {
	s := Stats{TopDays: make(map[model.Date]struct{})}
	if cal == nil {
		return s
	}

	monthly := make(map[string]monthlyMax)
	gMaxCount := -1
	var gMaxDate model.Date

	for _, week := range cal.Weeks {
		for _, day := range week.ContributionDays {
			count := day.ContributionCount
			if count == 0 {
				continue
			}
			if count > gMaxCount {
				gMaxCount = count
				gMaxDate = day.Date
			}
			key := day.Date.MonthKey()
			if cur, ok := monthly[key]; !ok || count > cur.count {
				monthly[key] = monthlyMax{count: count, date: day.Date}
			}
		}
	}

	for _, m := range monthly {
		s.TopDays[m.date] = struct{}{}
	}
	if gMaxCount > 0 {
		s.GlobalMaxDate = gMaxDate
		s.GlobalMaxCount = gMaxCount
	}
	return s
}
