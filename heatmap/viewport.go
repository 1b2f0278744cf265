// Package heatmap は、コントリビューションヒートマップの表示制御と描画を提供します。
package heatmap

import (
	"github.com/stsysd/kusa/model"
)

// FullYearWeeks は1年分のヒートマップが持つ最大の週数です。
const FullYearWeeks = 53

// WindowForWidth はビューポート幅から表示する週数を決定します。
func WindowForWidth(width int) int {
	switch {
	case width < 480:
		return 18 // small mobile: roughly 4 months
	case width < 768:
		return 28 // large mobile: roughly 6 months
	case width < 1024:
		return 40 // tablet: roughly 9 months
	default:
		return FullYearWeeks
	}
}

// VisibleWeeks は直近count週分のスライスを返します。表示専用の変換であり、
// 元のカレンダーは変更しません。
func VisibleWeeks(weeks []model.Week, count int) []model.Week {
	if len(weeks) == 0 {
		return nil
	}
	start := len(weeks) - count
	if start < 0 {
		start = 0
	}
	return weeks[start:]
}

// MonthLabel は表示ウィンドウ内の月ラベルの位置を表します。
type MonthLabel struct {
	Label string `json:"label"` // 月の略称 (Jan, Feb, ...)
	Index int    `json:"index"` // 週のインデックス
}

// MonthLabels は各週の先頭日の月が前週と変わる位置にラベルを置きます。
func MonthLabels(weeks []model.Week) []MonthLabel {
	var labels []MonthLabel
	for i, week := range weeks {
		if len(week.ContributionDays) == 0 {
			continue
		}
		month := week.ContributionDays[0].Date.Time().Month()
		if i > 0 {
			prev := weeks[i-1]
			if len(prev.ContributionDays) > 0 && prev.ContributionDays[0].Date.Time().Month() == month {
				continue
			}
		}
		labels = append(labels, MonthLabel{Label: month.String()[:3], Index: i})
	}
	return labels
}
