// yearly.go
// Generates a GitHub-like yearly contribution heatmap as an SVG string in Go.
package heatmap

import (
	"fmt"
	"strings"

	"github.com/stsysd/kusa/model"
	"github.com/stsysd/kusa/stats"
)

// Options configures rendering parameters.
type Options struct {
	CellSize    int      // size of each day cell (px)
	CellPadding int      // padding between cells (px)
	Colors      []string // CSS colors for levels 0..3 (empty, low, mid, high)
	TopDayColor string   // color for monthly maximum days
	MaxDayColor string   // color for the global maximum day
	FontSize    int      // font size for month labels (px)
	FontFamily  string   // font family for labels
	Username    string   // username for title
}

// defaultOptions はオリジナルのダークテーマ配色に合わせた既定値です。
func defaultOptions() *Options {
	return &Options{
		CellSize:    12,
		CellPadding: 2,
		FontSize:    10,
		FontFamily:  "sans-serif",
		Colors:      []string{"#161b22", "#27272a", "#52525b", "#a1a1aa"},
		TopDayColor: "#d9ff00",
		MaxDayColor: "#d9ff00",
	}
}

// levelFor maps a contribution count to a color level (0..3).
func levelFor(count int) int {
	switch {
	case count == 0:
		return 0
	case count < 3:
		return 1
	case count < 6:
		return 2
	default:
		return 3
	}
}

// GenerateYearlySVG returns an SVG string representing the heatmap for the
// given weeks. Monthly maximum days and the global maximum day are rendered
// with the highlight colors from opts.
func GenerateYearlySVG(weeks []model.Week, derived stats.Stats, opts *Options) string {
	if opts == nil {
		opts = defaultOptions()
	}

	if len(weeks) == 0 {
		return ""
	}

	// compute dimensions
	titleHeight := 0
	if opts.Username != "" {
		titleHeight = opts.FontSize + 8 // title text + padding
	}
	width := len(weeks)*(opts.CellSize+opts.CellPadding) + opts.CellPadding
	height := 7*(opts.CellSize+opts.CellPadding) + opts.CellPadding + opts.FontSize + 4 + titleHeight

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height))
	sb.WriteString(fmt.Sprintf(`  <style>.label{font-family:%s;font-size:%dpx;fill:#666}.title{font-family:%s;font-size:%dpx;fill:#333;font-weight:bold}</style>`+"\n",
		opts.FontFamily, opts.FontSize, opts.FontFamily, opts.FontSize))

	// render title if a username is provided
	if opts.Username != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" class="title">@%s</text>`+"\n",
			opts.CellPadding, opts.FontSize, opts.Username))
	}

	// month labels at week columns where the month changes
	monthLabelY := opts.FontSize + titleHeight
	for _, label := range MonthLabels(weeks) {
		x := opts.CellPadding + label.Index*(opts.CellSize+opts.CellPadding)
		sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" class="label">%s</text>`+"\n",
			x, monthLabelY, label.Label))
	}

	// draw one column per week, one cell per day
	for w, week := range weeks {
		for i, day := range week.ContributionDays {
			fill := opts.Colors[levelFor(day.ContributionCount)]
			if derived.IsTopDay(day.Date) {
				fill = opts.TopDayColor
			}
			if day.Date == derived.GlobalMaxDate {
				fill = opts.MaxDayColor
			}
			x := opts.CellPadding + w*(opts.CellSize+opts.CellPadding)
			y := opts.CellPadding + opts.FontSize + 4 + titleHeight + i*(opts.CellSize+opts.CellPadding)

			// 各セルに矩形と、その中にtitle要素（ツールチップ）を追加
			sb.WriteString(fmt.Sprintf(`  <rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s" data-date="%s" data-count="%d">`+"\n",
				x, y, opts.CellSize, opts.CellSize, fill, day.Date.String(), day.ContributionCount))
			sb.WriteString(fmt.Sprintf(`    <title>%s: %d</title>`+"\n", day.Date.String(), day.ContributionCount))
			sb.WriteString(`  </rect>` + "\n")
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}
