package heatmap

import (
	"strings"
	"testing"

	"github.com/stsysd/kusa/model"
	"github.com/stsysd/kusa/stats"
)

func testWeeks() []model.Week {
	return []model.Week{
		{ContributionDays: []model.ContributionDay{
			{Date: "2024-01-01", ContributionCount: 3},
			{Date: "2024-01-02", ContributionCount: 0},
			{Date: "2024-01-03", ContributionCount: 7},
		}},
		{ContributionDays: []model.ContributionDay{
			{Date: "2024-01-08", ContributionCount: 1},
		}},
	}
}

func TestGenerateYearlySVG_Empty(t *testing.T) {
	svg := GenerateYearlySVG(nil, stats.Stats{}, nil)
	if svg != "" {
		t.Errorf("Expected empty string for empty weeks, got %q", svg)
	}
}

func TestGenerateYearlySVG_DefaultOptions(t *testing.T) {
	// nilオプションでも既定値で描画されること
	svg := GenerateYearlySVG(testWeeks(), stats.Stats{}, nil)

	if !strings.HasPrefix(svg, "<svg ") {
		t.Errorf("Expected SVG output, got prefix %q", svg[:min(len(svg), 20)])
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("Expected closing svg tag")
	}
	for _, want := range []string{
		`data-date="2024-01-01" data-count="3"`,
		`<title>2024-01-01: 3</title>`,
		`>Jan</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("Expected SVG to contain %q", want)
		}
	}
	if strings.Contains(svg, "class=\"title\">@") {
		t.Error("Expected no title text without username")
	}
}

func TestGenerateYearlySVG_Title(t *testing.T) {
	opts := defaultOptions()
	opts.Username = "mdimu29ail"
	svg := GenerateYearlySVG(testWeeks(), stats.Stats{}, opts)
	if !strings.Contains(svg, `@mdimu29ail`) {
		t.Error("Expected title text with username")
	}
}

func TestGenerateYearlySVG_Levels(t *testing.T) {
	svg := GenerateYearlySVG(testWeeks(), stats.Stats{}, nil)
	opts := defaultOptions()

	// count 0 → level 0, count 1 → level 1, count 3 → level 2, count 7 → level 3
	cases := []struct {
		date  string
		color string
	}{
		{"2024-01-02", opts.Colors[0]},
		{"2024-01-08", opts.Colors[1]},
		{"2024-01-01", opts.Colors[2]},
		{"2024-01-03", opts.Colors[3]},
	}
	for _, c := range cases {
		want := `fill="` + c.color + `" data-date="` + c.date + `"`
		if !strings.Contains(svg, want) {
			t.Errorf("Expected cell %s to have fill %s", c.date, c.color)
		}
	}
}

func TestGenerateYearlySVG_Highlights(t *testing.T) {
	derived := stats.Stats{
		TopDays:        map[model.Date]struct{}{"2024-01-01": {}, "2024-01-03": {}},
		GlobalMaxDate:  "2024-01-03",
		GlobalMaxCount: 7,
	}
	opts := defaultOptions()
	opts.TopDayColor = "#aaaaaa"
	opts.MaxDayColor = "#bbbbbb"
	svg := GenerateYearlySVG(testWeeks(), derived, opts)

	if !strings.Contains(svg, `fill="#aaaaaa" data-date="2024-01-01"`) {
		t.Error("Expected monthly top day to use the highlight color")
	}
	// 全体最大日は月間最大色より優先されること
	if !strings.Contains(svg, `fill="#bbbbbb" data-date="2024-01-03"`) {
		t.Error("Expected global max day to use the max color")
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{5, 2},
		{6, 3},
		{100, 3},
	}
	for _, tt := range tests {
		if got := levelFor(tt.count); got != tt.want {
			t.Errorf("levelFor(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}
