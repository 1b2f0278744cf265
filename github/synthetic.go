package github

import (
	"math/rand/v2"
	"time"

	"github.com/stsysd/kusa/model"
)

// zeroDayProbability は合成データで1日のカウントを0にする確率です。
const zeroDayProbability = 0.4

// SyntheticCalendar はフォールバック用の合成カレンダーを生成します。
// 対象年の1月1日から12月31日までの全日に対して、確率0.4で0、
// それ以外は[0, 7]の一様乱数をカウントとして割り当て、1月1日起点で
// 7日ごとの週にまとめます（最終週は短くなることがあります）。
// 週構造と日付範囲は決定的で、カウント値のみが乱数です。
func SyntheticCalendar(year model.Year) *model.Calendar {
	cal := &model.Calendar{}

	current := year.From()
	end := time.Date(year.Int(), time.December, 31, 0, 0, 0, 0, time.UTC)

	for !current.After(end) {
		week := model.Week{}
		for i := 0; i < 7 && !current.After(end); i++ {
			count := 0
			if rand.Float64() >= zeroDayProbability {
				count = rand.IntN(8)
			}
			week.ContributionDays = append(week.ContributionDays, model.ContributionDay{
				Date:              model.DateOf(current),
				ContributionCount: count,
			})
			cal.TotalContributions += count
			current = current.AddDate(0, 0, 1)
		}
		cal.Weeks = append(cal.Weeks, week)
	}

	return cal
}
