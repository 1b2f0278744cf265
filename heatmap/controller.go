package heatmap

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stsysd/kusa/model"
	"github.com/stsysd/kusa/stats"
	"github.com/stsysd/kusa/store"
)

// DefaultDebounce はホバーから詳細取得までの既定の遅延です。
const DefaultDebounce = 250 * time.Millisecond

// CalendarSource は年単位のカレンダー取得を提供します。取得に失敗した場合も
// 合成データへフォールバックした結果を返すため、エラーを返しません。
type CalendarSource interface {
	FetchCalendar(ctx context.Context, year model.Year) *model.CalendarResult
}

// ActivitySource は日別アクティビティの取得を提供します。
type ActivitySource interface {
	FetchDayActivity(ctx context.Context, date model.Date) ([]model.RepoActivity, error)
}

// Controller はヒートマップの状態機械です。選択中の年のカレンダーと統計値、
// ホバー・選択状態、日別アクティビティのキャッシュとローディング集合を所有し、
// すべての変更は自身のメソッド経由で行われます。
type Controller struct {
	calendars CalendarSource
	events    ActivitySource
	store     store.ActivityStore
	debounce  time.Duration
	log       *logrus.Entry

	mu              sync.Mutex
	year            model.Year
	calendar        *model.Calendar
	source          model.CalendarSource
	derived         stats.Stats
	calendarLoading bool
	hovered         model.Date
	selected        model.Date
	loading         map[model.Date]struct{}
	timer           *time.Timer
}

// NewController は新しいControllerを生成します。debounceが0以下の場合は
// DefaultDebounceを使用します。
func NewController(calendars CalendarSource, events ActivitySource, st store.ActivityStore, debounce time.Duration) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		calendars: calendars,
		events:    events,
		store:     st,
		debounce:  debounce,
		log:       logrus.WithField("component", "heatmap"),
		loading:   make(map[model.Date]struct{}),
	}
}

// SelectYear は指定した年のカレンダーを取得し、統計値を再計算して
// 状態を丸ごと差し替えます。ホバー状態はリセットされますが、日別
// アクティビティのキャッシュは維持されます（日付は年をまたいでも
// 一意なため衝突しません）。
func (c *Controller) SelectYear(ctx context.Context, year model.Year) *model.CalendarResult {
	c.mu.Lock()
	c.calendarLoading = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.hovered = ""
	c.mu.Unlock()

	// ネットワーク呼び出し中はロックを保持しない
	result := c.calendars.FetchCalendar(ctx, year)
	derived := stats.Derive(result.Calendar)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.year = year
	c.calendar = result.Calendar
	c.source = result.Source
	c.derived = derived
	c.calendarLoading = false

	c.log.WithFields(logrus.Fields{
		"year":   year.Int(),
		"source": string(result.Source),
		"total":  result.Calendar.TotalContributions,
	}).Info("calendar selected")
	return result
}

// Refresh は現在選択中の年のカレンダーを再取得します。
func (c *Controller) Refresh(ctx context.Context) *model.CalendarResult {
	c.mu.Lock()
	year := c.year
	c.mu.Unlock()
	return c.SelectYear(ctx, year)
}

// Hover はホバー対象の日付を記録し、デバウンスタイマーを張り直します。
// 直前のタイマーが未発火であればキャンセルされるため、素早く移動した
// 日付の取得は発生しません。
func (c *Controller) Hover(date model.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.hovered = date
	if date == "" {
		return
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fireDebounce(date)
	})
}

// Leave はホバー状態を解除します。
func (c *Controller) Leave() {
	c.Hover("")
}

// fireDebounce はタイマー発火時にホバー対象が変わっていなければ取得します。
func (c *Controller) fireDebounce(date model.Date) {
	c.mu.Lock()
	if c.hovered != date {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if _, err := c.EnsureDay(context.Background(), date); err != nil && !errors.Is(err, model.ErrDayLoading) {
		c.log.WithError(err).WithField("date", date.String()).Warn("hover fetch failed")
	}
}

// EnsureDay は指定日のアクティビティがキャッシュに存在することを保証します。
// キャッシュ済みであればネットワークを呼ばずに返します。取得に失敗した場合は
// 空の結果をキャッシュし、ローディング状態が残らないようにします。
// 同じ日付の取得が既に進行中の場合はmodel.ErrDayLoadingを返します。
func (c *Controller) EnsureDay(ctx context.Context, date model.Date) ([]model.RepoActivity, error) {
	repos, err := c.store.GetDayActivity(ctx, date)
	if err == nil {
		return repos, nil
	}
	if !errors.Is(err, model.ErrDayNotCached) {
		return nil, err
	}

	c.mu.Lock()
	if _, busy := c.loading[date]; busy {
		c.mu.Unlock()
		return nil, model.ErrDayLoading
	}
	c.loading[date] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.loading, date)
		c.mu.Unlock()
	}()

	repos, err = c.events.FetchDayActivity(ctx, date)
	if err != nil {
		c.log.WithError(err).WithField("date", date.String()).Warn("day activity fetch failed, caching empty result")
		repos = []model.RepoActivity{}
	}
	if err := c.store.PutDayActivity(ctx, date, repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ToggleSelect は日付の選択状態を切り替えます。別の日付を選択すると
// 直前の選択は解除されます（単一選択モデル）。選択自体は取得を
// 引き起こしません。
func (c *Controller) ToggleSelect(date model.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == date {
		c.selected = ""
	} else {
		c.selected = date
	}
}

// CachedDay は指定日のアクティビティがキャッシュ済みかどうかを返します。
func (c *Controller) CachedDay(ctx context.Context, date model.Date) (bool, error) {
	return c.store.HasDay(ctx, date)
}

// DayLoading は指定日の取得が進行中かどうかを返します。
func (c *Controller) DayLoading(date model.Date) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loading[date]
	return ok
}

// Day は読み込み済みカレンダーから指定日のContributionDayを引きます。
func (c *Controller) Day(date model.Date) (model.ContributionDay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calendar == nil {
		return model.ContributionDay{}, false
	}
	return c.calendar.Day(date)
}

// VisibleWeeks はビューポート幅に応じた直近の週のスライスを返します。
func (c *Controller) VisibleWeeks(width int) []model.Week {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calendar == nil {
		return nil
	}
	return VisibleWeeks(c.calendar.Weeks, WindowForWidth(width))
}

// Calendar は現在のカレンダーを返します。読み取り専用として扱ってください。
func (c *Controller) Calendar() *model.Calendar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calendar
}

// Stats は現在のカレンダーから導出された統計値を返します。
func (c *Controller) Stats() stats.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.derived
}

// View はレンダリング向けの読み取り専用スナップショットです。
type View struct {
	Year               int                  `json:"year"`
	TotalContributions int                  `json:"totalContributions"`
	Source             model.CalendarSource `json:"source"`
	TopDays            []model.Date         `json:"topDays"`
	GlobalMaxDate      model.Date           `json:"globalMaxDate,omitempty"`
	Hovered            model.Date           `json:"hovered,omitempty"`
	Selected           model.Date           `json:"selected,omitempty"`
	CalendarLoading    bool                 `json:"calendarLoading"`
}

// Snapshot は現在の状態のスナップショットを返します。
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Year:            c.year.Int(),
		Source:          c.source,
		GlobalMaxDate:   c.derived.GlobalMaxDate,
		Hovered:         c.hovered,
		Selected:        c.selected,
		CalendarLoading: c.calendarLoading,
	}
	if c.calendar != nil {
		v.TotalContributions = c.calendar.TotalContributions
	}
	v.TopDays = make([]model.Date, 0, len(c.derived.TopDays))
	for d := range c.derived.TopDays {
		v.TopDays = append(v.TopDays, d)
	}
	sort.Slice(v.TopDays, func(i, j int) bool { return v.TopDays[i] < v.TopDays[j] })
	return v
}
