// Package api はkusaのAPIサーバー実装を提供します。
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"

	"github.com/stsysd/kusa/config"
	"github.com/stsysd/kusa/heatmap"
	"github.com/stsysd/kusa/model"
)

// Server はAPIサーバーの構造体です。
type Server struct {
	router *http.ServeMux
	ctrl   *heatmap.Controller
	config *config.Config
	log    *logrus.Entry
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := ErrorResponse{
		Error: message,
		Code:  statusCode,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Error("failed to encode error response")
	}
}

// writeJSON はJSON形式でレスポンスを返却します。
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(ctrl *heatmap.Controller, config *config.Config) *Server {
	s := &Server{
		router: http.NewServeMux(),
		ctrl:   ctrl,
		config: config,
		log:    logrus.WithField("component", "api"),
	}
	s.routes()
	return s
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// ヘルスチェックエンドポイントは認証不要
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)

	// 閲覧系エンドポイント（公開）
	s.router.HandleFunc("GET /api/v0/years", s.handleListYears)
	s.router.HandleFunc("GET /api/v0/calendar", s.handleGetCalendar)
	s.router.HandleFunc("GET /api/v0/days/{date}", s.handleGetDay)
	s.router.HandleFunc("GET /api/v0/days/{date}/activity", s.handleGetDayActivity)

	// Graph endpoints - support both with and without .svg extension
	s.router.HandleFunc("GET /graph.svg", s.handleGetGraph)
	s.router.HandleFunc("GET /graph", s.handleGetGraph)

	// 管理系エンドポイントには認証ミドルウェアを適用
	s.router.Handle("POST /api/v0/refresh", s.authMiddleware(http.HandlerFunc(s.handleRefresh)))
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler はCORSとリクエストログを適用したハンドラーを返します。
// ブラウザ上のフロントエンドから直接呼び出されることを想定しています。
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-API-Key"}),
	)
	return handlers.LoggingHandler(os.Stdout, cors(s.router))
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListYears は選択可能な年の一覧を返すハンドラーです。
func (s *Server) handleListYears(w http.ResponseWriter, r *http.Request) {
	years := model.YearsSince(s.config.FirstYear)
	s.writeJSON(w, http.StatusOK, map[string][]int{"years": years})
}

// GetCalendarParams represents parameters for getting a calendar.
type GetCalendarParams struct {
	Year model.Year
}

// NewGetCalendarParams creates parameters for calendar retrieval from HTTP request.
func NewGetCalendarParams(r *http.Request) (*GetCalendarParams, error) {
	year, err := model.ParseYear(r.URL.Query().Get("year"))
	if err != nil {
		return nil, err
	}
	return &GetCalendarParams{Year: year}, nil
}

// calendarResponse はカレンダーエンドポイントのレスポンスです。
type calendarResponse struct {
	Year               int                  `json:"year"`
	Username           string               `json:"username"`
	Source             model.CalendarSource `json:"source"`
	TotalContributions int                  `json:"totalContributions"`
	TopDays            []model.Date         `json:"topDays"`
	GlobalMaxDate      model.Date           `json:"globalMaxDate,omitempty"`
	Weeks              []model.Week         `json:"weeks"`
	MonthLabels        []heatmap.MonthLabel `json:"monthLabels"`
}

// handleGetCalendar は指定年のカレンダーを選択・取得するハンドラーです。
// 取得に失敗した場合も合成データで応答するため、このエンドポイントが
// 失敗を返すのはパラメータ不正のときだけです。
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	params, err := NewGetCalendarParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.ctrl.SelectYear(r.Context(), params.Year)
	snapshot := s.ctrl.Snapshot()

	resp := calendarResponse{
		Year:               params.Year.Int(),
		Username:           s.config.Username,
		Source:             result.Source,
		TotalContributions: result.Calendar.TotalContributions,
		TopDays:            snapshot.TopDays,
		GlobalMaxDate:      snapshot.GlobalMaxDate,
		Weeks:              result.Calendar.Weeks,
		MonthLabels:        heatmap.MonthLabels(result.Calendar.Weeks),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetDayParams represents parameters for day endpoints.
type GetDayParams struct {
	Date model.Date
}

// NewGetDayParams creates parameters for day retrieval from HTTP request.
func NewGetDayParams(r *http.Request) (*GetDayParams, error) {
	date, err := model.ParseDate(r.PathValue("date"))
	if err != nil {
		return nil, err
	}
	return &GetDayParams{Date: date}, nil
}

// dayResponse は日別エンドポイントのレスポンスです。
type dayResponse struct {
	Date              model.Date `json:"date"`
	ContributionCount int        `json:"contributionCount"`
	InCalendar        bool       `json:"inCalendar"`
	ActivityStatus    string     `json:"activityStatus"` // resolved / loading / unknown
}

// handleGetDay は読み込み済みカレンダー上の1日分の情報を返すハンドラーです。
func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	params, err := NewGetDayParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := dayResponse{Date: params.Date, ActivityStatus: "unknown"}
	if day, ok := s.ctrl.Day(params.Date); ok {
		resp.ContributionCount = day.ContributionCount
		resp.InCalendar = true
	}
	if s.ctrl.DayLoading(params.Date) {
		resp.ActivityStatus = "loading"
	} else if cached, err := s.ctrl.CachedDay(r.Context(), params.Date); err == nil && cached {
		resp.ActivityStatus = "resolved"
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetDayActivity は指定日のアクティビティ詳細を返すハンドラーです。
// 未取得の場合はその場で取得し、取得中の場合は202を返します。
func (s *Server) handleGetDayActivity(w http.ResponseWriter, r *http.Request) {
	params, err := NewGetDayParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	repos, err := s.ctrl.EnsureDay(r.Context(), params.Date)
	if err != nil {
		if errors.Is(err, model.ErrDayLoading) {
			s.writeJSON(w, http.StatusAccepted, map[string]string{
				"status": "loading",
				"date":   params.Date.String(),
			})
			return
		}
		s.log.WithError(err).Error("failed to resolve day activity")
		writeJSONError(w, "Failed to retrieve day activity", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"date":  params.Date,
		"repos": repos,
	})
}

// GetGraphParams represents parameters for getting a graph.
type GetGraphParams struct {
	Year  model.Year
	Width int
}

// NewGetGraphParams creates parameters for graph generation from HTTP request.
func NewGetGraphParams(r *http.Request) (*GetGraphParams, error) {
	query := r.URL.Query()

	year, err := model.ParseYear(query.Get("year"))
	if err != nil {
		return nil, err
	}

	// widthはビューポート幅(px)。省略時はフル表示
	width := 1024
	if widthStr := query.Get("width"); widthStr != "" {
		width, err = strconv.Atoi(widthStr)
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("invalid width parameter: must be a positive integer")
		}
	}

	return &GetGraphParams{Year: year, Width: width}, nil
}

// handleGetGraph はヒートマップグラフを生成・返却するハンドラーです。
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	params, err := NewGetGraphParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 選択中の年と異なる場合はカレンダーを切り替える
	if s.ctrl.Snapshot().Year != params.Year.Int() {
		s.ctrl.SelectYear(r.Context(), params.Year)
	}

	weeks := s.ctrl.VisibleWeeks(params.Width)
	opts := &heatmap.Options{
		CellSize:    12,
		CellPadding: 2,
		FontSize:    10,
		FontFamily:  "sans-serif",
		Colors:      []string{"#161b22", "#27272a", "#52525b", "#a1a1aa"},
		TopDayColor: "#d9ff00",
		MaxDayColor: "#d9ff00",
		Username:    s.config.Username,
	}
	svg := heatmap.GenerateYearlySVG(weeks, s.ctrl.Stats(), opts)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg))
}

// handleRefresh は選択中の年のカレンダーを再取得するハンドラーです。
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result := s.ctrl.Refresh(r.Context())
	snapshot := s.ctrl.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"year":               snapshot.Year,
		"source":             result.Source,
		"totalContributions": result.Calendar.TotalContributions,
	})
}

// Run はサーバーを起動します。
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("server starting")
	return http.ListenAndServe(addr, s.Handler())
}
