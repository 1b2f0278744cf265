// Package github は、GitHub APIからコントリビューションデータを取得するクライアントを提供します。
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stsysd/kusa/model"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "kusa/0.1"

	// eventsPageSize はイベントフィードの取得上限です。GitHubのイベントAPIは
	// 直近のアクティビティしか返さないため、このウィンドウ外の日付は
	// カレンダー上のカウントが非ゼロでも空の結果になります（仕様上の制限）。
	eventsPageSize = 100
)

// Client はGitHub APIクライアントです。
type Client struct {
	client   *http.Client
	baseURL  string
	username string
	token    string
	log      *logrus.Entry
}

// New は指定ユーザー用のクライアントを生成します。tokenは空でもよく、
// その場合は認証なしでリクエストします（レートリミットの対象）。
func New(username, token string) *Client {
	return &Client{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		username: username,
		token:    token,
		log: logrus.WithFields(logrus.Fields{
			"component": "github",
			"user":      username,
		}),
	}
}

// FetchCalendar は指定した年のコントリビューションカレンダーを取得します。
// ネットワークエラー・非成功レスポンス・ユーザー不在のいずれの場合も、
// 合成カレンダーへフォールバックした結果を返すため、失敗しません。
func (c *Client) FetchCalendar(ctx context.Context, year model.Year) *model.CalendarResult {
	log := c.log.WithFields(logrus.Fields{
		"req_id": uuid.NewString(),
		"year":   year.Int(),
	})

	cal, err := c.queryCalendar(ctx, year)
	if err != nil {
		log.WithError(err).Warn("calendar fetch failed, falling back to synthetic data")
		return &model.CalendarResult{
			Calendar: SyntheticCalendar(year),
			Source:   model.SourceSynthetic,
		}
	}

	log.WithField("total", cal.TotalContributions).Info("calendar fetched")
	return &model.CalendarResult{Calendar: cal, Source: model.SourceGitHub}
}

// queryCalendar はGraphQL APIに対して1年分のカレンダーを問い合わせます。
func (c *Client) queryCalendar(ctx context.Context, year model.Year) (*model.Calendar, error) {
	from := year.From().Format(time.RFC3339)
	to := year.To().Format(time.RFC3339)
	query := fmt.Sprintf(
		`query { user(login: %q) { contributionsCollection(from: %q, to: %q) { contributionCalendar { totalContributions weeks { contributionDays { date contributionCount } } } } } }`,
		c.username, from, to,
	)

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from graphql endpoint", resp.StatusCode)
	}

	var result struct {
		Data struct {
			User *struct {
				ContributionsCollection struct {
					ContributionCalendar model.Calendar `json:"contributionCalendar"`
				} `json:"contributionsCollection"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Data.User == nil {
		return nil, fmt.Errorf("user %q not found in response", c.username)
	}

	cal := result.Data.User.ContributionsCollection.ContributionCalendar
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calendar in response: %w", err)
	}
	return &cal, nil
}

// githubEvent はイベントAPIのレスポンス1件分です。
type githubEvent struct {
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	Repo      struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload struct {
		Action  string `json:"action"`
		RefType string `json:"ref_type"`
		Commits []struct {
			Message string `json:"message"`
		} `json:"commits"`
		PullRequest *struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
		} `json:"pull_request"`
		Issue *struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
		} `json:"issue"`
	} `json:"payload"`
}

// FetchDayActivity は直近のイベントフィードから指定日のアクティビティを
// 取り出し、リポジトリごとに分類して返します。
func (c *Client) FetchDayActivity(ctx context.Context, date model.Date) ([]model.RepoActivity, error) {
	log := c.log.WithFields(logrus.Fields{
		"req_id": uuid.NewString(),
		"date":   date.String(),
	})

	endpoint := fmt.Sprintf("%s/users/%s/events?per_page=%d", c.baseURL, url.PathEscape(c.username), eventsPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from events endpoint", resp.StatusCode)
	}

	var events []githubEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events response: %w", err)
	}

	repos := classifyEvents(events, date)
	log.WithField("repos", len(repos)).Debug("day activity fetched")
	return repos, nil
}

// classifyEvents は指定日のイベントをリポジトリごとのアクティビティに分類します。
// リポジトリの順序は初出順、各リポジトリ内のアクティビティはイベント順です。
func classifyEvents(events []githubEvent, date model.Date) []model.RepoActivity {
	index := make(map[string]int)
	var repos []model.RepoActivity

	add := func(repo string, item model.ActivityItem) {
		i, ok := index[repo]
		if !ok {
			i = len(repos)
			index[repo] = i
			repos = append(repos, model.RepoActivity{Repo: repo})
		}
		repos[i].Activities = append(repos[i].Activities, item)
	}

	for _, e := range events {
		if !strings.HasPrefix(e.CreatedAt, date.String()) {
			continue
		}
		switch e.Type {
		case "PushEvent":
			for _, commit := range e.Payload.Commits {
				add(e.Repo.Name, model.ActivityItem{Kind: model.KindCommit, Text: commit.Message})
			}
		case "PullRequestEvent":
			if e.Payload.PullRequest == nil {
				continue
			}
			add(e.Repo.Name, model.ActivityItem{
				Kind: model.KindPullRequest,
				Text: fmt.Sprintf("%s PR #%d: %s", actionVerb(e.Payload.Action), e.Payload.PullRequest.Number, e.Payload.PullRequest.Title),
			})
		case "IssuesEvent":
			if e.Payload.Issue == nil {
				continue
			}
			add(e.Repo.Name, model.ActivityItem{
				Kind: model.KindIssue,
				Text: fmt.Sprintf("%s Issue #%d: %s", actionVerb(e.Payload.Action), e.Payload.Issue.Number, e.Payload.Issue.Title),
			})
		case "CreateEvent":
			add(e.Repo.Name, model.ActivityItem{
				Kind: model.KindGeneric,
				Text: fmt.Sprintf("Created %s: %s", e.Payload.RefType, e.Repo.Name),
			})
		}
	}
	return repos
}

// actionVerb はイベントのactionフィールドを表示用の動詞に変換します。
// "opened"以外はすべてClosedとして扱います。
func actionVerb(action string) string {
	if action == "opened" {
		return "Opened"
	}
	return "Closed"
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
