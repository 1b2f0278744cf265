package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stsysd/kusa/db"
	"github.com/stsysd/kusa/model"
)

// テスト用のストアを生成するヘルパー関数
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(db.Migrate)
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRepos() []model.RepoActivity {
	return []model.RepoActivity{
		{
			Repo: "acme/site",
			Activities: []model.ActivityItem{
				{Kind: model.KindCommit, Text: "fix nav"},
				{Kind: model.KindCommit, Text: "update copy"},
				{Kind: model.KindPullRequest, Text: "Opened PR #7: Add hero section"},
			},
		},
		{
			Repo: "acme/tracker",
			Activities: []model.ActivityItem{
				{Kind: model.KindIssue, Text: "Closed Issue #3: Broken link"},
			},
		},
	}
}

func TestPutAndGetDayActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := model.Date("2024-03-15")

	if err := s.PutDayActivity(ctx, date, testRepos()); err != nil {
		t.Fatalf("Failed to put day activity: %v", err)
	}

	repos, err := s.GetDayActivity(ctx, date)
	if err != nil {
		t.Fatalf("Failed to get day activity: %v", err)
	}

	if len(repos) != 2 {
		t.Fatalf("Expected 2 repos, got %d", len(repos))
	}
	// リポジトリとアクティビティの順序が保持されること
	if repos[0].Repo != "acme/site" || repos[1].Repo != "acme/tracker" {
		t.Errorf("Unexpected repo order: %s, %s", repos[0].Repo, repos[1].Repo)
	}
	if len(repos[0].Activities) != 3 {
		t.Fatalf("Expected 3 activities, got %d", len(repos[0].Activities))
	}
	if repos[0].Activities[0].Text != "fix nav" {
		t.Errorf("Unexpected first activity: %+v", repos[0].Activities[0])
	}
	if repos[0].Activities[2].Kind != model.KindPullRequest {
		t.Errorf("Unexpected third activity kind: %s", repos[0].Activities[2].Kind)
	}
}

func TestGetDayActivity_NotCached(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDayActivity(context.Background(), "2024-03-15")
	if !errors.Is(err, model.ErrDayNotCached) {
		t.Errorf("Expected ErrDayNotCached, got %v", err)
	}
}

func TestPutDayActivity_EmptyResultIsCached(t *testing.T) {
	// 空の結果も「取得済み」の有効なエントリになること
	s := newTestStore(t)
	ctx := context.Background()
	date := model.Date("2024-03-15")

	if err := s.PutDayActivity(ctx, date, []model.RepoActivity{}); err != nil {
		t.Fatalf("Failed to put empty day activity: %v", err)
	}

	repos, err := s.GetDayActivity(ctx, date)
	if err != nil {
		t.Fatalf("Expected cached empty entry, got error: %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("Expected empty result, got %d repos", len(repos))
	}

	ok, err := s.HasDay(ctx, date)
	if err != nil {
		t.Fatalf("Failed to check day entry: %v", err)
	}
	if !ok {
		t.Error("Expected day entry to exist")
	}
}

func TestHasDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.HasDay(ctx, "2024-03-15")
	if err != nil {
		t.Fatalf("Failed to check day entry: %v", err)
	}
	if ok {
		t.Error("Expected no entry before put")
	}

	if err := s.PutDayActivity(ctx, "2024-03-15", testRepos()); err != nil {
		t.Fatalf("Failed to put day activity: %v", err)
	}

	ok, err = s.HasDay(ctx, "2024-03-15")
	if err != nil {
		t.Fatalf("Failed to check day entry: %v", err)
	}
	if !ok {
		t.Error("Expected entry after put")
	}
}

func TestPutDayActivity_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutDayActivity(ctx, "not-a-date", nil); err == nil {
		t.Error("Expected error for invalid date")
	}

	invalid := []model.RepoActivity{{Repo: ""}}
	if err := s.PutDayActivity(ctx, "2024-03-15", invalid); err == nil {
		t.Error("Expected error for invalid repo activity")
	}
}

func TestPutDayActivity_Overwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := model.Date("2024-03-15")

	if err := s.PutDayActivity(ctx, date, testRepos()); err != nil {
		t.Fatalf("Failed to put day activity: %v", err)
	}
	replacement := []model.RepoActivity{
		{Repo: "acme/other", Activities: []model.ActivityItem{{Kind: model.KindGeneric, Text: "Created branch: acme/other"}}},
	}
	if err := s.PutDayActivity(ctx, date, replacement); err != nil {
		t.Fatalf("Failed to overwrite day activity: %v", err)
	}

	repos, err := s.GetDayActivity(ctx, date)
	if err != nil {
		t.Fatalf("Failed to get day activity: %v", err)
	}
	if len(repos) != 1 || repos[0].Repo != "acme/other" {
		t.Errorf("Expected overwritten entry, got %+v", repos)
	}
}
