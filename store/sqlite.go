// Package store は、日別アクティビティのセッション内キャッシュを提供します。
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stsysd/kusa/model"
)

// ActivityStore は日別アクティビティの保存と取得を行うインターフェースです。
// エントリは日付ごとに一度だけ作成され、セッション中は無効化されません。
type ActivityStore interface {
	// PutDayActivity は指定日のアクティビティを保存します。空のスライスも
	// 「取得済みで結果なし」として有効なエントリになります。
	PutDayActivity(ctx context.Context, date model.Date, repos []model.RepoActivity) error
	// GetDayActivity は指定日のアクティビティを取得します。
	// エントリが存在しない場合はmodel.ErrDayNotCachedを返します。
	GetDayActivity(ctx context.Context, date model.Date) ([]model.RepoActivity, error)
	// HasDay は指定日のエントリが存在するかを返します。
	HasDay(ctx context.Context, date model.Date) (bool, error)
	// Close はストアの接続を閉じます。
	Close() error
}

// SQLiteStore はインメモリSQLiteを使用したActivityStoreの実装です。
// 永続化はせず、プロセスの生存期間だけエントリを保持します。
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore は新しいインメモリのSQLiteStoreを作成します。
func NewSQLiteStore(migrate func(*sql.DB) error) (*SQLiteStore, error) {
	// DB名をインスタンスごとに一意にする。cache=sharedを指定しないと
	// 接続プール内の別コネクションが別のインメモリDBを見てしまう
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory SQLite database: %w", err)
	}

	// インメモリDBはコネクションが全て閉じると消えるため、1本に固定する
	conn.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// PutDayActivity は指定日のアクティビティを保存します。
func (s *SQLiteStore) PutDayActivity(ctx context.Context, date model.Date, repos []model.RepoActivity) error {
	if !date.IsValid() {
		return model.NewValidationError(fmt.Sprintf("invalid date: %q", date))
	}
	for i := range repos {
		if err := repos[i].Validate(); err != nil {
			return err
		}
	}

	// トランザクションの開始
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	// エントリの記録（再取得された場合は上書き）
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO day_entries (date, fetched_at) VALUES (?, ?)`,
		date.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert day entry: %w", err)
	}

	// 既存のアイテムを削除してから挿入し直す
	if _, err := tx.ExecContext(ctx, `DELETE FROM day_activities WHERE date = ?`, date.String()); err != nil {
		return fmt.Errorf("failed to delete existing activities: %w", err)
	}

	seq := 0
	for _, repo := range repos {
		for _, item := range repo.Activities {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO day_activities (date, seq, repo, kind, text) VALUES (?, ?, ?, ?, ?)`,
				date.String(), seq, repo.Repo, string(item.Kind), item.Text,
			)
			if err != nil {
				return fmt.Errorf("failed to insert activity: %w", err)
			}
			seq++
		}
	}

	// トランザクションのコミット
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return nil
}

// GetDayActivity は指定日のアクティビティを取得します。
func (s *SQLiteStore) GetDayActivity(ctx context.Context, date model.Date) ([]model.RepoActivity, error) {
	ok, err := s.HasDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrDayNotCached
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT repo, kind, text FROM day_activities WHERE date = ? ORDER BY seq ASC`,
		date.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	// 初出順でリポジトリごとにグループ化し直す
	index := make(map[string]int)
	repos := []model.RepoActivity{}
	for rows.Next() {
		var repo, kind, text string
		if err := rows.Scan(&repo, &kind, &text); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		i, exists := index[repo]
		if !exists {
			i = len(repos)
			index[repo] = i
			repos = append(repos, model.RepoActivity{Repo: repo})
		}
		repos[i].Activities = append(repos[i].Activities, model.ActivityItem{
			Kind: model.ActivityKind(kind),
			Text: text,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity rows: %w", err)
	}

	return repos, nil
}

// HasDay は指定日のエントリが存在するかを返します。
func (s *SQLiteStore) HasDay(ctx context.Context, date model.Date) (bool, error) {
	var exists int
	err := s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM day_entries WHERE date = ?`, date.String(),
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query day entry: %w", err)
	}
	return true, nil
}

// Close はストアの接続を閉じます。
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
