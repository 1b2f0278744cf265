// Package config はアプリケーション設定を管理します。
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// 表示対象のGitHubユーザー名
	Username string

	// GitHub APIのBearerトークン。未設定の場合は認証なしでリクエストする
	GitHubToken string

	// HTTPサーバーのポート
	Port string

	// 管理系API認証トークン。未設定の場合は管理系エンドポイントが無効になる
	APIToken string

	// 年リストの開始年
	FirstYear int

	// ホバーから詳細取得までのデバウンス遅延
	Debounce time.Duration
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
func NewConfig() *Config {
	// 表示対象ユーザーの設定
	username := os.Getenv("KUSA_USERNAME")
	if username == "" {
		username = "mdimu29ail"
	}

	// GitHubトークンの設定
	// 未設定でも起動は継続する（レートリミット対象の匿名リクエストになる）
	githubToken := os.Getenv("KUSA_GITHUB_TOKEN")
	if githubToken == "" {
		logrus.Warn("KUSA_GITHUB_TOKEN is not set, using unauthenticated GitHub API (rate limited)")
	}

	// ポートの設定
	port := os.Getenv("KUSA_SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	// 管理系API認証トークンの設定
	apiToken := os.Getenv("KUSA_API_TOKEN")

	// 年リスト開始年の設定
	firstYear := 2018
	if v := os.Getenv("KUSA_FIRST_YEAR"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			firstYear = parsed
		}
	}

	// デバウンス遅延の設定
	debounce := 250 * time.Millisecond
	if v := os.Getenv("KUSA_DEBOUNCE_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			debounce = time.Duration(parsed) * time.Millisecond
		}
	}

	return &Config{
		Username:    username,
		GitHubToken: githubToken,
		Port:        port,
		APIToken:    apiToken,
		FirstYear:   firstYear,
		Debounce:    debounce,
	}
}
