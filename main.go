// Package main はアプリケーションのエントリーポイントを提供します。
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/stsysd/kusa/api"
	"github.com/stsysd/kusa/config"
	"github.com/stsysd/kusa/db"
	"github.com/stsysd/kusa/github"
	"github.com/stsysd/kusa/heatmap"
	"github.com/stsysd/kusa/model"
	"github.com/stsysd/kusa/store"
)

func main() {
	// .envがあれば読み込む
	_ = godotenv.Load()

	// 設定の読み込み
	cfg := config.NewConfig()

	// インメモリキャッシュストアの初期化（マイグレーション関数を渡す）
	activityStore, err := store.NewSQLiteStore(db.Migrate)
	if err != nil {
		logrus.Fatalf("Failed to initialize activity store: %v", err)
	}
	defer activityStore.Close()

	// GitHubクライアントとコントローラの作成
	client := github.New(cfg.Username, cfg.GitHubToken)
	ctrl := heatmap.NewController(client, client, activityStore, cfg.Debounce)

	// 現在の年のカレンダーを初期ロード（失敗しても合成データで続行する）
	ctrl.SelectYear(context.Background(), model.Year(time.Now().Year()))

	// サーバーインスタンスの作成と起動
	server := api.NewServer(ctrl, cfg)
	logrus.Fatal(server.Run(":" + cfg.Port))
}
