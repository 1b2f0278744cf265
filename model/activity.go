// Package model は、アプリケーションのデータモデル定義を提供します。
package model

// ActivityKind はアクティビティの種別を表します。
type ActivityKind string

const (
	KindCommit      ActivityKind = "commit"
	KindPullRequest ActivityKind = "pull-request"
	KindIssue       ActivityKind = "issue"
	KindGeneric     ActivityKind = "generic"
)

// ActivityItem は1件のアクティビティを表すモデルです。
type ActivityItem struct {
	Kind ActivityKind `json:"kind"` // 種別
	Text string       `json:"text"` // 表示用テキスト
}

// RepoActivity は1リポジトリ分のアクティビティの並びです。
type RepoActivity struct {
	Repo       string         `json:"repo"`       // リポジトリ名 (owner/name)
	Activities []ActivityItem `json:"activities"` // 発生順のアクティビティ
}

// Validate はリポジトリアクティビティのデータバリデーションを行います。
func (r *RepoActivity) Validate() error {
	if r.Repo == "" {
		return NewValidationError("repo is required")
	}
	for _, item := range r.Activities {
		switch item.Kind {
		case KindCommit, KindPullRequest, KindIssue, KindGeneric:
		default:
			return NewValidationError("unknown activity kind: " + string(item.Kind))
		}
	}
	return nil
}
