package repository

import (
	"context"
	"time"

	"perfumeshop/internal/domain/model"
)

// 管理画面の監査ログ検索。空の項目は条件にしない。
// Actions と ResourceTypes はどれか1つに一致すればよい。
type AuditLogFilter struct {
	ActorUserID   *int64
	Actions       []model.AuditAction
	ResourceTypes []model.AuditResourceType
	ResourceID    *int64

	//ゴミ箱への出し入れと完全削除だけに絞る
	TrashOnly bool

	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// 注文・カタログの操作履歴。書くのは各 usecase、読むのは管理者だけ。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//id の降順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
