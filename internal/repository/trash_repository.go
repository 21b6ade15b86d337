package repository

import "context"

// 論理削除つきリソースの保存。ゴミ箱一覧・復元・完全削除まで同じ形で持つ。
type TrashRepository[T any] interface {
	Create(ctx context.Context, in T) (T, error)
	FindByID(ctx context.Context, id int64) (T, error)
	Update(ctx context.Context, id int64, in T) (T, error)

	//trashed=true なら削除済みだけ
	List(ctx context.Context, trashed bool) ([]T, error)

	//影響した件数を返す
	SoftDelete(ctx context.Context, ids []int64) (int64, error)
	Restore(ctx context.Context, ids []int64) (int64, error)
	//ゴミ箱にあるものだけ消す
	HardDelete(ctx context.Context, ids []int64) (int64, error)
}
