package repository

import (
	"context"

	repo "perfumeshop/internal/repository"

	"gorm.io/gorm"
)

// gorm.DeletedAt を持つモデルならどれでも使えるゴミ箱付きリポジトリ。
type TrashGormRepository[T any] struct {
	db *gorm.DB
}

func NewTrashGormRepository[T any](db *gorm.DB) *TrashGormRepository[T] {
	return &TrashGormRepository[T]{db: db}
}

func (r *TrashGormRepository[T]) Create(ctx context.Context, in T) (T, error) {
	if err := r.db.WithContext(ctx).Create(&in).Error; err != nil {
		var zero T
		return zero, translateError(err)
	}
	return in, nil
}

// 削除済みは見つからない扱い
func (r *TrashGormRepository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var out T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		var zero T
		return zero, translateError(err)
	}
	return out, nil
}

// 全カラム上書き（id と作成日時・削除日時は除く）
func (r *TrashGormRepository[T]) Update(ctx context.Context, id int64, in T) (T, error) {
	res := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(&in)
	if res.Error != nil {
		var zero T
		return zero, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		var zero T
		return zero, repo.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *TrashGormRepository[T]) List(ctx context.Context, trashed bool) ([]T, error) {
	q := r.db.WithContext(ctx)
	if trashed {
		q = q.Unscoped().Where("deleted_at IS NOT NULL")
	}
	out := []T{}
	if err := q.Order("id desc").Find(&out).Error; err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func (r *TrashGormRepository[T]) SoftDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(new(T))
	return res.RowsAffected, translateError(res.Error)
}

func (r *TrashGormRepository[T]) Restore(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Unscoped().Model(new(T)).
		Where("id IN ? AND deleted_at IS NOT NULL", ids).
		Update("deleted_at", nil)
	return res.RowsAffected, translateError(res.Error)
}

func (r *TrashGormRepository[T]) HardDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Unscoped().
		Where("id IN ? AND deleted_at IS NOT NULL", ids).
		Delete(new(T))
	return res.RowsAffected, translateError(res.Error)
}
