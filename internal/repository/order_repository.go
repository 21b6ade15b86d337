package repository

import (
	"context"
	"time"

	"perfumeshop/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status model.OrderStatus
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 部分更新。nil のフィールドは触らない。
// 条件なしの UPDATE なので、同時に更新されたら後勝ちになる。
type OrderUpdate struct {
	Status        *model.OrderStatus
	PaymentStatus *model.PaymentStatus
	CancelReason  *string
	ReturnReason  *string
	ReturnImages  *model.StringList
	FullName      *string
	Phone         *string
	Address       *model.ShippingAddress
}

func (u OrderUpdate) IsEmpty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.CancelReason == nil &&
		u.ReturnReason == nil && u.ReturnImages == nil && u.FullName == nil &&
		u.Phone == nil && u.Address == nil
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	Update(ctx context.Context, orderID int64, u OrderUpdate) error
	Delete(ctx context.Context, orderID int64) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
