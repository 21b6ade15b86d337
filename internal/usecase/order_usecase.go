package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/domain/orderflow"
	"perfumeshop/internal/infra/logger"
	"perfumeshop/internal/infra/sanitize"
	repo "perfumeshop/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const maxIdempotencyKeyLen = 255

type OrderUsecase struct {
	tx     repo.TransactionManager
	logger *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, l *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, logger: logger.OrNop(l)}
}

type CreateOrderItemInput struct {
	ProductVariantID int64
	ProductName      string
	Price            int64
	Quantity         int64
}

type CreateOrderInput struct {
	UserID        int64
	FullName      string
	Phone         string
	Address       model.ShippingAddress
	PaymentMethod model.PaymentMethod
	Items         []CreateOrderItemInput

	//割引はフロントで計算済みのものをそのまま保存する
	VoucherCode string
	Discount    int64

	IdempotencyKey string
}

type CreateOrderOutput struct {
	Order model.Order
	Items []model.OrderItem
	//同じ冪等キーで作成済みだった
	Replayed bool
}

// GET /orders/:id の形
type OrderDetail struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

// 注文に明細をくっつけた形（/orders/user/:id/full）
type OrderWithItems struct {
	model.Order
	Items []model.OrderItem `json:"items"`
}

type OrderPage struct {
	Orders []model.Order
	Total  int64
}

// nil のものは変更しない。Status 以外は配送情報の修正。
type UpdateOrderInput struct {
	Status   *model.OrderStatus
	Reason   string
	FullName *string
	Phone    *string
	Address  *model.ShippingAddress
}

type StatusOption struct {
	Status        model.OrderStatus   `json:"status"`
	Label         string              `json:"label"`
	PaymentStatus model.PaymentStatus `json:"payment_status,omitempty"`
	NeedsReason   bool                `json:"needs_reason"`
}

type AllowedTransitionsOutput struct {
	Current          StatusOption   `json:"current"`
	Allowed          []StatusOption `json:"allowed"`
	CanRequestReturn bool           `json:"can_request_return"`
}

// 配送先を整形する。組み立て済み住所が無ければ 番地, 坊, 区, 省 の順でつなぐ。
func NormalizeAddress(a model.ShippingAddress) model.ShippingAddress {
	out := model.ShippingAddress{
		Province:    sanitize.Text(a.Province),
		District:    sanitize.Text(a.District),
		Ward:        sanitize.Text(a.Ward),
		Detail:      sanitize.Text(a.Detail),
		FullAddress: sanitize.Text(a.FullAddress),
	}
	if out.FullAddress == "" {
		parts := make([]string, 0, 4)
		for _, p := range []string{out.Detail, out.Ward, out.District, out.Province} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		out.FullAddress = strings.Join(parts, ", ")
	}
	return out
}

func (u *OrderUsecase) CreateOrder(ctx context.Context, viewer Viewer, in CreateOrderInput) (CreateOrderOutput, error) {
	if viewer.UserID <= 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.UserID == 0 {
		in.UserID = viewer.UserID
	}
	if in.UserID < 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	//代理注文は管理者だけ
	if in.UserID != viewer.UserID && !viewer.IsAdmin() {
		return CreateOrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	fullName := sanitize.Text(in.FullName)
	phone := sanitize.Text(in.Phone)
	addr := NormalizeAddress(in.Address)
	if fullName == "" {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "full_name required")
	}
	if phone == "" {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}
	if addr.FullAddress == "" {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "address required")
	}
	if !in.PaymentMethod.Valid() {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}
	if len(in.Items) == 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	if in.Discount < 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "discount must be >= 0")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	//明細のスナップショットと合計
	items := make([]model.OrderItem, 0, len(in.Items))
	var sum int64
	for _, it := range in.Items {
		if it.ProductVariantID <= 0 {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_variant_id")
		}
		if it.Quantity <= 0 {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
		}
		if it.Price < 0 {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		//int64 を溢れる金額は受け付けない
		if it.Price > math.MaxInt64/it.Quantity {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "amount too large")
		}
		line := it.Price * it.Quantity
		if sum > math.MaxInt64-line {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "amount too large")
		}
		items = append(items, model.OrderItem{
			ProductVariantID: it.ProductVariantID,
			ProductName:      sanitize.Text(it.ProductName),
			UnitPrice:        it.Price,
			Quantity:         it.Quantity,
		})
		sum += line
	}

	order := model.Order{
		UserID:        in.UserID,
		FullName:      fullName,
		Phone:         phone,
		Address:       addr,
		Status:        model.OrderStatusPending,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: model.PaymentStatusUnpaid,
		TotalAmount:   sum,
		Discount:      in.Discount,
	}
	if code := strings.ToUpper(sanitize.Text(in.VoucherCode)); code != "" {
		order.VoucherCode = &code
	}
	if in.Discount > 0 {
		original := sum
		order.OriginalAmount = &original
		order.TotalAmount = sum - in.Discount
		if order.TotalAmount < 0 {
			order.TotalAmount = 0
		}
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	var out CreateOrderOutput

	//注文と明細は同じトランザクションで作る（片方だけ残らない）
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, in.UserID, key)
			if err != nil {
				return internalError(u.logger, "order.create.find_idempotency", err)
			}
			if found {
				existingItems, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return internalError(u.logger, "order.create.list_items", err)
				}
				out = CreateOrderOutput{Order: existing, Items: existingItems, Replayed: true}
				return nil
			}
		}

		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return err
			}
			return internalError(u.logger, "order.create", err)
		}

		createdItems, err := r.OrderItems().CreateBulk(ctx, created.ID, items)
		if err != nil {
			return internalError(u.logger, "order.create.items", err)
		}

		out = CreateOrderOutput{Order: created, Items: createdItems}
		return nil
	})

	//同時に同じキーが入った。失敗したTxは使えないので新しいTxで取り直す
	if errors.Is(err, repo.ErrDuplicate) && key != "" {
		return u.replayIdempotent(ctx, in.UserID, key)
	}
	if err != nil {
		return CreateOrderOutput{}, err
	}

	if !out.Replayed {
		u.logger.Info("order created",
			zap.Int64("order_id", out.Order.ID),
			zap.Int64("user_id", out.Order.UserID),
			zap.Int64("total_amount", out.Order.TotalAmount),
			zap.Int("items", len(out.Items)),
		)
	}
	return out, nil
}

func (u *OrderUsecase) replayIdempotent(ctx context.Context, userID int64, key string) (CreateOrderOutput, error) {
	var out CreateOrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return internalError(u.logger, "order.create.refind_idempotency", err)
		}
		if !found {
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
		if err != nil {
			return internalError(u.logger, "order.create.list_items", err)
		}
		out = CreateOrderOutput{Order: existing, Items: items, Replayed: true}
		return nil
	})
	if err != nil {
		return CreateOrderOutput{}, err
	}
	return out, nil
}

// 他人の注文は存在しないものとして扱う
func (u *OrderUsecase) loadVisible(ctx context.Context, r repo.TxRepos, viewer Viewer, orderID int64, op string) (model.Order, error) {
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, internalError(u.logger, op, err)
	}
	if !viewer.CanSee(o) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return o, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, viewer Viewer, orderID int64) (OrderDetail, error) {
	var out OrderDetail
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.loadVisible(ctx, r, viewer, orderID, "order.get")
		if err != nil {
			return err
		}
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return internalError(u.logger, "order.get.items", err)
		}
		out = OrderDetail{Order: o, Items: items}
		return nil
	})
	if err != nil {
		return OrderDetail{}, err
	}
	return out, nil
}

// 全注文（管理者）
func (u *OrderUsecase) ListOrders(ctx context.Context, viewer Viewer, f repo.OrderListFilter) (OrderPage, error) {
	if !viewer.IsAdmin() {
		return OrderPage{}, NewHTTPError(http.StatusForbidden, "admin only")
	}
	if f.Page < 1 {
		return OrderPage{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderPage{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !orderflow.IsKnown(f.Status) {
		return OrderPage{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return OrderPage{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	var out OrderPage
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return internalError(u.logger, "order.list", err)
		}
		out = OrderPage{Orders: orders, Total: total}
		return nil
	})
	if err != nil {
		return OrderPage{}, err
	}
	return out, nil
}

func (u *OrderUsecase) checkUserScope(viewer Viewer, userID int64, page, limit int) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	if userID != viewer.UserID && !viewer.IsAdmin() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if page < 1 {
		return NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	return nil
}

func (u *OrderUsecase) ListByUser(ctx context.Context, viewer Viewer, userID int64, page, limit int) (OrderPage, error) {
	if err := u.checkUserScope(viewer, userID, page, limit); err != nil {
		return OrderPage{}, err
	}
	var out OrderPage
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return internalError(u.logger, "order.list_by_user", err)
		}
		out = OrderPage{Orders: orders, Total: total}
		return nil
	})
	if err != nil {
		return OrderPage{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListByUserWithItems(ctx context.Context, viewer Viewer, userID int64, page, limit int) ([]OrderWithItems, int64, error) {
	if err := u.checkUserScope(viewer, userID, page, limit); err != nil {
		return []OrderWithItems{}, 0, err
	}
	var outs []OrderWithItems
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return internalError(u.logger, "order.list_by_user_full", err)
		}
		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		byOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
		if err != nil {
			return internalError(u.logger, "order.list_by_user_full.items", err)
		}
		outs = make([]OrderWithItems, 0, len(orders))
		for _, o := range orders {
			items := byOrder[o.ID]
			if items == nil {
				items = []model.OrderItem{}
			}
			outs = append(outs, OrderWithItems{Order: o, Items: items})
		}
		total = n
		return nil
	})
	if err != nil {
		return []OrderWithItems{}, 0, err
	}
	return outs, total, nil
}

// 遷移ルール違反を HTTP に寄せる。取消済みは 409、それ以外は 400。
func transitionHTTPError(err error) error {
	if errors.Is(err, orderflow.ErrOrderCancelled) {
		return NewHTTPError(http.StatusConflict, err.Error())
	}
	if errors.Is(err, orderflow.ErrIllegalTransition) {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}

func auditJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// 注文の更新。ステータス変更は遷移ルールを通し、支払ステータスなどの副作用も一緒に保存する。
// 配送情報は PENDING の間だけ直せる。
func (u *OrderUsecase) UpdateOrder(ctx context.Context, viewer Viewer, orderID int64, in UpdateOrderInput) (model.Order, error) {
	if viewer.UserID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.loadVisible(ctx, r, viewer, orderID, "order.update.find")
		if err != nil {
			return err
		}
		// 終端ガード
		if o.Status == model.OrderStatusCancelled {
			return transitionHTTPError(&orderflow.TransitionError{Rule: orderflow.RuleOrderCancelled, From: o.Status, To: o.Status})
		}

		var upd repo.OrderUpdate
		statusChanged := false

		if in.Status != nil {
			requested := model.OrderStatus(strings.ToUpper(strings.TrimSpace(string(*in.Status))))
			eff, err := orderflow.ValidateTransition(o.Status, requested, orderflow.TransitionContext{
				Role:          viewer.Role,
				PaymentMethod: o.PaymentMethod,
				Reason:        sanitize.Text(in.Reason),
			})
			if err != nil {
				return transitionHTTPError(err)
			}
			if requested != o.Status {
				statusChanged = true
				upd.Status = &requested
				if eff.PaymentStatus != "" && eff.PaymentStatus != o.PaymentStatus {
					ps := eff.PaymentStatus
					upd.PaymentStatus = &ps
				}
				if eff.CancelReason != "" {
					reason := eff.CancelReason
					upd.CancelReason = &reason
				}
			}
		}

		if in.FullName != nil || in.Phone != nil || in.Address != nil {
			if o.Status != model.OrderStatusPending {
				return NewHTTPError(http.StatusBadRequest, "Chỉ được sửa thông tin giao hàng khi đơn đang ở trạng thái Chờ xử lý")
			}
			if in.FullName != nil {
				v := sanitize.Text(*in.FullName)
				if v == "" {
					return NewHTTPError(http.StatusBadRequest, "full_name required")
				}
				upd.FullName = &v
			}
			if in.Phone != nil {
				v := sanitize.Text(*in.Phone)
				if v == "" {
					return NewHTTPError(http.StatusBadRequest, "phone required")
				}
				upd.Phone = &v
			}
			if in.Address != nil {
				a := NormalizeAddress(*in.Address)
				if a.FullAddress == "" {
					return NewHTTPError(http.StatusBadRequest, "address required")
				}
				upd.Address = &a
			}
		}

		// すでに同じなら何もしない（200）
		if upd.IsEmpty() {
			out = o
			return nil
		}

		if err := r.Orders().Update(ctx, o.ID, upd); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return internalError(u.logger, "order.update", err)
		}
		updated, err := r.Orders().FindByID(ctx, o.ID)
		if err != nil {
			return internalError(u.logger, "order.update.reload", err)
		}

		action := model.AuditActionUpdate
		if statusChanged {
			action = model.AuditActionUpdateOrderStatus
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  viewer.UserID,
			Action:       action,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   auditJSON(o),
			AfterJSON:    auditJSON(updated),
		}); err != nil {
			return internalError(u.logger, "order.update.audit", err)
		}

		if statusChanged {
			u.logger.Info("order status changed",
				zap.Int64("order_id", o.ID),
				zap.Int64("actor_user_id", viewer.UserID),
				zap.String("from", string(o.Status)),
				zap.String("to", string(updated.Status)),
				zap.String("payment_status", string(updated.PaymentStatus)),
			)
		}
		out = updated
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

func (u *OrderUsecase) UpdateStatus(ctx context.Context, viewer Viewer, orderID int64, status model.OrderStatus, reason string) (model.Order, error) {
	return u.UpdateOrder(ctx, viewer, orderID, UpdateOrderInput{Status: &status, Reason: reason})
}

// 顧客の返品申請。受取済みの自分の注文だけ。
func (u *OrderUsecase) RequestReturn(ctx context.Context, viewer Viewer, orderID int64, reason string, images []string) (model.Order, error) {
	if viewer.UserID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.loadVisible(ctx, r, viewer, orderID, "order.return.find")
		if err != nil {
			return err
		}
		if o.UserID != viewer.UserID {
			return NewHTTPError(http.StatusForbidden, "only the customer can request a return")
		}

		cleanReason := sanitize.Text(reason)
		if err := orderflow.ValidateReturnRequest(o.Status, cleanReason); err != nil {
			return transitionHTTPError(err)
		}

		status := model.OrderStatusReturnRequested
		imgs := model.StringList(sanitize.Texts(images))
		if len(imgs) == 0 {
			imgs = nil
		}
		if err := r.Orders().Update(ctx, o.ID, repo.OrderUpdate{
			Status:       &status,
			ReturnReason: &cleanReason,
			ReturnImages: &imgs,
		}); err != nil {
			return internalError(u.logger, "order.return", err)
		}
		updated, err := r.Orders().FindByID(ctx, o.ID)
		if err != nil {
			return internalError(u.logger, "order.return.reload", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  viewer.UserID,
			Action:       model.AuditActionRequestReturn,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   auditJSON(o),
			AfterJSON:    auditJSON(updated),
		}); err != nil {
			return internalError(u.logger, "order.return.audit", err)
		}

		u.logger.Info("order return requested",
			zap.Int64("order_id", o.ID),
			zap.Int64("user_id", viewer.UserID),
			zap.Int("images", len(imgs)),
		)
		out = updated
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// 明細→注文の順に消す。どちらかが失敗したら両方残る。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, viewer Viewer, orderID int64) error {
	if !viewer.IsAdmin() {
		return NewHTTPError(http.StatusForbidden, "admin only")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.loadVisible(ctx, r, viewer, orderID, "order.delete.find")
		if err != nil {
			return err
		}
		if err := r.OrderItems().DeleteByOrderID(ctx, o.ID); err != nil {
			return internalError(u.logger, "order.delete.items", err)
		}
		if err := r.Orders().Delete(ctx, o.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return internalError(u.logger, "order.delete", err)
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  viewer.UserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   auditJSON(o),
		}); err != nil {
			return internalError(u.logger, "order.delete.audit", err)
		}

		u.logger.Info("order deleted", zap.Int64("order_id", o.ID), zap.Int64("actor_user_id", viewer.UserID))
		return nil
	})
}

// 画面に出すボタンの判定。サーバー側の更新と同じルールを使う。
func (u *OrderUsecase) AllowedTransitions(ctx context.Context, viewer Viewer, orderID int64, lang language.Tag) (AllowedTransitionsOutput, error) {
	var out AllowedTransitionsOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.loadVisible(ctx, r, viewer, orderID, "order.allowed_transitions")
		if err != nil {
			return err
		}

		allowed := []StatusOption{}
		for _, t := range orderflow.NextTransitions(o.Status, viewer.Role, o.PaymentMethod) {
			allowed = append(allowed, StatusOption{
				Status:        t.To,
				Label:         orderflow.Label(t.To, lang),
				PaymentStatus: t.PaymentStatus,
				NeedsReason:   t.NeedsReason,
			})
		}
		out = AllowedTransitionsOutput{
			Current:          StatusOption{Status: o.Status, Label: orderflow.Label(o.Status, lang)},
			Allowed:          allowed,
			CanRequestReturn: o.UserID == viewer.UserID && orderflow.ValidateReturnRequest(o.Status, "-") == nil,
		}
		return nil
	})
	if err != nil {
		return AllowedTransitionsOutput{}, err
	}
	return out, nil
}

// レビュー済みにする。何度呼んでも同じ。
func (u *OrderUsecase) MarkItemReviewed(ctx context.Context, viewer Viewer, orderID int64, itemID int64) error {
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.loadVisible(ctx, r, viewer, orderID, "order.review.find")
		if err != nil {
			return err
		}
		if o.UserID != viewer.UserID {
			return NewHTTPError(http.StatusForbidden, "only the customer can review")
		}
		if !orderflow.CanReview(o.Status) {
			return NewHTTPError(http.StatusBadRequest, "Chỉ được đánh giá khi đã nhận hàng")
		}
		if err := r.OrderItems().MarkReviewed(ctx, o.ID, itemID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return internalError(u.logger, "order.review", err)
		}
		return nil
	})
}

// 全ステータスと表示名（GET /order-statuses）
func OrderStatuses(lang language.Tag) []StatusOption {
	out := make([]StatusOption, 0)
	for _, s := range orderflow.Statuses() {
		out = append(out, StatusOption{Status: s, Label: orderflow.Label(s, lang)})
	}
	return out
}
