package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/infra/logger"
	"perfumeshop/internal/infra/sanitize"
	repo "perfumeshop/internal/repository"

	"go.uber.org/zap"
)

// 一括操作で受け付ける件数の上限
const maxBulkIDs = 100

// ブランド・カテゴリ・商品などのゴミ箱付きCRUD。リソースごとに型だけ変えて使う。
type CatalogUsecase[T model.CatalogEntity[T]] struct {
	repo     repo.TrashRepository[T]
	audit    repo.AuditLogRepository
	resource model.AuditResourceType
	logger   *zap.Logger
}

func NewCatalogUsecase[T model.CatalogEntity[T]](
	r repo.TrashRepository[T],
	audit repo.AuditLogRepository,
	resource model.AuditResourceType,
	l *zap.Logger,
) *CatalogUsecase[T] {
	return &CatalogUsecase[T]{
		repo:     r,
		audit:    audit,
		resource: resource,
		logger:   logger.OrNop(l).With(zap.String("resource", string(resource))),
	}
}

func (u *CatalogUsecase[T]) Resource() model.AuditResourceType {
	return u.resource
}

func (u *CatalogUsecase[T]) List(ctx context.Context, trashed bool) ([]T, error) {
	out, err := u.repo.List(ctx, trashed)
	if err != nil {
		return []T{}, internalError(u.logger, "catalog.list", err)
	}
	return out, nil
}

func (u *CatalogUsecase[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if id <= 0 {
		return zero, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	out, err := u.repo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return zero, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return zero, internalError(u.logger, "catalog.get", err)
	}
	return out, nil
}

func (u *CatalogUsecase[T]) Create(ctx context.Context, actorUserID int64, in T) (T, error) {
	var zero T
	clean := in.Normalize(sanitize.Text)
	if err := clean.Validate(); err != nil {
		return zero, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := u.repo.Create(ctx, clean)
	if errors.Is(err, repo.ErrDuplicate) {
		return zero, NewHTTPError(http.StatusConflict, "already exists")
	}
	if err != nil {
		return zero, internalError(u.logger, "catalog.create", err)
	}

	u.writeAudit(ctx, actorUserID, model.AuditActionCreate, created.GetID(), "", auditJSON(created))
	return created, nil
}

func (u *CatalogUsecase[T]) Update(ctx context.Context, actorUserID int64, id int64, in T) (T, error) {
	var zero T
	before, err := u.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	clean := in.Normalize(sanitize.Text)
	if err := clean.Validate(); err != nil {
		return zero, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := u.repo.Update(ctx, id, clean)
	if errors.Is(err, repo.ErrNotFound) {
		return zero, NewHTTPError(http.StatusNotFound, "not found")
	}
	if errors.Is(err, repo.ErrDuplicate) {
		return zero, NewHTTPError(http.StatusConflict, "already exists")
	}
	if err != nil {
		return zero, internalError(u.logger, "catalog.update", err)
	}

	u.writeAudit(ctx, actorUserID, model.AuditActionUpdate, id, auditJSON(before), auditJSON(updated))
	return updated, nil
}

func validateIDs(ids []int64) error {
	if len(ids) == 0 {
		return NewHTTPError(http.StatusBadRequest, "ids required")
	}
	if len(ids) > maxBulkIDs {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("too many ids (max %d)", maxBulkIDs))
	}
	for _, id := range ids {
		if id <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid id")
		}
	}
	return nil
}

// ゴミ箱へ移す。影響した件数を返す。
func (u *CatalogUsecase[T]) SoftDelete(ctx context.Context, actorUserID int64, ids []int64) (int64, error) {
	return u.bulk(ctx, actorUserID, ids, model.AuditActionSoftDelete, u.repo.SoftDelete,
		`{"trashed":false}`, `{"trashed":true}`)
}

func (u *CatalogUsecase[T]) Restore(ctx context.Context, actorUserID int64, ids []int64) (int64, error) {
	return u.bulk(ctx, actorUserID, ids, model.AuditActionRestore, u.repo.Restore,
		`{"trashed":true}`, `{"trashed":false}`)
}

// ゴミ箱にあるものだけ完全に消す
func (u *CatalogUsecase[T]) HardDelete(ctx context.Context, actorUserID int64, ids []int64) (int64, error) {
	return u.bulk(ctx, actorUserID, ids, model.AuditActionHardDelete, u.repo.HardDelete,
		`{"trashed":true}`, "")
}

func (u *CatalogUsecase[T]) bulk(
	ctx context.Context,
	actorUserID int64,
	ids []int64,
	action model.AuditAction,
	op func(context.Context, []int64) (int64, error),
	beforeJSON, afterJSON string,
) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	n, err := op(ctx, ids)
	if err != nil {
		return 0, internalError(u.logger, "catalog."+string(action), err)
	}
	if n == 0 {
		return 0, NewHTTPError(http.StatusNotFound, "not found")
	}
	for _, id := range ids {
		u.writeAudit(ctx, actorUserID, action, id, beforeJSON, afterJSON)
	}
	u.logger.Info("catalog bulk operation",
		zap.String("action", string(action)),
		zap.Int64s("ids", ids),
		zap.Int64("affected", n),
		zap.Int64("actor_user_id", actorUserID),
	)
	return n, nil
}

// 監査ログの失敗で本体の操作は失敗にしない（ログには残す）
func (u *CatalogUsecase[T]) writeAudit(ctx context.Context, actorUserID int64, action model.AuditAction, id int64, before, after string) {
	if u.audit == nil {
		return
	}
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: u.resource,
		ResourceID:   id,
		BeforeJSON:   before,
		AfterJSON:    after,
	}); err != nil {
		u.logger.Warn("audit log write failed", zap.String("action", string(action)), zap.Int64("resource_id", id), zap.Error(err))
	}
}
