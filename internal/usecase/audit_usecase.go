package usecase

import (
	"context"
	"net/http"

	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/infra/logger"
	repo "perfumeshop/internal/repository"

	"go.uber.org/zap"
)

type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditUsecase(auditRepo repo.AuditLogRepository, l *zap.Logger) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo, logger: logger.OrNop(l)}
}

// 監査ログ一覧（管理者）
func (u *AuditUsecase) List(ctx context.Context, viewer Viewer, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if !viewer.IsAdmin() {
		return []model.AuditLog{}, NewHTTPError(http.StatusForbidden, "admin only")
	}
	if f.Limit < 0 || f.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, internalError(u.logger, "audit.list", err)
	}
	return logs, nil
}
