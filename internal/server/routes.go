package server

import (
	"net/http"

	"perfumeshop/internal/config"
	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/handler"
	infraRepo "perfumeshop/internal/infra/repository"
	"perfumeshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterRoutes は repository → usecase → handler を組み立ててルートを登録する
func RegisterRoutes(e *echo.Echo, cfg config.Config, db *gorm.DB, logger *zap.Logger) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//Repository（GORM実装）
	txm := infraRepo.NewTxManagerGorm(db)
	auditRepo := infraRepo.NewAuditLogGormRepository(db)

	//注文
	orderUC := usecase.NewOrderUsecase(txm, logger)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, cfg)

	//監査ログ
	auditUC := usecase.NewAuditUsecase(auditRepo, logger)
	handler.NewAuditHandler(auditUC).RegisterRoutes(e, cfg)

	//カタログ（ゴミ箱付き）。public=true は一般公開の一覧も出す
	registerCatalog[model.Brand](e, cfg, db, auditRepo, logger, model.AuditResourceBrand, "brands", true)
	registerCatalog[model.Category](e, cfg, db, auditRepo, logger, model.AuditResourceCategory, "categories", true)
	registerCatalog[model.Product](e, cfg, db, auditRepo, logger, model.AuditResourceProduct, "products", true)
	registerCatalog[model.ProductVariant](e, cfg, db, auditRepo, logger, model.AuditResourceProductVariant, "product-variants", false)
	registerCatalog[model.Attribute](e, cfg, db, auditRepo, logger, model.AuditResourceAttribute, "attributes", false)
	registerCatalog[model.AttributeValue](e, cfg, db, auditRepo, logger, model.AuditResourceAttributeValue, "attribute-values", false)
	registerCatalog[model.Voucher](e, cfg, db, auditRepo, logger, model.AuditResourceVoucher, "vouchers", false)
	registerCatalog[model.Faq](e, cfg, db, auditRepo, logger, model.AuditResourceFaq, "faqs", true)
}

func registerCatalog[T model.CatalogEntity[T]](
	e *echo.Echo,
	cfg config.Config,
	db *gorm.DB,
	auditRepo *infraRepo.AuditLogGormRepository,
	logger *zap.Logger,
	resource model.AuditResourceType,
	path string,
	public bool,
) {
	uc := usecase.NewCatalogUsecase[T](infraRepo.NewTrashGormRepository[T](db), auditRepo, resource, logger)
	h := handler.NewCatalogHandler(uc, path)
	h.RegisterRoutes(e, cfg)
	if public {
		h.RegisterPublicRoutes(e)
	}
}
