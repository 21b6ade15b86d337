package handler

import (
	"net/http"
	"strconv"

	"perfumeshop/internal/config"
	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/middleware"
	"perfumeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// IDsRequest は一括操作の body { ids: [...] }
type IDsRequest struct {
	IDs []int64 `json:"ids"`
}

type AffectedResponse struct {
	Message  string `json:"message"`
	Affected int64  `json:"affected"`
}

// CatalogHandler は /admin/<path> 配下のゴミ箱付きCRUDを1リソース分まとめる
type CatalogHandler[T model.CatalogEntity[T]] struct {
	uc   *usecase.CatalogUsecase[T]
	path string
}

func NewCatalogHandler[T model.CatalogEntity[T]](uc *usecase.CatalogUsecase[T], path string) *CatalogHandler[T] {
	return &CatalogHandler[T]{uc: uc, path: path}
}

// 管理者用ルート
func (h *CatalogHandler[T]) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/" + h.path)
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("", h.list)
	admin.POST("", h.create)
	admin.GET("/:id", h.get)
	admin.PUT("/:id", h.update)
	admin.DELETE("", h.softDelete)
	admin.PATCH("/restore", h.restore)
	admin.DELETE("/force", h.hardDelete)
}

// 公開の読み取り（ゴミ箱に入ったものは出さない）
func (h *CatalogHandler[T]) RegisterPublicRoutes(e *echo.Echo) {
	e.GET("/"+h.path, h.listPublic)
	e.GET("/"+h.path+"/:id", h.get)
}

// ?trashed=true でゴミ箱の中身
func (h *CatalogHandler[T]) list(c echo.Context) error {
	trashed := false
	if v := c.QueryParam("trashed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "invalid trashed")
		}
		trashed = b
	}

	out, err := h.uc.List(c.Request().Context(), trashed)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler[T]) listPublic(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler[T]) get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler[T]) create(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var in T
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Create(c.Request().Context(), viewer.UserID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CatalogHandler[T]) update(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var in T
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), viewer.UserID, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type bulkFunc func(c echo.Context, actorUserID int64, ids []int64) (int64, error)

func (h *CatalogHandler[T]) bulk(c echo.Context, done string, fn bulkFunc) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req IDsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	n, err := fn(c, viewer.UserID, req.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, AffectedResponse{Message: done, Affected: n})
}

func (h *CatalogHandler[T]) softDelete(c echo.Context) error {
	return h.bulk(c, "moved to trash", func(c echo.Context, actor int64, ids []int64) (int64, error) {
		return h.uc.SoftDelete(c.Request().Context(), actor, ids)
	})
}

func (h *CatalogHandler[T]) restore(c echo.Context) error {
	return h.bulk(c, "restored", func(c echo.Context, actor int64, ids []int64) (int64, error) {
		return h.uc.Restore(c.Request().Context(), actor, ids)
	})
}

func (h *CatalogHandler[T]) hardDelete(c echo.Context) error {
	return h.bulk(c, "deleted permanently", func(c echo.Context, actor int64, ids []int64) (int64, error) {
		return h.uc.HardDelete(c.Request().Context(), actor, ids)
	})
}
