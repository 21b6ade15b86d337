package handler

import (
	"net/http"
	"strconv"
	"strings"

	"perfumeshop/internal/config"
	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/middleware"
	repo "perfumeshop/internal/repository"
	"perfumeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAuditHandler(uc *usecase.AuditUsecase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

func (h *AuditHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/audit-logs")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("", h.list)
}

// ?actor_user_id=&action=&resource_type=&resource_id=&trash=&from=&to=&limit=&offset=
// action と resource_type はカンマ区切りで複数指定できる（resource_type=catalog も可）
func (h *AuditHandler) list(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var f repo.AuditLogFilter
	var err error

	if f.ActorUserID, err = optionalInt64(c, "actor_user_id"); err != nil {
		return writeError(c, err)
	}
	if f.ResourceID, err = optionalInt64(c, "resource_id"); err != nil {
		return writeError(c, err)
	}
	for _, v := range splitQuery(c, "action") {
		f.Actions = append(f.Actions, model.AuditAction(strings.ToUpper(v)))
	}
	for _, v := range splitQuery(c, "resource_type") {
		//catalog はカタログ系の全リソース
		if strings.EqualFold(v, "catalog") {
			f.ResourceTypes = append(f.ResourceTypes, model.CatalogResourceTypes()...)
			continue
		}
		f.ResourceTypes = append(f.ResourceTypes, model.AuditResourceType(strings.ToLower(v)))
	}
	if v := c.QueryParam("trash"); v != "" {
		if f.TrashOnly, err = strconv.ParseBool(v); err != nil {
			return badRequest(c, "invalid trash")
		}
	}
	if f.CreatedFrom, err = parseTimeQuery(c, "from"); err != nil {
		return writeError(c, err)
	}
	if f.CreatedTo, err = parseTimeQuery(c, "to"); err != nil {
		return writeError(c, err)
	}
	if v := c.QueryParam("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil {
			return badRequest(c, "invalid limit")
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil {
			return badRequest(c, "invalid offset")
		}
	}

	logs, err := h.uc.List(c.Request().Context(), viewer, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func optionalInt64(c echo.Context, name string) (*int64, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &n, nil
}

// a,b,,c → [a b c]
func splitQuery(c echo.Context, name string) []string {
	var out []string
	for _, v := range strings.Split(c.QueryParam(name), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
