package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"perfumeshop/internal/domain/orderflow"
	"perfumeshop/internal/middleware"
	"perfumeshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse は { message: string } の形。
type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500（中身はログだけ）
	middleware.Logger(c, nil).Error("unhandled error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// JWTミドルウェアが入れた値から Viewer を作る
func getViewer(c echo.Context) (usecase.Viewer, bool) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		return usecase.Viewer{}, false
	}
	return usecase.Viewer{UserID: userID, Role: role}, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// page（default 1）と limit（default 20）
func parsePaging(c echo.Context) (int, int, error) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		page = p
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}
	return page, limit, nil
}

// RFC3339 の期間パラメータ。空なら nil。
func parseTimeQuery(c echo.Context, name string) (*time.Time, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &t, nil
}

// ?lang= があればそれを、無ければ Accept-Language を見る
func requestLanguage(c echo.Context) language.Tag {
	if v := c.QueryParam("lang"); v != "" {
		return orderflow.MatchLanguage(v)
	}
	return orderflow.MatchLanguage(c.Request().Header.Get("Accept-Language"))
}

func setTotal(c echo.Context, total int64) {
	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
}
