package handler

import (
	"encoding/json"
	"errors"
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

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// 住所は文字列（組み立て済み）でもオブジェクトでも受ける
type AddressInput struct {
	model.ShippingAddress
}

func (a *AddressInput) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.ShippingAddress = model.ShippingAddress{FullAddress: s}
		return nil
	}
	var obj model.ShippingAddress
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("address must be a string or an object")
	}
	a.ShippingAddress = obj
	return nil
}

type OrderItemRequest struct {
	ProductVariantID int64  `json:"product_variant_id"`
	ProductName      string `json:"product_name"`
	Price            int64  `json:"price"`
	Quantity         int64  `json:"quantity"`
}

type OrderCreateRequest struct {
	UserID        int64              `json:"user_id"`
	FullName      string             `json:"full_name"`
	Phone         string             `json:"phone"`
	Address       AddressInput       `json:"address"`
	PaymentMethod string             `json:"payment_method"`
	Items         []OrderItemRequest `json:"items"`
	VoucherCode   string             `json:"voucher_code"`
	Discount      int64              `json:"discount"`
}

type OrderCreateResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

// 部分更新。送られてきた項目だけ変える。
type OrderUpdateRequest struct {
	OrderStatus  *string       `json:"order_status"`
	Reason       string        `json:"reason"`
	CancelReason string        `json:"cancel_reason"`
	FullName     *string       `json:"full_name"`
	Phone        *string       `json:"phone"`
	Address      *AddressInput `json:"address"`
}

type ReturnRequest struct {
	Reason string   `json:"reason"`
	Images []string `json:"images"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	//ステータス一覧は公開
	e.GET("/order-statuses", h.statuses)

	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.create)
	g.GET("", h.list, middleware.AdminRoleGuard())
	g.GET("/user/:userId", h.listByUser)
	g.GET("/user/:userId/full", h.listByUserFull)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete, middleware.AdminRoleGuard())
	g.GET("/:id/allowed-transitions", h.allowedTransitions)
	g.POST("/:id/return", h.requestReturn)
	g.PUT("/:id/items/:itemId/reviewed", h.markReviewed)
}

func (h *OrderHandler) statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, usecase.OrderStatuses(requestLanguage(c)))
}

func (h *OrderHandler) create(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	items := make([]usecase.CreateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CreateOrderItemInput{
			ProductVariantID: it.ProductVariantID,
			ProductName:      it.ProductName,
			Price:            it.Price,
			Quantity:         it.Quantity,
		})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, err := h.uc.CreateOrder(c.Request().Context(), viewer, usecase.CreateOrderInput{
		UserID:         req.UserID,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address:        req.Address.ShippingAddress,
		PaymentMethod:  model.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		Items:          items,
		VoucherCode:    req.VoucherCode,
		Discount:       req.Discount,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	if out.Replayed {
		return c.JSON(http.StatusOK, OrderCreateResponse{Message: "order already created", OrderID: out.Order.ID})
	}
	return c.JSON(http.StatusCreated, OrderCreateResponse{Message: "order created", OrderID: out.Order.ID})
}

// 全注文（管理者）。?page=&limit=&status=&user_id=&from=&to=
func (h *OrderHandler) list(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit, err := parsePaging(c)
	if err != nil {
		return writeError(c, err)
	}
	f := repo.OrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: model.OrderStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))),
	}
	if v := c.QueryParam("user_id"); v != "" {
		uid, err := strconv.ParseInt(v, 10, 64)
		if err != nil || uid <= 0 {
			return badRequest(c, "invalid user_id")
		}
		f.UserID = &uid
	}
	if f.From, err = parseTimeQuery(c, "from"); err != nil {
		return writeError(c, err)
	}
	if f.To, err = parseTimeQuery(c, "to"); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListOrders(c.Request().Context(), viewer, f)
	if err != nil {
		return writeError(c, err)
	}
	setTotal(c, out.Total)
	return c.JSON(http.StatusOK, out.Orders)
}

func (h *OrderHandler) listByUser(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return badRequest(c, "invalid user_id")
	}
	page, limit, err := parsePaging(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListByUser(c.Request().Context(), viewer, userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	setTotal(c, out.Total)
	return c.JSON(http.StatusOK, out.Orders)
}

func (h *OrderHandler) listByUserFull(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return badRequest(c, "invalid user_id")
	}
	page, limit, err := parsePaging(c)
	if err != nil {
		return writeError(c, err)
	}

	out, total, err := h.uc.ListByUserWithItems(c.Request().Context(), viewer, userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	setTotal(c, total)
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetOrder(c.Request().Context(), viewer, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) update(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	in := usecase.UpdateOrderInput{
		Reason:   req.Reason,
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if in.Reason == "" {
		in.Reason = req.CancelReason
	}
	if req.OrderStatus != nil {
		st := model.OrderStatus(*req.OrderStatus)
		in.Status = &st
	}
	if req.Address != nil {
		a := req.Address.ShippingAddress
		in.Address = &a
	}

	out, err := h.uc.UpdateOrder(c.Request().Context(), viewer, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) delete(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.DeleteOrder(c.Request().Context(), viewer, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "order deleted"})
}

func (h *OrderHandler) allowedTransitions(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.AllowedTransitions(c.Request().Context(), viewer, id, requestLanguage(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) requestReturn(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ReturnRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.RequestReturn(c.Request().Context(), viewer, id, req.Reason, req.Images)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) markReviewed(c echo.Context) error {
	viewer, ok := getViewer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return badRequest(c, "invalid item id")
	}

	if err := h.uc.MarkItemReviewed(c.Request().Context(), viewer, id, itemID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "item reviewed"})
}
