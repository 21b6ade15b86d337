package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/healthz", "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestUnknownRoute_UsesErrorEnvelope(t *testing.T) {
	c := NewTestClient(t)

	resp, body := c.doJSON(context.Background(), t, http.MethodGet, "/no-such-route", "", nil)
	requireError(t, resp, body, http.StatusNotFound, "Not Found")
}

func TestOrders_RequireToken(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/orders/1", "", nil)
	requireError(t, resp, body, http.StatusUnauthorized, "unauthorized")

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/1", "not-a-jwt", nil)
	requireError(t, resp, body, http.StatusUnauthorized, "unauthorized")
}

func TestOrderLifecycle_ReceiveReturnReview(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	orderID := createOrder(t, c, ctx, tk.customer, "COD")

	//作成直後
	resp, body := c.doJSON(ctx, t, http.MethodGet, "/orders/"+toStr(orderID), tk.customer, nil)
	requireStatus(t, resp, http.StatusOK, body)
	detail := mustDecode[OrderDetailDTO](t, body)
	assert.Equal(t, "PENDING", detail.Order.Status)
	assert.Equal(t, "UNPAID", detail.Order.PaymentStatus)
	assert.Equal(t, int64(250), detail.Order.TotalAmount)
	assert.Nil(t, detail.Order.OriginalAmount)
	require.Len(t, detail.Items, 2)

	//他人からは見えない
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/"+toStr(orderID), tk.stranger, nil)
	requireError(t, resp, body, http.StatusNotFound, "not found")

	//顧客は進められない
	resp, body = updateStatus(t, c, ctx, tk.customer, orderID, "PROCESSED", "")
	requireError(t, resp, body, http.StatusBadRequest, "Chỉ quản trị viên mới được thực hiện thao tác này")

	for _, st := range []string{"PROCESSED", "SHIPPING", "DELIVERED"} {
		resp, body = updateStatus(t, c, ctx, tk.admin, orderID, st, "")
		requireStatus(t, resp, http.StatusOK, body)
		assert.Equal(t, st, mustDecode[OrderDTO](t, body).Status)
	}

	//戻しは不可
	resp, body = updateStatus(t, c, ctx, tk.admin, orderID, "PENDING", "")
	requireError(t, resp, body, http.StatusBadRequest, "Chỉ được chuyển sang trạng thái kế tiếp, không được quay lại trạng thái trước đó")

	//受取確認で支払済みになる
	resp, body = updateStatus(t, c, ctx, tk.customer, orderID, "RECEIVED", "")
	requireStatus(t, resp, http.StatusOK, body)
	received := mustDecode[OrderDTO](t, body)
	assert.Equal(t, "RECEIVED", received.Status)
	assert.Equal(t, "PAID", received.PaymentStatus)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/"+toStr(orderID)+"/allowed-transitions", tk.customer, nil)
	requireStatus(t, resp, http.StatusOK, body)
	allowed := mustDecode[AllowedTransitionsDTO](t, body)
	assert.Equal(t, "RECEIVED", allowed.Current.Status)
	assert.Equal(t, "Đã nhận hàng", allowed.Current.Label)
	assert.Empty(t, allowed.Allowed)
	assert.True(t, allowed.CanRequestReturn)

	//返品申請
	returnBody := map[string]interface{}{
		"reason": "Sai mùi hương",
		"images": []string{"<b>a.jpg</b>", "  "},
	}
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/orders/"+toStr(orderID)+"/return", tk.customer, mustJSON(t, returnBody))
	requireStatus(t, resp, http.StatusOK, body)
	returned := mustDecode[OrderDTO](t, body)
	assert.Equal(t, "RETURN_REQUESTED", returned.Status)
	require.NotNil(t, returned.ReturnReason)
	assert.Equal(t, "Sai mùi hương", *returned.ReturnReason)
	assert.Equal(t, []string{"a.jpg"}, returned.ReturnImages)

	itemID := detail.Items[0].ID
	resp, body = c.doJSON(ctx, t, http.MethodPut, "/orders/"+toStr(orderID)+"/items/"+toStr(itemID)+"/reviewed", tk.customer, nil)
	requireError(t, resp, body, http.StatusBadRequest, "Chỉ được đánh giá khi đã nhận hàng")

	//管理者が返品を却下するとレビューできる
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/"+toStr(orderID)+"/allowed-transitions?lang=en", tk.admin, nil)
	requireStatus(t, resp, http.StatusOK, body)
	adminAllowed := mustDecode[AllowedTransitionsDTO](t, body)
	require.Len(t, adminAllowed.Allowed, 2)
	assert.Equal(t, "RETURNED", adminAllowed.Allowed[0].Status)
	assert.Equal(t, "Returned", adminAllowed.Allowed[0].Label)
	assert.False(t, adminAllowed.CanRequestReturn)

	resp, body = updateStatus(t, c, ctx, tk.admin, orderID, "RETURN_REJECTED", "")
	requireStatus(t, resp, http.StatusOK, body)

	for i := 0; i < 2; i++ {
		resp, body = c.doJSON(ctx, t, http.MethodPut, "/orders/"+toStr(orderID)+"/items/"+toStr(itemID)+"/reviewed", tk.customer, nil)
		requireStatus(t, resp, http.StatusOK, body)
	}

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/"+toStr(orderID), tk.customer, nil)
	requireStatus(t, resp, http.StatusOK, body)
	detail = mustDecode[OrderDetailDTO](t, body)
	for _, it := range detail.Items {
		assert.Equal(t, it.ID == itemID, it.IsReviewed)
	}

	//状態変更はすべて監査ログに残る
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/admin/audit-logs?resource_type=order&resource_id="+toStr(orderID), tk.admin, nil)
	requireStatus(t, resp, http.StatusOK, body)
	logs := mustDecode[[]AuditLogDTO](t, body)
	require.Len(t, logs, 6)
	actions := map[string]int{}
	for _, l := range logs {
		actions[l.Action]++
	}
	assert.Equal(t, 5, actions["UPDATE_ORDER_STATUS"])
	assert.Equal(t, 1, actions["REQUEST_RETURN"])

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/admin/audit-logs", tk.customer, nil)
	requireError(t, resp, body, http.StatusForbidden, "admin only")
}

func TestOrderCancel(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	orderID := createOrder(t, c, ctx, tk.customer, "ONLINE")

	resp, body := updateStatus(t, c, ctx, tk.customer, orderID, "CANCELLED", "")
	requireError(t, resp, body, http.StatusBadRequest, "Vui lòng nhập lý do")

	//cancel_reason でも受け付ける
	resp, body = c.doJSON(ctx, t, http.MethodPut, "/orders/"+toStr(orderID), tk.customer,
		mustJSON(t, map[string]string{"order_status": "cancelled", "cancel_reason": " Đặt nhầm "}))
	requireStatus(t, resp, http.StatusOK, body)
	cancelled := mustDecode[OrderDTO](t, body)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, "REFUNDED", cancelled.PaymentStatus)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "Đặt nhầm", *cancelled.CancelReason)

	//取消後はどの更新も 409
	resp, body = updateStatus(t, c, ctx, tk.admin, orderID, "PROCESSED", "")
	requireError(t, resp, body, http.StatusConflict, "Đơn hàng đã bị huỷ, không thể cập nhật trạng thái")
	resp, body = updateStatus(t, c, ctx, tk.admin, orderID, "CANCELLED", "again")
	requireError(t, resp, body, http.StatusConflict, "Đơn hàng đã bị huỷ, không thể cập nhật trạng thái")
}

func TestOrderCancel_NotAfterShipping(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	orderID := createOrder(t, c, ctx, tk.customer, "COD")
	for _, st := range []string{"PROCESSED", "SHIPPING"} {
		resp, body := updateStatus(t, c, ctx, tk.admin, orderID, st, "")
		requireStatus(t, resp, http.StatusOK, body)
	}

	resp, body := updateStatus(t, c, ctx, tk.admin, orderID, "CANCELLED", "hết hàng")
	requireError(t, resp, body, http.StatusBadRequest, "Chỉ được huỷ đơn hàng khi đơn đang ở trạng thái Chờ xử lý hoặc Đã xử lý")
}

func TestOrderShippingEdit_OnlyWhilePending(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	orderID := createOrder(t, c, ctx, tk.customer, "COD")

	edit := map[string]interface{}{
		"full_name": "Trần Thị B",
		"address":   map[string]string{"detail": "12 Lê Lợi", "ward": "Bến Nghé", "district": "Quận 1", "province": "TP.HCM"},
	}
	resp, body := c.doJSON(ctx, t, http.MethodPut, "/orders/"+toStr(orderID), tk.customer, mustJSON(t, edit))
	requireStatus(t, resp, http.StatusOK, body)
	o := mustDecode[OrderDTO](t, body)
	assert.Equal(t, "Trần Thị B", o.FullName)
	assert.Equal(t, "12 Lê Lợi, Bến Nghé, Quận 1, TP.HCM", o.Address.FullAddress)
	assert.Equal(t, "PENDING", o.Status)

	resp, body = updateStatus(t, c, ctx, tk.admin, orderID, "PROCESSED", "")
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodPut, "/orders/"+toStr(orderID), tk.customer, mustJSON(t, map[string]string{"phone": "0911111111"}))
	requireError(t, resp, body, http.StatusBadRequest, "Chỉ được sửa thông tin giao hàng khi đơn đang ở trạng thái Chờ xử lý")
}

func TestOrderCreate_Validation(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	cases := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{
			name: "missing full_name",
			body: map[string]interface{}{"phone": "09", "address": "x", "payment_method": "COD",
				"items": []map[string]interface{}{{"product_variant_id": 1, "price": 1, "quantity": 1}}},
			want: "full_name required",
		},
		{
			name: "bad payment method",
			body: map[string]interface{}{"full_name": "A", "phone": "09", "address": "x", "payment_method": "BITCOIN",
				"items": []map[string]interface{}{{"product_variant_id": 1, "price": 1, "quantity": 1}}},
			want: "invalid payment_method",
		},
		{
			name: "no items",
			body: map[string]interface{}{"full_name": "A", "phone": "09", "address": "x", "payment_method": "COD"},
			want: "items required",
		},
		{
			name: "zero quantity",
			body: map[string]interface{}{"full_name": "A", "phone": "09", "address": "x", "payment_method": "COD",
				"items": []map[string]interface{}{{"product_variant_id": 1, "price": 1, "quantity": 0}}},
			want: "quantity must be > 0",
		},
		{
			name: "order for someone else",
			body: map[string]interface{}{"user_id": strangerID, "full_name": "A", "phone": "09", "address": "x", "payment_method": "COD",
				"items": []map[string]interface{}{{"product_variant_id": 1, "price": 1, "quantity": 1}}},
			want: "forbidden",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := c.doJSON(ctx, t, http.MethodPost, "/orders", tk.customer, mustJSON(t, tc.body))
			if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusForbidden {
				t.Fatalf("status=%d body=%s", resp.StatusCode, string(body))
			}
			assert.Equal(t, tc.want, mustDecode[ErrorResponse](t, body).Error)
		})
	}

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/orders", tk.customer, []byte(`{"address": 12}`))
	requireError(t, resp, body, http.StatusBadRequest, "invalid body")
}

func TestOrderCreate_DiscountAndIdempotency(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	body := mustJSON(t, map[string]interface{}{
		"full_name":      "Nguyễn Văn A",
		"phone":          "0900000000",
		"address":        "1 Tràng Tiền, Hà Nội",
		"payment_method": "wallet",
		"voucher_code":   "summer10",
		"discount":       30,
		"items":          []map[string]interface{}{{"product_variant_id": 3, "price": 100, "quantity": 1}},
	})

	resp, data := c.doJSON(ctx, t, http.MethodPost, "/orders", tk.customer, body, "X-Idempotency-Key", "k-1")
	requireStatus(t, resp, http.StatusCreated, data)
	first := mustDecode[OrderCreateResponse](t, data)

	//同じキーの再送は同じ注文
	resp, data = c.doJSON(ctx, t, http.MethodPost, "/orders", tk.customer, body, "X-Idempotency-Key", "k-1")
	requireStatus(t, resp, http.StatusOK, data)
	assert.Equal(t, first.OrderID, mustDecode[OrderCreateResponse](t, data).OrderID)

	resp, data = c.doJSON(ctx, t, http.MethodGet, "/orders/"+toStr(first.OrderID), tk.customer, nil)
	requireStatus(t, resp, http.StatusOK, data)
	o := mustDecode[OrderDetailDTO](t, data).Order
	assert.Equal(t, int64(70), o.TotalAmount)
	require.NotNil(t, o.OriginalAmount)
	assert.Equal(t, int64(100), *o.OriginalAmount)
	require.NotNil(t, o.VoucherCode)
	assert.Equal(t, "SUMMER10", *o.VoucherCode)

	resp, data = c.doJSON(ctx, t, http.MethodGet, "/orders", tk.admin, nil)
	requireStatus(t, resp, http.StatusOK, data)
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))
	assert.Len(t, mustDecode[[]OrderDTO](t, data), 1)
}

func TestOrderLists(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	first := createOrder(t, c, ctx, tk.customer, "COD")
	_ = createOrder(t, c, ctx, tk.customer, "COD")
	_ = createOrder(t, c, ctx, tk.stranger, "COD")

	resp, body := updateStatus(t, c, ctx, tk.admin, first, "PROCESSED", "")
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders", tk.customer, nil)
	requireError(t, resp, body, http.StatusForbidden, "admin only")

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders?status=processed", tk.admin, nil)
	requireStatus(t, resp, http.StatusOK, body)
	processed := mustDecode[[]OrderDTO](t, body)
	require.Len(t, processed, 1)
	assert.Equal(t, first, processed[0].ID)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders?user_id="+toStr(customerID), tk.admin, nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Equal(t, "2", resp.Header.Get("X-Total-Count"))

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders?from=yesterday", tk.admin, nil)
	requireError(t, resp, body, http.StatusBadRequest, "invalid from")

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/user/"+toStr(customerID)+"/full", tk.customer, nil)
	requireStatus(t, resp, http.StatusOK, body)
	type withItems struct {
		OrderDTO
		Items []OrderItemDTO `json:"items"`
	}
	full := mustDecode[[]withItems](t, body)
	require.Len(t, full, 2)
	for _, o := range full {
		assert.Equal(t, customerID, o.UserID)
		assert.Len(t, o.Items, 2)
	}

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/user/"+toStr(customerID), tk.stranger, nil)
	requireError(t, resp, body, http.StatusForbidden, "forbidden")
}

func TestOrderDelete_AdminOnly(t *testing.T) {
	c := NewTestClient(t)
	tk := newTokens(t)
	ctx := context.Background()

	orderID := createOrder(t, c, ctx, tk.customer, "COD")

	resp, body := c.doJSON(ctx, t, http.MethodDelete, "/orders/"+toStr(orderID), tk.customer, nil)
	requireError(t, resp, body, http.StatusForbidden, "admin only")

	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/orders/"+toStr(orderID), tk.admin, nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Equal(t, "order deleted", mustDecode[SuccessResponse](t, body).Message)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/orders/"+toStr(orderID), tk.admin, nil)
	requireError(t, resp, body, http.StatusNotFound, "not found")

	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/orders/"+toStr(orderID), tk.admin, nil)
	requireError(t, resp, body, http.StatusNotFound, "not found")
}

func TestOrderStatuses_Localized(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/order-statuses", "", nil)
	requireStatus(t, resp, http.StatusOK, body)
	vi := mustDecode[[]StatusOptionDTO](t, body)
	require.Len(t, vi, 9)
	assert.Equal(t, "Chờ xử lý", vi[0].Label)

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/order-statuses", "", nil, "Accept-Language", "en-US,en;q=0.9")
	requireStatus(t, resp, http.StatusOK, body)
	en := mustDecode[[]StatusOptionDTO](t, body)
	require.Len(t, en, 9)
	assert.Equal(t, "Pending", en[0].Label)
	assert.Equal(t, "RETURN_REJECTED", en[8].Status)
}
