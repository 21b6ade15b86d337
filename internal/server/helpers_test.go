package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"perfumeshop/internal/config"
	"perfumeshop/internal/domain/model"
	"perfumeshop/internal/server"
	"perfumeshop/internal/testutil"

	"go.uber.org/zap"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

// インメモリDBにつないだサーバーを立てる
func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	gdb := testutil.NewDB(t)
	cfg := config.Config{
		JWTSecret: testutil.JWTSecret,
		GoEnv:     "test",
		FEURL:     "http://localhost:3000",
	}
	srv := httptest.NewServer(server.New(cfg, gdb, zap.NewNop()))
	t.Cleanup(srv.Close)

	return &TestClient{
		BaseURL: srv.URL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type OrderCreateResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

type OrderItemDTO struct {
	ID         int64 `json:"id"`
	UnitPrice  int64 `json:"unit_price"`
	Quantity   int64 `json:"quantity"`
	IsReviewed bool  `json:"is_reviewed"`
}

type AddressDTO struct {
	FullAddress string `json:"full_address"`
}

type OrderDTO struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone"`
	Address        AddressDTO `json:"address"`
	Status         string     `json:"order_status"`
	PaymentStatus  string     `json:"payment_status"`
	TotalAmount    int64      `json:"total_amount"`
	OriginalAmount *int64     `json:"original_amount"`
	VoucherCode    *string    `json:"voucher_code"`
	CancelReason   *string    `json:"cancel_reason"`
	ReturnReason   *string    `json:"return_reason"`
	ReturnImages   []string   `json:"return_images"`
}

type OrderDetailDTO struct {
	Order OrderDTO       `json:"order"`
	Items []OrderItemDTO `json:"items"`
}

type StatusOptionDTO struct {
	Status        string `json:"status"`
	Label         string `json:"label"`
	PaymentStatus string `json:"payment_status"`
	NeedsReason   bool   `json:"needs_reason"`
}

type AllowedTransitionsDTO struct {
	Current          StatusOptionDTO   `json:"current"`
	Allowed          []StatusOptionDTO `json:"allowed"`
	CanRequestReturn bool              `json:"can_request_return"`
}

type AuditLogDTO struct {
	ID           int64  `json:"id"`
	ActorUserID  int64  `json:"actor_user_id"`
	Action       string `json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   int64  `json:"resource_id"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
	headers ...string,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return b
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(%T) failed: %v body=%s", v, err, string(body))
	}
	return v
}

// ステータスとエラーメッセージを両方確認
func requireError(t *testing.T, resp *http.Response, body []byte, status int, wantMsg string) {
	t.Helper()
	requireStatus(t, resp, status, body)
	er := mustDecode[ErrorResponse](t, body)
	if er.Error != wantMsg {
		t.Fatalf("error mismatch want=%s got=%s body=%s", wantMsg, er.Error, string(body))
	}
}

func toStr(v int64) string {
	return strconv.FormatInt(v, 10)
}

const (
	customerID int64 = 10
	strangerID int64 = 99
	adminID    int64 = 1
)

type tokens struct {
	customer string
	stranger string
	admin    string
}

func newTokens(t *testing.T) tokens {
	return tokens{
		customer: testutil.Token(t, customerID, model.RoleUser),
		stranger: testutil.Token(t, strangerID, model.RoleUser),
		admin:    testutil.Token(t, adminID, model.RoleAdmin),
	}
}

// 顧客として注文を作って order_id を返す
func createOrder(t *testing.T, c *TestClient, ctx context.Context, access string, paymentMethod string) int64 {
	t.Helper()

	body := map[string]interface{}{
		"full_name":      "Nguyễn Văn A",
		"phone":          "0900000000",
		"address":        "1 Tràng Tiền, Hà Nội",
		"payment_method": paymentMethod,
		"items": []map[string]interface{}{
			{"product_variant_id": 1, "product_name": "Chanel No.5 50ml", "price": 100, "quantity": 2},
			{"product_variant_id": 2, "product_name": "Dior Sauvage 100ml", "price": 50, "quantity": 1},
		},
	}
	resp, data := c.doJSON(ctx, t, http.MethodPost, "/orders", access, mustJSON(t, body))
	requireStatus(t, resp, http.StatusCreated, data)

	out := mustDecode[OrderCreateResponse](t, data)
	if out.OrderID <= 0 {
		t.Fatalf("order_id is empty: body=%s", string(data))
	}
	return out.OrderID
}

// PUT /orders/:id で order_status を変える
func updateStatus(t *testing.T, c *TestClient, ctx context.Context, access string, orderID int64, status string, reason string) (*http.Response, []byte) {
	t.Helper()

	body := map[string]interface{}{"order_status": status}
	if reason != "" {
		body["reason"] = reason
	}
	return c.doJSON(ctx, t, http.MethodPut, "/orders/"+toStr(orderID), access, mustJSON(t, body))
}
