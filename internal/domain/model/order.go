package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusProcessed       OrderStatus = "PROCESSED"
	OrderStatusShipping        OrderStatus = "SHIPPING"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusReceived        OrderStatus = "RECEIVED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusReturnRequested OrderStatus = "RETURN_REQUESTED"
	OrderStatusReturned        OrderStatus = "RETURNED"
	OrderStatusReturnRejected  OrderStatus = "RETURN_REJECTED"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodWallet, PaymentMethodOnline:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// 配送先。省/区/坊/番地のどれか、または組み立て済みの住所文字列。
type ShippingAddress struct {
	Province    string `gorm:"type:varchar(100)" json:"province,omitempty"`
	District    string `gorm:"type:varchar(100)" json:"district,omitempty"`
	Ward        string `gorm:"type:varchar(100)" json:"ward,omitempty"`
	Detail      string `gorm:"type:varchar(255)" json:"detail,omitempty"`
	FullAddress string `gorm:"type:varchar(500);not null" json:"full_address"`
}

// 返品画像などの文字列配列をJSONで1カラムに保存する。
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		out = nil
	}
	*l = out
	return nil
}

type Order struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64           `gorm:"not null;index;uniqueIndex:idx_orders_user_idem" json:"user_id"`
	FullName string          `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone    string          `gorm:"type:varchar(30);not null" json:"phone"`
	Address  ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"address"`

	Status        OrderStatus   `gorm:"type:varchar(30);not null;index" json:"order_status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	TotalAmount    int64   `gorm:"not null" json:"total_amount"`
	OriginalAmount *int64  `json:"original_amount,omitempty"`
	VoucherCode    *string `gorm:"type:varchar(50)" json:"voucher_code,omitempty"`
	Discount       int64   `gorm:"not null;default:0" json:"discount"`

	//CANCELLEDのときだけ
	CancelReason *string `gorm:"type:text" json:"cancel_reason,omitempty"`
	//RETURN_REQUESTED以降
	ReturnReason *string    `gorm:"type:text" json:"return_reason,omitempty"`
	ReturnImages StringList `gorm:"type:text" json:"return_images,omitempty"`

	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idem" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
