package model

import "time"

// 注文明細。単価は注文時点のスナップショットで、以後変更しない。
type OrderItem struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64     `gorm:"not null;index" json:"order_id"`
	ProductVariantID int64     `gorm:"not null;index" json:"product_variant_id"`
	ProductName      string    `gorm:"type:varchar(255)" json:"product_name,omitempty"`
	UnitPrice        int64     `gorm:"not null" json:"unit_price"`
	Quantity         int64     `gorm:"not null" json:"quantity"`
	IsReviewed       bool      `gorm:"not null;default:false" json:"is_reviewed"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
