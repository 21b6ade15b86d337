package model

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// カタログ系テーブル共通のID・日時・論理削除カラム。
type CatalogBase struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ゴミ箱（論理削除/復元/完全削除）を持つカタログ系リソースの約束。
// Normalize は入力文字列を整形し、ID・日時を空にしたコピーを返す。
type CatalogEntity[T any] interface {
	GetID() int64
	Validate() error
	Normalize(clean func(string) string) T
}

type Brand struct {
	CatalogBase
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	LogoURL     string `gorm:"type:varchar(500)" json:"logo_url"`
}

func (b Brand) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("name required")
	}
	return nil
}

func (b Brand) Normalize(clean func(string) string) Brand {
	b.CatalogBase = CatalogBase{}
	b.Name = clean(b.Name)
	b.Description = clean(b.Description)
	b.LogoURL = strings.TrimSpace(b.LogoURL)
	return b
}

type Category struct {
	CatalogBase
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	ParentID *int64 `gorm:"index" json:"parent_id,omitempty"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name required")
	}
	if c.ParentID != nil && *c.ParentID <= 0 {
		return errors.New("invalid parent_id")
	}
	return nil
}

func (c Category) Normalize(clean func(string) string) Category {
	c.CatalogBase = CatalogBase{}
	c.Name = clean(c.Name)
	return c
}

// 香調・濃度などの属性（例: "Nồng độ"）
type Attribute struct {
	CatalogBase
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

func (a Attribute) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("name required")
	}
	return nil
}

func (a Attribute) Normalize(clean func(string) string) Attribute {
	a.CatalogBase = CatalogBase{}
	a.Name = clean(a.Name)
	return a
}

type AttributeValue struct {
	CatalogBase
	AttributeID int64  `gorm:"not null;index" json:"attribute_id"`
	Value       string `gorm:"type:varchar(100);not null" json:"value"`
}

func (v AttributeValue) Validate() error {
	if v.AttributeID <= 0 {
		return errors.New("invalid attribute_id")
	}
	if strings.TrimSpace(v.Value) == "" {
		return errors.New("value required")
	}
	return nil
}

func (v AttributeValue) Normalize(clean func(string) string) AttributeValue {
	v.CatalogBase = CatalogBase{}
	v.Value = clean(v.Value)
	return v
}

type VoucherType string

const (
	VoucherTypePercent VoucherType = "PERCENT"
	VoucherTypeFixed   VoucherType = "FIXED"
)

// 割引額の計算はしない。コードと条件の保存だけ。
type Voucher struct {
	CatalogBase
	Code           string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Type           VoucherType `gorm:"type:varchar(20);not null" json:"type"`
	Value          int64       `gorm:"not null" json:"value"`
	MinOrderAmount int64       `gorm:"not null;default:0" json:"min_order_amount"`
	Quantity       int64       `gorm:"not null;default:0" json:"quantity"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty"`
}

func (v Voucher) Validate() error {
	if strings.TrimSpace(v.Code) == "" {
		return errors.New("code required")
	}
	switch v.Type {
	case VoucherTypePercent:
		if v.Value <= 0 || v.Value > 100 {
			return errors.New("percent value must be 1-100")
		}
	case VoucherTypeFixed:
		if v.Value <= 0 {
			return errors.New("value must be > 0")
		}
	default:
		return errors.New("invalid type")
	}
	if v.MinOrderAmount < 0 {
		return errors.New("min_order_amount must be >= 0")
	}
	if v.Quantity < 0 {
		return errors.New("quantity must be >= 0")
	}
	return nil
}

func (v Voucher) Normalize(clean func(string) string) Voucher {
	v.CatalogBase = CatalogBase{}
	v.Code = strings.ToUpper(clean(v.Code))
	return v
}

type Faq struct {
	CatalogBase
	Question string `gorm:"type:text;not null" json:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
}

func (f Faq) Validate() error {
	if strings.TrimSpace(f.Question) == "" {
		return errors.New("question required")
	}
	if strings.TrimSpace(f.Answer) == "" {
		return errors.New("answer required")
	}
	return nil
}

func (f Faq) Normalize(clean func(string) string) Faq {
	f.CatalogBase = CatalogBase{}
	f.Question = clean(f.Question)
	f.Answer = clean(f.Answer)
	return f
}

func (b CatalogBase) GetID() int64 {
	return b.ID
}
