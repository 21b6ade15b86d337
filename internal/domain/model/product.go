package model

import (
	"errors"
	"strings"
)

type Product struct {
	CatalogBase
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	BrandID     int64  `gorm:"not null;index" json:"brand_id"`
	CategoryID  int64  `gorm:"not null;index" json:"category_id"`
	IsActive    bool   `gorm:"not null;default:false" json:"is_active"`
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name required")
	}
	if p.BrandID <= 0 {
		return errors.New("invalid brand_id")
	}
	if p.CategoryID <= 0 {
		return errors.New("invalid category_id")
	}
	return nil
}

func (p Product) Normalize(clean func(string) string) Product {
	p.CatalogBase = CatalogBase{}
	p.Name = clean(p.Name)
	p.Description = clean(p.Description)
	return p
}

// 購入単位（容量など）。価格と在庫はバリアントごと。
type ProductVariant struct {
	CatalogBase
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	SKU       string `gorm:"type:varchar(100)" json:"sku"`
	VolumeML  int64  `gorm:"not null" json:"volume_ml"`
	Price     int64  `gorm:"not null" json:"price"`
	Stock     int64  `gorm:"not null" json:"stock"`
}

func (v ProductVariant) Validate() error {
	if v.ProductID <= 0 {
		return errors.New("invalid product_id")
	}
	if v.VolumeML <= 0 {
		return errors.New("volume_ml must be > 0")
	}
	if v.Price < 0 {
		return errors.New("price must be >= 0")
	}
	if v.Stock < 0 {
		return errors.New("stock must be >= 0")
	}
	return nil
}

func (v ProductVariant) Normalize(clean func(string) string) ProductVariant {
	v.CatalogBase = CatalogBase{}
	v.SKU = clean(v.SKU)
	return v
}
