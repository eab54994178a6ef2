package models

import (
	"time"
)

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CatalogID   uint      `gorm:"not null;index:idx_products_catalog_id" json:"catalog_id"`
	Catalog     Catalog   `gorm:"foreignKey:CatalogID;references:ID" json:"catalog,omitempty"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description *string   `gorm:"size:1000" json:"description,omitempty"`
	Price       int64     `gorm:"default:0" json:"price"` // smallest currency unit (IDR has no cents)
	ImagePath   *string   `gorm:"size:255" json:"image_path,omitempty"`
	BuyURL      *string   `gorm:"size:500" json:"buy_url,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	Position    int       `gorm:"default:0;index:idx_products_position" json:"position"`
	ClickCount  int64     `gorm:"default:0" json:"click_count"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	ID        *uint
	CatalogID *uint
	IsActive  *bool
}
