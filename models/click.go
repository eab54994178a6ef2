package models

import (
	"time"
)

// Click records a buy-button tap on a product card. Kept separate from
// LinkClick because product clicks carry no referrer attribution.
type Click struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CatalogID uint      `gorm:"not null;index:idx_clicks_catalog_clicked,priority:1" json:"catalog_id"`
	Catalog   Catalog   `gorm:"foreignKey:CatalogID;references:ID" json:"catalog,omitempty"`
	ProductID uint      `gorm:"not null;index:idx_clicks_product_id" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
	IPHash    string    `gorm:"size:64;not null" json:"-"`
	UserAgent *string   `gorm:"size:255" json:"user_agent,omitempty"`
	ClickedAt time.Time `gorm:"not null;index:idx_clicks_catalog_clicked,priority:2" json:"clicked_at"`
}

func (Click) TableName() string {
	return "clicks"
}

// ClickFilter represents filter criteria for product click queries
type ClickFilter struct {
	ID            *uint
	CatalogID     *uint
	ProductID     *uint
	ClickedAfter  *time.Time
	ClickedBefore *time.Time
}
