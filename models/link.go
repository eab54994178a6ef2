package models

import (
	"time"
)

type Link struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CatalogID     uint       `gorm:"not null;index:idx_links_catalog_id" json:"catalog_id"`
	Catalog       Catalog    `gorm:"foreignKey:CatalogID;references:ID" json:"catalog,omitempty"`
	LinkGroupID   *uint      `gorm:"index:idx_links_link_group_id" json:"link_group_id,omitempty"`
	LinkGroup     *LinkGroup `gorm:"foreignKey:LinkGroupID;references:ID" json:"link_group,omitempty"`
	Title         string     `gorm:"size:100;not null" json:"title"`
	URL           string     `gorm:"size:500;not null" json:"url"`
	ThumbnailPath *string    `gorm:"size:255" json:"thumbnail_path,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	Position      int        `gorm:"default:0;index:idx_links_position" json:"position"`
	ClickCount    int64      `gorm:"default:0" json:"click_count"` // denormalized running total; link_clicks is the source of truth
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Link) TableName() string {
	return "links"
}

// LinkFilter represents filter criteria for link queries
type LinkFilter struct {
	ID          *uint
	CatalogID   *uint
	LinkGroupID *uint
	IsActive    *bool
}
