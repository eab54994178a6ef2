package models

import (
	"time"
)

type LinkGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CatalogID uint      `gorm:"not null;index:idx_link_groups_catalog_id" json:"catalog_id"`
	Catalog   Catalog   `gorm:"foreignKey:CatalogID;references:ID" json:"catalog,omitempty"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Position  int       `gorm:"default:0;index:idx_link_groups_position" json:"position"`
	Links     []Link    `gorm:"foreignKey:LinkGroupID;references:ID" json:"links,omitempty"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (LinkGroup) TableName() string {
	return "link_groups"
}

// LinkGroupFilter represents filter criteria for link group queries
type LinkGroupFilter struct {
	ID        *uint
	CatalogID *uint
}
