package models

import (
	"time"
)

type LinkClick struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CatalogID uint      `gorm:"not null;index:idx_link_clicks_catalog_clicked,priority:1" json:"catalog_id"`
	Catalog   Catalog   `gorm:"foreignKey:CatalogID;references:ID" json:"catalog,omitempty"`
	LinkID    uint      `gorm:"not null;index:idx_link_clicks_link_id" json:"link_id"`
	Link      Link      `gorm:"foreignKey:LinkID;references:ID;constraint:-" json:"link,omitempty"`
	IPHash    string    `gorm:"size:64;not null" json:"-"`
	UserAgent *string   `gorm:"size:255" json:"user_agent,omitempty"`
	Referrer  *string   `gorm:"size:500" json:"referrer,omitempty"`
	ClickedAt time.Time `gorm:"not null;index:idx_link_clicks_catalog_clicked,priority:2" json:"clicked_at"`
}

func (LinkClick) TableName() string {
	return "link_clicks"
}

// LinkClickFilter represents filter criteria for link click queries
type LinkClickFilter struct {
	ID            *uint
	CatalogID     *uint
	LinkID        *uint
	ClickedAfter  *time.Time
	ClickedBefore *time.Time
}
