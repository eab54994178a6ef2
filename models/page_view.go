package models

import (
	"time"
)

type PageView struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CatalogID   uint      `gorm:"not null;index:idx_page_views_catalog_visited,priority:1" json:"catalog_id"`
	Catalog     Catalog   `gorm:"foreignKey:CatalogID;references:ID" json:"catalog,omitempty"`
	IPHash      string    `gorm:"size:64;not null;index:idx_page_views_ip_hash" json:"-"`
	UserAgent   *string   `gorm:"size:255" json:"user_agent,omitempty"`
	Referrer    *string   `gorm:"size:500" json:"referrer,omitempty"`
	UTMSource   *string   `gorm:"size:100" json:"utm_source,omitempty"`
	UTMMedium   *string   `gorm:"size:100" json:"utm_medium,omitempty"`
	UTMCampaign *string   `gorm:"size:100" json:"utm_campaign,omitempty"`
	VisitedAt   time.Time `gorm:"not null;index:idx_page_views_catalog_visited,priority:2" json:"visited_at"`
}

func (PageView) TableName() string {
	return "page_views"
}

// PageViewFilter represents filter criteria for page view queries
type PageViewFilter struct {
	ID            *uint
	CatalogID     *uint
	IPHash        *string
	VisitedAfter  *time.Time
	VisitedBefore *time.Time
}
