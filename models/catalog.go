package models

import (
	"time"
)

type Catalog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_catalogs_user_id" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Username    string    `gorm:"size:50;not null;uniqueIndex:idx_catalogs_username" json:"username"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	Bio         *string   `gorm:"size:500" json:"bio,omitempty"`
	AvatarPath  *string   `gorm:"size:255" json:"avatar_path,omitempty"`
	ThemeID     *uint     `gorm:"index:idx_catalogs_theme_id" json:"theme_id,omitempty"`
	Theme       *Theme    `gorm:"foreignKey:ThemeID;references:ID" json:"theme,omitempty"`
	IsPublished bool      `gorm:"default:false" json:"is_published"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Catalog) TableName() string {
	return "catalogs"
}

// CatalogFilter represents filter criteria for catalog queries
type CatalogFilter struct {
	ID            *uint
	UserID        *uint
	Username      *string
	IsPublished   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
