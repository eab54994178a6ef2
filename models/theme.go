package models

import (
	"time"
)

type Theme struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:50;not null;uniqueIndex:idx_themes_name" json:"name"`
	BackgroundColor string    `gorm:"size:7;not null" json:"background_color"`
	TextColor       string    `gorm:"size:7;not null" json:"text_color"`
	ButtonColor     string    `gorm:"size:7;not null" json:"button_color"`
	ButtonTextColor string    `gorm:"size:7;not null" json:"button_text_color"`
	IsDefault       bool      `gorm:"default:false" json:"is_default"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Theme) TableName() string {
	return "themes"
}

// ThemeFilter represents filter criteria for theme queries
type ThemeFilter struct {
	ID        *uint
	Name      *string
	IsDefault *bool
}
