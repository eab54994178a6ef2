// Package models contains domain entities and business models for the storefront platform
package models

import (
	"time"
)

type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:100" json:"name"`
	WhatsApp   string     `gorm:"column:whatsapp;size:20;not null;uniqueIndex:idx_users_whatsapp" json:"whatsapp"`
	Username   string     `gorm:"size:50;not null;uniqueIndex:idx_users_username" json:"username"`
	Password   string     `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialized
	PINHash    *string    `gorm:"column:pin_hash;size:255" json:"-"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	WhatsApp      *string
	Username      *string
	IsVerified    *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

func (u *User) HasPIN() bool {
	return u.PINHash != nil && *u.PINHash != ""
}
