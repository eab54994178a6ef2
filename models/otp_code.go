package models

import (
	"time"
)

type OTPCode struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	WhatsApp   string     `gorm:"column:whatsapp;size:20;not null;index:idx_otp_codes_whatsapp" json:"whatsapp"`
	Code       string     `gorm:"size:6;not null" json:"-"` // Never serialize OTP code
	ExpiresAt  time.Time  `gorm:"not null;index:idx_otp_codes_expires_at" json:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	IPAddress  *string    `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_otp_codes_created_at" json:"created_at"`
}

func (OTPCode) TableName() string {
	return "otp_codes"
}

// OTPCodeFilter represents filter criteria for OTP code queries
type OTPCodeFilter struct {
	ID            *uint
	WhatsApp      *string
	IsVerified    *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresAfter  *time.Time
}

func (o *OTPCode) IsExpired() bool {
	return time.Now().UTC().After(o.ExpiresAt)
}

func (o *OTPCode) IsVerified() bool {
	return o.VerifiedAt != nil
}
