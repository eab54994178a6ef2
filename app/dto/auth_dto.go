// Package dto contains request and response structures for the API
package dto

// SendOTPRequest asks for a verification code to be sent over WhatsApp
type SendOTPRequest struct {
	WhatsApp string `json:"whatsapp" validate:"required,whatsapp_format" example:"081234567890"`
}

// SendOTPResponse reports the validity window of the issued code
type SendOTPResponse struct {
	ExpiresIn   int    `json:"expires_in" example:"300"`
	CanResendAt string `json:"can_resend_at" example:"2024-01-15T10:31:00Z"`
}

// VerifyOTPRequest consumes a verification code and registers a new account
type VerifyOTPRequest struct {
	WhatsApp             string `json:"whatsapp" validate:"required,whatsapp_format" example:"081234567890"`
	OTP                  string `json:"otp" validate:"required,len=6,numeric" example:"123456"`
	Name                 string `json:"name" validate:"required,min=3,max=100" example:"Toko Siti"`
	Password             string `json:"password" validate:"required,min=8" example:"rahasia-123"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password" example:"rahasia-123"`
}

// LoginRequest authenticates with the account password
type LoginRequest struct {
	WhatsApp string `json:"whatsapp" validate:"required,whatsapp_format" example:"081234567890"`
	Password string `json:"password" validate:"required" example:"rahasia-123"`
}

// LoginPINRequest authenticates with the 6-digit account PIN
type LoginPINRequest struct {
	WhatsApp string `json:"whatsapp" validate:"required,whatsapp_format" example:"081234567890"`
	PIN      string `json:"pin" validate:"required,len=6,numeric" example:"654321"`
}

// SetPINRequest sets or replaces the account PIN
type SetPINRequest struct {
	PIN             string `json:"pin" validate:"required,len=6,numeric" example:"654321"`
	PINConfirmation string `json:"pin_confirmation" validate:"required,eqfield=PIN" example:"654321"`
}

// ResetPINRequest resets the PIN after proving phone ownership with a fresh OTP
type ResetPINRequest struct {
	WhatsApp        string `json:"whatsapp" validate:"required,whatsapp_format" example:"081234567890"`
	OTP             string `json:"otp" validate:"required,len=6,numeric" example:"123456"`
	PIN             string `json:"pin" validate:"required,len=6,numeric" example:"654321"`
	PINConfirmation string `json:"pin_confirmation" validate:"required,eqfield=PIN" example:"654321"`
}

// UserDTO is the authenticated user payload
type UserDTO struct {
	ID         uint    `json:"id" example:"1"`
	Name       string  `json:"name" example:"Siti"`
	WhatsApp   string  `json:"whatsapp" example:"6281234567890"`
	Username   string  `json:"username" example:"toko-siti"`
	Avatar     *string `json:"avatar" example:"/uploads/avatars/3f2c.jpg"`
	HasPIN     bool    `json:"has_pin" example:"true"`
	VerifiedAt *string `json:"verified_at" example:"2024-01-15T10:30:00Z"`
	CreatedAt  string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// SessionDTO carries the issued bearer token
type SessionDTO struct {
	AccessToken string `json:"access_token" example:"jwt"`
	ExpiresIn   int    `json:"expires_in" example:"86400"`
	TokenType   string `json:"token_type" example:"Bearer"`
}

// AuthResponse bundles the user with their session
type AuthResponse struct {
	User    UserDTO    `json:"user"`
	Session SessionDTO `json:"session"`
	IsNew   bool       `json:"is_new" example:"true"`
}
