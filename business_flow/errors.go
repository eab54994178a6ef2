// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound              = errors.New("user not found")
	ErrWhatsAppAlreadyRegistered = errors.New("whatsapp number already registered")
	ErrIncorrectPassword         = errors.New("incorrect password")
	ErrIncorrectPIN              = errors.New("incorrect PIN")
	ErrPINNotSet                 = errors.New("PIN has not been set")
	ErrPINAlreadySet             = errors.New("PIN has already been set")
	ErrAccountUnverified         = errors.New("account has not been verified")

	// OTP-related errors
	ErrOTPRateLimited       = errors.New("too many verification codes requested")
	ErrOTPInvalidOrExpired  = errors.New("verification code is invalid or expired")
	ErrOTPDispatchFailed    = errors.New("failed to send verification code")
	ErrInvalidWhatsAppInput = errors.New("whatsapp number format is invalid")

	// Catalog-related errors
	ErrCatalogNotFound      = errors.New("catalog not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrUsernameInvalid      = errors.New("username format is invalid")
	ErrCatalogAccessDenied  = errors.New("catalog access denied")
	ErrCatalogNotPublished  = errors.New("catalog is not published")
	ErrThemeNotFound        = errors.New("theme not found")
	ErrOnboardingIncomplete = errors.New("onboarding is incomplete")

	// Link and product errors
	ErrLinkNotFound         = errors.New("link not found")
	ErrLinkGroupNotFound    = errors.New("link group not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrReorderIDsIncomplete = errors.New("reorder must include every item exactly once")

	// Analytics errors
	ErrInvalidExport = errors.New("unknown export report")

	// Upload errors
	ErrImageInvalid  = errors.New("uploaded image is invalid")
	ErrImageTooLarge = errors.New("uploaded image is too large")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsWhatsAppAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrWhatsAppAlreadyRegistered)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsAccountUnverified(err error) bool {
	return errors.Is(err, ErrAccountUnverified)
}

func IsIncorrectPIN(err error) bool {
	return errors.Is(err, ErrIncorrectPIN)
}

func IsPINNotSet(err error) bool {
	return errors.Is(err, ErrPINNotSet)
}

func IsPINAlreadySet(err error) bool {
	return errors.Is(err, ErrPINAlreadySet)
}

func IsOTPRateLimited(err error) bool {
	return errors.Is(err, ErrOTPRateLimited)
}

func IsOTPInvalidOrExpired(err error) bool {
	return errors.Is(err, ErrOTPInvalidOrExpired)
}

func IsOTPDispatchFailed(err error) bool {
	return errors.Is(err, ErrOTPDispatchFailed)
}

func IsInvalidWhatsAppInput(err error) bool {
	return errors.Is(err, ErrInvalidWhatsAppInput)
}

func IsCatalogNotFound(err error) bool {
	return errors.Is(err, ErrCatalogNotFound)
}

func IsUsernameTaken(err error) bool {
	return errors.Is(err, ErrUsernameTaken)
}

func IsUsernameInvalid(err error) bool {
	return errors.Is(err, ErrUsernameInvalid)
}

func IsCatalogAccessDenied(err error) bool {
	return errors.Is(err, ErrCatalogAccessDenied)
}

func IsCatalogNotPublished(err error) bool {
	return errors.Is(err, ErrCatalogNotPublished)
}

func IsThemeNotFound(err error) bool {
	return errors.Is(err, ErrThemeNotFound)
}

func IsOnboardingIncomplete(err error) bool {
	return errors.Is(err, ErrOnboardingIncomplete)
}

func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsLinkGroupNotFound(err error) bool {
	return errors.Is(err, ErrLinkGroupNotFound)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsReorderIDsIncomplete(err error) bool {
	return errors.Is(err, ErrReorderIDsIncomplete)
}

func IsInvalidExport(err error) bool {
	return errors.Is(err, ErrInvalidExport)
}

func IsImageInvalid(err error) bool {
	return errors.Is(err, ErrImageInvalid)
}

func IsImageTooLarge(err error) bool {
	return errors.Is(err, ErrImageTooLarge)
}
