// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	"github.com/kaitkan/kaitkan-api/utils"
)

// OTPFlow handles issuing and housekeeping of WhatsApp verification codes
type OTPFlow interface {
	SendOTP(ctx context.Context, req *dto.SendOTPRequest, metadata *ClientMetadata) (*dto.SendOTPResponse, error)
	CleanupExpiredOTPs(ctx context.Context) (int64, error)
}

// OTPFlowImpl implements the OTP flow
type OTPFlowImpl struct {
	otpRepo    repository.OTPCodeRepository
	smsService services.SMSService
}

// NewOTPFlow creates a new OTP flow
func NewOTPFlow(otpRepo repository.OTPCodeRepository, smsService services.SMSService) OTPFlow {
	return &OTPFlowImpl{
		otpRepo:    otpRepo,
		smsService: smsService,
	}
}

// SendOTP issues a fresh code and dispatches it through the gateway. Issuance
// is rate limited per number over a rolling window; the stored code stays
// valid even when dispatch fails so a retried send can still be verified.
func (f *OTPFlowImpl) SendOTP(ctx context.Context, req *dto.SendOTPRequest, metadata *ClientMetadata) (*dto.SendOTPResponse, error) {
	if !utils.IsValidWhatsApp(req.WhatsApp) {
		return nil, NewBusinessError("INVALID_WHATSAPP", "whatsapp number format is invalid", ErrInvalidWhatsAppInput)
	}
	whatsapp := utils.NormalizePhone(req.WhatsApp)

	now := utils.UTCNow()
	issued, err := f.otpRepo.CountIssuedSince(ctx, whatsapp, now.Add(-utils.OTPRateLimitWindow))
	if err != nil {
		return nil, NewBusinessError("OTP_QUERY_FAILED", "failed to check recent codes", err)
	}
	if issued >= utils.OTPMaxPerWindow {
		return nil, NewBusinessError("OTP_RATE_LIMITED", "too many verification codes requested", ErrOTPRateLimited)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, NewBusinessError("OTP_GENERATION_FAILED", "failed to generate code", err)
	}

	otp := &models.OTPCode{
		WhatsApp:  whatsapp,
		Code:      code,
		ExpiresAt: now.Add(utils.OTPExpiry),
		CreatedAt: now,
	}
	if metadata != nil && metadata.IPAddress != "" {
		otp.IPAddress = utils.ToPtr(metadata.IPAddress)
	}

	if err := f.otpRepo.Save(ctx, otp); err != nil {
		return nil, NewBusinessError("OTP_SAVE_FAILED", "failed to store code", err)
	}

	if err := f.smsService.SendOTP(ctx, whatsapp, code); err != nil {
		return nil, NewBusinessError("OTP_DISPATCH_FAILED", "failed to send verification code", fmt.Errorf("%w: %v", ErrOTPDispatchFailed, err))
	}

	return &dto.SendOTPResponse{
		ExpiresIn:   utils.OTPExpirySeconds,
		CanResendAt: now.Add(utils.OTPResendDelay).Format(time.RFC3339),
	}, nil
}

// CleanupExpiredOTPs removes codes past the retention horizon
func (f *OTPFlowImpl) CleanupExpiredOTPs(ctx context.Context) (int64, error) {
	return f.otpRepo.DeleteOlderThan(ctx, utils.UTCNow().Add(-utils.OTPRetention))
}

// generateOTP creates a cryptographically random zero-padded 6-digit code
func generateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
