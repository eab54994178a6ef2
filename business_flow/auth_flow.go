// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	"github.com/kaitkan/kaitkan-api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles registration, credential logins and session management
type AuthFlow interface {
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest, metadata *ClientMetadata) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.AuthResponse, error)
	LoginWithPIN(ctx context.Context, req *dto.LoginPINRequest, metadata *ClientMetadata) (*dto.AuthResponse, error)
	SetPIN(ctx context.Context, userID uint, req *dto.SetPINRequest) error
	ResetPIN(ctx context.Context, req *dto.ResetPINRequest, metadata *ClientMetadata) (*dto.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, userID uint) (*dto.UserDTO, error)
}

// AuthFlowImpl implements the auth flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	catalogRepo  repository.CatalogRepository
	themeRepo    repository.ThemeRepository
	otpRepo      repository.OTPCodeRepository
	tokenService services.TokenService
	db           *gorm.DB
	bcryptCost   int
	tokenTTL     int // seconds, echoed in session payloads
}

// NewAuthFlow creates a new auth flow
func NewAuthFlow(
	userRepo repository.UserRepository,
	catalogRepo repository.CatalogRepository,
	themeRepo repository.ThemeRepository,
	otpRepo repository.OTPCodeRepository,
	tokenService services.TokenService,
	db *gorm.DB,
	bcryptCost int,
	tokenTTLSeconds int,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		catalogRepo:  catalogRepo,
		themeRepo:    themeRepo,
		otpRepo:      otpRepo,
		tokenService: tokenService,
		db:           db,
		bcryptCost:   bcryptCost,
		tokenTTL:     tokenTTLSeconds,
	}
}

// VerifyOTP consumes a code and registers a new merchant account together with
// a draft catalog for onboarding. Numbers that already have an account are
// rejected so the code cannot be burned to hijack an existing registration.
func (f *AuthFlowImpl) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest, metadata *ClientMetadata) (*dto.AuthResponse, error) {
	whatsapp := utils.NormalizePhone(req.WhatsApp)
	now := utils.UTCNow()

	otp, err := f.otpRepo.FindValid(ctx, whatsapp, req.OTP, now)
	if err != nil {
		return nil, NewBusinessError("OTP_QUERY_FAILED", "failed to look up code", err)
	}
	if otp == nil {
		return nil, NewBusinessError("OTP_INVALID", "verification code is invalid or expired", ErrOTPInvalidOrExpired)
	}

	consumed, err := f.otpRepo.MarkVerified(ctx, otp.ID, now)
	if err != nil {
		return nil, NewBusinessError("OTP_CONSUME_FAILED", "failed to consume code", err)
	}
	if !consumed {
		return nil, NewBusinessError("OTP_INVALID", "verification code is invalid or expired", ErrOTPInvalidOrExpired)
	}

	existing, err := f.userRepo.ByWhatsApp(ctx, whatsapp)
	if err != nil {
		return nil, NewBusinessError("USER_QUERY_FAILED", "failed to look up user", err)
	}
	if existing != nil {
		return nil, NewBusinessError("WHATSAPP_ALREADY_REGISTERED", "WhatsApp number is already registered", ErrWhatsAppAlreadyRegistered)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), f.bcryptCost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "failed to hash password", err)
	}

	var user *models.User
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		username, err := f.generateUniqueUsername(txCtx, req.Name, whatsapp)
		if err != nil {
			return err
		}

		created := &models.User{
			Name:       req.Name,
			WhatsApp:   whatsapp,
			Username:   username,
			Password:   string(passwordHash),
			VerifiedAt: utils.ToPtr(now),
		}
		if err := f.userRepo.Save(txCtx, created); err != nil {
			return err
		}

		displayName := req.Name
		if displayName == "" && len(whatsapp) >= 4 {
			displayName = "Toko " + whatsapp[len(whatsapp)-4:]
		}
		catalog := &models.Catalog{
			UserID:      created.ID,
			Username:    username,
			DisplayName: displayName,
			IsPublished: false,
		}
		if theme, err := f.themeRepo.Default(txCtx); err != nil {
			return err
		} else if theme != nil {
			catalog.ThemeID = utils.ToPtr(theme.ID)
		}
		if err := f.catalogRepo.Save(txCtx, catalog); err != nil {
			return err
		}

		user = created
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "failed to complete registration", err)
	}

	return f.buildAuthResponse(ctx, user, true)
}

// Login authenticates with the account password
func (f *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.AuthResponse, error) {
	whatsapp := utils.NormalizePhone(req.WhatsApp)

	user, err := f.userRepo.ByWhatsApp(ctx, whatsapp)
	if err != nil {
		return nil, NewBusinessError("USER_QUERY_FAILED", "failed to look up user", err)
	}
	if user == nil {
		return nil, NewBusinessError("INCORRECT_CREDENTIALS", "WhatsApp number or password is incorrect", ErrIncorrectPassword)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("INCORRECT_CREDENTIALS", "WhatsApp number or password is incorrect", ErrIncorrectPassword)
	}
	if !user.IsVerified() {
		return nil, NewBusinessError("ACCOUNT_UNVERIFIED", "account has not been verified", ErrAccountUnverified)
	}

	return f.buildAuthResponse(ctx, user, false)
}

// LoginWithPIN authenticates with the 6-digit account PIN
func (f *AuthFlowImpl) LoginWithPIN(ctx context.Context, req *dto.LoginPINRequest, metadata *ClientMetadata) (*dto.AuthResponse, error) {
	whatsapp := utils.NormalizePhone(req.WhatsApp)

	user, err := f.userRepo.ByWhatsApp(ctx, whatsapp)
	if err != nil {
		return nil, NewBusinessError("USER_QUERY_FAILED", "failed to look up user", err)
	}
	if user == nil || !user.HasPIN() {
		return nil, NewBusinessError("INCORRECT_PIN", "WhatsApp number or PIN is incorrect", ErrIncorrectPIN)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PINHash), []byte(req.PIN)); err != nil {
		return nil, NewBusinessError("INCORRECT_PIN", "WhatsApp number or PIN is incorrect", ErrIncorrectPIN)
	}
	if !user.IsVerified() {
		return nil, NewBusinessError("ACCOUNT_UNVERIFIED", "account has not been verified", ErrAccountUnverified)
	}

	return f.buildAuthResponse(ctx, user, false)
}

// SetPIN sets or replaces the account PIN for an authenticated user
func (f *AuthFlowImpl) SetPIN(ctx context.Context, userID uint, req *dto.SetPINRequest) error {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return NewBusinessError("USER_QUERY_FAILED", "failed to look up user", err)
	}
	if user == nil {
		return NewBusinessError("USER_NOT_FOUND", "user not found", ErrUserNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), f.bcryptCost)
	if err != nil {
		return NewBusinessError("PIN_HASH_FAILED", "failed to hash PIN", err)
	}

	user.PINHash = utils.ToPtr(string(hash))
	if err := f.userRepo.Update(ctx, user); err != nil {
		return NewBusinessError("PIN_SAVE_FAILED", "failed to save PIN", err)
	}

	return nil
}

// ResetPIN proves phone ownership with a fresh OTP and replaces the PIN. The
// caller gets a new session token so the app can sign them in right away.
func (f *AuthFlowImpl) ResetPIN(ctx context.Context, req *dto.ResetPINRequest, metadata *ClientMetadata) (*dto.AuthResponse, error) {
	whatsapp := utils.NormalizePhone(req.WhatsApp)
	now := utils.UTCNow()

	otp, err := f.otpRepo.FindValid(ctx, whatsapp, req.OTP, now)
	if err != nil {
		return nil, NewBusinessError("OTP_QUERY_FAILED", "failed to look up code", err)
	}
	if otp == nil {
		return nil, NewBusinessError("OTP_INVALID", "verification code is invalid or expired", ErrOTPInvalidOrExpired)
	}
	consumed, err := f.otpRepo.MarkVerified(ctx, otp.ID, now)
	if err != nil {
		return nil, NewBusinessError("OTP_CONSUME_FAILED", "failed to consume code", err)
	}
	if !consumed {
		return nil, NewBusinessError("OTP_INVALID", "verification code is invalid or expired", ErrOTPInvalidOrExpired)
	}

	user, err := f.userRepo.ByWhatsApp(ctx, whatsapp)
	if err != nil {
		return nil, NewBusinessError("USER_QUERY_FAILED", "failed to look up user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "account not found", ErrUserNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), f.bcryptCost)
	if err != nil {
		return nil, NewBusinessError("PIN_HASH_FAILED", "failed to hash PIN", err)
	}
	user.PINHash = utils.ToPtr(string(hash))
	if user.VerifiedAt == nil {
		user.VerifiedAt = utils.ToPtr(now)
	}
	if err := f.userRepo.Update(ctx, user); err != nil {
		return nil, NewBusinessError("PIN_SAVE_FAILED", "failed to save PIN", err)
	}

	return f.buildAuthResponse(ctx, user, false)
}

// Logout revokes the presented token
func (f *AuthFlowImpl) Logout(ctx context.Context, token string) error {
	if err := f.tokenService.RevokeToken(token); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "failed to revoke token", err)
	}
	return nil
}

// CurrentUser returns the authenticated user's profile
func (f *AuthFlowImpl) CurrentUser(ctx context.Context, userID uint) (*dto.UserDTO, error) {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_QUERY_FAILED", "failed to look up user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "user not found", ErrUserNotFound)
	}

	out := ToUserDTO(*user, f.avatarPath(ctx, user.ID))
	return &out, nil
}

func (f *AuthFlowImpl) buildAuthResponse(ctx context.Context, user *models.User, isNew bool) (*dto.AuthResponse, error) {
	token, err := f.tokenService.GenerateToken(user.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "failed to create session", err)
	}

	return &dto.AuthResponse{
		User: ToUserDTO(*user, f.avatarPath(ctx, user.ID)),
		Session: dto.SessionDTO{
			AccessToken: token,
			ExpiresIn:   f.tokenTTL,
			TokenType:   "Bearer",
		},
		IsNew: isNew,
	}, nil
}

// avatarPath looks up the user's catalog avatar; best effort, nil on any miss
func (f *AuthFlowImpl) avatarPath(ctx context.Context, userID uint) *string {
	catalog, err := f.catalogRepo.ByUserID(ctx, userID)
	if err != nil || catalog == nil {
		return nil
	}
	return catalog.AvatarPath
}

// generateUniqueUsername derives a slug shared by the user and their catalog,
// suffixing a counter until it is free in both tables
func (f *AuthFlowImpl) generateUniqueUsername(ctx context.Context, name, whatsapp string) (string, error) {
	base := slugify(name)
	if base == "" {
		base = slugify(whatsapp)
	}
	if base == "" {
		base = "user"
	}
	if len(base) > 40 {
		base = strings.Trim(base[:40], "-")
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := f.usernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if suffix > 9999 {
			n, err := rand.Int(rand.Reader, big.NewInt(10000))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s-%04d", base, n.Int64()), nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

func (f *AuthFlowImpl) usernameTaken(ctx context.Context, candidate string) (bool, error) {
	taken, err := f.userRepo.UsernameExists(ctx, candidate)
	if err != nil {
		return false, err
	}
	if taken {
		return true, nil
	}
	return f.catalogRepo.UsernameExists(ctx, candidate)
}

// slugify lowercases and reduces a string to [a-z0-9-], collapsing runs of
// other characters into single hyphens
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
