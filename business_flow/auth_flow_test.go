// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"testing"
	"time"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	testingutil "github.com/kaitkan/kaitkan-api/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthFlow(t *testing.T, testDB *testingutil.TestDB) AuthFlow {
	tokenService, err := services.NewTokenService(
		1*time.Hour,
		"test-issuer",
		"test-audience",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	return NewAuthFlow(
		repository.NewUserRepository(testDB.DB),
		repository.NewCatalogRepository(testDB.DB),
		repository.NewThemeRepository(testDB.DB),
		repository.NewOTPCodeRepository(testDB.DB),
		tokenService,
		testDB.DB,
		4, // low bcrypt cost keeps the tests fast
		3600,
	)
}

func TestVerifyOTP(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAuthFlow(t, testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestTheme("Nusantara", true)
		require.NoError(t, err)

		t.Run("SuccessfulRegistration", func(t *testing.T) {
			_, err := fixtures.CreateTestOTP("6281234500001", "123456")
			require.NoError(t, err)

			resp, err := flow.VerifyOTP(ctx, &dto.VerifyOTPRequest{
				WhatsApp:             "081234500001",
				OTP:                  "123456",
				Name:                 "Toko Siti",
				Password:             "rahasia-123",
				PasswordConfirmation: "rahasia-123",
			}, NewClientMetadata("203.0.113.9", "test-agent"))
			require.NoError(t, err)

			assert.True(t, resp.IsNew)
			assert.Equal(t, "6281234500001", resp.User.WhatsApp)
			assert.Equal(t, "toko-siti", resp.User.Username)
			assert.NotEmpty(t, resp.Session.AccessToken)
			assert.Equal(t, "Bearer", resp.Session.TokenType)

			// Registration creates a draft catalog with the default theme
			var catalog models.Catalog
			require.NoError(t, testDB.DB.Where("username = ?", "toko-siti").First(&catalog).Error)
			assert.False(t, catalog.IsPublished)
			assert.NotNil(t, catalog.ThemeID)
		})

		t.Run("CodeIsSingleUse", func(t *testing.T) {
			_, err := flow.VerifyOTP(ctx, &dto.VerifyOTPRequest{
				WhatsApp:             "081234500001",
				OTP:                  "123456",
				Name:                 "Toko Lain",
				Password:             "rahasia-123",
				PasswordConfirmation: "rahasia-123",
			}, nil)
			require.Error(t, err)
			assert.True(t, IsOTPInvalidOrExpired(err))
		})

		t.Run("ExpiredCodeRejected", func(t *testing.T) {
			_, err := fixtures.CreateExpiredOTP("6281234500002", "222222")
			require.NoError(t, err)

			_, err = flow.VerifyOTP(ctx, &dto.VerifyOTPRequest{
				WhatsApp:             "081234500002",
				OTP:                  "222222",
				Name:                 "Toko Baru",
				Password:             "rahasia-123",
				PasswordConfirmation: "rahasia-123",
			}, nil)
			require.Error(t, err)
			assert.True(t, IsOTPInvalidOrExpired(err))
		})

		t.Run("RegisteredNumberRejected", func(t *testing.T) {
			_, err := fixtures.CreateTestOTP("6281234500001", "333333")
			require.NoError(t, err)

			_, err = flow.VerifyOTP(ctx, &dto.VerifyOTPRequest{
				WhatsApp:             "081234500001",
				OTP:                  "333333",
				Name:                 "Toko Siti",
				Password:             "rahasia-123",
				PasswordConfirmation: "rahasia-123",
			}, nil)
			require.Error(t, err)
			assert.True(t, IsWhatsAppAlreadyRegistered(err))
		})

		t.Run("UsernameCollisionGetsSuffix", func(t *testing.T) {
			_, err := fixtures.CreateTestOTP("6281234500003", "444444")
			require.NoError(t, err)

			resp, err := flow.VerifyOTP(ctx, &dto.VerifyOTPRequest{
				WhatsApp:             "081234500003",
				OTP:                  "444444",
				Name:                 "Toko Siti",
				Password:             "rahasia-123",
				PasswordConfirmation: "rahasia-123",
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "toko-siti-1", resp.User.Username)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAuthFlow(t, testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestTheme("Nusantara", true)
		require.NoError(t, err)
		_, err = fixtures.CreateTestOTP("6281234500010", "123456")
		require.NoError(t, err)

		_, err = flow.VerifyOTP(ctx, &dto.VerifyOTPRequest{
			WhatsApp:             "081234500010",
			OTP:                  "123456",
			Name:                 "Toko Andi",
			Password:             "rahasia-123",
			PasswordConfirmation: "rahasia-123",
		}, nil)
		require.NoError(t, err)

		t.Run("SuccessfulLogin", func(t *testing.T) {
			resp, err := flow.Login(ctx, &dto.LoginRequest{
				WhatsApp: "081234500010",
				Password: "rahasia-123",
			}, nil)
			require.NoError(t, err)
			assert.False(t, resp.IsNew)
			assert.NotEmpty(t, resp.Session.AccessToken)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{
				WhatsApp: "081234500010",
				Password: "salah-total",
			}, nil)
			require.Error(t, err)
			assert.True(t, IsIncorrectPassword(err))
		})

		t.Run("UnknownNumber", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{
				WhatsApp: "081234599999",
				Password: "rahasia-123",
			}, nil)
			require.Error(t, err)
			// Unknown numbers get the same error as a wrong password
			assert.True(t, IsIncorrectPassword(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPINLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAuthFlow(t, testDB)
		ctx := testingutil.CreateTestContext()

		user, _, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)

		t.Run("LoginWithoutPINFails", func(t *testing.T) {
			_, err := flow.LoginWithPIN(ctx, &dto.LoginPINRequest{
				WhatsApp: user.WhatsApp,
				PIN:      "654321",
			}, nil)
			require.Error(t, err)
			assert.True(t, IsIncorrectPIN(err))
		})

		t.Run("SetThenLogin", func(t *testing.T) {
			err := flow.SetPIN(ctx, user.ID, &dto.SetPINRequest{
				PIN:             "654321",
				PINConfirmation: "654321",
			})
			require.NoError(t, err)

			resp, err := flow.LoginWithPIN(ctx, &dto.LoginPINRequest{
				WhatsApp: user.WhatsApp,
				PIN:      "654321",
			}, nil)
			require.NoError(t, err)
			assert.True(t, resp.User.HasPIN)
		})

		t.Run("WrongPIN", func(t *testing.T) {
			_, err := flow.LoginWithPIN(ctx, &dto.LoginPINRequest{
				WhatsApp: user.WhatsApp,
				PIN:      "111111",
			}, nil)
			require.Error(t, err)
			assert.True(t, IsIncorrectPIN(err))
		})

		t.Run("ResetWithOTP", func(t *testing.T) {
			_, err := fixtures.CreateTestOTP(user.WhatsApp, "777777")
			require.NoError(t, err)

			resp, err := flow.ResetPIN(ctx, &dto.ResetPINRequest{
				WhatsApp:        user.WhatsApp,
				OTP:             "777777",
				PIN:             "999999",
				PINConfirmation: "999999",
			}, nil)
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Session.AccessToken)

			_, err = flow.LoginWithPIN(ctx, &dto.LoginPINRequest{
				WhatsApp: user.WhatsApp,
				PIN:      "999999",
			}, nil)
			require.NoError(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Toko Siti", "toko-siti"},
		{"punctuation collapses", "Warung (Bu) Tini!", "warung-bu-tini"},
		{"leading and trailing junk", "  --Toko--  ", "toko"},
		{"digits survive", "Toko 24 Jam", "toko-24-jam"},
		{"all symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugify(tt.input))
		})
	}
}
