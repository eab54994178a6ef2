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
	"github.com/kaitkan/kaitkan-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOTP(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := NewOTPFlow(repository.NewOTPCodeRepository(testDB.DB), services.NewMockSMSService())
		ctx := testingutil.CreateTestContext()

		t.Run("IssuesCode", func(t *testing.T) {
			resp, err := flow.SendOTP(ctx, &dto.SendOTPRequest{WhatsApp: "081234567890"}, NewClientMetadata("203.0.113.9", "test-agent"))
			require.NoError(t, err)
			assert.Equal(t, utils.OTPExpirySeconds, resp.ExpiresIn)
			assert.NotEmpty(t, resp.CanResendAt)

			// Number is stored in canonical international form
			var otp models.OTPCode
			require.NoError(t, testDB.DB.Where("whatsapp = ?", "6281234567890").First(&otp).Error)
			assert.Len(t, otp.Code, 6)
			assert.Nil(t, otp.VerifiedAt)
		})

		t.Run("InvalidNumberRejected", func(t *testing.T) {
			_, err := flow.SendOTP(ctx, &dto.SendOTPRequest{WhatsApp: "12345"}, nil)
			require.Error(t, err)
			assert.True(t, IsInvalidWhatsAppInput(err))
		})

		t.Run("RateLimitsPerNumber", func(t *testing.T) {
			for range utils.OTPMaxPerWindow - 1 {
				_, err := flow.SendOTP(ctx, &dto.SendOTPRequest{WhatsApp: "081234567890"}, nil)
				require.NoError(t, err)
			}

			_, err := flow.SendOTP(ctx, &dto.SendOTPRequest{WhatsApp: "081234567890"}, nil)
			require.Error(t, err)
			assert.True(t, IsOTPRateLimited(err))

			// Another number is unaffected
			_, err = flow.SendOTP(ctx, &dto.SendOTPRequest{WhatsApp: "081234599999"}, nil)
			require.NoError(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCleanupExpiredOTPs(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := NewOTPFlow(repository.NewOTPCodeRepository(testDB.DB), services.NewMockSMSService())
		ctx := testingutil.CreateTestContext()

		stale := &models.OTPCode{
			WhatsApp:  "6281234567890",
			Code:      "123456",
			ExpiresAt: utils.UTCNowAdd(-2 * utils.OTPRetention),
			CreatedAt: utils.UTCNowAdd(-2 * utils.OTPRetention),
		}
		require.NoError(t, testDB.DB.Create(stale).Error)

		fresh := &models.OTPCode{
			WhatsApp:  "6281234567890",
			Code:      "654321",
			ExpiresAt: utils.UTCNowAdd(5 * time.Minute),
			CreatedAt: utils.UTCNow(),
		}
		require.NoError(t, testDB.DB.Create(fresh).Error)

		removed, err := flow.CleanupExpiredOTPs(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		var count int64
		require.NoError(t, testDB.DB.Model(&models.OTPCode{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		return nil
	})
	require.NoError(t, err)
}
