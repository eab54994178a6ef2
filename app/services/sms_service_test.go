// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSMSService(t *testing.T) {
	t.Run("LogsIssuedCode", func(t *testing.T) {
		var buf bytes.Buffer
		log.SetOutput(&buf)
		defer log.SetOutput(os.Stderr)

		mock := NewMockSMSService()
		require.NoError(t, mock.SendOTP(context.Background(), "6281234567890", "482913"))

		assert.Contains(t, buf.String(), "482913")
		assert.Contains(t, buf.String(), "6281234567890")
	})

	t.Run("CapturesMessages", func(t *testing.T) {
		mock := NewMockSMSService()
		require.NoError(t, mock.SendMessage(context.Background(), "6281234567890", "halo"))

		messages := mock.GetSentMessages()
		require.Len(t, messages, 1)
		assert.Equal(t, "6281234567890", messages[0].Recipient)
		assert.Equal(t, "halo", messages[0].Message)
	})

	t.Run("FailNextFailsOnce", func(t *testing.T) {
		mock := NewMockSMSService()
		mock.FailNext = true

		require.Error(t, mock.SendMessage(context.Background(), "6281234567890", "halo"))
		require.NoError(t, mock.SendMessage(context.Background(), "6281234567890", "halo"))
		assert.Len(t, mock.GetSentMessages(), 1)
	})
}
