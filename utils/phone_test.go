package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidWhatsApp(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"local form", "081234567890", true},
		{"international form", "6281234567890", true},
		{"plus prefix", "+6281234567890", true},
		{"too short", "0812345", false},
		{"landline prefix", "0211234567890", false},
		{"letters", "08123abc7890", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidWhatsApp(tt.phone))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"local to international", "081234567890", "6281234567890"},
		{"already international", "6281234567890", "6281234567890"},
		{"plus stripped", "+6281234567890", "6281234567890"},
		{"bare subscriber number", "81234567890", "6281234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.phone))
		})
	}
}

func TestLocalizePhone(t *testing.T) {
	assert.Equal(t, "081234567890", LocalizePhone("6281234567890"))
	assert.Equal(t, "081234567890", LocalizePhone("081234567890"))
	assert.Equal(t, "081234567890", LocalizePhone("+6281234567890"))
}
