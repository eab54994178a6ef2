package utils

import (
	"time"
)

// Token and OTP time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// OTPExpiry is the time-to-live for OTP codes (5 minutes)
	OTPExpiry = 5 * time.Minute

	// OTPExpirySeconds is the time-to-live for OTP codes in seconds
	OTPExpirySeconds = 300

	// OTPResendDelay is the minimum wait before a resend is allowed
	OTPResendDelay = 1 * time.Minute

	// OTPRateLimitWindow is the trailing window for the issuance quota
	OTPRateLimitWindow = 1 * time.Hour

	// OTPMaxPerWindow is the maximum number of codes issued per phone per window
	OTPMaxPerWindow = 3

	// OTPRetention is how long OTP rows are kept before cleanup deletes them
	OTPRetention = 24 * time.Hour
)

// Analytics constants
const (
	// VisitDedupWindow is the sliding lookback during which repeat visits
	// from the same (catalog, ip_hash) are collapsed into one page view
	VisitDedupWindow = 30 * time.Minute

	// TopEntriesLimit caps ranked top-links/top-products results
	TopEntriesLimit = 10
)

// CORS constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
