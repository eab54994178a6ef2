// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	businessflow "github.com/kaitkan/kaitkan-api/business_flow"
)

// OTPCleanupScheduler periodically purges OTP codes past the retention horizon
type OTPCleanupScheduler struct {
	otpFlow  businessflow.OTPFlow
	logger   *log.Logger
	interval time.Duration
}

func NewOTPCleanupScheduler(otpFlow businessflow.OTPFlow, logger *log.Logger, interval time.Duration) *OTPCleanupScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OTPCleanupScheduler{
		otpFlow:  otpFlow,
		logger:   logger,
		interval: interval,
	}
}

// Start launches the cleanup loop in a background goroutine and returns a stop function
func (s *OTPCleanupScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *OTPCleanupScheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	removed, err := s.otpFlow.CleanupExpiredOTPs(ctx)
	if err != nil {
		s.logger.Printf("scheduler: otp cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Printf("scheduler: removed %d expired otp codes", removed)
	}
}
