// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// OTPCodeRepositoryImpl implements OTPCodeRepository interface
type OTPCodeRepositoryImpl struct {
	*BaseRepository[models.OTPCode, models.OTPCodeFilter]
}

// NewOTPCodeRepository creates a new OTP code repository
func NewOTPCodeRepository(db *gorm.DB) OTPCodeRepository {
	return &OTPCodeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OTPCode, models.OTPCodeFilter](db),
	}
}

// CountIssuedSince counts codes issued to a number after the given instant.
// Used for the rolling rate limit window.
func (r *OTPCodeRepositoryImpl) CountIssuedSince(ctx context.Context, whatsapp string, since time.Time) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.OTPCode{}).
		Where("whatsapp = ? AND created_at >= ?", whatsapp, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// FindValid retrieves the newest unverified, unexpired code matching the pair
func (r *OTPCodeRepositoryImpl) FindValid(ctx context.Context, whatsapp, code string, now time.Time) (*models.OTPCode, error) {
	db := r.getDB(ctx)

	var otp models.OTPCode
	err := db.Where("whatsapp = ? AND code = ? AND verified_at IS NULL AND expires_at > ?", whatsapp, code, now).
		Order("id DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &otp, nil
}

// MarkVerified stamps a code as consumed. The verified_at IS NULL guard makes
// consumption single-use even under concurrent verify requests; the boolean
// result reports whether this caller won.
func (r *OTPCodeRepositoryImpl) MarkVerified(ctx context.Context, id uint, at time.Time) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Model(&models.OTPCode{}).
		Where("id = ? AND verified_at IS NULL", id).
		Update("verified_at", at)
	if result.Error != nil {
		err = result.Error
		return false, err
	}

	return result.RowsAffected > 0, nil
}

// DeleteOlderThan removes codes created before the cutoff and returns the count
func (r *OTPCodeRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Where("created_at < ?", cutoff).Delete(&models.OTPCode{})
	if result.Error != nil {
		err = result.Error
		return 0, err
	}

	return result.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OTPCodeRepositoryImpl) applyFilter(query *gorm.DB, filter models.OTPCodeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.WhatsApp != nil {
		query = query.Where("whatsapp = ?", *filter.WhatsApp)
	}

	if filter.IsVerified != nil {
		if *filter.IsVerified {
			query = query.Where("verified_at IS NOT NULL")
		} else {
			query = query.Where("verified_at IS NULL")
		}
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}

	return query
}

// ByFilter retrieves OTP codes based on filter criteria
func (r *OTPCodeRepositoryImpl) ByFilter(ctx context.Context, filter models.OTPCodeFilter, orderBy string, limit, offset int) ([]*models.OTPCode, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OTPCode{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var otps []*models.OTPCode
	err := query.Find(&otps).Error
	if err != nil {
		return nil, err
	}

	return otps, nil
}

// Count returns the number of OTP codes matching the filter
func (r *OTPCodeRepositoryImpl) Count(ctx context.Context, filter models.OTPCodeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OTPCode{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any OTP code matching the filter exists
func (r *OTPCodeRepositoryImpl) Exists(ctx context.Context, filter models.OTPCodeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
