// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// ClickRepositoryImpl implements ClickRepository interface
type ClickRepositoryImpl struct {
	*BaseRepository[models.Click, models.ClickFilter]
}

// NewClickRepository creates a new product click repository
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &ClickRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Click, models.ClickFilter](db),
	}
}

// ListTimesSince retrieves click timestamps for a catalog after the given
// instant, oldest first
func (r *ClickRepositoryImpl) ListTimesSince(ctx context.Context, catalogID uint, since time.Time) ([]time.Time, error) {
	db := r.getDB(ctx)

	var times []time.Time
	err := db.Model(&models.Click{}).
		Where("catalog_id = ? AND clicked_at >= ?", catalogID, since).
		Order("clicked_at ASC").
		Pluck("clicked_at", &times).Error
	if err != nil {
		return nil, err
	}

	return times, nil
}

// TopProductsSince aggregates the most-clicked products of a catalog in the window
func (r *ClickRepositoryImpl) TopProductsSince(ctx context.Context, catalogID uint, since time.Time, limit int) ([]*ProductClickCount, error) {
	db := r.getDB(ctx)

	var rows []*ProductClickCount
	err := db.Model(&models.Click{}).
		Select("product_id, COUNT(*) AS clicks").
		Where("catalog_id = ? AND clicked_at >= ?", catalogID, since).
		Group("product_id").
		Order("clicks DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ClickRepositoryImpl) applyFilter(query *gorm.DB, filter models.ClickFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.CatalogID != nil {
		query = query.Where("catalog_id = ?", *filter.CatalogID)
	}

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}

	if filter.ClickedAfter != nil {
		query = query.Where("clicked_at > ?", *filter.ClickedAfter)
	}

	if filter.ClickedBefore != nil {
		query = query.Where("clicked_at < ?", *filter.ClickedBefore)
	}

	return query
}

// ByFilter retrieves product clicks based on filter criteria
func (r *ClickRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickFilter, orderBy string, limit, offset int) ([]*models.Click, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Click{}), filter)

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

	var clicks []*models.Click
	err := query.Find(&clicks).Error
	if err != nil {
		return nil, err
	}

	return clicks, nil
}

// Count returns the number of product clicks matching the filter
func (r *ClickRepositoryImpl) Count(ctx context.Context, filter models.ClickFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Click{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any product click matching the filter exists
func (r *ClickRepositoryImpl) Exists(ctx context.Context, filter models.ClickFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
