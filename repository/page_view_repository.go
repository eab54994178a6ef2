// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// PageViewRepositoryImpl implements PageViewRepository interface
type PageViewRepositoryImpl struct {
	*BaseRepository[models.PageView, models.PageViewFilter]
}

// NewPageViewRepository creates a new page view repository
func NewPageViewRepository(db *gorm.DB) PageViewRepository {
	return &PageViewRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PageView, models.PageViewFilter](db),
	}
}

// ExistsRecent checks whether the same visitor hash already hit the catalog
// inside the dedup window
func (r *PageViewRepositoryImpl) ExistsRecent(ctx context.Context, catalogID uint, ipHash string, since time.Time) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.PageView{}).
		Where("catalog_id = ? AND ip_hash = ? AND visited_at >= ?", catalogID, ipHash, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListSince retrieves views for a catalog after the given instant, oldest first.
// Callers bucket and classify the rows; keeping aggregation out of SQL keeps
// the queries identical across Postgres and the SQLite test database.
func (r *PageViewRepositoryImpl) ListSince(ctx context.Context, catalogID uint, since time.Time) ([]*models.PageView, error) {
	db := r.getDB(ctx)

	var views []*models.PageView
	err := db.Where("catalog_id = ? AND visited_at >= ?", catalogID, since).
		Order("visited_at ASC").
		Find(&views).Error
	if err != nil {
		return nil, err
	}

	return views, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *PageViewRepositoryImpl) applyFilter(query *gorm.DB, filter models.PageViewFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.CatalogID != nil {
		query = query.Where("catalog_id = ?", *filter.CatalogID)
	}

	if filter.IPHash != nil {
		query = query.Where("ip_hash = ?", *filter.IPHash)
	}

	if filter.VisitedAfter != nil {
		query = query.Where("visited_at > ?", *filter.VisitedAfter)
	}

	if filter.VisitedBefore != nil {
		query = query.Where("visited_at < ?", *filter.VisitedBefore)
	}

	return query
}

// ByFilter retrieves page views based on filter criteria
func (r *PageViewRepositoryImpl) ByFilter(ctx context.Context, filter models.PageViewFilter, orderBy string, limit, offset int) ([]*models.PageView, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PageView{}), filter)

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

	var views []*models.PageView
	err := query.Find(&views).Error
	if err != nil {
		return nil, err
	}

	return views, nil
}

// Count returns the number of page views matching the filter
func (r *PageViewRepositoryImpl) Count(ctx context.Context, filter models.PageViewFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PageView{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any page view matching the filter exists
func (r *PageViewRepositoryImpl) Exists(ctx context.Context, filter models.PageViewFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
