// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// LinkClickRepositoryImpl implements LinkClickRepository interface
type LinkClickRepositoryImpl struct {
	*BaseRepository[models.LinkClick, models.LinkClickFilter]
}

// NewLinkClickRepository creates a new link click repository
func NewLinkClickRepository(db *gorm.DB) LinkClickRepository {
	return &LinkClickRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LinkClick, models.LinkClickFilter](db),
	}
}

// ListTimesSince retrieves click timestamps for a catalog after the given
// instant, oldest first. Daily bucketing happens in the caller.
func (r *LinkClickRepositoryImpl) ListTimesSince(ctx context.Context, catalogID uint, since time.Time) ([]time.Time, error) {
	db := r.getDB(ctx)

	var times []time.Time
	err := db.Model(&models.LinkClick{}).
		Where("catalog_id = ? AND clicked_at >= ?", catalogID, since).
		Order("clicked_at ASC").
		Pluck("clicked_at", &times).Error
	if err != nil {
		return nil, err
	}

	return times, nil
}

// TopLinksSince aggregates the most-clicked links of a catalog in the window.
// The join is a LEFT JOIN so clicks on since-deleted links still rank, with
// nil title and url.
func (r *LinkClickRepositoryImpl) TopLinksSince(ctx context.Context, catalogID uint, since time.Time, limit int) ([]*LinkClickCount, error) {
	db := r.getDB(ctx)

	var rows []*LinkClickCount
	err := db.Model(&models.LinkClick{}).
		Select("link_clicks.link_id, links.title, links.url, COUNT(*) AS clicks").
		Joins("LEFT JOIN links ON links.id = link_clicks.link_id").
		Where("link_clicks.catalog_id = ? AND link_clicks.clicked_at >= ?", catalogID, since).
		Group("link_clicks.link_id, links.title, links.url").
		Order("clicks DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LinkClickRepositoryImpl) applyFilter(query *gorm.DB, filter models.LinkClickFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.CatalogID != nil {
		query = query.Where("catalog_id = ?", *filter.CatalogID)
	}

	if filter.LinkID != nil {
		query = query.Where("link_id = ?", *filter.LinkID)
	}

	if filter.ClickedAfter != nil {
		query = query.Where("clicked_at > ?", *filter.ClickedAfter)
	}

	if filter.ClickedBefore != nil {
		query = query.Where("clicked_at < ?", *filter.ClickedBefore)
	}

	return query
}

// ByFilter retrieves link clicks based on filter criteria
func (r *LinkClickRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkClickFilter, orderBy string, limit, offset int) ([]*models.LinkClick, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkClick{}), filter)

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

	var clicks []*models.LinkClick
	err := query.Find(&clicks).Error
	if err != nil {
		return nil, err
	}

	return clicks, nil
}

// Count returns the number of link clicks matching the filter
func (r *LinkClickRepositoryImpl) Count(ctx context.Context, filter models.LinkClickFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkClick{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any link click matching the filter exists
func (r *LinkClickRepositoryImpl) Exists(ctx context.Context, filter models.LinkClickFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
