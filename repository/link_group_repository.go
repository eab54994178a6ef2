// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// LinkGroupRepositoryImpl implements LinkGroupRepository interface
type LinkGroupRepositoryImpl struct {
	*BaseRepository[models.LinkGroup, models.LinkGroupFilter]
}

// NewLinkGroupRepository creates a new link group repository
func NewLinkGroupRepository(db *gorm.DB) LinkGroupRepository {
	return &LinkGroupRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LinkGroup, models.LinkGroupFilter](db),
	}
}

// ListByCatalog retrieves all link groups of a catalog ordered by position
func (r *LinkGroupRepositoryImpl) ListByCatalog(ctx context.Context, catalogID uint) ([]*models.LinkGroup, error) {
	db := r.getDB(ctx)

	var groups []*models.LinkGroup
	err := db.Where("catalog_id = ?", catalogID).
		Order("position ASC, id ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// NextPosition returns the position value for a newly appended group
func (r *LinkGroupRepositoryImpl) NextPosition(ctx context.Context, catalogID uint) (int, error) {
	db := r.getDB(ctx)

	var max *int
	err := db.Model(&models.LinkGroup{}).
		Where("catalog_id = ?", catalogID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}

	return *max + 1, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LinkGroupRepositoryImpl) applyFilter(query *gorm.DB, filter models.LinkGroupFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.CatalogID != nil {
		query = query.Where("catalog_id = ?", *filter.CatalogID)
	}

	return query
}

// ByFilter retrieves link groups based on filter criteria
func (r *LinkGroupRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkGroupFilter, orderBy string, limit, offset int) ([]*models.LinkGroup, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkGroup{}), filter)

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

	var groups []*models.LinkGroup
	err := query.Find(&groups).Error
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// Count returns the number of link groups matching the filter
func (r *LinkGroupRepositoryImpl) Count(ctx context.Context, filter models.LinkGroupFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkGroup{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any link group matching the filter exists
func (r *LinkGroupRepositoryImpl) Exists(ctx context.Context, filter models.LinkGroupFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
