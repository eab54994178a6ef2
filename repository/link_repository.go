// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// LinkRepositoryImpl implements LinkRepository interface
type LinkRepositoryImpl struct {
	*BaseRepository[models.Link, models.LinkFilter]
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Link, models.LinkFilter](db),
	}
}

// ListByCatalog retrieves all links of a catalog ordered by position
func (r *LinkRepositoryImpl) ListByCatalog(ctx context.Context, catalogID uint) ([]*models.Link, error) {
	db := r.getDB(ctx)

	var links []*models.Link
	err := db.Where("catalog_id = ?", catalogID).
		Order("position ASC, id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	return links, nil
}

// NextPosition returns the position value for a newly appended link
func (r *LinkRepositoryImpl) NextPosition(ctx context.Context, catalogID uint) (int, error) {
	db := r.getDB(ctx)

	var max *int
	err := db.Model(&models.Link{}).
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

// UpdatePositions rewrites link positions to match the given ordering.
// IDs not belonging to the catalog are ignored by the WHERE clause.
func (r *LinkRepositoryImpl) UpdatePositions(ctx context.Context, catalogID uint, orderedIDs []uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
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

	for position, id := range orderedIDs {
		err = db.Model(&models.Link{}).
			Where("id = ? AND catalog_id = ?", id, catalogID).
			Update("position", position).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// IncrementClickCount bumps the denormalized click total on a link
func (r *LinkRepositoryImpl) IncrementClickCount(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	return db.Model(&models.Link{}).
		Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + 1")).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *LinkRepositoryImpl) applyFilter(query *gorm.DB, filter models.LinkFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.CatalogID != nil {
		query = query.Where("catalog_id = ?", *filter.CatalogID)
	}

	if filter.LinkGroupID != nil {
		query = query.Where("link_group_id = ?", *filter.LinkGroupID)
	}

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	return query
}

// ByFilter retrieves links based on filter criteria
func (r *LinkRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)

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

	var links []*models.Link
	err := query.Find(&links).Error
	if err != nil {
		return nil, err
	}

	return links, nil
}

// Count returns the number of links matching the filter
func (r *LinkRepositoryImpl) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any link matching the filter exists
func (r *LinkRepositoryImpl) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
