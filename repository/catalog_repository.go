// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// CatalogRepositoryImpl implements CatalogRepository interface
type CatalogRepositoryImpl struct {
	*BaseRepository[models.Catalog, models.CatalogFilter]
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &CatalogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Catalog, models.CatalogFilter](db),
	}
}

// ByUsername retrieves a catalog by its public username with the theme preloaded
func (r *CatalogRepositoryImpl) ByUsername(ctx context.Context, username string) (*models.Catalog, error) {
	db := r.getDB(ctx)

	var catalog models.Catalog
	err := db.Preload("Theme").
		Where("username = ?", username).
		Last(&catalog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &catalog, nil
}

// ByUserID retrieves the catalog owned by a user
func (r *CatalogRepositoryImpl) ByUserID(ctx context.Context, userID uint) (*models.Catalog, error) {
	db := r.getDB(ctx)

	var catalog models.Catalog
	err := db.Where("user_id = ?", userID).Last(&catalog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &catalog, nil
}

// UsernameExists checks whether a public username is already taken
func (r *CatalogRepositoryImpl) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.Exists(ctx, models.CatalogFilter{Username: &username})
}

// applyFilter applies filter criteria to a GORM query
func (r *CatalogRepositoryImpl) applyFilter(query *gorm.DB, filter models.CatalogFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Username != nil {
		query = query.Where("username = ?", *filter.Username)
	}

	if filter.IsPublished != nil {
		query = query.Where("is_published = ?", *filter.IsPublished)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves catalogs based on filter criteria
func (r *CatalogRepositoryImpl) ByFilter(ctx context.Context, filter models.CatalogFilter, orderBy string, limit, offset int) ([]*models.Catalog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Catalog{}), filter)

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

	var catalogs []*models.Catalog
	err := query.Find(&catalogs).Error
	if err != nil {
		return nil, err
	}

	return catalogs, nil
}

// Count returns the number of catalogs matching the filter
func (r *CatalogRepositoryImpl) Count(ctx context.Context, filter models.CatalogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Catalog{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any catalog matching the filter exists
func (r *CatalogRepositoryImpl) Exists(ctx context.Context, filter models.CatalogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
