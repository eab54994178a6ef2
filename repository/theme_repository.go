// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// ThemeRepositoryImpl implements ThemeRepository interface
type ThemeRepositoryImpl struct {
	*BaseRepository[models.Theme, models.ThemeFilter]
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &ThemeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Theme, models.ThemeFilter](db),
	}
}

// Default retrieves the theme assigned to new catalogs
func (r *ThemeRepositoryImpl) Default(ctx context.Context) (*models.Theme, error) {
	db := r.getDB(ctx)

	var theme models.Theme
	err := db.Where("is_default = ?", true).First(&theme).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &theme, nil
}

// List retrieves all available themes
func (r *ThemeRepositoryImpl) List(ctx context.Context) ([]*models.Theme, error) {
	db := r.getDB(ctx)

	var themes []*models.Theme
	err := db.Order("id ASC").Find(&themes).Error
	if err != nil {
		return nil, err
	}

	return themes, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ThemeRepositoryImpl) applyFilter(query *gorm.DB, filter models.ThemeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}

	if filter.IsDefault != nil {
		query = query.Where("is_default = ?", *filter.IsDefault)
	}

	return query
}

// ByFilter retrieves themes based on filter criteria
func (r *ThemeRepositoryImpl) ByFilter(ctx context.Context, filter models.ThemeFilter, orderBy string, limit, offset int) ([]*models.Theme, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Theme{}), filter)

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

	var themes []*models.Theme
	err := query.Find(&themes).Error
	if err != nil {
		return nil, err
	}

	return themes, nil
}

// Count returns the number of themes matching the filter
func (r *ThemeRepositoryImpl) Count(ctx context.Context, filter models.ThemeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Theme{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any theme matching the filter exists
func (r *ThemeRepositoryImpl) Exists(ctx context.Context, filter models.ThemeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
