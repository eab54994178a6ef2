// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/gorm"
)

// ProductRepositoryImpl implements ProductRepository interface
type ProductRepositoryImpl struct {
	*BaseRepository[models.Product, models.ProductFilter]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &ProductRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Product, models.ProductFilter](db),
	}
}

// ListByCatalog retrieves all products of a catalog ordered by position
func (r *ProductRepositoryImpl) ListByCatalog(ctx context.Context, catalogID uint) ([]*models.Product, error) {
	db := r.getDB(ctx)

	var products []*models.Product
	err := db.Where("catalog_id = ?", catalogID).
		Order("position ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

// NextPosition returns the position value for a newly appended product
func (r *ProductRepositoryImpl) NextPosition(ctx context.Context, catalogID uint) (int, error) {
	db := r.getDB(ctx)

	var max *int
	err := db.Model(&models.Product{}).
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

// UpdatePositions rewrites product positions to match the given ordering
func (r *ProductRepositoryImpl) UpdatePositions(ctx context.Context, catalogID uint, orderedIDs []uint) error {
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
		err = db.Model(&models.Product{}).
			Where("id = ? AND catalog_id = ?", id, catalogID).
			Update("position", position).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// IncrementClickCount bumps the denormalized click total on a product
func (r *ProductRepositoryImpl) IncrementClickCount(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	return db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + 1")).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *ProductRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProductFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.CatalogID != nil {
		query = query.Where("catalog_id = ?", *filter.CatalogID)
	}

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	return query
}

// ByFilter retrieves products based on filter criteria
func (r *ProductRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductFilter, orderBy string, limit, offset int) ([]*models.Product, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Product{}), filter)

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

	var products []*models.Product
	err := query.Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

// Count returns the number of products matching the filter
func (r *ProductRepositoryImpl) Count(ctx context.Context, filter models.ProductFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Product{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any product matching the filter exists
func (r *ProductRepositoryImpl) Exists(ctx context.Context, filter models.ProductFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
