// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	"github.com/kaitkan/kaitkan-api/utils"
)

// ProductFlow manages the owner's product cards
type ProductFlow interface {
	List(ctx context.Context, userID uint) ([]dto.ProductDTO, error)
	Create(ctx context.Context, userID uint, req *dto.CreateProductRequest) (*dto.ProductDTO, error)
	Update(ctx context.Context, userID uint, productID uint, req *dto.UpdateProductRequest) (*dto.ProductDTO, error)
	Delete(ctx context.Context, userID uint, productID uint) error
	Reorder(ctx context.Context, userID uint, req *dto.ReorderRequest) error
	UploadImage(ctx context.Context, userID uint, productID uint, data []byte, filename string) (*dto.ProductDTO, error)
}

// ProductFlowImpl implements the product flow
type ProductFlowImpl struct {
	catalogRepo  repository.CatalogRepository
	productRepo  repository.ProductRepository
	imageService services.ImageService
	catalogFlow  CatalogFlow
	imageMaxDim  int
}

// NewProductFlow creates a new product flow
func NewProductFlow(
	catalogRepo repository.CatalogRepository,
	productRepo repository.ProductRepository,
	imageService services.ImageService,
	catalogFlow CatalogFlow,
	imageMaxDim int,
) ProductFlow {
	return &ProductFlowImpl{
		catalogRepo:  catalogRepo,
		productRepo:  productRepo,
		imageService: imageService,
		catalogFlow:  catalogFlow,
		imageMaxDim:  imageMaxDim,
	}
}

// List returns every product of the owner's catalog in display order
func (f *ProductFlowImpl) List(ctx context.Context, userID uint) ([]dto.ProductDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := f.productRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_QUERY_FAILED", "failed to load products", err)
	}

	out := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		out = append(out, ToProductDTO(*product))
	}
	return out, nil
}

// Create appends a new product card
func (f *ProductFlowImpl) Create(ctx context.Context, userID uint, req *dto.CreateProductRequest) (*dto.ProductDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	position, err := f.productRepo.NextPosition(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_QUERY_FAILED", "failed to compute position", err)
	}

	product := &models.Product{
		CatalogID:   catalog.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		BuyURL:      req.BuyURL,
		IsActive:    true,
		Position:    position,
	}
	if err := f.productRepo.Save(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_SAVE_FAILED", "failed to save product", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	out := ToProductDTO(*product)
	return &out, nil
}

// Update applies partial edits to an owned product
func (f *ProductFlowImpl) Update(ctx context.Context, userID uint, productID uint, req *dto.UpdateProductRequest) (*dto.ProductDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := f.ownedProduct(ctx, catalog.ID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.BuyURL != nil {
		product.BuyURL = req.BuyURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := f.productRepo.Update(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_SAVE_FAILED", "failed to save product", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	out := ToProductDTO(*product)
	return &out, nil
}

// Delete removes an owned product and its stored image
func (f *ProductFlowImpl) Delete(ctx context.Context, userID uint, productID uint) error {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return err
	}

	product, err := f.ownedProduct(ctx, catalog.ID, productID)
	if err != nil {
		return err
	}

	if err := f.productRepo.Delete(ctx, product.ID); err != nil {
		return NewBusinessError("PRODUCT_DELETE_FAILED", "failed to delete product", err)
	}

	if product.ImagePath != nil {
		_ = f.imageService.Remove(*product.ImagePath)
	}
	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)
	return nil
}

// Reorder rewrites the display order; the id list must cover every product
// of the catalog exactly once
func (f *ProductFlowImpl) Reorder(ctx context.Context, userID uint, req *dto.ReorderRequest) error {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return err
	}

	products, err := f.productRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return NewBusinessError("PRODUCT_QUERY_FAILED", "failed to load products", err)
	}

	if !coversExactly(req.IDs, products, func(p *models.Product) uint { return p.ID }) {
		return NewBusinessError("REORDER_INCOMPLETE", "reorder must include every item exactly once", ErrReorderIDsIncomplete)
	}

	if err := f.productRepo.UpdatePositions(ctx, catalog.ID, req.IDs); err != nil {
		return NewBusinessError("PRODUCT_SAVE_FAILED", "failed to reorder products", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)
	return nil
}

// UploadImage stores a new product photo and swaps out the old file
func (f *ProductFlowImpl) UploadImage(ctx context.Context, userID uint, productID uint, data []byte, filename string) (*dto.ProductDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := f.ownedProduct(ctx, catalog.ID, productID)
	if err != nil {
		return nil, err
	}

	path, err := f.imageService.Store(data, filename, "products", f.imageMaxDim)
	if err != nil {
		return nil, NewBusinessError("IMAGE_INVALID", "uploaded image is invalid", ErrImageInvalid)
	}

	oldPath := product.ImagePath
	product.ImagePath = utils.ToPtr(path)
	if err := f.productRepo.Update(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_SAVE_FAILED", "failed to save product image", err)
	}

	if oldPath != nil {
		_ = f.imageService.Remove(*oldPath)
	}
	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	out := ToProductDTO(*product)
	return &out, nil
}

func (f *ProductFlowImpl) ownedCatalog(ctx context.Context, userID uint) (*models.Catalog, error) {
	catalog, err := f.catalogRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to look up catalog", err)
	}
	if catalog == nil {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "catalog not found", ErrCatalogNotFound)
	}
	return catalog, nil
}

func (f *ProductFlowImpl) ownedProduct(ctx context.Context, catalogID, productID uint) (*models.Product, error) {
	product, err := f.productRepo.ByID(ctx, productID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_QUERY_FAILED", "failed to look up product", err)
	}
	if product == nil || product.CatalogID != catalogID {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "product not found", ErrProductNotFound)
	}
	return product, nil
}
