// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
)

// CatalogFlow serves the public storefront page
type CatalogFlow interface {
	PublicCatalog(ctx context.Context, username string) (*dto.PublicCatalogResponse, error)
	InvalidatePublic(ctx context.Context, username string)
}

// CatalogFlowImpl implements the catalog flow with a read-through cache
type CatalogFlowImpl struct {
	catalogRepo   repository.CatalogRepository
	linkGroupRepo repository.LinkGroupRepository
	linkRepo      repository.LinkRepository
	productRepo   repository.ProductRepository
	cache         services.CacheService
	cacheTTL      time.Duration
}

// NewCatalogFlow creates a new catalog flow
func NewCatalogFlow(
	catalogRepo repository.CatalogRepository,
	linkGroupRepo repository.LinkGroupRepository,
	linkRepo repository.LinkRepository,
	productRepo repository.ProductRepository,
	cache services.CacheService,
	cacheTTL time.Duration,
) CatalogFlow {
	return &CatalogFlowImpl{
		catalogRepo:   catalogRepo,
		linkGroupRepo: linkGroupRepo,
		linkRepo:      linkRepo,
		productRepo:   productRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
	}
}

func publicCatalogCacheKey(username string) string {
	return "public_catalog:" + username
}

// PublicCatalog assembles the published storefront payload. Cache errors are
// treated as misses; the page must render even with Redis down.
func (f *CatalogFlowImpl) PublicCatalog(ctx context.Context, username string) (*dto.PublicCatalogResponse, error) {
	if cached, err := f.cache.Get(ctx, publicCatalogCacheKey(username)); err == nil {
		var out dto.PublicCatalogResponse
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
	}

	catalog, err := f.catalogRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to look up catalog", err)
	}
	if catalog == nil || !catalog.IsPublished {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "catalog not found", ErrCatalogNotFound)
	}

	groups, err := f.linkGroupRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to load link groups", err)
	}
	links, err := f.linkRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to load links", err)
	}
	products, err := f.productRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to load products", err)
	}

	out := buildPublicCatalog(catalog, groups, links, products)

	if payload, err := json.Marshal(out); err == nil {
		_ = f.cache.Set(ctx, publicCatalogCacheKey(username), string(payload), f.cacheTTL)
	}

	return out, nil
}

// InvalidatePublic drops the cached page after an owner edit
func (f *CatalogFlowImpl) InvalidatePublic(ctx context.Context, username string) {
	_ = f.cache.Delete(ctx, publicCatalogCacheKey(username))
}

// buildPublicCatalog shapes the page: grouped links first, then loose links,
// then product cards, all in stored order with inactive items dropped
func buildPublicCatalog(catalog *models.Catalog, groups []*models.LinkGroup, links []*models.Link, products []*models.Product) *dto.PublicCatalogResponse {
	out := &dto.PublicCatalogResponse{
		ID:          catalog.ID,
		Username:    catalog.Username,
		DisplayName: catalog.DisplayName,
		Bio:         catalog.Bio,
		Groups:      make([]dto.PublicLinkGroupDTO, 0, len(groups)),
		Links:       make([]dto.PublicLinkDTO, 0, len(links)),
		Products:    make([]dto.PublicProductDTO, 0, len(products)),
	}
	if catalog.AvatarPath != nil {
		out.AvatarURL = uploadURL(*catalog.AvatarPath)
	}
	if catalog.Theme != nil {
		theme := ToThemeDTO(*catalog.Theme)
		out.Theme = &theme
	}

	linksByGroup := make(map[uint][]dto.PublicLinkDTO)
	for _, link := range links {
		if !link.IsActive {
			continue
		}
		publicLink := dto.PublicLinkDTO{ID: link.ID, Title: link.Title, URL: link.URL}
		if link.ThumbnailPath != nil {
			publicLink.ThumbnailURL = uploadURL(*link.ThumbnailPath)
		}
		if link.LinkGroupID != nil {
			linksByGroup[*link.LinkGroupID] = append(linksByGroup[*link.LinkGroupID], publicLink)
			continue
		}
		out.Links = append(out.Links, publicLink)
	}

	for _, group := range groups {
		grouped := linksByGroup[group.ID]
		if len(grouped) == 0 {
			continue
		}
		out.Groups = append(out.Groups, dto.PublicLinkGroupDTO{
			ID:    group.ID,
			Title: group.Title,
			Links: grouped,
		})
	}

	for _, product := range products {
		if !product.IsActive {
			continue
		}
		card := dto.PublicProductDTO{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.Description,
			Price:       product.Price,
			BuyURL:      product.BuyURL,
		}
		if product.ImagePath != nil {
			card.ImageURL = uploadURL(*product.ImagePath)
		}
		out.Products = append(out.Products, card)
	}

	return out
}
