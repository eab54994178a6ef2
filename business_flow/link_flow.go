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

// LinkFlow manages the owner's links
type LinkFlow interface {
	List(ctx context.Context, userID uint) ([]dto.LinkDTO, error)
	Create(ctx context.Context, userID uint, req *dto.CreateLinkRequest) (*dto.LinkDTO, error)
	Update(ctx context.Context, userID uint, linkID uint, req *dto.UpdateLinkRequest) (*dto.LinkDTO, error)
	Delete(ctx context.Context, userID uint, linkID uint) error
	Reorder(ctx context.Context, userID uint, req *dto.ReorderRequest) error
	UploadThumbnail(ctx context.Context, userID uint, linkID uint, data []byte, filename string) (*dto.LinkDTO, error)
}

// LinkFlowImpl implements the link flow
type LinkFlowImpl struct {
	catalogRepo   repository.CatalogRepository
	linkRepo      repository.LinkRepository
	linkGroupRepo repository.LinkGroupRepository
	imageService  services.ImageService
	catalogFlow   CatalogFlow
	thumbMaxDim   int
}

// NewLinkFlow creates a new link flow
func NewLinkFlow(
	catalogRepo repository.CatalogRepository,
	linkRepo repository.LinkRepository,
	linkGroupRepo repository.LinkGroupRepository,
	imageService services.ImageService,
	catalogFlow CatalogFlow,
	thumbMaxDim int,
) LinkFlow {
	return &LinkFlowImpl{
		catalogRepo:   catalogRepo,
		linkRepo:      linkRepo,
		linkGroupRepo: linkGroupRepo,
		imageService:  imageService,
		catalogFlow:   catalogFlow,
		thumbMaxDim:   thumbMaxDim,
	}
}

// List returns every link of the owner's catalog in display order
func (f *LinkFlowImpl) List(ctx context.Context, userID uint) ([]dto.LinkDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	links, err := f.linkRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("LINK_QUERY_FAILED", "failed to load links", err)
	}

	out := make([]dto.LinkDTO, 0, len(links))
	for _, link := range links {
		out = append(out, ToLinkDTO(*link))
	}
	return out, nil
}

// Create appends a new link at the end of the catalog
func (f *LinkFlowImpl) Create(ctx context.Context, userID uint, req *dto.CreateLinkRequest) (*dto.LinkDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.LinkGroupID != nil {
		if err := f.checkGroup(ctx, catalog.ID, *req.LinkGroupID); err != nil {
			return nil, err
		}
	}

	position, err := f.linkRepo.NextPosition(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("LINK_QUERY_FAILED", "failed to compute position", err)
	}

	link := &models.Link{
		CatalogID:   catalog.ID,
		LinkGroupID: req.LinkGroupID,
		Title:       req.Title,
		URL:         req.URL,
		IsActive:    true,
		Position:    position,
	}
	if err := f.linkRepo.Save(ctx, link); err != nil {
		return nil, NewBusinessError("LINK_SAVE_FAILED", "failed to save link", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	out := ToLinkDTO(*link)
	return &out, nil
}

// Update applies partial edits to an owned link
func (f *LinkFlowImpl) Update(ctx context.Context, userID uint, linkID uint, req *dto.UpdateLinkRequest) (*dto.LinkDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	link, err := f.ownedLink(ctx, catalog.ID, linkID)
	if err != nil {
		return nil, err
	}

	if req.LinkGroupID != nil {
		if err := f.checkGroup(ctx, catalog.ID, *req.LinkGroupID); err != nil {
			return nil, err
		}
		link.LinkGroupID = req.LinkGroupID
	}
	if req.Title != nil {
		link.Title = *req.Title
	}
	if req.URL != nil {
		link.URL = *req.URL
	}
	if req.IsActive != nil {
		link.IsActive = *req.IsActive
	}

	if err := f.linkRepo.Update(ctx, link); err != nil {
		return nil, NewBusinessError("LINK_SAVE_FAILED", "failed to save link", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	out := ToLinkDTO(*link)
	return &out, nil
}

// Delete removes an owned link
func (f *LinkFlowImpl) Delete(ctx context.Context, userID uint, linkID uint) error {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return err
	}

	link, err := f.ownedLink(ctx, catalog.ID, linkID)
	if err != nil {
		return err
	}

	if err := f.linkRepo.Delete(ctx, link.ID); err != nil {
		return NewBusinessError("LINK_DELETE_FAILED", "failed to delete link", err)
	}

	if link.ThumbnailPath != nil {
		_ = f.imageService.Remove(*link.ThumbnailPath)
	}
	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)
	return nil
}

// UploadThumbnail stores a new thumbnail for a link and swaps out the old file
func (f *LinkFlowImpl) UploadThumbnail(ctx context.Context, userID uint, linkID uint, data []byte, filename string) (*dto.LinkDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	link, err := f.ownedLink(ctx, catalog.ID, linkID)
	if err != nil {
		return nil, err
	}

	path, err := f.imageService.Store(data, filename, "links", f.thumbMaxDim)
	if err != nil {
		return nil, NewBusinessError("IMAGE_INVALID", "uploaded image is invalid", ErrImageInvalid)
	}

	oldPath := link.ThumbnailPath
	link.ThumbnailPath = utils.ToPtr(path)
	if err := f.linkRepo.Update(ctx, link); err != nil {
		return nil, NewBusinessError("LINK_SAVE_FAILED", "failed to save link thumbnail", err)
	}

	if oldPath != nil {
		_ = f.imageService.Remove(*oldPath)
	}
	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	out := ToLinkDTO(*link)
	return &out, nil
}

// Reorder rewrites the display order; the id list must cover every link of
// the catalog exactly once
func (f *LinkFlowImpl) Reorder(ctx context.Context, userID uint, req *dto.ReorderRequest) error {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return err
	}

	links, err := f.linkRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return NewBusinessError("LINK_QUERY_FAILED", "failed to load links", err)
	}

	if !coversExactly(req.IDs, links, func(l *models.Link) uint { return l.ID }) {
		return NewBusinessError("REORDER_INCOMPLETE", "reorder must include every item exactly once", ErrReorderIDsIncomplete)
	}

	if err := f.linkRepo.UpdatePositions(ctx, catalog.ID, req.IDs); err != nil {
		return NewBusinessError("LINK_SAVE_FAILED", "failed to reorder links", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)
	return nil
}

func (f *LinkFlowImpl) ownedCatalog(ctx context.Context, userID uint) (*models.Catalog, error) {
	catalog, err := f.catalogRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to look up catalog", err)
	}
	if catalog == nil {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "catalog not found", ErrCatalogNotFound)
	}
	return catalog, nil
}

func (f *LinkFlowImpl) ownedLink(ctx context.Context, catalogID, linkID uint) (*models.Link, error) {
	link, err := f.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return nil, NewBusinessError("LINK_QUERY_FAILED", "failed to look up link", err)
	}
	if link == nil || link.CatalogID != catalogID {
		return nil, NewBusinessError("LINK_NOT_FOUND", "link not found", ErrLinkNotFound)
	}
	return link, nil
}

func (f *LinkFlowImpl) checkGroup(ctx context.Context, catalogID, groupID uint) error {
	group, err := f.linkGroupRepo.ByID(ctx, groupID)
	if err != nil {
		return NewBusinessError("LINK_GROUP_QUERY_FAILED", "failed to look up link group", err)
	}
	if group == nil || group.CatalogID != catalogID {
		return NewBusinessError("LINK_GROUP_NOT_FOUND", "link group not found", ErrLinkGroupNotFound)
	}
	return nil
}

// coversExactly reports whether ids is a permutation of the entity ids
func coversExactly[T any](ids []uint, entities []*T, idOf func(*T) uint) bool {
	if len(ids) != len(entities) {
		return false
	}

	want := make(map[uint]bool, len(entities))
	for _, e := range entities {
		want[idOf(e)] = true
	}

	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !want[id] || seen[id] {
			return false
		}
		seen[id] = true
	}

	return true
}
