// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	"github.com/kaitkan/kaitkan-api/utils"
)

// LinkGroupFlow manages titled link sections
type LinkGroupFlow interface {
	List(ctx context.Context, userID uint) ([]dto.LinkGroupDTO, error)
	Create(ctx context.Context, userID uint, req *dto.CreateLinkGroupRequest) (*dto.LinkGroupDTO, error)
	Update(ctx context.Context, userID uint, groupID uint, req *dto.UpdateLinkGroupRequest) (*dto.LinkGroupDTO, error)
	Delete(ctx context.Context, userID uint, groupID uint) error
}

// LinkGroupFlowImpl implements the link group flow
type LinkGroupFlowImpl struct {
	catalogRepo   repository.CatalogRepository
	linkGroupRepo repository.LinkGroupRepository
	linkRepo      repository.LinkRepository
	catalogFlow   CatalogFlow
}

// NewLinkGroupFlow creates a new link group flow
func NewLinkGroupFlow(
	catalogRepo repository.CatalogRepository,
	linkGroupRepo repository.LinkGroupRepository,
	linkRepo repository.LinkRepository,
	catalogFlow CatalogFlow,
) LinkGroupFlow {
	return &LinkGroupFlowImpl{
		catalogRepo:   catalogRepo,
		linkGroupRepo: linkGroupRepo,
		linkRepo:      linkRepo,
		catalogFlow:   catalogFlow,
	}
}

// List returns the owner's link groups with their links attached
func (f *LinkGroupFlowImpl) List(ctx context.Context, userID uint) ([]dto.LinkGroupDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	groups, err := f.linkGroupRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("LINK_GROUP_QUERY_FAILED", "failed to load link groups", err)
	}
	links, err := f.linkRepo.ListByCatalog(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("LINK_QUERY_FAILED", "failed to load links", err)
	}

	linksByGroup := make(map[uint][]dto.LinkDTO)
	for _, link := range links {
		if link.LinkGroupID == nil {
			continue
		}
		linksByGroup[*link.LinkGroupID] = append(linksByGroup[*link.LinkGroupID], ToLinkDTO(*link))
	}

	out := make([]dto.LinkGroupDTO, 0, len(groups))
	for _, group := range groups {
		out = append(out, dto.LinkGroupDTO{
			ID:       group.ID,
			Title:    group.Title,
			Position: group.Position,
			Links:    linksByGroup[group.ID],
		})
	}
	return out, nil
}

// Create appends a new empty group
func (f *LinkGroupFlowImpl) Create(ctx context.Context, userID uint, req *dto.CreateLinkGroupRequest) (*dto.LinkGroupDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	position, err := f.linkGroupRepo.NextPosition(ctx, catalog.ID)
	if err != nil {
		return nil, NewBusinessError("LINK_GROUP_QUERY_FAILED", "failed to compute position", err)
	}

	group := &models.LinkGroup{
		CatalogID: catalog.ID,
		Title:     req.Title,
		Position:  position,
	}
	if err := f.linkGroupRepo.Save(ctx, group); err != nil {
		return nil, NewBusinessError("LINK_GROUP_SAVE_FAILED", "failed to save link group", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	return &dto.LinkGroupDTO{ID: group.ID, Title: group.Title, Position: group.Position}, nil
}

// Update renames an owned group
func (f *LinkGroupFlowImpl) Update(ctx context.Context, userID uint, groupID uint, req *dto.UpdateLinkGroupRequest) (*dto.LinkGroupDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	group, err := f.ownedGroup(ctx, catalog.ID, groupID)
	if err != nil {
		return nil, err
	}

	group.Title = req.Title
	if err := f.linkGroupRepo.Update(ctx, group); err != nil {
		return nil, NewBusinessError("LINK_GROUP_SAVE_FAILED", "failed to save link group", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	return &dto.LinkGroupDTO{ID: group.ID, Title: group.Title, Position: group.Position}, nil
}

// Delete removes a group; its links survive as ungrouped
func (f *LinkGroupFlowImpl) Delete(ctx context.Context, userID uint, groupID uint) error {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return err
	}

	group, err := f.ownedGroup(ctx, catalog.ID, groupID)
	if err != nil {
		return err
	}

	links, err := f.linkRepo.ByFilter(ctx, models.LinkFilter{LinkGroupID: utils.ToPtr(group.ID)}, "", 0, 0)
	if err != nil {
		return NewBusinessError("LINK_QUERY_FAILED", "failed to load grouped links", err)
	}
	for _, link := range links {
		link.LinkGroupID = nil
		if err := f.linkRepo.Update(ctx, link); err != nil {
			return NewBusinessError("LINK_SAVE_FAILED", "failed to detach link", err)
		}
	}

	if err := f.linkGroupRepo.Delete(ctx, group.ID); err != nil {
		return NewBusinessError("LINK_GROUP_DELETE_FAILED", "failed to delete link group", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)
	return nil
}

func (f *LinkGroupFlowImpl) ownedCatalog(ctx context.Context, userID uint) (*models.Catalog, error) {
	catalog, err := f.catalogRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to look up catalog", err)
	}
	if catalog == nil {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "catalog not found", ErrCatalogNotFound)
	}
	return catalog, nil
}

func (f *LinkGroupFlowImpl) ownedGroup(ctx context.Context, catalogID, groupID uint) (*models.LinkGroup, error) {
	group, err := f.linkGroupRepo.ByID(ctx, groupID)
	if err != nil {
		return nil, NewBusinessError("LINK_GROUP_QUERY_FAILED", "failed to look up link group", err)
	}
	if group == nil || group.CatalogID != catalogID {
		return nil, NewBusinessError("LINK_GROUP_NOT_FOUND", "link group not found", ErrLinkGroupNotFound)
	}
	return group, nil
}
