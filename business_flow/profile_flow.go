// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"
	"regexp"
	"strings"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	"github.com/kaitkan/kaitkan-api/utils"
	"gorm.io/gorm"
)

// UsernamePattern is the accepted shape of a public storefront handle
var UsernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,49}$`)

// ProfileFlow manages the owner's storefront identity and onboarding
type ProfileFlow interface {
	GetProfile(ctx context.Context, userID uint) (*dto.CatalogDTO, error)
	UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*dto.CatalogDTO, error)
	CompleteOnboarding(ctx context.Context, userID uint, req *dto.OnboardingRequest) (*dto.CatalogDTO, error)
	UploadAvatar(ctx context.Context, userID uint, data []byte, filename string) (*dto.CatalogDTO, error)
	ListThemes(ctx context.Context) ([]dto.ThemeDTO, error)
}

// ProfileFlowImpl implements the profile flow
type ProfileFlowImpl struct {
	userRepo     repository.UserRepository
	catalogRepo  repository.CatalogRepository
	themeRepo    repository.ThemeRepository
	imageService services.ImageService
	catalogFlow  CatalogFlow
	db           *gorm.DB
	avatarMaxDim int
}

// NewProfileFlow creates a new profile flow
func NewProfileFlow(
	userRepo repository.UserRepository,
	catalogRepo repository.CatalogRepository,
	themeRepo repository.ThemeRepository,
	imageService services.ImageService,
	catalogFlow CatalogFlow,
	db *gorm.DB,
	avatarMaxDim int,
) ProfileFlow {
	return &ProfileFlowImpl{
		userRepo:     userRepo,
		catalogRepo:  catalogRepo,
		themeRepo:    themeRepo,
		imageService: imageService,
		catalogFlow:  catalogFlow,
		db:           db,
		avatarMaxDim: avatarMaxDim,
	}
}

// GetProfile returns the owner's catalog with its theme
func (f *ProfileFlowImpl) GetProfile(ctx context.Context, userID uint) (*dto.CatalogDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}
	return f.withTheme(ctx, catalog)
}

// UpdateProfile applies partial edits to the storefront identity
func (f *ProfileFlowImpl) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*dto.CatalogDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldUsername := catalog.Username

	if req.Username != nil && *req.Username != catalog.Username {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if !UsernamePattern.MatchString(username) {
			return nil, NewBusinessError("USERNAME_INVALID", "username format is invalid", ErrUsernameInvalid)
		}
		taken, err := f.catalogRepo.UsernameExists(ctx, username)
		if err != nil {
			return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to check username", err)
		}
		if taken {
			return nil, NewBusinessError("USERNAME_TAKEN", "username already taken", ErrUsernameTaken)
		}
		catalog.Username = username
	}

	if req.DisplayName != nil {
		catalog.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		catalog.Bio = req.Bio
	}
	if req.ThemeID != nil {
		theme, err := f.themeRepo.ByID(ctx, *req.ThemeID)
		if err != nil {
			return nil, NewBusinessError("THEME_QUERY_FAILED", "failed to look up theme", err)
		}
		if theme == nil {
			return nil, NewBusinessError("THEME_NOT_FOUND", "theme not found", ErrThemeNotFound)
		}
		catalog.ThemeID = req.ThemeID
	}
	if req.IsPublished != nil {
		catalog.IsPublished = *req.IsPublished
	}

	if err := f.catalogRepo.Update(ctx, catalog); err != nil {
		return nil, NewBusinessError("PROFILE_SAVE_FAILED", "failed to save profile", err)
	}

	f.catalogFlow.InvalidatePublic(ctx, oldUsername)
	if catalog.Username != oldUsername {
		f.catalogFlow.InvalidatePublic(ctx, catalog.Username)
	}

	return f.withTheme(ctx, catalog)
}

// CompleteOnboarding performs first-run setup in one transaction: the user's
// name, the storefront handle and the initial theme
func (f *ProfileFlowImpl) CompleteOnboarding(ctx context.Context, userID uint, req *dto.OnboardingRequest) (*dto.CatalogDTO, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if !UsernamePattern.MatchString(username) {
		return nil, NewBusinessError("USERNAME_INVALID", "username format is invalid", ErrUsernameInvalid)
	}

	var catalog *models.Catalog
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		user, err := f.userRepo.ByID(txCtx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		catalog, err = f.catalogRepo.ByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if catalog == nil {
			return ErrCatalogNotFound
		}

		if username != catalog.Username {
			taken, err := f.catalogRepo.UsernameExists(txCtx, username)
			if err != nil {
				return err
			}
			if taken {
				return ErrUsernameTaken
			}
		}

		user.Name = req.Name
		if err := f.userRepo.Update(txCtx, user); err != nil {
			return err
		}

		catalog.Username = username
		catalog.DisplayName = req.DisplayName
		catalog.Bio = req.Bio
		if req.ThemeID != nil {
			theme, err := f.themeRepo.ByID(txCtx, *req.ThemeID)
			if err != nil {
				return err
			}
			if theme == nil {
				return ErrThemeNotFound
			}
			catalog.ThemeID = req.ThemeID
		}
		catalog.IsPublished = true

		return f.catalogRepo.Update(txCtx, catalog)
	})
	if err != nil {
		switch {
		case IsUsernameTaken(err):
			return nil, NewBusinessError("USERNAME_TAKEN", "username already taken", err)
		case IsThemeNotFound(err):
			return nil, NewBusinessError("THEME_NOT_FOUND", "theme not found", err)
		case IsUserNotFound(err), IsCatalogNotFound(err):
			return nil, NewBusinessError("NOT_FOUND", "account not found", err)
		default:
			return nil, NewBusinessError("ONBOARDING_FAILED", "failed to complete onboarding", err)
		}
	}

	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)
	return f.withTheme(ctx, catalog)
}

// UploadAvatar stores a new avatar image and swaps out the old file
func (f *ProfileFlowImpl) UploadAvatar(ctx context.Context, userID uint, data []byte, filename string) (*dto.CatalogDTO, error) {
	catalog, err := f.ownedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	path, err := f.imageService.Store(data, filename, "avatars", f.avatarMaxDim)
	if err != nil {
		return nil, NewBusinessError("IMAGE_INVALID", "uploaded image is invalid", ErrImageInvalid)
	}

	oldPath := catalog.AvatarPath
	catalog.AvatarPath = utils.ToPtr(path)
	if err := f.catalogRepo.Update(ctx, catalog); err != nil {
		return nil, NewBusinessError("PROFILE_SAVE_FAILED", "failed to save avatar", err)
	}

	if oldPath != nil {
		_ = f.imageService.Remove(*oldPath)
	}
	f.catalogFlow.InvalidatePublic(ctx, catalog.Username)

	return f.withTheme(ctx, catalog)
}

// ListThemes returns every selectable theme
func (f *ProfileFlowImpl) ListThemes(ctx context.Context) ([]dto.ThemeDTO, error) {
	themes, err := f.themeRepo.List(ctx)
	if err != nil {
		return nil, NewBusinessError("THEME_QUERY_FAILED", "failed to load themes", err)
	}

	out := make([]dto.ThemeDTO, 0, len(themes))
	for _, theme := range themes {
		out = append(out, ToThemeDTO(*theme))
	}
	return out, nil
}

func (f *ProfileFlowImpl) ownedCatalog(ctx context.Context, userID uint) (*models.Catalog, error) {
	catalog, err := f.catalogRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_QUERY_FAILED", "failed to look up catalog", err)
	}
	if catalog == nil {
		return nil, NewBusinessError("CATALOG_NOT_FOUND", "catalog not found", ErrCatalogNotFound)
	}
	return catalog, nil
}

func (f *ProfileFlowImpl) withTheme(ctx context.Context, catalog *models.Catalog) (*dto.CatalogDTO, error) {
	if catalog.ThemeID != nil && catalog.Theme == nil {
		theme, err := f.themeRepo.ByID(ctx, *catalog.ThemeID)
		if err == nil && theme != nil {
			catalog.Theme = theme
		}
	}
	out := ToCatalogDTO(*catalog)
	return &out, nil
}
