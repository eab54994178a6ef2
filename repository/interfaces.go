// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/kaitkan/kaitkan-api/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
	Delete(ctx context.Context, id uint) error
}

// UserRepository handles user account persistence
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByWhatsApp(ctx context.Context, whatsapp string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// CatalogRepository handles storefront page persistence
type CatalogRepository interface {
	Repository[models.Catalog, models.CatalogFilter]
	ByUsername(ctx context.Context, username string) (*models.Catalog, error)
	ByUserID(ctx context.Context, userID uint) (*models.Catalog, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// ThemeRepository handles catalog theme persistence
type ThemeRepository interface {
	Repository[models.Theme, models.ThemeFilter]
	Default(ctx context.Context) (*models.Theme, error)
	List(ctx context.Context) ([]*models.Theme, error)
}

// LinkGroupRepository handles link group persistence
type LinkGroupRepository interface {
	Repository[models.LinkGroup, models.LinkGroupFilter]
	ListByCatalog(ctx context.Context, catalogID uint) ([]*models.LinkGroup, error)
	NextPosition(ctx context.Context, catalogID uint) (int, error)
}

// LinkRepository handles link persistence
type LinkRepository interface {
	Repository[models.Link, models.LinkFilter]
	ListByCatalog(ctx context.Context, catalogID uint) ([]*models.Link, error)
	NextPosition(ctx context.Context, catalogID uint) (int, error)
	UpdatePositions(ctx context.Context, catalogID uint, orderedIDs []uint) error
	IncrementClickCount(ctx context.Context, id uint) error
}

// ProductRepository handles product persistence
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	ListByCatalog(ctx context.Context, catalogID uint) ([]*models.Product, error)
	NextPosition(ctx context.Context, catalogID uint) (int, error)
	UpdatePositions(ctx context.Context, catalogID uint, orderedIDs []uint) error
	IncrementClickCount(ctx context.Context, id uint) error
}

// OTPCodeRepository handles one-time password persistence
type OTPCodeRepository interface {
	Repository[models.OTPCode, models.OTPCodeFilter]
	CountIssuedSince(ctx context.Context, whatsapp string, since time.Time) (int64, error)
	FindValid(ctx context.Context, whatsapp, code string, now time.Time) (*models.OTPCode, error)
	MarkVerified(ctx context.Context, id uint, at time.Time) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PageViewRepository handles storefront visit persistence
type PageViewRepository interface {
	Repository[models.PageView, models.PageViewFilter]
	ExistsRecent(ctx context.Context, catalogID uint, ipHash string, since time.Time) (bool, error)
	ListSince(ctx context.Context, catalogID uint, since time.Time) ([]*models.PageView, error)
}

// LinkClickCount is an aggregated click total for a single link. Title and URL
// are nil when the link has been deleted since the clicks were recorded.
type LinkClickCount struct {
	LinkID uint    `json:"link_id"`
	Title  *string `json:"title"`
	URL    *string `json:"url"`
	Clicks int64   `json:"clicks"`
}

// LinkClickRepository handles link click persistence
type LinkClickRepository interface {
	Repository[models.LinkClick, models.LinkClickFilter]
	ListTimesSince(ctx context.Context, catalogID uint, since time.Time) ([]time.Time, error)
	TopLinksSince(ctx context.Context, catalogID uint, since time.Time, limit int) ([]*LinkClickCount, error)
}

// ProductClickCount is an aggregated click total for a single product
type ProductClickCount struct {
	ProductID uint  `json:"product_id"`
	Clicks    int64 `json:"clicks"`
}

// ClickRepository handles product buy-button click persistence
type ClickRepository interface {
	Repository[models.Click, models.ClickFilter]
	ListTimesSince(ctx context.Context, catalogID uint, since time.Time) ([]time.Time, error)
	TopProductsSince(ctx context.Context, catalogID uint, since time.Time, limit int) ([]*ProductClickCount, error)
}
