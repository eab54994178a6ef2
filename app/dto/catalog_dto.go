// Package dto contains request and response structures for the API
package dto

// UpdateProfileRequest updates the storefront identity
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=100" example:"Toko Siti"`
	Bio         *string `json:"bio" validate:"omitempty,max=500" example:"Oleh-oleh khas Lampung"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=50,username_format" example:"tokositi"`
	ThemeID     *uint   `json:"theme_id" validate:"omitempty,min=1" example:"2"`
	IsPublished *bool   `json:"is_published" example:"true"`
}

// OnboardingRequest completes first-run setup in a single call
type OnboardingRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100" example:"Siti"`
	DisplayName string  `json:"display_name" validate:"required,min=1,max=100" example:"Toko Siti"`
	Username    string  `json:"username" validate:"required,min=3,max=50,username_format" example:"tokositi"`
	Bio         *string `json:"bio" validate:"omitempty,max=500" example:"Oleh-oleh khas Lampung"`
	ThemeID     *uint   `json:"theme_id" validate:"omitempty,min=1" example:"2"`
}

// ThemeDTO describes one selectable theme
type ThemeDTO struct {
	ID              uint   `json:"id" example:"1"`
	Name            string `json:"name" example:"midnight"`
	BackgroundColor string `json:"background_color" example:"#0f172a"`
	TextColor       string `json:"text_color" example:"#f8fafc"`
	ButtonColor     string `json:"button_color" example:"#38bdf8"`
	ButtonTextColor string `json:"button_text_color" example:"#0f172a"`
	IsDefault       bool   `json:"is_default" example:"true"`
}

// CatalogDTO is the owner's view of their storefront
type CatalogDTO struct {
	ID          uint      `json:"id" example:"1"`
	Username    string    `json:"username" example:"tokositi"`
	DisplayName string    `json:"display_name" example:"Toko Siti"`
	Bio         *string   `json:"bio,omitempty" example:"Oleh-oleh khas Lampung"`
	AvatarURL   *string   `json:"avatar_url,omitempty" example:"/uploads/avatars/ab12.jpg"`
	IsPublished bool      `json:"is_published" example:"true"`
	Theme       *ThemeDTO `json:"theme,omitempty"`
}

// PublicLinkDTO is a link as shown on the public page
type PublicLinkDTO struct {
	ID           uint    `json:"id" example:"3"`
	Title        string  `json:"title" example:"Katalog Shopee"`
	URL          string  `json:"url" example:"https://shopee.co.id/toko"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty" example:"/uploads/links/ef56.jpg"`
}

// PublicLinkGroupDTO is a titled section of links on the public page
type PublicLinkGroupDTO struct {
	ID    uint            `json:"id" example:"1"`
	Title string          `json:"title" example:"Marketplace"`
	Links []PublicLinkDTO `json:"links"`
}

// PublicProductDTO is a product card on the public page
type PublicProductDTO struct {
	ID          uint    `json:"id" example:"8"`
	Name        string  `json:"name" example:"Keripik Pisang"`
	Description *string `json:"description,omitempty" example:"250g, rasa coklat"`
	Price       int64   `json:"price" example:"25000"`
	ImageURL    *string `json:"image_url,omitempty" example:"/uploads/products/cd34.jpg"`
	BuyURL      *string `json:"buy_url,omitempty" example:"https://wa.me/6281234567890"`
}

// PublicCatalogResponse is the complete public storefront payload. The ID is
// included so the frontend can post visits back against the catalog.
type PublicCatalogResponse struct {
	ID          uint                 `json:"id" example:"1"`
	Username    string               `json:"username" example:"tokositi"`
	DisplayName string               `json:"display_name" example:"Toko Siti"`
	Bio         *string              `json:"bio,omitempty" example:"Oleh-oleh khas Lampung"`
	AvatarURL   *string              `json:"avatar_url,omitempty" example:"/uploads/avatars/ab12.jpg"`
	Theme       *ThemeDTO            `json:"theme,omitempty"`
	Groups      []PublicLinkGroupDTO `json:"groups"`
	Links       []PublicLinkDTO      `json:"links"`
	Products    []PublicProductDTO   `json:"products"`
}
