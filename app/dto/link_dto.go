// Package dto contains request and response structures for the API
package dto

// CreateLinkRequest adds a link to the catalog
type CreateLinkRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=100" example:"Katalog Shopee"`
	URL         string `json:"url" validate:"required,url,max=500" example:"https://shopee.co.id/toko"`
	LinkGroupID *uint  `json:"link_group_id" validate:"omitempty,min=1" example:"1"`
}

// UpdateLinkRequest changes an existing link; nil fields are left untouched
type UpdateLinkRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100" example:"Katalog Shopee"`
	URL         *string `json:"url" validate:"omitempty,url,max=500" example:"https://shopee.co.id/toko"`
	LinkGroupID *uint   `json:"link_group_id" validate:"omitempty,min=1" example:"1"`
	IsActive    *bool   `json:"is_active" example:"true"`
}

// ReorderRequest rewrites display order; ids must cover every item once
type ReorderRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,min=1" example:"3,1,2"`
}

// LinkDTO is the owner's view of a link
type LinkDTO struct {
	ID           uint    `json:"id" example:"3"`
	Title        string  `json:"title" example:"Katalog Shopee"`
	URL          string  `json:"url" example:"https://shopee.co.id/toko"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty" example:"/uploads/links/ef56.jpg"`
	LinkGroupID  *uint   `json:"link_group_id,omitempty" example:"1"`
	IsActive     bool    `json:"is_active" example:"true"`
	Position     int     `json:"position" example:"0"`
	CreatedAt    string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// CreateLinkGroupRequest adds a titled section for links
type CreateLinkGroupRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100" example:"Marketplace"`
}

// UpdateLinkGroupRequest renames a link group
type UpdateLinkGroupRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100" example:"Marketplace"`
}

// LinkGroupDTO is the owner's view of a link group
type LinkGroupDTO struct {
	ID       uint      `json:"id" example:"1"`
	Title    string    `json:"title" example:"Marketplace"`
	Position int       `json:"position" example:"0"`
	Links    []LinkDTO `json:"links,omitempty"`
}
