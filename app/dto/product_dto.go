// Package dto contains request and response structures for the API
package dto

// CreateProductRequest adds a product card to the catalog
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100" example:"Keripik Pisang"`
	Description *string `json:"description" validate:"omitempty,max=1000" example:"250g, rasa coklat"`
	Price       int64   `json:"price" validate:"min=0" example:"25000"`
	BuyURL      *string `json:"buy_url" validate:"omitempty,url,max=500" example:"https://wa.me/6281234567890"`
}

// UpdateProductRequest changes an existing product; nil fields are left untouched
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100" example:"Keripik Pisang"`
	Description *string `json:"description" validate:"omitempty,max=1000" example:"250g, rasa coklat"`
	Price       *int64  `json:"price" validate:"omitempty,min=0" example:"25000"`
	BuyURL      *string `json:"buy_url" validate:"omitempty,url,max=500" example:"https://wa.me/6281234567890"`
	IsActive    *bool   `json:"is_active" example:"true"`
}

// ProductDTO is the owner's view of a product
type ProductDTO struct {
	ID          uint    `json:"id" example:"8"`
	Name        string  `json:"name" example:"Keripik Pisang"`
	Description *string `json:"description,omitempty" example:"250g, rasa coklat"`
	Price       int64   `json:"price" example:"25000"`
	ImageURL    *string `json:"image_url,omitempty" example:"/uploads/products/cd34.jpg"`
	BuyURL      *string `json:"buy_url,omitempty" example:"https://wa.me/6281234567890"`
	IsActive    bool    `json:"is_active" example:"true"`
	Position    int     `json:"position" example:"0"`
	CreatedAt   string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}
