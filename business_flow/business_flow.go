// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and analytics
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	Referrer   string            `json:"referrer,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToUserDTO converts a user model to its API representation. The avatar lives on
// the user's catalog, so it is passed in separately and may be nil.
func ToUserDTO(user models.User, avatarPath *string) dto.UserDTO {
	out := dto.UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		WhatsApp:  user.WhatsApp,
		Username:  user.Username,
		HasPIN:    user.HasPIN(),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.VerifiedAt != nil {
		verified := user.VerifiedAt.Format(time.RFC3339)
		out.VerifiedAt = &verified
	}
	if avatarPath != nil {
		out.Avatar = uploadURL(*avatarPath)
	}
	return out
}

// ToThemeDTO converts a theme model to its API representation
func ToThemeDTO(theme models.Theme) dto.ThemeDTO {
	return dto.ThemeDTO{
		ID:              theme.ID,
		Name:            theme.Name,
		BackgroundColor: theme.BackgroundColor,
		TextColor:       theme.TextColor,
		ButtonColor:     theme.ButtonColor,
		ButtonTextColor: theme.ButtonTextColor,
		IsDefault:       theme.IsDefault,
	}
}

// ToCatalogDTO converts a catalog model to the owner's API representation
func ToCatalogDTO(catalog models.Catalog) dto.CatalogDTO {
	out := dto.CatalogDTO{
		ID:          catalog.ID,
		Username:    catalog.Username,
		DisplayName: catalog.DisplayName,
		Bio:         catalog.Bio,
		IsPublished: catalog.IsPublished,
	}
	if catalog.AvatarPath != nil {
		out.AvatarURL = uploadURL(*catalog.AvatarPath)
	}
	if catalog.Theme != nil {
		theme := ToThemeDTO(*catalog.Theme)
		out.Theme = &theme
	}
	return out
}

// ToLinkDTO converts a link model to the owner's API representation
func ToLinkDTO(link models.Link) dto.LinkDTO {
	out := dto.LinkDTO{
		ID:          link.ID,
		Title:       link.Title,
		URL:         link.URL,
		LinkGroupID: link.LinkGroupID,
		IsActive:    link.IsActive,
		Position:    link.Position,
		CreatedAt:   link.CreatedAt.Format(time.RFC3339),
	}
	if link.ThumbnailPath != nil {
		out.ThumbnailURL = uploadURL(*link.ThumbnailPath)
	}
	return out
}

// ToProductDTO converts a product model to the owner's API representation
func ToProductDTO(product models.Product) dto.ProductDTO {
	out := dto.ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		BuyURL:      product.BuyURL,
		IsActive:    product.IsActive,
		Position:    product.Position,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
	}
	if product.ImagePath != nil {
		out.ImageURL = uploadURL(*product.ImagePath)
	}
	return out
}

func uploadURL(path string) *string {
	url := "/uploads/" + path
	return &url
}
