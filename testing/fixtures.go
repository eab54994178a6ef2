// Package testing provides test utilities and database setup for testing the storefront platform
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestTheme creates a theme, marking the first one as default
func (tf *TestFixtures) CreateTestTheme(name string, isDefault bool) (*models.Theme, error) {
	theme := &models.Theme{
		Name:            name,
		BackgroundColor: "#ffffff",
		TextColor:       "#111111",
		ButtonColor:     "#16a34a",
		ButtonTextColor: "#ffffff",
		IsDefault:       isDefault,
	}
	if err := tf.DB.DB.Create(theme).Error; err != nil {
		return nil, fmt.Errorf("failed to create test theme: %w", err)
	}
	return theme, nil
}

// CreateTestUser creates a verified user with a random WhatsApp number
func (tf *TestFixtures) CreateTestUser() (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	user := &models.User{
		Name:       "Budi Santoso",
		WhatsApp:   fmt.Sprintf("628%s", randomDigits),
		Username:   fmt.Sprintf("toko%s", randomDigits),
		Password:   string(hashedPassword),
		VerifiedAt: utils.UTCNowPtr(),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestCatalog creates a published catalog for the user
func (tf *TestFixtures) CreateTestCatalog(userID uint) (*models.Catalog, error) {
	randomDigits := fmt.Sprintf("%06d", rand.Intn(900000)+100000)

	catalog := &models.Catalog{
		UserID:      userID,
		Username:    fmt.Sprintf("store%s", randomDigits),
		DisplayName: "Toko Serba Ada",
		IsPublished: true,
	}

	if err := tf.DB.DB.Create(catalog).Error; err != nil {
		return nil, fmt.Errorf("failed to create test catalog: %w", err)
	}

	return catalog, nil
}

// CreateTestUserWithCatalog creates a verified user plus a published catalog
func (tf *TestFixtures) CreateTestUserWithCatalog() (*models.User, *models.Catalog, error) {
	user, err := tf.CreateTestUser()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := tf.CreateTestCatalog(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, catalog, nil
}

// CreateTestLinkGroup creates a link group on the catalog
func (tf *TestFixtures) CreateTestLinkGroup(catalogID uint, title string, position int) (*models.LinkGroup, error) {
	group := &models.LinkGroup{
		CatalogID: catalogID,
		Title:     title,
		Position:  position,
	}
	if err := tf.DB.DB.Create(group).Error; err != nil {
		return nil, fmt.Errorf("failed to create test link group: %w", err)
	}
	return group, nil
}

// CreateTestLink creates an active link on the catalog
func (tf *TestFixtures) CreateTestLink(catalogID uint, title string, position int) (*models.Link, error) {
	link := &models.Link{
		CatalogID: catalogID,
		Title:     title,
		URL:       "https://example.com/" + title,
		IsActive:  true,
		Position:  position,
	}
	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test link: %w", err)
	}
	return link, nil
}

// CreateTestProduct creates an active product on the catalog
func (tf *TestFixtures) CreateTestProduct(catalogID uint, name string, price int64) (*models.Product, error) {
	product := &models.Product{
		CatalogID: catalogID,
		Name:      name,
		Price:     price,
		IsActive:  true,
	}
	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}
	return product, nil
}

// CreateTestOTP creates a pending OTP code for the WhatsApp number
func (tf *TestFixtures) CreateTestOTP(whatsapp, code string) (*models.OTPCode, error) {
	otp := &models.OTPCode{
		WhatsApp:  whatsapp,
		Code:      code,
		ExpiresAt: utils.UTCNowAdd(utils.OTPExpiry),
	}
	if err := tf.DB.DB.Create(otp).Error; err != nil {
		return nil, fmt.Errorf("failed to create test OTP: %w", err)
	}
	return otp, nil
}

// CreateExpiredOTP creates an OTP code that expired an hour ago
func (tf *TestFixtures) CreateExpiredOTP(whatsapp, code string) (*models.OTPCode, error) {
	otp := &models.OTPCode{
		WhatsApp:  whatsapp,
		Code:      code,
		ExpiresAt: utils.UTCNowAdd(-1 * time.Hour),
	}
	if err := tf.DB.DB.Create(otp).Error; err != nil {
		return nil, fmt.Errorf("failed to create expired OTP: %w", err)
	}
	return otp, nil
}

// CreateTestPageView records a visit at the given time
func (tf *TestFixtures) CreateTestPageView(catalogID uint, ipHash string, visitedAt time.Time) (*models.PageView, error) {
	view := &models.PageView{
		CatalogID: catalogID,
		IPHash:    ipHash,
		VisitedAt: visitedAt,
	}
	if err := tf.DB.DB.Create(view).Error; err != nil {
		return nil, fmt.Errorf("failed to create test page view: %w", err)
	}
	return view, nil
}

// CreateTestLinkClick records a link click at the given time
func (tf *TestFixtures) CreateTestLinkClick(catalogID, linkID uint, clickedAt time.Time) (*models.LinkClick, error) {
	click := &models.LinkClick{
		CatalogID: catalogID,
		LinkID:    linkID,
		IPHash:    "testhash",
		ClickedAt: clickedAt,
	}
	if err := tf.DB.DB.Create(click).Error; err != nil {
		return nil, fmt.Errorf("failed to create test link click: %w", err)
	}
	return click, nil
}

// CreateTestProductClick records a product click at the given time
func (tf *TestFixtures) CreateTestProductClick(catalogID, productID uint, clickedAt time.Time) (*models.Click, error) {
	click := &models.Click{
		CatalogID: catalogID,
		ProductID: productID,
		IPHash:    "testhash",
		ClickedAt: clickedAt,
	}
	if err := tf.DB.DB.Create(click).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product click: %w", err)
	}
	return click, nil
}
