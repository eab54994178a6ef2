// Package testing provides test utilities and database setup for testing the storefront platform
package testing

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kaitkan/kaitkan-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB represents a test database instance
type TestDB struct {
	DB *gorm.DB
}

// SetupTestDB creates an in-memory SQLite database and runs migrations.
// Each call gets its own uniquely named database so tests stay isolated;
// cache=shared keeps the pool's connections on the same instance.
func SetupTestDB() (*TestDB, error) {
	dsn := fmt.Sprintf("file:test_%d_%d?mode=memory&cache=shared&_fk=1", time.Now().UnixNano(), rand.Intn(100000))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Theme{},
		&models.Catalog{},
		&models.LinkGroup{},
		&models.Link{},
		&models.Product{},
		&models.OTPCode{},
		&models.PageView{},
		&models.LinkClick{},
		&models.Click{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return &TestDB{DB: db}, nil
}

// TeardownTestDB closes the database connection
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB == nil {
		return nil
	}
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ClearAllTables removes all data from tables while preserving structure
func (tdb *TestDB) ClearAllTables() error {
	// Order matters due to foreign key constraints
	tables := []string{
		"clicks",
		"link_clicks",
		"page_views",
		"otp_codes",
		"products",
		"links",
		"link_groups",
		"catalogs",
		"themes",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	return nil
}

// TestWithDB is a helper function that sets up a test database, runs the test function, and cleans up
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer testDB.TeardownTestDB()

	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
