// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/repository"
	testingutil "github.com/kaitkan/kaitkan-api/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalogFlow(testDB *testingutil.TestDB) CatalogFlow {
	return NewCatalogFlow(
		repository.NewCatalogRepository(testDB.DB),
		repository.NewLinkGroupRepository(testDB.DB),
		repository.NewLinkRepository(testDB.DB),
		repository.NewProductRepository(testDB.DB),
		services.NewNoopCacheService(),
		time.Minute,
	)
}

func TestPublicCatalog(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestCatalogFlow(testDB)
		ctx := testingutil.CreateTestContext()

		theme, err := fixtures.CreateTestTheme("Nusantara", true)
		require.NoError(t, err)

		_, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(catalog).Update("theme_id", theme.ID).Error)

		group, err := fixtures.CreateTestLinkGroup(catalog.ID, "Marketplace", 0)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLinkGroup(catalog.ID, "Kosong", 1)
		require.NoError(t, err)

		grouped, err := fixtures.CreateTestLink(catalog.ID, "Shopee", 0)
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(grouped).Update("link_group_id", group.ID).Error)

		loose, err := fixtures.CreateTestLink(catalog.ID, "WhatsApp", 1)
		require.NoError(t, err)

		hidden, err := fixtures.CreateTestLink(catalog.ID, "Nonaktif", 2)
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(hidden).Update("is_active", false).Error)

		product, err := fixtures.CreateTestProduct(catalog.ID, "Keripik Pisang", 25000)
		require.NoError(t, err)

		hiddenProduct, err := fixtures.CreateTestProduct(catalog.ID, "Stok Habis", 10000)
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(hiddenProduct).Update("is_active", false).Error)

		t.Run("AssemblesPublishedPage", func(t *testing.T) {
			page, err := flow.PublicCatalog(ctx, catalog.Username)
			require.NoError(t, err)

			assert.Equal(t, catalog.ID, page.ID)
			assert.Equal(t, catalog.Username, page.Username)
			assert.Equal(t, "Toko Serba Ada", page.DisplayName)

			require.NotNil(t, page.Theme)
			assert.Equal(t, "Nusantara", page.Theme.Name)
			assert.True(t, page.Theme.IsDefault)

			require.Len(t, page.Groups, 1)
			assert.Equal(t, "Marketplace", page.Groups[0].Title)
			require.Len(t, page.Groups[0].Links, 1)
			assert.Equal(t, "Shopee", page.Groups[0].Links[0].Title)

			require.Len(t, page.Links, 1)
			assert.Equal(t, loose.ID, page.Links[0].ID)

			require.Len(t, page.Products, 1)
			assert.Equal(t, product.ID, page.Products[0].ID)
			assert.Equal(t, int64(25000), page.Products[0].Price)
		})

		t.Run("UnpublishedCatalogIsHidden", func(t *testing.T) {
			require.NoError(t, testDB.DB.Model(catalog).Update("is_published", false).Error)
			defer func() {
				require.NoError(t, testDB.DB.Model(catalog).Update("is_published", true).Error)
			}()

			_, err := flow.PublicCatalog(ctx, catalog.Username)
			require.Error(t, err)
			assert.True(t, IsCatalogNotFound(err))
		})

		t.Run("UnknownUsername", func(t *testing.T) {
			_, err := flow.PublicCatalog(ctx, "tidak-ada")
			require.Error(t, err)
			assert.True(t, IsCatalogNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPublicCatalogCaching(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		cache := newMapCache()
		flow := NewCatalogFlow(
			repository.NewCatalogRepository(testDB.DB),
			repository.NewLinkGroupRepository(testDB.DB),
			repository.NewLinkRepository(testDB.DB),
			repository.NewProductRepository(testDB.DB),
			cache,
			time.Minute,
		)
		ctx := testingutil.CreateTestContext()

		_, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)

		first, err := flow.PublicCatalog(ctx, catalog.Username)
		require.NoError(t, err)
		assert.Equal(t, "Toko Serba Ada", first.DisplayName)

		// Second read must come from the cache and miss the DB edit.
		require.NoError(t, testDB.DB.Model(catalog).Update("display_name", "Nama Baru").Error)

		cached, err := flow.PublicCatalog(ctx, catalog.Username)
		require.NoError(t, err)
		assert.Equal(t, "Toko Serba Ada", cached.DisplayName)

		flow.InvalidatePublic(ctx, catalog.Username)

		fresh, err := flow.PublicCatalog(ctx, catalog.Username)
		require.NoError(t, err)
		assert.Equal(t, "Nama Baru", fresh.DisplayName)

		return nil
	})
	require.NoError(t, err)
}

// mapCache is an in-memory stand-in for Redis in tests
type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	value, ok := c.entries[key]
	if !ok {
		return "", services.ErrCacheMiss
	}
	return value, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *mapCache) Ping(_ context.Context) error {
	return nil
}
