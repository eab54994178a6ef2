// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/app/services"
	"github.com/kaitkan/kaitkan-api/repository"
	testingutil "github.com/kaitkan/kaitkan-api/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLinkFlow(t *testing.T, testDB *testingutil.TestDB) LinkFlow {
	catalogRepo := repository.NewCatalogRepository(testDB.DB)
	linkRepo := repository.NewLinkRepository(testDB.DB)
	linkGroupRepo := repository.NewLinkGroupRepository(testDB.DB)
	catalogFlow := NewCatalogFlow(
		catalogRepo,
		linkGroupRepo,
		linkRepo,
		repository.NewProductRepository(testDB.DB),
		services.NewNoopCacheService(),
		time.Minute,
	)
	return NewLinkFlow(catalogRepo, linkRepo, linkGroupRepo, services.NewImageService(t.TempDir()), catalogFlow, 600)
}

func TestLinkCRUD(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestLinkFlow(t, testDB)
		ctx := testingutil.CreateTestContext()

		user, _, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)

		t.Run("CreateAppendsAtEnd", func(t *testing.T) {
			first, err := flow.Create(ctx, user.ID, &dto.CreateLinkRequest{
				Title: "Katalog Shopee",
				URL:   "https://shopee.co.id/toko",
			})
			require.NoError(t, err)
			assert.Equal(t, 0, first.Position)
			assert.True(t, first.IsActive)

			second, err := flow.Create(ctx, user.ID, &dto.CreateLinkRequest{
				Title: "Tokopedia",
				URL:   "https://tokopedia.com/toko",
			})
			require.NoError(t, err)
			assert.Equal(t, 1, second.Position)

			links, err := flow.List(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, links, 2)
			assert.Equal(t, "Katalog Shopee", links[0].Title)
			assert.Equal(t, "Tokopedia", links[1].Title)
		})

		t.Run("UpdateLeavesNilFieldsUntouched", func(t *testing.T) {
			links, err := flow.List(ctx, user.ID)
			require.NoError(t, err)
			require.NotEmpty(t, links)

			inactive := false
			updated, err := flow.Update(ctx, user.ID, links[0].ID, &dto.UpdateLinkRequest{
				IsActive: &inactive,
			})
			require.NoError(t, err)
			assert.False(t, updated.IsActive)
			assert.Equal(t, links[0].Title, updated.Title)
			assert.Equal(t, links[0].URL, updated.URL)
		})

		t.Run("UpdateRejectsForeignGroup", func(t *testing.T) {
			links, err := flow.List(ctx, user.ID)
			require.NoError(t, err)
			require.NotEmpty(t, links)

			missing := uint(9999)
			_, err = flow.Update(ctx, user.ID, links[0].ID, &dto.UpdateLinkRequest{
				LinkGroupID: &missing,
			})
			require.Error(t, err)
			assert.True(t, IsLinkGroupNotFound(err))
		})

		t.Run("DeleteRemovesLink", func(t *testing.T) {
			links, err := flow.List(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, links, 2)

			require.NoError(t, flow.Delete(ctx, user.ID, links[1].ID))

			links, err = flow.List(ctx, user.ID)
			require.NoError(t, err)
			assert.Len(t, links, 1)
		})

		t.Run("ForeignLinkIsHidden", func(t *testing.T) {
			_, otherCatalog, err := fixtures.CreateTestUserWithCatalog()
			require.NoError(t, err)
			foreign, err := fixtures.CreateTestLink(otherCatalog.ID, "rahasia", 0)
			require.NoError(t, err)

			_, err = flow.Update(ctx, user.ID, foreign.ID, &dto.UpdateLinkRequest{})
			require.Error(t, err)
			assert.True(t, IsLinkNotFound(err))

			err = flow.Delete(ctx, user.ID, foreign.ID)
			require.Error(t, err)
			assert.True(t, IsLinkNotFound(err))
		})

		t.Run("UserWithoutCatalog", func(t *testing.T) {
			orphan, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = flow.List(ctx, orphan.ID)
			require.Error(t, err)
			assert.True(t, IsCatalogNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLinkCreateInGroup(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestLinkFlow(t, testDB)
		ctx := testingutil.CreateTestContext()

		user, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		group, err := fixtures.CreateTestLinkGroup(catalog.ID, "Marketplace", 0)
		require.NoError(t, err)

		link, err := flow.Create(ctx, user.ID, &dto.CreateLinkRequest{
			Title:       "Shopee",
			URL:         "https://shopee.co.id/toko",
			LinkGroupID: &group.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, link.LinkGroupID)
		assert.Equal(t, group.ID, *link.LinkGroupID)

		_, otherCatalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		foreignGroup, err := fixtures.CreateTestLinkGroup(otherCatalog.ID, "Lainnya", 0)
		require.NoError(t, err)

		_, err = flow.Create(ctx, user.ID, &dto.CreateLinkRequest{
			Title:       "Bukalapak",
			URL:         "https://bukalapak.com/toko",
			LinkGroupID: &foreignGroup.ID,
		})
		require.Error(t, err)
		assert.True(t, IsLinkGroupNotFound(err))

		return nil
	})
	require.NoError(t, err)
}

func TestLinkThumbnailUpload(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestLinkFlow(t, testDB)
		ctx := testingutil.CreateTestContext()

		user, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		link, err := fixtures.CreateTestLink(catalog.ID, "Shopee", 0)
		require.NoError(t, err)

		t.Run("StoresAndServesThumbnail", func(t *testing.T) {
			updated, err := flow.UploadThumbnail(ctx, user.ID, link.ID, encodeTestPNG(t), "thumb.png")
			require.NoError(t, err)
			require.NotNil(t, updated.ThumbnailURL)
			assert.True(t, strings.HasPrefix(*updated.ThumbnailURL, "/uploads/links/"))
		})

		t.Run("GarbageDataRejected", func(t *testing.T) {
			_, err := flow.UploadThumbnail(ctx, user.ID, link.ID, []byte("not an image"), "thumb.png")
			require.Error(t, err)
			assert.True(t, IsImageInvalid(err))
		})

		t.Run("UnknownLink", func(t *testing.T) {
			_, err := flow.UploadThumbnail(ctx, user.ID, 9999, encodeTestPNG(t), "thumb.png")
			require.Error(t, err)
			assert.True(t, IsLinkNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLinkReorder(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestLinkFlow(t, testDB)
		ctx := testingutil.CreateTestContext()

		user, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)

		a, err := fixtures.CreateTestLink(catalog.ID, "satu", 0)
		require.NoError(t, err)
		b, err := fixtures.CreateTestLink(catalog.ID, "dua", 1)
		require.NoError(t, err)
		c, err := fixtures.CreateTestLink(catalog.ID, "tiga", 2)
		require.NoError(t, err)

		t.Run("RewritesDisplayOrder", func(t *testing.T) {
			err := flow.Reorder(ctx, user.ID, &dto.ReorderRequest{IDs: []uint{c.ID, a.ID, b.ID}})
			require.NoError(t, err)

			links, err := flow.List(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, links, 3)
			assert.Equal(t, "tiga", links[0].Title)
			assert.Equal(t, "satu", links[1].Title)
			assert.Equal(t, "dua", links[2].Title)
		})

		t.Run("MissingIDRejected", func(t *testing.T) {
			err := flow.Reorder(ctx, user.ID, &dto.ReorderRequest{IDs: []uint{a.ID, b.ID}})
			require.Error(t, err)
			assert.True(t, IsReorderIDsIncomplete(err))
		})

		t.Run("DuplicateIDRejected", func(t *testing.T) {
			err := flow.Reorder(ctx, user.ID, &dto.ReorderRequest{IDs: []uint{a.ID, a.ID, b.ID}})
			require.Error(t, err)
			assert.True(t, IsReorderIDsIncomplete(err))
		})

		t.Run("ForeignIDRejected", func(t *testing.T) {
			_, otherCatalog, err := fixtures.CreateTestUserWithCatalog()
			require.NoError(t, err)
			foreign, err := fixtures.CreateTestLink(otherCatalog.ID, "asing", 0)
			require.NoError(t, err)

			err = flow.Reorder(ctx, user.ID, &dto.ReorderRequest{IDs: []uint{foreign.ID, a.ID, b.ID}})
			require.Error(t, err)
			assert.True(t, IsReorderIDsIncomplete(err))
		})

		return nil
	})
	require.NoError(t, err)
}
