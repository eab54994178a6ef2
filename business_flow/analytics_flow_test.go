// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"testing"
	"time"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	testingutil "github.com/kaitkan/kaitkan-api/testing"
	"github.com/kaitkan/kaitkan-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyticsFlow(testDB *testingutil.TestDB) AnalyticsFlow {
	return NewAnalyticsFlow(
		repository.NewCatalogRepository(testDB.DB),
		repository.NewLinkRepository(testDB.DB),
		repository.NewProductRepository(testDB.DB),
		repository.NewPageViewRepository(testDB.DB),
		repository.NewLinkClickRepository(testDB.DB),
		repository.NewClickRepository(testDB.DB),
		"test-hash-secret",
	)
}

func TestClassifySource(t *testing.T) {
	tests := []struct {
		name      string
		utmSource string
		referrer  string
		expected  string
	}{
		{"utm source wins over referrer", "newsletter", "https://instagram.com/p/abc", "newsletter"},
		{"utm source is trimmed and lowercased", "  Instagram ", "", "instagram"},
		{"empty referrer is direct", "", "", "direct"},
		{"instagram referrer", "", "https://l.instagram.com/", "instagram"},
		{"tiktok referrer", "", "https://www.tiktok.com/@toko", "tiktok"},
		{"facebook referrer", "", "https://m.facebook.com/", "facebook"},
		{"fb shortlink referrer", "", "https://fb.me/abc", "facebook"},
		{"whatsapp referrer", "", "https://wa.me/628123", "whatsapp"},
		{"x.com referrer maps to x", "", "https://x.com/toko", "x"},
		{"twitter referrer maps to x", "", "https://t.co/redirect?u=twitter.com", "x"},
		{"youtube referrer", "", "https://youtube.com/watch", "youtube"},
		{"google referrer", "", "https://www.google.com/search", "google"},
		{"unknown referrer is other", "", "https://example.org/blog", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifySource(tt.utmSource, tt.referrer))
		})
	}
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{"android phone", "Mozilla/5.0 (Linux; Android 14) Mobile Safari", "mobile"},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", "mobile"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_0)", "mobile"},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120", "desktop"},
		{"empty user agent", "", "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyDevice(tt.userAgent))
		})
	}
}

func TestRangeDays(t *testing.T) {
	assert.Equal(t, 7, rangeDays("7d"))
	assert.Equal(t, 30, rangeDays("30d"))
	assert.Equal(t, 7, rangeDays(""))
	assert.Equal(t, 7, rangeDays("90d"))
	assert.Equal(t, "7d", normalizeRange("garbage"))
	assert.Equal(t, "30d", normalizeRange("30d"))
}

func TestClickThroughRate(t *testing.T) {
	assert.Equal(t, 0.0, clickThroughRate(10, 0))
	assert.Equal(t, 50.0, clickThroughRate(1, 2))
	assert.Equal(t, 16.7, clickThroughRate(1, 6))
	assert.Equal(t, 100.0, clickThroughRate(3, 3))
}

func TestSortedSources(t *testing.T) {
	out := sortedSources(map[string]int64{
		"direct":    2,
		"instagram": 5,
		"tiktok":    2,
	})

	require.Len(t, out, 3)
	assert.Equal(t, dto.SourceCountDTO{Name: "instagram", Count: 5}, out[0])
	// Equal counts are ordered by name
	assert.Equal(t, dto.SourceCountDTO{Name: "direct", Count: 2}, out[1])
	assert.Equal(t, dto.SourceCountDTO{Name: "tiktok", Count: 2}, out[2])
}

func TestRecordVisit(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		_, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)

		t.Run("StoresVisitWithAttribution", func(t *testing.T) {
			metadata := NewClientMetadata("203.0.113.9", "Mozilla/5.0 (iPhone)")
			metadata.Referrer = "https://instagram.com/p/abc"

			err := flow.RecordVisit(ctx, &dto.RecordVisitRequest{
				CatalogID: catalog.ID,
				UTMSource: "instagram",
				UTMMedium: "social",
			}, metadata)
			require.NoError(t, err)

			var views []models.PageView
			require.NoError(t, testDB.DB.Where("catalog_id = ?", catalog.ID).Find(&views).Error)
			require.Len(t, views, 1)
			assert.NotEmpty(t, views[0].IPHash)
			assert.NotEqual(t, "203.0.113.9", views[0].IPHash)
			require.NotNil(t, views[0].UTMSource)
			assert.Equal(t, "instagram", *views[0].UTMSource)
		})

		t.Run("DeduplicatesRepeatVisits", func(t *testing.T) {
			metadata := NewClientMetadata("203.0.113.9", "Mozilla/5.0 (iPhone)")

			err := flow.RecordVisit(ctx, &dto.RecordVisitRequest{CatalogID: catalog.ID}, metadata)
			require.NoError(t, err)

			var count int64
			require.NoError(t, testDB.DB.Model(&models.PageView{}).Where("catalog_id = ?", catalog.ID).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("RecordsAgainAfterDedupWindow", func(t *testing.T) {
			metadata := NewClientMetadata("203.0.113.9", "Mozilla/5.0 (iPhone)")

			stale := utils.UTCNow().Add(-(utils.VisitDedupWindow + time.Minute))
			require.NoError(t, testDB.DB.Model(&models.PageView{}).
				Where("catalog_id = ?", catalog.ID).
				Update("visited_at", stale).Error)

			err := flow.RecordVisit(ctx, &dto.RecordVisitRequest{CatalogID: catalog.ID}, metadata)
			require.NoError(t, err)

			var count int64
			require.NoError(t, testDB.DB.Model(&models.PageView{}).Where("catalog_id = ?", catalog.ID).Count(&count).Error)
			assert.Equal(t, int64(2), count)
		})

		t.Run("IgnoresBotTraffic", func(t *testing.T) {
			metadata := NewClientMetadata("198.51.100.1", "Googlebot/2.1 (+http://www.google.com/bot.html)")

			err := flow.RecordVisit(ctx, &dto.RecordVisitRequest{CatalogID: catalog.ID}, metadata)
			require.NoError(t, err)

			var count int64
			require.NoError(t, testDB.DB.Model(&models.PageView{}).Where("catalog_id = ?", catalog.ID).Count(&count).Error)
			assert.Equal(t, int64(2), count)
		})

		t.Run("UnknownCatalogFails", func(t *testing.T) {
			metadata := NewClientMetadata("198.51.100.2", "Mozilla/5.0")

			err := flow.RecordVisit(ctx, &dto.RecordVisitRequest{CatalogID: 99999}, metadata)
			require.Error(t, err)
			assert.True(t, IsCatalogNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRecordLinkClick(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		_, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		link, err := fixtures.CreateTestLink(catalog.ID, "shopee", 0)
		require.NoError(t, err)

		t.Run("StoresClickAndBumpsCounter", func(t *testing.T) {
			metadata := NewClientMetadata("203.0.113.9", "Mozilla/5.0 (iPhone)")

			require.NoError(t, flow.RecordLinkClick(ctx, link.ID, metadata))
			require.NoError(t, flow.RecordLinkClick(ctx, link.ID, metadata))

			var clicks int64
			require.NoError(t, testDB.DB.Model(&models.LinkClick{}).Where("link_id = ?", link.ID).Count(&clicks).Error)
			assert.Equal(t, int64(2), clicks)

			var reloaded models.Link
			require.NoError(t, testDB.DB.First(&reloaded, link.ID).Error)
			assert.Equal(t, int64(2), reloaded.ClickCount)
		})

		t.Run("IgnoresBotClicks", func(t *testing.T) {
			metadata := NewClientMetadata("198.51.100.1", "curl-spider/1.0")

			require.NoError(t, flow.RecordLinkClick(ctx, link.ID, metadata))

			var clicks int64
			require.NoError(t, testDB.DB.Model(&models.LinkClick{}).Where("link_id = ?", link.ID).Count(&clicks).Error)
			assert.Equal(t, int64(2), clicks)
		})

		t.Run("UnknownLinkFails", func(t *testing.T) {
			err := flow.RecordLinkClick(ctx, 99999, NewClientMetadata("203.0.113.9", "Mozilla/5.0"))
			require.Error(t, err)
			assert.True(t, IsLinkNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRecordProductClick(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		_, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(catalog.ID, "Kemeja Batik", 150000)
		require.NoError(t, err)

		metadata := NewClientMetadata("203.0.113.9", "Mozilla/5.0 (Android)")
		require.NoError(t, flow.RecordProductClick(ctx, product.ID, metadata))

		var reloaded models.Product
		require.NoError(t, testDB.DB.First(&reloaded, product.ID).Error)
		assert.Equal(t, int64(1), reloaded.ClickCount)

		err = flow.RecordProductClick(ctx, 99999, metadata)
		require.Error(t, err)
		assert.True(t, IsProductNotFound(err))

		return nil
	})
	require.NoError(t, err)
}

func TestSummary(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		user, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		link, err := fixtures.CreateTestLink(catalog.ID, "shopee", 0)
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(catalog.ID, "Kemeja Batik", 150000)
		require.NoError(t, err)

		today := utils.Today()
		yesterday := today.AddDate(0, 0, -1)

		// Two views today, one yesterday
		_, err = fixtures.CreateTestPageView(catalog.ID, "hash-a", today.Add(2*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestPageView(catalog.ID, "hash-b", today.Add(3*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestPageView(catalog.ID, "hash-c", yesterday.Add(1*time.Hour))
		require.NoError(t, err)

		// One link click yesterday, one product click today
		_, err = fixtures.CreateTestLinkClick(catalog.ID, link.ID, yesterday.Add(2*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestProductClick(catalog.ID, product.ID, today.Add(4*time.Hour))
		require.NoError(t, err)

		summary, err := flow.Summary(ctx, user.ID, "7d")
		require.NoError(t, err)

		assert.Equal(t, "7d", summary.Range)
		assert.Equal(t, int64(3), summary.Totals.Views)
		// Link and product clicks both count
		assert.Equal(t, int64(2), summary.Totals.Clicks)
		assert.Equal(t, 66.7, summary.Totals.CTR)

		require.Len(t, summary.Series.Labels, 7)
		require.Len(t, summary.Series.Views, 7)
		require.Len(t, summary.Series.Clicks, 7)

		// Series runs oldest first and ends today
		assert.Equal(t, utils.DateKey(today.AddDate(0, 0, -6)), summary.Series.Labels[0])
		assert.Equal(t, utils.DateKey(today), summary.Series.Labels[6])
		assert.Equal(t, int64(2), summary.Series.Views[6])
		assert.Equal(t, int64(1), summary.Series.Views[5])
		assert.Equal(t, int64(1), summary.Series.Clicks[6])
		assert.Equal(t, int64(1), summary.Series.Clicks[5])
		assert.Equal(t, int64(0), summary.Series.Views[0])

		// All three views had no referrer and no utm tag
		require.Len(t, summary.Breakdown.Sources, 1)
		assert.Equal(t, dto.SourceCountDTO{Name: "direct", Count: 3}, summary.Breakdown.Sources[0])
		assert.Equal(t, int64(3), summary.Breakdown.Devices.Desktop)

		return nil
	})
	require.NoError(t, err)
}

func TestTopLinksAndProducts(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newTestAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		user, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		first, err := fixtures.CreateTestLink(catalog.ID, "shopee", 0)
		require.NoError(t, err)
		second, err := fixtures.CreateTestLink(catalog.ID, "tokopedia", 1)
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(catalog.ID, "Kemeja Batik", 150000)
		require.NoError(t, err)

		now := utils.UTCNow()
		for range 3 {
			_, err = fixtures.CreateTestLinkClick(catalog.ID, first.ID, now)
			require.NoError(t, err)
		}
		_, err = fixtures.CreateTestLinkClick(catalog.ID, second.ID, now)
		require.NoError(t, err)
		_, err = fixtures.CreateTestProductClick(catalog.ID, product.ID, now)
		require.NoError(t, err)

		topLinks, err := flow.TopLinks(ctx, user.ID, "7d")
		require.NoError(t, err)
		require.Len(t, topLinks.Links, 2)
		assert.Equal(t, first.ID, topLinks.Links[0].ID)
		assert.Equal(t, int64(3), topLinks.Links[0].Clicks)
		require.NotNil(t, topLinks.Links[0].Title)
		assert.Equal(t, "shopee", *topLinks.Links[0].Title)

		t.Run("DeletedLinkKeepsItsClicks", func(t *testing.T) {
			require.NoError(t, testDB.DB.Delete(&models.Link{}, second.ID).Error)

			topLinks, err := flow.TopLinks(ctx, user.ID, "7d")
			require.NoError(t, err)
			require.Len(t, topLinks.Links, 2)
			assert.Nil(t, topLinks.Links[1].Title)
			assert.Nil(t, topLinks.Links[1].URL)
		})

		topProducts, err := flow.TopProducts(ctx, user.ID, "7d")
		require.NoError(t, err)
		require.Len(t, topProducts.Products, 1)
		assert.Equal(t, product.ID, topProducts.Products[0].ProductID)
		assert.Equal(t, int64(1), topProducts.Products[0].Clicks)

		return nil
	})
	require.NoError(t, err)
}
