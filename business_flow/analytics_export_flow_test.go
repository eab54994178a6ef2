// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"bytes"
	"strings"
	"testing"

	testingutil "github.com/kaitkan/kaitkan-api/testing"
	"github.com/kaitkan/kaitkan-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCSV(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := NewAnalyticsExportFlow(newTestAnalyticsFlow(testDB))
		ctx := testingutil.CreateTestContext()

		user, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		link, err := fixtures.CreateTestLink(catalog.ID, "Katalog Shopee, Resmi", 0)
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(catalog.ID, "Kemeja Batik", 150000)
		require.NoError(t, err)

		now := utils.UTCNow()
		_, err = fixtures.CreateTestPageView(catalog.ID, "hash-a", now)
		require.NoError(t, err)
		_, err = fixtures.CreateTestPageView(catalog.ID, "hash-b", now)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLinkClick(catalog.ID, link.ID, now)
		require.NoError(t, err)
		_, err = fixtures.CreateTestProductClick(catalog.ID, product.ID, now)
		require.NoError(t, err)

		t.Run("SummaryReport", func(t *testing.T) {
			filename, data, err := flow.ExportCSV(ctx, user.ID, ReportSummary, "7d")
			require.NoError(t, err)
			assert.Equal(t, "analytics_summary.csv", filename)

			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			assert.Equal(t, "metric,value", lines[0])
			assert.Equal(t, "views,2", lines[1])
			assert.Equal(t, "clicks,2", lines[2])
			assert.Equal(t, "ctr,100", lines[3])
			// Blank separator, then the daily series
			assert.Equal(t, "", lines[4])
			assert.Equal(t, "date,views,clicks", lines[5])
			require.Len(t, lines, 13)
			assert.Equal(t, utils.DateKey(utils.Today())+",2,2", lines[12])
		})

		t.Run("ZeroCTRPrintsBareZero", func(t *testing.T) {
			quietUser, _, err := fixtures.CreateTestUserWithCatalog()
			require.NoError(t, err)

			_, data, err := flow.ExportCSV(ctx, quietUser.ID, ReportSummary, "7d")
			require.NoError(t, err)

			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			assert.Equal(t, "views,0", lines[1])
			assert.Equal(t, "ctr,0", lines[3])
		})

		t.Run("TopLinksReportStripsCommas", func(t *testing.T) {
			filename, data, err := flow.ExportCSV(ctx, user.ID, ReportLinks, "7d")
			require.NoError(t, err)
			assert.Equal(t, "analytics_top_links.csv", filename)

			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			assert.Equal(t, "link_id,title,url,clicks", lines[0])
			require.Len(t, lines, 2)
			assert.Contains(t, lines[1], "Katalog Shopee  Resmi")
			assert.True(t, strings.HasSuffix(lines[1], ",1"))
		})

		t.Run("TopProductsReport", func(t *testing.T) {
			filename, data, err := flow.ExportCSV(ctx, user.ID, ReportProducts, "7d")
			require.NoError(t, err)
			assert.Equal(t, "analytics_top_products.csv", filename)

			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			assert.Equal(t, "product_id,clicks", lines[0])
			require.Len(t, lines, 2)
		})

		t.Run("UnknownReport", func(t *testing.T) {
			_, _, err := flow.ExportCSV(ctx, user.ID, "top-sellers", "7d")
			require.Error(t, err)
			assert.True(t, IsInvalidExport(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportXLSX(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := NewAnalyticsExportFlow(newTestAnalyticsFlow(testDB))
		ctx := testingutil.CreateTestContext()

		user, catalog, err := fixtures.CreateTestUserWithCatalog()
		require.NoError(t, err)
		_, err = fixtures.CreateTestPageView(catalog.ID, "hash-a", utils.UTCNow())
		require.NoError(t, err)

		filename, data, err := flow.ExportXLSX(ctx, user.ID, "30d")
		require.NoError(t, err)
		assert.Equal(t, "analytics_30d.xlsx", filename)

		wb, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer wb.Close()

		assert.ElementsMatch(t, []string{"Summary", "Daily", "Top Links", "Top Products"}, wb.GetSheetList())

		views, err := wb.GetCellValue("Summary", "B2")
		require.NoError(t, err)
		assert.Equal(t, "1", views)

		rows, err := wb.GetRows("Daily")
		require.NoError(t, err)
		// Header plus thirty days
		assert.Len(t, rows, 31)

		return nil
	})
	require.NoError(t, err)
}
