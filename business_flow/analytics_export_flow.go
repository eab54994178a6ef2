// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Export report names
const (
	ReportSummary  = "summary"
	ReportLinks    = "top-links"
	ReportProducts = "top-products"
)

// AnalyticsExportFlow renders dashboard reports as downloadable files
type AnalyticsExportFlow interface {
	ExportCSV(ctx context.Context, userID uint, report, rng string) (string, []byte, error)
	ExportXLSX(ctx context.Context, userID uint, rng string) (string, []byte, error)
}

// AnalyticsExportFlowImpl implements the export flow on top of the
// aggregation flow
type AnalyticsExportFlowImpl struct {
	analytics AnalyticsFlow
}

// NewAnalyticsExportFlow creates a new analytics export flow
func NewAnalyticsExportFlow(analytics AnalyticsFlow) AnalyticsExportFlow {
	return &AnalyticsExportFlowImpl{analytics: analytics}
}

// ExportCSV renders one report as CSV. The summary report carries the totals
// block, a blank separator line and the daily series. Free-text fields have
// commas replaced by spaces so rows always split cleanly on comma.
func (f *AnalyticsExportFlowImpl) ExportCSV(ctx context.Context, userID uint, report, rng string) (string, []byte, error) {
	var filename string
	var lines []string

	switch report {
	case ReportSummary:
		summary, err := f.analytics.Summary(ctx, userID, rng)
		if err != nil {
			return "", nil, err
		}
		lines = append(lines, "metric,value")
		lines = append(lines, fmt.Sprintf("views,%d", summary.Totals.Views))
		lines = append(lines, fmt.Sprintf("clicks,%d", summary.Totals.Clicks))
		lines = append(lines, fmt.Sprintf("ctr,%s", formatCTR(summary.Totals.CTR)))
		lines = append(lines, "")
		lines = append(lines, "date,views,clicks")
		for i, label := range summary.Series.Labels {
			lines = append(lines, fmt.Sprintf("%s,%d,%d", label, summary.Series.Views[i], summary.Series.Clicks[i]))
		}
		filename = "analytics_summary.csv"

	case ReportLinks:
		top, err := f.analytics.TopLinks(ctx, userID, rng)
		if err != nil {
			return "", nil, err
		}
		lines = append(lines, "link_id,title,url,clicks")
		for _, link := range top.Links {
			lines = append(lines, fmt.Sprintf("%d,%s,%s,%d",
				link.ID, sanitizeCSVField(strValue(link.Title)), sanitizeCSVField(strValue(link.URL)), link.Clicks))
		}
		filename = "analytics_top_links.csv"

	case ReportProducts:
		top, err := f.analytics.TopProducts(ctx, userID, rng)
		if err != nil {
			return "", nil, err
		}
		lines = append(lines, "product_id,clicks")
		for _, product := range top.Products {
			lines = append(lines, fmt.Sprintf("%d,%d", product.ProductID, product.Clicks))
		}
		filename = "analytics_top_products.csv"

	default:
		return "", nil, NewBusinessError("INVALID_EXPORT", "unknown export report", ErrInvalidExport)
	}

	return filename, []byte(strings.Join(lines, "\n") + "\n"), nil
}

// ExportXLSX renders the full dashboard as a workbook with one sheet per
// report
func (f *AnalyticsExportFlowImpl) ExportXLSX(ctx context.Context, userID uint, rng string) (string, []byte, error) {
	summary, err := f.analytics.Summary(ctx, userID, rng)
	if err != nil {
		return "", nil, err
	}
	topLinks, err := f.analytics.TopLinks(ctx, userID, rng)
	if err != nil {
		return "", nil, err
	}
	topProducts, err := f.analytics.TopProducts(ctx, userID, rng)
	if err != nil {
		return "", nil, err
	}

	wb := excelize.NewFile()
	defer wb.Close()

	const summarySheet = "Summary"
	wb.SetSheetName(wb.GetSheetName(0), summarySheet)
	wb.SetSheetRow(summarySheet, "A1", &[]any{"metric", "value"})
	wb.SetSheetRow(summarySheet, "A2", &[]any{"views", summary.Totals.Views})
	wb.SetSheetRow(summarySheet, "A3", &[]any{"clicks", summary.Totals.Clicks})
	wb.SetSheetRow(summarySheet, "A4", &[]any{"ctr", summary.Totals.CTR})

	const dailySheet = "Daily"
	wb.NewSheet(dailySheet)
	wb.SetSheetRow(dailySheet, "A1", &[]any{"date", "views", "clicks"})
	for i, label := range summary.Series.Labels {
		cell := "A" + strconv.Itoa(i+2)
		wb.SetSheetRow(dailySheet, cell, &[]any{label, summary.Series.Views[i], summary.Series.Clicks[i]})
	}

	const linksSheet = "Top Links"
	wb.NewSheet(linksSheet)
	wb.SetSheetRow(linksSheet, "A1", &[]any{"link_id", "title", "url", "clicks"})
	for i, link := range topLinks.Links {
		cell := "A" + strconv.Itoa(i+2)
		wb.SetSheetRow(linksSheet, cell, &[]any{link.ID, strValue(link.Title), strValue(link.URL), link.Clicks})
	}

	const productsSheet = "Top Products"
	wb.NewSheet(productsSheet)
	wb.SetSheetRow(productsSheet, "A1", &[]any{"product_id", "clicks"})
	for i, product := range topProducts.Products {
		cell := "A" + strconv.Itoa(i+2)
		wb.SetSheetRow(productsSheet, cell, &[]any{product.ProductID, product.Clicks})
	}

	buf := &bytes.Buffer{}
	if err := wb.Write(buf); err != nil {
		return "", nil, NewBusinessError("EXPORT_RENDER_FAILED", "failed to render workbook", err)
	}

	filename := fmt.Sprintf("analytics_%s.xlsx", normalizeRange(rng))
	return filename, buf.Bytes(), nil
}

// sanitizeCSVField keeps exported rows unquoted by stripping field commas
func sanitizeCSVField(s string) string {
	return strings.ReplaceAll(s, ",", " ")
}

// formatCTR prints the rate without trailing zeros, so whole percentages
// render as "100" and an empty period as "0". The rate itself is already
// rounded to one decimal place.
func formatCTR(ctr float64) string {
	return strconv.FormatFloat(ctr, 'f', -1, 64)
}
