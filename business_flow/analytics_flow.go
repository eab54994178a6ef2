// Package businessflow contains the core business logic and use cases for the storefront platform
package businessflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kaitkan/kaitkan-api/app/dto"
	"github.com/kaitkan/kaitkan-api/models"
	"github.com/kaitkan/kaitkan-api/repository"
	"github.com/kaitkan/kaitkan-api/utils"
)

// AnalyticsFlow handles visit recording and dashboard aggregation
type AnalyticsFlow interface {
	RecordVisit(ctx context.Context, req *dto.RecordVisitRequest, metadata *ClientMetadata) error
	RecordLinkClick(ctx context.Context, linkID uint, metadata *ClientMetadata) error
	RecordProductClick(ctx context.Context, productID uint, metadata *ClientMetadata) error
	Summary(ctx context.Context, userID uint, rng string) (*dto.SummaryResponse, error)
	TopLinks(ctx context.Context, userID uint, rng string) (*dto.TopLinksResponse, error)
	TopProducts(ctx context.Context, userID uint, rng string) (*dto.TopProductsResponse, error)
}

// AnalyticsFlowImpl implements the analytics flow
type AnalyticsFlowImpl struct {
	catalogRepo   repository.CatalogRepository
	linkRepo      repository.LinkRepository
	productRepo   repository.ProductRepository
	pageViewRepo  repository.PageViewRepository
	linkClickRepo repository.LinkClickRepository
	clickRepo     repository.ClickRepository
	ipHashSecret  string
}

// NewAnalyticsFlow creates a new analytics flow
func NewAnalyticsFlow(
	catalogRepo repository.CatalogRepository,
	linkRepo repository.LinkRepository,
	productRepo repository.ProductRepository,
	pageViewRepo repository.PageViewRepository,
	linkClickRepo repository.LinkClickRepository,
	clickRepo repository.ClickRepository,
	ipHashSecret string,
) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		catalogRepo:   catalogRepo,
		linkRepo:      linkRepo,
		productRepo:   productRepo,
		pageViewRepo:  pageViewRepo,
		linkClickRepo: linkClickRepo,
		clickRepo:     clickRepo,
		ipHashSecret:  ipHashSecret,
	}
}

var botUAPattern = regexp.MustCompile(`(?i)bot|spider|crawler|httpclient`)

// sourceRule maps a referrer substring to a canonical traffic source.
// Rules are checked in order; the first hit wins.
type sourceRule struct {
	needles []string
	label   string
}

var sourceRules = []sourceRule{
	{[]string{"instagram"}, "instagram"},
	{[]string{"tiktok"}, "tiktok"},
	{[]string{"facebook", "fb."}, "facebook"},
	{[]string{"wa.me", "whatsapp"}, "whatsapp"},
	{[]string{"x.com", "twitter"}, "x"},
	{[]string{"youtube"}, "youtube"},
	{[]string{"google"}, "google"},
}

var mobileUANeedles = []string{"mobile", "android", "iphone", "ipad"}

// RecordVisit stores one page view per visitor hash per dedup window.
// Bot traffic and repeat hits inside the window are dropped without error so
// the public page never sees a failure.
func (f *AnalyticsFlowImpl) RecordVisit(ctx context.Context, req *dto.RecordVisitRequest, metadata *ClientMetadata) error {
	catalog, err := f.catalogRepo.ByID(ctx, req.CatalogID)
	if err != nil {
		return NewBusinessError("CATALOG_QUERY_FAILED", "failed to look up catalog", err)
	}
	if catalog == nil {
		return NewBusinessError("CATALOG_NOT_FOUND", "catalog not found", ErrCatalogNotFound)
	}

	if metadata != nil && botUAPattern.MatchString(metadata.UserAgent) {
		return nil
	}

	now := utils.UTCNow()
	ipHash := f.hashVisitor(metadata)

	seen, err := f.pageViewRepo.ExistsRecent(ctx, catalog.ID, ipHash, now.Add(-utils.VisitDedupWindow))
	if err != nil {
		return NewBusinessError("VISIT_QUERY_FAILED", "failed to check recent visits", err)
	}
	if seen {
		return nil
	}

	view := &models.PageView{
		CatalogID: catalog.ID,
		IPHash:    ipHash,
		VisitedAt: now,
	}
	if metadata != nil {
		if metadata.UserAgent != "" {
			view.UserAgent = utils.ToPtr(truncate(metadata.UserAgent, 255))
		}
		if metadata.Referrer != "" {
			view.Referrer = utils.ToPtr(truncate(metadata.Referrer, 500))
		}
	}
	if req.UTMSource != "" {
		view.UTMSource = utils.ToPtr(truncate(req.UTMSource, 100))
	}
	if req.UTMMedium != "" {
		view.UTMMedium = utils.ToPtr(truncate(req.UTMMedium, 100))
	}
	if req.UTMCampaign != "" {
		view.UTMCampaign = utils.ToPtr(truncate(req.UTMCampaign, 100))
	}

	if err := f.pageViewRepo.Save(ctx, view); err != nil {
		return NewBusinessError("VISIT_SAVE_FAILED", "failed to record visit", err)
	}

	return nil
}

// RecordLinkClick stores a click on a storefront link and bumps the link's
// running total. Bots are ignored; clicks are not deduplicated.
func (f *AnalyticsFlowImpl) RecordLinkClick(ctx context.Context, linkID uint, metadata *ClientMetadata) error {
	link, err := f.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return NewBusinessError("LINK_QUERY_FAILED", "failed to look up link", err)
	}
	if link == nil {
		return NewBusinessError("LINK_NOT_FOUND", "link not found", ErrLinkNotFound)
	}

	if metadata != nil && botUAPattern.MatchString(metadata.UserAgent) {
		return nil
	}

	click := &models.LinkClick{
		CatalogID: link.CatalogID,
		LinkID:    link.ID,
		IPHash:    f.hashVisitor(metadata),
		ClickedAt: utils.UTCNow(),
	}
	if metadata != nil && metadata.UserAgent != "" {
		click.UserAgent = utils.ToPtr(truncate(metadata.UserAgent, 255))
	}
	if metadata != nil && metadata.Referrer != "" {
		click.Referrer = utils.ToPtr(truncate(metadata.Referrer, 500))
	}

	if err := f.linkClickRepo.Save(ctx, click); err != nil {
		return NewBusinessError("CLICK_SAVE_FAILED", "failed to record click", err)
	}
	if err := f.linkRepo.IncrementClickCount(ctx, link.ID); err != nil {
		return NewBusinessError("CLICK_COUNT_FAILED", "failed to update click count", err)
	}

	return nil
}

// RecordProductClick stores a buy-button tap on a product card
func (f *AnalyticsFlowImpl) RecordProductClick(ctx context.Context, productID uint, metadata *ClientMetadata) error {
	product, err := f.productRepo.ByID(ctx, productID)
	if err != nil {
		return NewBusinessError("PRODUCT_QUERY_FAILED", "failed to look up product", err)
	}
	if product == nil {
		return NewBusinessError("PRODUCT_NOT_FOUND", "product not found", ErrProductNotFound)
	}

	if metadata != nil && botUAPattern.MatchString(metadata.UserAgent) {
		return nil
	}

	click := &models.Click{
		CatalogID: product.CatalogID,
		ProductID: product.ID,
		IPHash:    f.hashVisitor(metadata),
		ClickedAt: utils.UTCNow(),
	}
	if metadata != nil && metadata.UserAgent != "" {
		click.UserAgent = utils.ToPtr(truncate(metadata.UserAgent, 255))
	}

	if err := f.clickRepo.Save(ctx, click); err != nil {
		return NewBusinessError("CLICK_SAVE_FAILED", "failed to record click", err)
	}
	if err := f.productRepo.IncrementClickCount(ctx, product.ID); err != nil {
		return NewBusinessError("CLICK_COUNT_FAILED", "failed to update click count", err)
	}

	return nil
}

// Summary aggregates totals, the zero-filled daily series and the
// source/device breakdown for the owner's dashboard. Daily clicks combine
// link clicks and product clicks; the click-through rate divides that sum by
// views.
func (f *AnalyticsFlowImpl) Summary(ctx context.Context, userID uint, rng string) (*dto.SummaryResponse, error) {
	catalog, days, since, err := f.resolveWindow(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	views, err := f.pageViewRepo.ListSince(ctx, catalog.ID, since)
	if err != nil {
		return nil, NewBusinessError("SUMMARY_QUERY_FAILED", "failed to load views", err)
	}

	linkClickTimes, err := f.linkClickRepo.ListTimesSince(ctx, catalog.ID, since)
	if err != nil {
		return nil, NewBusinessError("SUMMARY_QUERY_FAILED", "failed to load link clicks", err)
	}

	productClickTimes, err := f.clickRepo.ListTimesSince(ctx, catalog.ID, since)
	if err != nil {
		return nil, NewBusinessError("SUMMARY_QUERY_FAILED", "failed to load product clicks", err)
	}

	viewsByDay := make(map[string]int64, days)
	sources := make(map[string]int64)
	var devices dto.DeviceCountsDTO
	for _, v := range views {
		viewsByDay[utils.DateKey(v.VisitedAt)]++
		sources[classifySource(strValue(v.UTMSource), strValue(v.Referrer))]++
		if classifyDevice(strValue(v.UserAgent)) == "mobile" {
			devices.Mobile++
		} else {
			devices.Desktop++
		}
	}

	clicksByDay := make(map[string]int64, days)
	for _, t := range linkClickTimes {
		clicksByDay[utils.DateKey(t)]++
	}
	for _, t := range productClickTimes {
		clicksByDay[utils.DateKey(t)]++
	}

	series := dto.SummarySeriesDTO{
		Labels: make([]string, 0, days),
		Views:  make([]int64, 0, days),
		Clicks: make([]int64, 0, days),
	}
	var totalViews, totalClicks int64
	for i := range days {
		key := utils.DateKey(since.AddDate(0, 0, i))
		series.Labels = append(series.Labels, key)
		series.Views = append(series.Views, viewsByDay[key])
		series.Clicks = append(series.Clicks, clicksByDay[key])
		totalViews += viewsByDay[key]
		totalClicks += clicksByDay[key]
	}

	return &dto.SummaryResponse{
		Range: normalizeRange(rng),
		Totals: dto.SummaryTotalsDTO{
			Views:  totalViews,
			Clicks: totalClicks,
			CTR:    clickThroughRate(totalClicks, totalViews),
		},
		Series: series,
		Breakdown: dto.SummaryBreakdownDTO{
			Sources: sortedSources(sources),
			Devices: devices,
		},
	}, nil
}

// TopLinks returns the ten most-clicked links for the range
func (f *AnalyticsFlowImpl) TopLinks(ctx context.Context, userID uint, rng string) (*dto.TopLinksResponse, error) {
	catalog, _, since, err := f.resolveWindow(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	rows, err := f.linkClickRepo.TopLinksSince(ctx, catalog.ID, since, utils.TopEntriesLimit)
	if err != nil {
		return nil, NewBusinessError("TOP_LINKS_QUERY_FAILED", "failed to load top links", err)
	}

	links := make([]dto.TopLinkDTO, 0, len(rows))
	for _, row := range rows {
		links = append(links, dto.TopLinkDTO{
			ID:     row.LinkID,
			Title:  row.Title,
			URL:    row.URL,
			Clicks: row.Clicks,
		})
	}

	return &dto.TopLinksResponse{Range: normalizeRange(rng), Links: links}, nil
}

// TopProducts returns the ten most-clicked products for the range
func (f *AnalyticsFlowImpl) TopProducts(ctx context.Context, userID uint, rng string) (*dto.TopProductsResponse, error) {
	catalog, _, since, err := f.resolveWindow(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	rows, err := f.clickRepo.TopProductsSince(ctx, catalog.ID, since, utils.TopEntriesLimit)
	if err != nil {
		return nil, NewBusinessError("TOP_PRODUCTS_QUERY_FAILED", "failed to load top products", err)
	}

	products := make([]dto.TopProductDTO, 0, len(rows))
	for _, row := range rows {
		products = append(products, dto.TopProductDTO{
			ProductID: row.ProductID,
			Clicks:    row.Clicks,
		})
	}

	return &dto.TopProductsResponse{Range: normalizeRange(rng), Products: products}, nil
}

// resolveWindow loads the caller's catalog and translates the range token
// into the number of days and the inclusive window start (midnight UTC)
func (f *AnalyticsFlowImpl) resolveWindow(ctx context.Context, userID uint, rng string) (*models.Catalog, int, time.Time, error) {
	catalog, err := f.catalogRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, 0, time.Time{}, NewBusinessError("CATALOG_QUERY_FAILED", "failed to look up catalog", err)
	}
	if catalog == nil {
		return nil, 0, time.Time{}, NewBusinessError("CATALOG_NOT_FOUND", "catalog not found", ErrCatalogNotFound)
	}

	days := rangeDays(rng)
	since := utils.Today().AddDate(0, 0, -(days - 1))
	return catalog, days, since, nil
}

// hashVisitor derives the stored visitor identity from the salted client IP.
// Raw addresses never reach the database.
func (f *AnalyticsFlowImpl) hashVisitor(metadata *ClientMetadata) string {
	ip := ""
	if metadata != nil {
		ip = metadata.IPAddress
	}
	sum := sha256.Sum256([]byte(f.ipHashSecret + ip))
	return hex.EncodeToString(sum[:])
}

// rangeDays maps the range token to a day count; anything unrecognized falls
// back to 7 days
func rangeDays(rng string) int {
	if rng == "30d" {
		return 30
	}
	return 7
}

func normalizeRange(rng string) string {
	if rng == "30d" {
		return "30d"
	}
	return "7d"
}

// sortedSources flattens the source tally into a descending list, breaking
// ties by name so the order is stable
func sortedSources(tally map[string]int64) []dto.SourceCountDTO {
	out := make([]dto.SourceCountDTO, 0, len(tally))
	for name, count := range tally {
		out = append(out, dto.SourceCountDTO{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// clickThroughRate is clicks/views*100 rounded to one decimal, 0 when there
// are no views
func clickThroughRate(clicks, views int64) float64 {
	if views == 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(views)*1000) / 10
}

// classifySource prefers the explicit utm_source tag, then matches the
// referrer against the ordered rules; no referrer means direct traffic
func classifySource(utmSource, referrer string) string {
	if src := strings.ToLower(strings.TrimSpace(utmSource)); src != "" {
		return src
	}

	ref := strings.ToLower(referrer)
	if ref == "" {
		return "direct"
	}

	for _, rule := range sourceRules {
		for _, needle := range rule.needles {
			if strings.Contains(ref, needle) {
				return rule.label
			}
		}
	}

	return "other"
}

// classifyDevice buckets a user agent as mobile or desktop
func classifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, needle := range mobileUANeedles {
		if strings.Contains(ua, needle) {
			return "mobile"
		}
	}
	return "desktop"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
