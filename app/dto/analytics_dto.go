// Package dto contains request and response structures for the API
package dto

// RecordVisitRequest carries the attribution a storefront page reports on load.
// IP, user agent and referrer come from the request itself, not the body.
type RecordVisitRequest struct {
	CatalogID   uint   `json:"catalog_id" validate:"required,min=1" example:"1"`
	UTMSource   string `json:"utm_source" validate:"omitempty,max=100" example:"instagram"`
	UTMMedium   string `json:"utm_medium" validate:"omitempty,max=100" example:"social"`
	UTMCampaign string `json:"utm_campaign" validate:"omitempty,max=100" example:"ramadan-sale"`
}

// SummaryTotalsDTO is the headline block of the summary report
type SummaryTotalsDTO struct {
	Views  int64   `json:"views" example:"321"`
	Clicks int64   `json:"clicks" example:"54"`
	CTR    float64 `json:"ctr" example:"16.8"`
}

// SummarySeriesDTO holds the parallel daily series, oldest day first,
// zero-filled for days without events
type SummarySeriesDTO struct {
	Labels []string `json:"labels" example:"2024-01-15"`
	Views  []int64  `json:"views" example:"42"`
	Clicks []int64  `json:"clicks" example:"7"`
}

// SourceCountDTO is one traffic source with its visit count
type SourceCountDTO struct {
	Name  string `json:"name" example:"instagram"`
	Count int64  `json:"count" example:"120"`
}

// DeviceCountsDTO splits visits by device class
type DeviceCountsDTO struct {
	Mobile  int64 `json:"mobile" example:"200"`
	Desktop int64 `json:"desktop" example:"121"`
}

// SummaryBreakdownDTO classifies the period's visits
type SummaryBreakdownDTO struct {
	Sources []SourceCountDTO `json:"sources"`
	Devices DeviceCountsDTO  `json:"devices"`
}

// SummaryResponse is the dashboard report for a period
type SummaryResponse struct {
	Range     string              `json:"range" example:"7d"`
	Totals    SummaryTotalsDTO    `json:"totals"`
	Series    SummarySeriesDTO    `json:"series"`
	Breakdown SummaryBreakdownDTO `json:"breakdown"`
}

// TopLinkDTO is one row of the most-clicked links report. Title and URL are
// null when the link has been deleted since the clicks were recorded.
type TopLinkDTO struct {
	ID     uint    `json:"id" example:"3"`
	Title  *string `json:"title" example:"Katalog Shopee"`
	URL    *string `json:"url" example:"https://shopee.co.id/toko"`
	Clicks int64   `json:"clicks" example:"21"`
}

// TopProductDTO is one row of the most-clicked products report
type TopProductDTO struct {
	ProductID uint  `json:"product_id" example:"8"`
	Clicks    int64 `json:"clicks" example:"13"`
}

// TopLinksResponse wraps the top links report
type TopLinksResponse struct {
	Range string       `json:"range" example:"7d"`
	Links []TopLinkDTO `json:"links"`
}

// TopProductsResponse wraps the top products report
type TopProductsResponse struct {
	Range    string          `json:"range" example:"7d"`
	Products []TopProductDTO `json:"products"`
}
