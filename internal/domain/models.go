package domain

import "time"

// Listing is one marketplace product entry, extracted from a single page
// load. Numeric fields use their zero value as the "unknown" sentinel; a
// listing is never mutated after extraction.
type Listing struct {
	Title         string   `json:"title"`
	URL           string   `json:"url,omitempty"`
	Price         float64  `json:"price"`
	RatingCount   int      `json:"ratingsCount"`
	AverageRating float64  `json:"averageRating"`
	SellerName    string   `json:"storeName,omitempty"`
	SellerURL     string   `json:"storeUrl,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	IsNew         bool     `json:"isNew,omitempty"`

	// Derived from RatingCount and Price via the configured sales factor.
	EstimatedSales   int     `json:"estimatedSales"`
	EstimatedRevenue float64 `json:"estimatedRevenue"`
}

// ProductReport is the analyze-product response: a single listing plus the
// detail-page-only fields.
type ProductReport struct {
	Listing

	Description      string   `json:"description,omitempty"`
	ImageURL         string   `json:"image,omitempty"`
	DateAdded        string   `json:"dateAdded,omitempty"`
	PageCount        int      `json:"pageDetails,omitempty"`
	CCSS             []string `json:"ccss,omitempty"`
	ExtractionMethod string   `json:"extractionMethod"`
}

// KeywordCount is one entry of a tag frequency table.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// KeywordReport aggregates one search term.
type KeywordReport struct {
	Keyword          string         `json:"keyword"`
	TotalListings    int            `json:"totalProducts"`
	AveragePrice     float64        `json:"averagePrice"`
	AverageRating    float64        `json:"averageRating"`
	CompetitionTier  string         `json:"competitionLevel"`
	CompetitionScore int            `json:"competitionScore"`
	OpportunityScore int            `json:"opportunityScore,omitempty"`
	TopListings      []Listing      `json:"topProducts"`
	RelatedKeywords  []KeywordCount `json:"relatedKeywords"`
}

// StoreReport aggregates one seller storefront.
type StoreReport struct {
	SellerName              string         `json:"storeName,omitempty"`
	About                   string         `json:"about,omitempty"`
	AverageRating           float64        `json:"averageRating"`
	TotalListings           int            `json:"totalProducts"`
	Listings                []Listing      `json:"products"`
	TotalEstimatedSales     int            `json:"totalEstimatedSales"`
	TotalEstimatedRevenue   float64        `json:"totalEstimatedRevenue"`
	MonthlyEstimatedRevenue float64        `json:"monthlyEstimatedRevenue"`
	TopListings             []Listing      `json:"topProducts"`
	NewListings             []Listing      `json:"newProducts"`
	TopKeywords             []KeywordCount `json:"topKeywords"`
}

// Opportunity is a persisted keyword scan result.
type Opportunity struct {
	ID               int64     `json:"id"`
	Keyword          string    `json:"keyword"`
	TotalListings    int       `json:"total_products"`
	AveragePrice     float64   `json:"average_price"`
	AverageRating    float64   `json:"average_rating"`
	CompetitionTier  string    `json:"competition_level"`
	CompetitionScore int       `json:"competition_score"`
	OpportunityScore int       `json:"opportunity_score"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TrendingProduct is a persisted product whose rating count is growing.
type TrendingProduct struct {
	ID            int64     `json:"id"`
	ProductURL    string    `json:"product_url"`
	Title         string    `json:"title"`
	Price         float64   `json:"price"`
	StoreName     string    `json:"store_name"`
	RatingCount   int       `json:"ratings_count"`
	AverageRating float64   `json:"average_rating"`
	GrowthRate    float64   `json:"growth_rate"`
	Tags          []string  `json:"tags"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Alert is a persisted per-user notification.
type Alert struct {
	ID          int64          `json:"id"`
	UserID      string         `json:"user_id"`
	AlertType   string         `json:"alert_type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
	IsRead      bool           `json:"is_read"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AnalyzeURLRequest is the payload for the product and store endpoints.
type AnalyzeURLRequest struct {
	URL string `json:"url"`
}

// AnalyzeKeywordRequest is the payload for the keyword endpoint.
type AnalyzeKeywordRequest struct {
	Keyword string `json:"keyword"`
}
