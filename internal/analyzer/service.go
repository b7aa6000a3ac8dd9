package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nichescout/internal/config"
	"nichescout/internal/domain"
	"nichescout/internal/extractor"
	"nichescout/internal/fetcher"
	"nichescout/internal/monitoring"
)

// Service runs the full analysis pipeline: fetch, extract, aggregate, score.
type Service struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	scorer  OpportunityScorer
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewService(cfg *config.Config, f fetcher.Fetcher, scorer OpportunityScorer, m *monitoring.Metrics, l *zap.Logger) *Service {
	return &Service{cfg: cfg, fetcher: f, scorer: scorer, metrics: m, logger: l}
}

// AnalyzeProduct fetches one product detail page and extracts its listing.
func (s *Service) AnalyzeProduct(ctx context.Context, pageURL string) (*domain.ProductReport, error) {
	if !strings.Contains(pageURL, "/Product/") {
		return nil, fmt.Errorf("%w: not a product URL", fetcher.ErrInvalidInput)
	}
	defer s.observe("product", time.Now())

	page, err := s.fetcher.Fetch(ctx, pageURL, fetcher.KindProduct)
	if err != nil {
		return nil, err
	}
	report, err := extractor.Product(page, s.cfg.SalesFactor)
	if err != nil {
		return nil, err
	}
	s.logger.Info("product analyzed",
		zap.String("url", pageURL),
		zap.String("method", report.ExtractionMethod),
		zap.Int("ratings", report.RatingCount))
	return report, nil
}

// AnalyzeKeyword fetches the search results for a keyword and aggregates them
// into a scored report.
func (s *Service) AnalyzeKeyword(ctx context.Context, keyword string) (*domain.KeywordReport, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword cannot be empty", fetcher.ErrInvalidInput)
	}
	defer s.observe("keyword", time.Now())

	page, err := s.fetcher.Fetch(ctx, fetcher.SearchURL(s.cfg.MarketplaceBaseURL, keyword), fetcher.KindSearch)
	if err != nil {
		return nil, err
	}
	search, err := extractor.Search(page, s.cfg.SalesFactor)
	if err != nil {
		return nil, err
	}

	total := search.TotalListings
	if total == 0 {
		total = len(search.Listings)
	}
	tier, compScore, err := ScoreCompetition(total)
	if err != nil {
		return nil, err
	}

	report := &domain.KeywordReport{
		Keyword:          keyword,
		TotalListings:    total,
		AveragePrice:     AveragePrice(search.Listings),
		AverageRating:    AverageRating(search.Listings),
		CompetitionTier:  string(tier),
		CompetitionScore: compScore,
		TopListings:      TopListings(search.Listings),
		RelatedKeywords:  RelatedKeywords(search.Listings),
	}
	report.OpportunityScore, err = s.scorer.Score(OpportunityInput{
		Tier:          tier,
		AveragePrice:  report.AveragePrice,
		AverageRating: report.AverageRating,
		TotalListings: total,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("keyword analyzed",
		zap.String("keyword", keyword),
		zap.Int("total", total),
		zap.String("competition", report.CompetitionTier),
		zap.Int("opportunity", report.OpportunityScore))
	return report, nil
}

// AnalyzeStore fetches a storefront and aggregates its listings into a
// revenue-estimate report.
func (s *Service) AnalyzeStore(ctx context.Context, pageURL string) (*domain.StoreReport, error) {
	if !strings.Contains(pageURL, "/store/") {
		return nil, fmt.Errorf("%w: not a store URL", fetcher.ErrInvalidInput)
	}
	defer s.observe("store", time.Now())

	page, err := s.fetcher.Fetch(ctx, pageURL, fetcher.KindStore)
	if err != nil {
		return nil, err
	}
	store, err := extractor.Store(page, s.cfg.SalesFactor)
	if err != nil {
		return nil, err
	}

	total := store.DeclaredListingCount
	if total == 0 {
		total = len(store.Listings)
	}
	sales, revenue := Totals(store.Listings)

	report := &domain.StoreReport{
		SellerName:              store.SellerName,
		About:                   store.About,
		AverageRating:           store.AverageRating,
		TotalListings:           total,
		Listings:                store.Listings,
		TotalEstimatedSales:     sales,
		TotalEstimatedRevenue:   round(revenue, 2),
		MonthlyEstimatedRevenue: round(revenue/12, 2),
		TopListings:             TopListings(store.Listings),
		NewListings:             NewListings(store.Listings),
		TopKeywords:             RelatedKeywords(store.Listings),
	}

	s.logger.Info("store analyzed",
		zap.String("url", pageURL),
		zap.String("store", store.SellerName),
		zap.Int("listings", len(store.Listings)))
	return report, nil
}

func (s *Service) observe(kind string, start time.Time) {
	s.metrics.ObserveAnalyze(kind, time.Since(start).Seconds())
}
