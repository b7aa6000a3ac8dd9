package scanner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"nichescout/internal/config"
	"nichescout/internal/domain"
	"nichescout/internal/monitoring"
)

// BroadcastUserID owns alerts raised by the scanner itself rather than a
// specific user.
const BroadcastUserID = "system"

// AlertScoreThreshold is the opportunity score above which a scan raises an
// alert.
const AlertScoreThreshold = 70

// trendingGrowthFloor filters products whose derived growth rate is too
// small to be worth persisting.
const trendingGrowthFloor = 10.0

// KeywordAnalyzer is the slice of the analysis service the scanner uses.
type KeywordAnalyzer interface {
	AnalyzeKeyword(ctx context.Context, keyword string) (*domain.KeywordReport, error)
}

// ResultStore persists what a scan finds.
type ResultStore interface {
	SaveOpportunity(ctx context.Context, o *domain.Opportunity) error
	SaveTrendingProduct(ctx context.Context, p *domain.TrendingProduct) error
	SaveAlert(ctx context.Context, a *domain.Alert) error
}

// DedupStore remembers recently scanned keywords.
type DedupStore interface {
	IsRecentlyScanned(ctx context.Context, keyword string) (bool, error)
	MarkScanned(ctx context.Context, keyword string, ttl time.Duration) error
}

// Scanner walks the monitored keyword list on a fixed interval. At most one
// sweep runs at a time; overlapping triggers are dropped, not queued.
type Scanner struct {
	cfg      *config.Config
	analyzer KeywordAnalyzer
	results  ResultStore
	dedup    DedupStore
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	limiter  *rate.Limiter

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

func New(cfg *config.Config, a KeywordAnalyzer, results ResultStore, dedup DedupStore, m *monitoring.Metrics, l *zap.Logger) *Scanner {
	return &Scanner{
		cfg:      cfg,
		analyzer: a,
		results:  results,
		dedup:    dedup,
		metrics:  m,
		logger:   l,
		limiter:  rate.NewLimiter(rate.Every(time.Duration(cfg.ScanRateLimitSec)*time.Second), 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic sweep loop. The first sweep runs immediately.
func (s *Scanner) Start() {
	go func() {
		defer close(s.done)
		interval := time.Duration(s.cfg.ScanIntervalHours) * time.Hour
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.TriggerScan()
		for {
			select {
			case <-ticker.C:
				s.TriggerScan()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop. Does not interrupt a sweep already in flight.
func (s *Scanner) Stop() {
	close(s.stop)
	<-s.done
}

// TriggerScan starts a sweep in the background unless one is already
// running. Reports whether a sweep was started.
func (s *Scanner) TriggerScan() bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("scan already in progress, skipping trigger")
		s.metrics.IncScans("skipped")
		return false
	}
	go func() {
		defer s.running.Store(false)
		s.sweep(context.Background())
	}()
	return true
}

// Running reports whether a sweep is currently in flight.
func (s *Scanner) Running() bool {
	return s.running.Load()
}

func (s *Scanner) sweep(ctx context.Context) {
	keywords := s.cfg.ScanKeywordList()
	dedupTTL := time.Duration(s.cfg.ScanDedupHours) * time.Hour
	s.logger.Info("keyword sweep starting", zap.Int("keywords", len(keywords)))

	for _, keyword := range keywords {
		select {
		case <-s.stop:
			s.logger.Info("keyword sweep interrupted by shutdown")
			return
		default:
		}

		recent, err := s.dedup.IsRecentlyScanned(ctx, keyword)
		if err != nil {
			s.logger.Warn("dedup check failed", zap.String("keyword", keyword), zap.Error(err))
		} else if recent {
			s.logger.Debug("keyword scanned recently, skipping", zap.String("keyword", keyword))
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		if err := s.scanKeyword(ctx, keyword); err != nil {
			s.metrics.IncScans("failure")
			s.logger.Error("keyword scan failed", zap.String("keyword", keyword), zap.Error(err))
			continue
		}
		s.metrics.IncScans("success")

		if err := s.dedup.MarkScanned(ctx, keyword, dedupTTL); err != nil {
			s.logger.Warn("failed to mark keyword scanned", zap.String("keyword", keyword), zap.Error(err))
		}
	}
	s.logger.Info("keyword sweep finished")
}

func (s *Scanner) scanKeyword(ctx context.Context, keyword string) error {
	report, err := s.analyzer.AnalyzeKeyword(ctx, keyword)
	if err != nil {
		return err
	}

	if err := s.results.SaveOpportunity(ctx, &domain.Opportunity{
		Keyword:          report.Keyword,
		TotalListings:    report.TotalListings,
		AveragePrice:     report.AveragePrice,
		AverageRating:    report.AverageRating,
		CompetitionTier:  report.CompetitionTier,
		CompetitionScore: report.CompetitionScore,
		OpportunityScore: report.OpportunityScore,
	}); err != nil {
		return fmt.Errorf("save opportunity: %w", err)
	}

	for _, l := range report.TopListings {
		growth := growthRate(l.RatingCount)
		if growth <= trendingGrowthFloor {
			continue
		}
		if err := s.results.SaveTrendingProduct(ctx, &domain.TrendingProduct{
			ProductURL:    l.URL,
			Title:         l.Title,
			Price:         l.Price,
			StoreName:     l.SellerName,
			RatingCount:   l.RatingCount,
			AverageRating: l.AverageRating,
			GrowthRate:    growth,
			Tags:          l.Tags,
		}); err != nil {
			s.logger.Warn("failed to save trending product",
				zap.String("url", l.URL), zap.Error(err))
		}
	}

	if report.OpportunityScore > AlertScoreThreshold {
		if err := s.results.SaveAlert(ctx, &domain.Alert{
			UserID:      BroadcastUserID,
			AlertType:   "opportunity",
			Title:       fmt.Sprintf("High opportunity keyword: %s", report.Keyword),
			Description: fmt.Sprintf("%q scored %d with %s competition", report.Keyword, report.OpportunityScore, report.CompetitionTier),
			Data: map[string]any{
				"keyword":           report.Keyword,
				"opportunity_score": report.OpportunityScore,
				"competition_level": report.CompetitionTier,
			},
		}); err != nil {
			s.logger.Warn("failed to save alert", zap.String("keyword", keyword), zap.Error(err))
		}
	}
	return nil
}

// growthRate derives a growth proxy from the absolute rating count. Counts
// at or below the floor of 50 ratings map to zero.
func growthRate(ratingCount int) float64 {
	g := (float64(ratingCount) - 50) / 5
	if g < 0 {
		return 0
	}
	return g
}
