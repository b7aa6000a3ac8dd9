package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"nichescout/internal/billing"
	"nichescout/internal/config"
	"nichescout/internal/domain"
	"nichescout/internal/monitoring"
)

// AnalysisService runs the on-demand analysis pipeline.
type AnalysisService interface {
	AnalyzeProduct(ctx context.Context, pageURL string) (*domain.ProductReport, error)
	AnalyzeKeyword(ctx context.Context, keyword string) (*domain.KeywordReport, error)
	AnalyzeStore(ctx context.Context, pageURL string) (*domain.StoreReport, error)
}

// ScanTrigger exposes the background scanner to the manual scan endpoint.
type ScanTrigger interface {
	TriggerScan() bool
	Running() bool
}

// DashboardStore reads persisted scan results.
type DashboardStore interface {
	TopOpportunities(ctx context.Context, minScore, limit int) ([]domain.Opportunity, error)
	TrendingProducts(ctx context.Context, minGrowth float64, limit int) ([]domain.TrendingProduct, error)
	Alerts(ctx context.Context, userID string, limit int) ([]domain.Alert, int, error)
	MarkAlertRead(ctx context.Context, userID string, alertID int64) error
	Ping(ctx context.Context) error
}

// UsageStore meters per-user feature counters.
type UsageStore interface {
	IncrementUsage(ctx context.Context, userID, feature string) (int64, error)
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config        *config.Config
	router        http.Handler
	httpServer    *http.Server
	analysis      AnalysisService
	scanner       ScanTrigger
	store         DashboardStore
	usage         UsageStore
	subscriptions billing.SubscriptionStore
	paypal        *billing.PayPalClient
	metrics       *monitoring.Metrics
	logger        *zap.Logger
}

func NewServer(cfg *config.Config, analysis AnalysisService, sc ScanTrigger, store DashboardStore, usage UsageStore, subs billing.SubscriptionStore, paypal *billing.PayPalClient, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:        cfg,
		analysis:      analysis,
		scanner:       sc,
		store:         store,
		usage:         usage,
		subscriptions: subs,
		paypal:        paypal,
		metrics:       m,
		logger:        l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.config.ServerPort),
		Handler: s.router,
		// Analyze requests hold the connection while a headless browser
		// renders the page, so the write timeout must cover a full fetch.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
