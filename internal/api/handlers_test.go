package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nichescout/internal/analyzer"
	"nichescout/internal/billing"
	"nichescout/internal/config"
	"nichescout/internal/domain"
	"nichescout/internal/fetcher"
	"nichescout/internal/monitoring"
)

// Shared across tests: prometheus collectors register globally and must not
// be created twice.
var testMetrics = monitoring.NewMetrics()

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	pages map[fetcher.Kind]*fetcher.RawPage
	errs  map[fetcher.Kind]error
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string, kind fetcher.Kind) (*fetcher.RawPage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err, ok := f.errs[kind]; ok {
		return nil, err
	}
	if page, ok := f.pages[kind]; ok {
		return page, nil
	}
	return &fetcher.RawPage{URL: pageURL, HTML: "<html><body></body></html>", Method: fetcher.MethodBrowser}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDashboardStore struct {
	opportunities []domain.Opportunity
	trending      []domain.TrendingProduct
	alerts        []domain.Alert
	markedRead    []int64
}

func (f *fakeDashboardStore) TopOpportunities(_ context.Context, _, _ int) ([]domain.Opportunity, error) {
	return f.opportunities, nil
}

func (f *fakeDashboardStore) TrendingProducts(_ context.Context, _ float64, _ int) ([]domain.TrendingProduct, error) {
	return f.trending, nil
}

func (f *fakeDashboardStore) Alerts(_ context.Context, _ string, _ int) ([]domain.Alert, int, error) {
	unread := 0
	for _, a := range f.alerts {
		if !a.IsRead {
			unread++
		}
	}
	return f.alerts, unread, nil
}

func (f *fakeDashboardStore) MarkAlertRead(_ context.Context, _ string, alertID int64) error {
	f.markedRead = append(f.markedRead, alertID)
	return nil
}

func (f *fakeDashboardStore) Ping(context.Context) error { return nil }

type fakeUsageStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (f *fakeUsageStore) IncrementUsage(_ context.Context, userID, feature string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	key := userID + ":" + feature
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeUsageStore) Ping(context.Context) error { return nil }

type fakeScanTrigger struct {
	running bool
}

func (f *fakeScanTrigger) TriggerScan() bool { return !f.running }
func (f *fakeScanTrigger) Running() bool     { return f.running }

func testServer(t *testing.T, ff *fakeFetcher) (*Server, *fakeDashboardStore) {
	t.Helper()
	cfg := &config.Config{
		ServerPort:         "8080",
		MarketplaceBaseURL: "https://marketplace.test",
		SalesFactor:        10,
		FrontendURL:        "http://localhost:5173",
	}
	svc := analyzer.NewService(cfg, ff, analyzer.NewWeightedScorer(), testMetrics, zap.NewNop())
	store := &fakeDashboardStore{}
	paypal := billing.NewPayPalClient("https://paypal.test", "", "", zap.NewNop())
	srv := NewServer(cfg, svc, &fakeScanTrigger{}, store, &fakeUsageStore{}, billing.NewMemoryStore(), paypal, testMetrics, zap.NewNop())
	return srv, store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeProductRejectsInvalidBody(t *testing.T) {
	ff := &fakeFetcher{}
	srv, _ := testServer(t, ff)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-product", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, ff.callCount())
}

func TestAnalyzeProductRejectsNonProductURL(t *testing.T) {
	ff := &fakeFetcher{}
	srv, _ := testServer(t, ff)

	rec := postJSON(t, srv.Handler(), "/api/analyze-product", domain.AnalyzeURLRequest{URL: "https://marketplace.test/Browse"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	// The URL is rejected before any page is fetched.
	require.Zero(t, ff.callCount())
}

func TestAnalyzeProductReportsFallbackMethod(t *testing.T) {
	ff := &fakeFetcher{pages: map[fetcher.Kind]*fetcher.RawPage{
		fetcher.KindProduct: {
			URL:    "https://marketplace.test/Product/abc",
			HTML:   `<html><body><h1>Fallback Product</h1><p>$4.25 today, 61 ratings, 4.5 out of 5</p></body></html>`,
			Method: fetcher.MethodFallback,
		},
	}}
	srv, _ := testServer(t, ff)

	rec := postJSON(t, srv.Handler(), "/api/analyze-product", domain.AnalyzeURLRequest{URL: "https://marketplace.test/Product/abc"})
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.ProductReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, "Fallback Product", report.Title)
	require.Equal(t, fetcher.MethodFallback, report.ExtractionMethod)
	require.Equal(t, 4.25, report.Price)
	require.Equal(t, 61, report.RatingCount)
	require.Equal(t, 610, report.EstimatedSales)
}

const searchFixture = `<!DOCTYPE html><html><body>
<div class="SearchResultsHeader__headingWithCount"><div>4,200 results</div></div>
<div id="product-row-1">
  <h2><a href="/Product/phonics-1">Phonics Bundle</a></h2>
  <span class="ProductPrice-module__price--a">$5.99</span>
  <div class="RatingsLabel-module__ratingsLabelContainer--b"><div>4.8</div><span>(700)</span></div>
</div>
<div id="product-row-2">
  <h2><a href="/Product/phonics-2">Phonics Games</a></h2>
  <span class="ProductPrice-module__price--a">$6.01</span>
  <div class="RatingsLabel-module__ratingsLabelContainer--b"><div>4.6</div><span>(150)</span></div>
</div>
</body></html>`

func TestAnalyzeKeywordEndToEnd(t *testing.T) {
	ff := &fakeFetcher{pages: map[fetcher.Kind]*fetcher.RawPage{
		fetcher.KindSearch: {URL: "https://marketplace.test/Browse/Search:phonics", HTML: searchFixture, Method: fetcher.MethodBrowser},
	}}
	srv, _ := testServer(t, ff)

	rec := postJSON(t, srv.Handler(), "/api/analyze-keyword", domain.AnalyzeKeywordRequest{Keyword: "phonics"})
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.KeywordReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, "phonics", report.Keyword)
	require.Equal(t, 4200, report.TotalListings)
	require.Equal(t, 6.0, report.AveragePrice)
	require.Equal(t, 4.7, report.AverageRating)
	require.Equal(t, "Low", report.CompetitionTier)
	require.Equal(t, 11, report.CompetitionScore)
	// Low tier 40, price > 5 adds 25, rating > 4 adds 15, under 5000
	// listings adds 20.
	require.Equal(t, 100, report.OpportunityScore)
	require.Len(t, report.TopListings, 2)
	require.Equal(t, "Phonics Bundle", report.TopListings[0].Title)
}

func TestAnalyzeKeywordRejectsEmpty(t *testing.T) {
	ff := &fakeFetcher{}
	srv, _ := testServer(t, ff)

	rec := postJSON(t, srv.Handler(), "/api/analyze-keyword", domain.AnalyzeKeywordRequest{Keyword: ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, ff.callCount())
}

func TestAnalysisErrorMapping(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"readiness timeout", fetcher.ErrReadinessTimeout, http.StatusRequestTimeout},
		{"navigation timeout", fetcher.ErrNavigationTimeout, http.StatusRequestTimeout},
		{"network unavailable", fetcher.ErrNetworkUnavailable, http.StatusServiceUnavailable},
		{"upstream not found", &fetcher.UpstreamError{StatusCode: http.StatusNotFound}, http.StatusNotFound},
		{"upstream forbidden", &fetcher.UpstreamError{StatusCode: http.StatusForbidden}, http.StatusForbidden},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ff := &fakeFetcher{errs: map[fetcher.Kind]error{fetcher.KindSearch: tc.err}}
			srv, _ := testServer(t, ff)

			rec := postJSON(t, srv.Handler(), "/api/analyze-keyword", domain.AnalyzeKeywordRequest{Keyword: "phonics"})
			require.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestQuotaExhaustion(t *testing.T) {
	ff := &fakeFetcher{pages: map[fetcher.Kind]*fetcher.RawPage{
		fetcher.KindSearch: {URL: "u", HTML: searchFixture, Method: fetcher.MethodBrowser},
	}}
	srv, _ := testServer(t, ff)

	// Free plan allows 3 keyword researches per day.
	for i := 0; i < 3; i++ {
		rec := postJSON(t, srv.Handler(), "/api/analyze-keyword", domain.AnalyzeKeywordRequest{Keyword: "phonics"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := postJSON(t, srv.Handler(), "/api/analyze-keyword", domain.AnalyzeKeywordRequest{Keyword: "phonics"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestTriggerScanConflict(t *testing.T) {
	ff := &fakeFetcher{}
	srv, _ := testServer(t, ff)
	srv.scanner = &fakeScanTrigger{running: true}

	rec := postJSON(t, srv.Handler(), "/api/dashboard/scan", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDashboardEndpoints(t *testing.T) {
	ff := &fakeFetcher{}
	srv, store := testServer(t, ff)
	store.opportunities = []domain.Opportunity{{Keyword: "phonics", OpportunityScore: 85}}
	store.alerts = []domain.Alert{{ID: 7, Title: "High opportunity keyword: phonics"}}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/opportunities", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "phonics")

	rec = postJSON(t, srv.Handler(), "/api/dashboard/alerts/7/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int64{7}, store.markedRead)
}

func TestWebhookActivatesSubscription(t *testing.T) {
	ff := &fakeFetcher{}
	srv, _ := testServer(t, ff)

	ctx := context.Background()
	require.NoError(t, srv.subscriptions.Upsert(ctx, &billing.Subscription{
		UserID: "u1", Plan: billing.PlanPro, SubscriptionID: "I-XYZ", Status: "pending",
	}))

	event := map[string]any{
		"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
		"resource":   map[string]any{"id": "I-XYZ"},
	}
	rec := postJSON(t, srv.Handler(), "/api/billing/webhook", event)
	require.Equal(t, http.StatusOK, rec.Code)

	sub, err := srv.subscriptions.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "active", sub.Status)
}

func TestSubscribeWithoutCredentials(t *testing.T) {
	ff := &fakeFetcher{}
	srv, _ := testServer(t, ff)

	rec := postJSON(t, srv.Handler(), "/api/billing/subscribe", subscribeRequest{Plan: "pro"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	ff := &fakeFetcher{}
	srv, _ := testServer(t, ff)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "healthy")
}
