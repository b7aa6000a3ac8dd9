package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nichescout/internal/billing"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(s.corsMiddleware)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/health", s.handleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.With(s.quota(billing.FeatureProductAnalysis)).
			Post("/analyze-product", s.handleAnalyzeProduct)
		r.With(s.quota(billing.FeatureKeywordResearch)).
			Post("/analyze-keyword", s.handleAnalyzeKeyword)
		r.With(s.quota(billing.FeatureStoreAnalysis)).
			Post("/analyze-store", s.handleAnalyzeStore)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/opportunities", s.handleOpportunities)
			r.Get("/trending", s.handleTrending)
			r.Get("/alerts", s.handleAlerts)
			r.Post("/alerts/{alertID}/read", s.handleMarkAlertRead)
			r.Post("/scan", s.handleTriggerScan)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Get("/subscription", s.handleGetSubscription)
			r.Post("/subscribe", s.handleSubscribe)
			r.Post("/confirm", s.handleConfirmSubscription)
			r.Post("/cancel", s.handleCancelSubscription)
			r.Post("/webhook", s.handlePayPalWebhook)
		})
	})

	return r
}

// corsMiddleware allows the configured frontend origin to call the API.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.config.FrontendURL)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
