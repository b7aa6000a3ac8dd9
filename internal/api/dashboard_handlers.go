package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nichescout/internal/domain"
)

// Dashboard query cutoffs.
const (
	opportunityMinScore = 60
	opportunityLimit    = 6
	trendingMinGrowth   = 30.0
	trendingLimit       = 10
	alertsLimit         = 20
)

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := s.store.TopOpportunities(r.Context(), opportunityMinScore, opportunityLimit)
	if err != nil {
		s.logger.Error("failed to load opportunities", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not load opportunities")
		return
	}
	if opportunities == nil {
		opportunities = []domain.Opportunity{}
	}
	s.respondWithJSON(w, http.StatusOK, map[string]any{"opportunities": opportunities})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	trending, err := s.store.TrendingProducts(r.Context(), trendingMinGrowth, trendingLimit)
	if err != nil {
		s.logger.Error("failed to load trending products", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not load trending products")
		return
	}
	if trending == nil {
		trending = []domain.TrendingProduct{}
	}
	s.respondWithJSON(w, http.StatusOK, map[string]any{"trending": trending})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, unread, err := s.store.Alerts(r.Context(), userID(r), alertsLimit)
	if err != nil {
		s.logger.Error("failed to load alerts", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not load alerts")
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	s.respondWithJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "unread": unread})
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	alertID, err := strconv.ParseInt(chi.URLParam(r, "alertID"), 10, 64)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid alert id")
		return
	}
	if err := s.store.MarkAlertRead(r.Context(), userID(r), alertID); err != nil {
		s.respondWithError(w, http.StatusNotFound, "Alert not found")
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleTriggerScan(w http.ResponseWriter, r *http.Request) {
	if !s.scanner.TriggerScan() {
		s.respondWithJSON(w, http.StatusConflict, map[string]string{"message": "A scan is already in progress"})
		return
	}
	s.respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Scan started"})
}
