package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"nichescout/internal/domain"
	"nichescout/internal/fetcher"
)

func (s *Server) handleAnalyzeProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		s.respondWithError(w, http.StatusBadRequest, "URL is required")
		return
	}

	report, err := s.analysis.AnalyzeProduct(r.Context(), req.URL)
	if err != nil {
		s.respondWithAnalysisError(w, "product", req.URL, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyzeKeyword(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Keyword == "" {
		s.respondWithError(w, http.StatusBadRequest, "Keyword is required")
		return
	}

	report, err := s.analysis.AnalyzeKeyword(r.Context(), req.Keyword)
	if err != nil {
		s.respondWithAnalysisError(w, "keyword", req.Keyword, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyzeStore(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		s.respondWithError(w, http.StatusBadRequest, "URL is required")
		return
	}

	report, err := s.analysis.AnalyzeStore(r.Context(), req.URL)
	if err != nil {
		s.respondWithAnalysisError(w, "store", req.URL, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.store.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.usage.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	isHealthy := healthStatus["postgres"] == "healthy" && healthStatus["redis"] == "healthy"
	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}

	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// respondWithAnalysisError maps pipeline failures onto HTTP statuses. Slow
// upstream pages are the client's problem to retry, not a server fault.
func (s *Server) respondWithAnalysisError(w http.ResponseWriter, kind, input string, err error) {
	s.logger.Error("analysis failed",
		zap.String("kind", kind),
		zap.String("input", input),
		zap.Error(err))

	var upstream *fetcher.UpstreamError
	switch {
	case errors.Is(err, fetcher.ErrInvalidInput):
		s.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fetcher.ErrNavigationTimeout), errors.Is(err, fetcher.ErrReadinessTimeout):
		s.respondWithError(w, http.StatusRequestTimeout, "The marketplace page took too long to load. Please try again.")
	case errors.Is(err, fetcher.ErrNetworkUnavailable):
		s.respondWithError(w, http.StatusServiceUnavailable, "Could not reach the marketplace. Please try again later.")
	case errors.As(err, &upstream):
		s.respondWithError(w, upstream.StatusCode, "The marketplace rejected the request.")
	default:
		s.respondWithError(w, http.StatusInternalServerError, "Analysis failed unexpectedly.")
	}
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"message": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
