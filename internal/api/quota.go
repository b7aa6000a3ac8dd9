package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"nichescout/internal/billing"
)

// userIDHeader carries the caller identity. Authentication proper lives at
// the gateway; the API trusts the header it is handed.
const userIDHeader = "X-User-ID"

const anonymousUserID = "anonymous"

func userID(r *http.Request) string {
	if id := r.Header.Get(userIDHeader); id != "" {
		return id
	}
	return anonymousUserID
}

// quota enforces the caller's daily allowance for a metered feature before
// the handler runs.
func (s *Server) quota(feature billing.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := userID(r)

			sub, err := s.subscriptions.Get(r.Context(), uid)
			if err != nil {
				s.logger.Error("failed to load subscription", zap.String("user", uid), zap.Error(err))
				s.respondWithError(w, http.StatusInternalServerError, "Could not verify subscription")
				return
			}

			used, err := s.usage.IncrementUsage(r.Context(), uid, string(feature))
			if err != nil {
				// A metering outage should not take analysis down with it.
				s.logger.Warn("usage metering unavailable, allowing request",
					zap.String("user", uid), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !billing.Allowed(sub.Plan, feature, used) {
				limit := billing.Limit(sub.Plan, feature)
				s.respondWithError(w, http.StatusTooManyRequests,
					fmt.Sprintf("Daily limit of %d reached for your %s plan. Upgrade for more.", limit, sub.Plan))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
