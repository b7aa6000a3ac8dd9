package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"nichescout/internal/billing"
)

type subscribeRequest struct {
	Plan string `json:"plan"` // "pro" or "expert"
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subscriptions.Get(r.Context(), userID(r))
	if err != nil {
		s.logger.Error("failed to load subscription", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not load subscription")
		return
	}
	s.respondWithJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.paypal.Configured() {
		s.respondWithError(w, http.StatusServiceUnavailable, "Billing is not configured")
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var plan billing.Plan
	var planID string
	switch req.Plan {
	case string(billing.PlanPro):
		plan, planID = billing.PlanPro, s.config.PayPalProPlanID
	case string(billing.PlanExpert):
		plan, planID = billing.PlanExpert, s.config.PayPalExpertPlanID
	default:
		s.respondWithError(w, http.StatusBadRequest, "Unknown plan")
		return
	}
	if planID == "" {
		s.respondWithError(w, http.StatusServiceUnavailable, "Plan is not configured")
		return
	}

	returnURL := s.config.FrontendURL + "/billing/success"
	cancelURL := s.config.FrontendURL + "/billing/cancelled"
	result, err := s.paypal.CreateSubscription(r.Context(), planID, returnURL, cancelURL)
	if err != nil {
		s.logger.Error("failed to create subscription", zap.Error(err))
		s.respondWithError(w, http.StatusBadGateway, "Could not create subscription")
		return
	}

	// Recorded as pending until the activation webhook arrives.
	uid := userID(r)
	if err := s.subscriptions.Upsert(r.Context(), &billing.Subscription{
		UserID:         uid,
		Plan:           plan,
		SubscriptionID: result.SubscriptionID,
		Status:         "pending",
	}); err != nil {
		s.logger.Error("failed to record subscription", zap.String("user", uid), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not record subscription")
		return
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

// handleConfirmSubscription checks the subscription's status with PayPal
// after the user returns from approval and activates it locally if PayPal
// reports it active. The webhook remains the source of truth for later
// lifecycle changes.
func (s *Server) handleConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	if !s.paypal.Configured() {
		s.respondWithError(w, http.StatusServiceUnavailable, "Billing is not configured")
		return
	}

	uid := userID(r)
	sub, err := s.subscriptions.Get(r.Context(), uid)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Could not load subscription")
		return
	}
	if sub.SubscriptionID == "" {
		s.respondWithError(w, http.StatusBadRequest, "No pending subscription")
		return
	}

	status, err := s.paypal.SubscriptionStatus(r.Context(), sub.SubscriptionID)
	if err != nil {
		s.logger.Error("failed to fetch subscription status", zap.Error(err))
		s.respondWithError(w, http.StatusBadGateway, "Could not confirm subscription")
		return
	}

	if status == "ACTIVE" {
		sub.Status = "active"
		if err := s.subscriptions.Upsert(r.Context(), sub); err != nil {
			s.respondWithError(w, http.StatusInternalServerError, "Could not record subscription")
			return
		}
	}
	s.respondWithJSON(w, http.StatusOK, sub)
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	sub, err := s.subscriptions.Get(r.Context(), uid)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Could not load subscription")
		return
	}
	if sub.SubscriptionID == "" {
		s.respondWithError(w, http.StatusBadRequest, "No active subscription")
		return
	}

	if err := s.paypal.CancelSubscription(r.Context(), sub.SubscriptionID, "User requested cancellation"); err != nil {
		s.logger.Error("failed to cancel subscription", zap.Error(err))
		s.respondWithError(w, http.StatusBadGateway, "Could not cancel subscription")
		return
	}

	sub.Status = "cancelled"
	sub.Plan = billing.PlanFree
	if err := s.subscriptions.Upsert(r.Context(), sub); err != nil {
		s.logger.Error("failed to record cancellation", zap.String("user", uid), zap.Error(err))
	}
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// handlePayPalWebhook applies subscription lifecycle events. PayPal retries
// on non-2xx, so persistent processing failures surface as 500s.
func (s *Server) handlePayPalWebhook(w http.ResponseWriter, r *http.Request) {
	var event billing.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if err := billing.ApplyWebhook(r.Context(), s.subscriptions, &event, s.logger); err != nil {
		s.logger.Error("failed to apply webhook", zap.String("event", event.EventType), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not process event")
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
