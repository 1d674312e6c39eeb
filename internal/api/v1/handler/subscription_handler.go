package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SubscriptionHandler handles subscription and usage endpoints plus the
// Stripe webhook.
type SubscriptionHandler struct {
	stripeService *service.StripeService
	usageService  service.UsageService
	validate      *validator.Validate
	logger        zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(stripeService *service.StripeService, usageService service.UsageService, v *validator.Validate, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{stripeService: stripeService, usageService: usageService, validate: v, logger: logger}
}

// RegisterRoutes registers the subscription endpoints. The webhook route is
// unauthenticated; Stripe signs its payloads instead.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/subscriptions", authMw(http.HandlerFunc(h.getSubscription)))
	mux.Handle("/subscriptions/checkout", authMw(http.HandlerFunc(h.checkout)))
	mux.Handle("/subscriptions/cancel", authMw(http.HandlerFunc(h.cancel)))
	mux.Handle("/subscriptions/usage", authMw(http.HandlerFunc(h.usage)))
	mux.HandleFunc("/webhooks/stripe", h.webhook)
}

func (h *SubscriptionHandler) checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	url, err := h.stripeService.CreateCheckoutSession(r.Context(), userID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to create checkout session")
			http.Error(w, "failed to create checkout session", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.CheckoutResponse{URL: url})
}

func (h *SubscriptionHandler) getSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.stripeService.GetSubscription(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to retrieve subscription")
			http.Error(w, "failed to retrieve subscription", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.SubscriptionResponse{
		Plan:              view.Plan,
		Status:            view.Status,
		CurrentPeriodEnd:  view.CurrentPeriodEnd,
		CancelAtPeriodEnd: view.CancelAtPeriodEnd,
	})
}

func (h *SubscriptionHandler) cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.stripeService.RequestCancellation(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNoSubscription):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to request cancellation")
			http.Error(w, "failed to cancel subscription", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *SubscriptionHandler) usage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	snap, err := h.usageService.GetUsage(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to retrieve usage")
			http.Error(w, "failed to retrieve usage", http.StatusInternalServerError)
		}
		return
	}

	remaining := snap.Limit - snap.MonthlyCount
	if remaining < 0 {
		remaining = 0
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.UsageResponse{
		Plan:         snap.Plan,
		MonthlyCount: snap.MonthlyCount,
		TotalCount:   snap.TotalCount,
		Limit:        snap.Limit,
		Remaining:    remaining,
	})
}

func (h *SubscriptionHandler) webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	h.stripeService.HandleWebhook(w, r)
}
