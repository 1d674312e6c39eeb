package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	subscriptionpkg "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrInvalidPlan is returned when checkout is requested for a plan without a
// configured price.
var ErrInvalidPlan = errors.New("invalid plan")

// errUnknownAccount marks webhook events that reference no local user. Such
// events are dropped, not retried; redelivery cannot resolve them.
var errUnknownAccount = errors.New("no local account for event")

// StripeService manages Stripe integration: checkout, cancellation, the live
// subscription view and webhook-driven reconciliation.
type StripeService struct {
	cfg           *config.Config
	plans         *PlanConfig
	userRepo      repository.UserRepository
	subSvc        SubscriptionService
	cancelTimeout time.Duration
	logger        zerolog.Logger
}

// NewStripeService initializes the Stripe key and returns the service with a
// scoped logger.
func NewStripeService(cfg *config.Config, plans *PlanConfig, userRepo repository.UserRepository, subSvc SubscriptionService, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	return &StripeService{
		cfg:           cfg,
		plans:         plans,
		userRepo:      userRepo,
		subSvc:        subSvc,
		cancelTimeout: time.Duration(cfg.StripeCancelTimeoutSec) * time.Second,
		logger:        logger.With().Str("service", "StripeService").Logger(),
	}
}

// getUserIDFromEvent resolves the local user from webhook metadata or the
// Stripe customer ID.
func (s *StripeService) getUserIDFromEvent(ctx context.Context, metadata map[string]string, customerID string) (string, error) {
	if userID, ok := metadata["user_id"]; ok && userID != "" {
		return userID, nil
	}
	if customerID == "" {
		return "", errUnknownAccount
	}
	u, err := s.userRepo.GetUserByStripeCustomerID(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("lookup user by stripe customer: %w", err)
	}
	if u == nil {
		return "", errUnknownAccount
	}
	return u.UserID, nil
}

// GetOrCreateCustomer ensures a Stripe customer exists for a user.
func (s *StripeService) GetOrCreateCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Params:   stripe.Params{Context: ctx},
		Email:    stripe.String(user.Email),
		Name:     stripe.String(user.Name),
		Metadata: map[string]string{"user_id": user.UserID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.userRepo.UpdateStripeCustomerID(ctx, user.UserID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to store stripe customer id")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession creates a subscription-mode Checkout session for the
// requested paid plan and returns its URL.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID, plan string) (string, error) {
	priceID, ok := s.plans.PriceFor(plan)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidPlan, plan)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	customerID, err := s.GetOrCreateCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	sessParams := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Customer:   stripe.String(customerID),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(priceID), Quantity: stripe.Int64(1)}},
		Mode:       stripe.String(stripe.CheckoutSessionModeSubscription),
		SuccessURL: stripe.String(s.cfg.ClientURL + "/dashboard?success=true"),
		CancelURL:  stripe.String(s.cfg.ClientURL + "/subscription?cancelled=true"),
		Metadata:   map[string]string{"user_id": userID, "plan": plan},
	}
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("plan", plan).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// RequestCancellation asks Stripe to cancel the subscription at period end.
// The local flag is set only after Stripe acknowledges; a timeout leaves local
// state untouched so the caller can retry.
func (s *StripeService) RequestCancellation(ctx context.Context, userID string) error {
	_, subID, err := s.subSvc.LocalView(ctx, userID)
	if err != nil {
		return err
	}
	if subID == nil || *subID == "" {
		return ErrNoSubscription
	}

	ctx, cancel := context.WithTimeout(ctx, s.cancelTimeout)
	defer cancel()

	params := &stripe.SubscriptionParams{
		Params:            stripe.Params{Context: ctx},
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	if _, err := subscriptionpkg.Update(*subID, params); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("subscription_id", *subID).Msg("Stripe cancellation request failed")
		return fmt.Errorf("stripe cancel at period end: %w", err)
	}

	return s.subSvc.MarkCancelAtPeriodEnd(ctx, userID)
}

// GetSubscription reports the user's billing state, preferring a live Stripe
// lookup when a subscription reference exists and falling back to the local
// view when the lookup fails.
func (s *StripeService) GetSubscription(ctx context.Context, userID string) (*model.SubscriptionView, error) {
	view, subID, err := s.subSvc.LocalView(ctx, userID)
	if err != nil {
		return nil, err
	}
	if subID == nil || *subID == "" {
		return view, nil
	}

	sub, err := subscriptionpkg.Get(*subID, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Str("subscription_id", *subID).Msg("Live subscription lookup failed, serving local view")
		return view, nil
	}

	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		view.Status = model.BillingActive
	case stripe.SubscriptionStatusCanceled:
		view.Status = model.BillingCancelled
	}
	view.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	if sub.CancelAtPeriodEnd {
		view.Status = model.BillingCancelled
	}
	if len(sub.Items.Data) > 0 {
		end := time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0)
		view.CurrentPeriodEnd = &end
	}
	return view, nil
}

// snapshotFromSubscription extracts the authoritative reconciliation snapshot
// from a Stripe subscription object.
func snapshotFromSubscription(sub *stripe.Subscription) (SubscriptionSnapshot, error) {
	if len(sub.Items.Data) == 0 {
		return SubscriptionSnapshot{}, fmt.Errorf("subscription %s has no items", sub.ID)
	}
	item := sub.Items.Data[0]
	if item.Price == nil || item.Price.ID == "" {
		return SubscriptionSnapshot{}, fmt.Errorf("subscription %s has no price", sub.ID)
	}
	snap := SubscriptionSnapshot{
		SubscriptionID:    sub.ID,
		PriceID:           item.Price.ID,
		Status:            string(sub.Status),
		CurrentPeriodEnd:  time.Unix(item.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		snap.CustomerID = sub.Customer.ID
	}
	return snap, nil
}

// HandleWebhook processes Stripe webhook events. Signature failures and
// malformed payloads get a 4xx with no mutation; persistence failures get a
// 5xx so Stripe redelivers; events for unknown accounts are logged and
// acknowledged.
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	ctx := r.Context()
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session payload")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		if cs.Subscription == nil || cs.Subscription.ID == "" {
			// One-time payment sessions carry no subscription to reconcile.
			w.WriteHeader(http.StatusOK)
			return
		}
		sub, err := subscriptionpkg.Get(cs.Subscription.ID, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", cs.Subscription.ID).Msg("Failed to fetch subscription details")
			http.Error(w, "failed to fetch subscription details", http.StatusInternalServerError)
			return
		}
		s.reconcileSubscription(ctx, w, cs.Metadata, sub)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			s.logger.Error().Err(err).Msg("Invalid subscription payload")
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		s.reconcileSubscription(ctx, w, sub.Metadata, &sub)

	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			s.logger.Error().Err(err).Msg("Invalid invoice payload")
			http.Error(w, "invalid invoice data", http.StatusBadRequest)
			return
		}
		subID := subscriptionIDFromInvoice(&invoice)
		if subID == "" {
			s.logger.Info().Str("invoice_id", invoice.ID).Msg("Invoice has no subscription, skipping reconciliation")
			w.WriteHeader(http.StatusOK)
			return
		}
		sub, err := subscriptionpkg.Get(subID, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", subID).Msg("Failed to fetch subscription details")
			http.Error(w, "failed to fetch subscription details", http.StatusInternalServerError)
			return
		}
		s.reconcileSubscription(ctx, w, invoice.Metadata, sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			s.logger.Error().Err(err).Msg("Invalid subscription payload")
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		customerID := ""
		if sub.Customer != nil {
			customerID = sub.Customer.ID
		}
		userID, err := s.getUserIDFromEvent(ctx, sub.Metadata, customerID)
		if err != nil {
			s.dropOrFail(w, err, sub.ID)
			return
		}
		if err := s.subSvc.Downgrade(ctx, userID); err != nil {
			http.Error(w, "failed to downgrade subscription", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)

	case "invoice.payment_failed":
		// Deliberately no entitlement change: Stripe retries and eventually
		// emits customer.subscription.deleted if dunning fails for good.
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			s.logger.Error().Err(err).Msg("Invalid invoice payload")
			http.Error(w, "invalid invoice data", http.StatusBadRequest)
			return
		}
		s.logger.Warn().Str("invoice_id", invoice.ID).Msg("Invoice payment failed; awaiting processor dunning outcome")
		w.WriteHeader(http.StatusOK)

	default:
		s.logger.Debug().Str("event_type", string(event.Type)).Msg("Unhandled Stripe webhook event")
		w.WriteHeader(http.StatusOK)
	}
}

// reconcileSubscription resolves the local user and applies the snapshot,
// writing the HTTP outcome.
func (s *StripeService) reconcileSubscription(ctx context.Context, w http.ResponseWriter, metadata map[string]string, sub *stripe.Subscription) {
	snap, err := snapshotFromSubscription(sub)
	if err != nil {
		s.logger.Error().Err(err).Msg("Malformed subscription object")
		http.Error(w, "malformed subscription object", http.StatusBadRequest)
		return
	}
	userID, err := s.getUserIDFromEvent(ctx, metadata, snap.CustomerID)
	if err != nil {
		s.dropOrFail(w, err, sub.ID)
		return
	}
	if err := s.subSvc.ApplySnapshot(ctx, userID, snap); err != nil {
		http.Error(w, "failed to update subscription", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// dropOrFail acknowledges events for unknown accounts (redelivery is
// pointless) and fails lookup errors so the event source retries.
func (s *StripeService) dropOrFail(w http.ResponseWriter, err error, subscriptionID string) {
	if errors.Is(err, errUnknownAccount) {
		s.logger.Warn().Str("subscription_id", subscriptionID).Msg("Webhook event references no local account; dropping")
		w.WriteHeader(http.StatusOK)
		return
	}
	s.logger.Error().Err(err).Str("subscription_id", subscriptionID).Msg("Failed to identify user for webhook event")
	http.Error(w, "failed to identify user", http.StatusInternalServerError)
}

func subscriptionIDFromInvoice(invoice *stripe.Invoice) string {
	if invoice.Lines == nil {
		return ""
	}
	for _, line := range invoice.Lines.Data {
		if line.Subscription != nil && line.Subscription.ID != "" {
			return line.Subscription.ID
		}
	}
	return ""
}
