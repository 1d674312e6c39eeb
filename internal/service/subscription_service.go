package service

import (
	"context"
	"errors"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// ErrNoSubscription is returned when an operation needs an external
// subscription reference and the user has none.
var ErrNoSubscription = errors.New("no active subscription")

// SubscriptionSnapshot is the authoritative state carried by a single Stripe
// lifecycle event. Each snapshot is complete, so applying the latest observed
// one is safe under replay and out-of-order delivery.
type SubscriptionSnapshot struct {
	SubscriptionID    string
	CustomerID        string
	PriceID           string
	Status            string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// SubscriptionService reconciles the local view of a user's billing state with
// snapshots from the payment processor, and answers local billing queries.
type SubscriptionService interface {
	// ApplySnapshot overwrites the local billing fields with the snapshot.
	// Unrecognized price IDs and statuses never elevate the account: the
	// anomaly is logged and no mutation happens.
	ApplySnapshot(ctx context.Context, userID string, snap SubscriptionSnapshot) error
	// Downgrade reverts the user to the free plan, clearing the external
	// subscription linkage. Driven by the subscription-deleted event.
	Downgrade(ctx context.Context, userID string) error
	MarkCancelAtPeriodEnd(ctx context.Context, userID string) error
	// LocalView returns the locally stored billing state.
	LocalView(ctx context.Context, userID string) (*model.SubscriptionView, *string, error)
}

type subscriptionService struct {
	repo     repository.SubscriptionRepository
	userRepo repository.UserRepository
	plans    *PlanConfig
	logger   zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
func NewSubscriptionService(repo repository.SubscriptionRepository, userRepo repository.UserRepository, plans *PlanConfig, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		repo:     repo,
		userRepo: userRepo,
		plans:    plans,
		logger:   logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) ApplySnapshot(ctx context.Context, userID string, snap SubscriptionSnapshot) error {
	plan, ok := s.plans.PlanForPrice(snap.PriceID)
	if !ok {
		// A price outside the configured mapping must not grant a paid plan.
		s.logger.Error().
			Str("user_id", userID).
			Str("price_id", snap.PriceID).
			Str("subscription_id", snap.SubscriptionID).
			Msg("Unrecognized Stripe price ID; refusing to elevate plan")
		return nil
	}

	var status string
	switch snap.Status {
	case "active", "trialing":
		status = model.BillingActive
	case "past_due":
		// A failed payment alone must not revoke access before Stripe's own
		// dunning cycle concludes; only the deletion event downgrades.
		status = model.BillingActive
		s.logger.Warn().Str("user_id", userID).Str("subscription_id", snap.SubscriptionID).Msg("Subscription past due; entitlements retained")
	case "canceled":
		return s.Downgrade(ctx, userID)
	default:
		s.logger.Error().
			Str("user_id", userID).
			Str("subscription_id", snap.SubscriptionID).
			Str("status", snap.Status).
			Msg("Unrecognized subscription status; leaving local state untouched")
		return nil
	}
	if snap.CancelAtPeriodEnd {
		status = model.BillingCancelled
	}

	err := s.repo.ApplyBillingSnapshot(ctx, userID, repository.BillingSnapshot{
		Plan:                 plan,
		BillingStatus:        status,
		StripeSubscriptionID: snap.SubscriptionID,
		CurrentPeriodEnd:     snap.CurrentPeriodEnd,
		CancelAtPeriodEnd:    snap.CancelAtPeriodEnd,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("plan", plan).Msg("Failed to apply billing snapshot")
		return err
	}
	return nil
}

func (s *subscriptionService) Downgrade(ctx context.Context, userID string) error {
	if err := s.repo.DowngradeToFree(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to downgrade user to free plan")
		return err
	}
	return nil
}

func (s *subscriptionService) MarkCancelAtPeriodEnd(ctx context.Context, userID string) error {
	if err := s.repo.SetCancelAtPeriodEnd(ctx, userID, true); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record cancellation flag")
		return err
	}
	return nil
}

func (s *subscriptionService) LocalView(ctx context.Context, userID string) (*model.SubscriptionView, *string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}
	view := &model.SubscriptionView{
		Plan:              user.Plan,
		Status:            user.BillingStatus,
		CurrentPeriodEnd:  user.CurrentPeriodEnd,
		CancelAtPeriodEnd: user.CancelAtPeriodEnd,
	}
	return view, user.StripeSubscriptionID, nil
}
