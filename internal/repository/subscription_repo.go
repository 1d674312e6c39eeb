package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BillingSnapshot is the full set of billing fields the reconciler overwrites.
// Writes are last-write-wins on the whole snapshot so replayed or out-of-order
// events cannot misapply incremental deltas.
type BillingSnapshot struct {
	Plan                 string
	BillingStatus        string
	StripeSubscriptionID string
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
}

// SubscriptionRepository persists the local view of a user's billing state.
type SubscriptionRepository interface {
	ApplyBillingSnapshot(ctx context.Context, userID string, snap BillingSnapshot) error
	// DowngradeToFree reverts the user to the free plan and clears the
	// external subscription linkage.
	DowngradeToFree(ctx context.Context, userID string) error
	SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool) error
}

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepo creates a new SubscriptionRepository.
func NewSubscriptionRepo(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) ApplyBillingSnapshot(ctx context.Context, userID string, snap BillingSnapshot) error {
	const q = `
        UPDATE users
        SET plan = $2,
            billing_status = $3,
            stripe_subscription_id = $4,
            current_period_end = $5,
            cancel_at_period_end = $6,
            updated_at = NOW()
        WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, q, userID,
		snap.Plan, snap.BillingStatus, snap.StripeSubscriptionID,
		snap.CurrentPeriodEnd, snap.CancelAtPeriodEnd)
	if err != nil {
		return fmt.Errorf("apply billing snapshot for user %s: %w", userID, err)
	}
	return nil
}

func (r *subscriptionRepo) DowngradeToFree(ctx context.Context, userID string) error {
	const q = `
        UPDATE users
        SET plan = 'free',
            billing_status = 'cancelled',
            stripe_subscription_id = NULL,
            current_period_end = NULL,
            cancel_at_period_end = FALSE,
            updated_at = NOW()
        WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("downgrade user %s to free plan: %w", userID, err)
	}
	return nil
}

func (r *subscriptionRepo) SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool) error {
	const q = `UPDATE users SET cancel_at_period_end = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID, cancel); err != nil {
		return fmt.Errorf("set cancel_at_period_end for user %s: %w", userID, err)
	}
	return nil
}
