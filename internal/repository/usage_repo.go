package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUsageLimitReached is returned when a user has reached their monthly AI quota.
var ErrUsageLimitReached = errors.New("usage_limit_reached")

// UsageRepository meters per-user monthly AI request counters.
type UsageRepository interface {
	// ResetMonthly zeroes the monthly counter and stamps the reset time.
	// Conditional on the stored month: a second caller racing across the
	// same boundary is a no-op and cannot erase units consumed after the
	// first reset.
	ResetMonthly(ctx context.Context, userID string, resetAt time.Time) error
	// ConsumeOne increments the monthly and total counters in a single
	// conditional update and returns the new counts. Returns
	// ErrUsageLimitReached when the monthly counter is already at the limit;
	// two concurrent calls at limit-1 cannot both pass the gate.
	ConsumeOne(ctx context.Context, userID string, limit int) (monthly, total int, err error)
}

type usageRepo struct {
	pool *pgxpool.Pool
}

// NewUsageRepo creates a new UsageRepository.
func NewUsageRepo(pool *pgxpool.Pool) UsageRepository {
	return &usageRepo{pool: pool}
}

func (r *usageRepo) ResetMonthly(ctx context.Context, userID string, resetAt time.Time) error {
	const q = `
        UPDATE users
        SET ai_monthly_count = 0, ai_last_reset_at = $2, updated_at = NOW()
        WHERE user_id = $1
          AND date_trunc('month', ai_last_reset_at AT TIME ZONE 'UTC') < date_trunc('month', $2 AT TIME ZONE 'UTC')`
	if _, err := r.pool.Exec(ctx, q, userID, resetAt); err != nil {
		return fmt.Errorf("reset monthly usage for user %s: %w", userID, err)
	}
	return nil
}

func (r *usageRepo) ConsumeOne(ctx context.Context, userID string, limit int) (int, int, error) {
	const q = `
        UPDATE users
        SET ai_monthly_count = ai_monthly_count + 1,
            ai_total_count = ai_total_count + 1,
            updated_at = NOW()
        WHERE user_id = $1 AND ai_monthly_count < $2
        RETURNING ai_monthly_count, ai_total_count`
	var monthly, total int
	if err := r.pool.QueryRow(ctx, q, userID, limit).Scan(&monthly, &total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrUsageLimitReached
		}
		return 0, 0, fmt.Errorf("consume usage for user %s: %w", userID, err)
	}
	return monthly, total, nil
}
