package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository defines methods for accessing user records.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error)
	UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error
	UpdateProfile(ctx context.Context, userID, name, bio, website, avatarURL string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	AdjustTotalBlogs(ctx context.Context, userID string, delta int) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a new UserRepository.
func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `user_id, name, email, password_hash, avatar_url, bio, website, role,
       plan, billing_status, stripe_customer_id, stripe_subscription_id,
       current_period_end, cancel_at_period_end,
       ai_monthly_count, ai_last_reset_at, ai_total_count,
       total_blogs, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.Bio, &u.Website, &u.Role,
		&u.Plan, &u.BillingStatus, &u.StripeCustomerID, &u.StripeSubscriptionID,
		&u.CurrentPeriodEnd, &u.CancelAtPeriodEnd,
		&u.AIMonthlyCount, &u.AILastResetAt, &u.AITotalCount,
		&u.TotalBlogs, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
        INSERT INTO users (user_id, name, email, password_hash, ai_last_reset_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING ` + userColumns
	created, err := scanUser(r.pool.QueryRow(ctx, q, u.UserID, u.Name, u.Email, u.PasswordHash))
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, err)
	}
	*u = *created
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("fetch user by email: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE stripe_customer_id = $1`, customerID))
	if err != nil {
		return nil, fmt.Errorf("fetch user by stripe customer %s: %w", customerID, err)
	}
	return u, nil
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const q = `UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID, customerID); err != nil {
		return fmt.Errorf("store stripe customer id for user %s: %w", userID, err)
	}
	return nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, userID, name, bio, website, avatarURL string) error {
	const q = `
        UPDATE users
        SET name = $2, bio = $3, website = $4, avatar_url = $5, updated_at = NOW()
        WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID, name, bio, website, avatarURL); err != nil {
		return fmt.Errorf("update profile for user %s: %w", userID, err)
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID, passwordHash); err != nil {
		return fmt.Errorf("update password for user %s: %w", userID, err)
	}
	return nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	const q = `UPDATE users SET last_login = NOW() WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("update last login for user %s: %w", userID, err)
	}
	return nil
}

func (r *userRepo) AdjustTotalBlogs(ctx context.Context, userID string, delta int) error {
	const q = `UPDATE users SET total_blogs = GREATEST(total_blogs + $2, 0) WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID, delta); err != nil {
		return fmt.Errorf("adjust blog count for user %s: %w", userID, err)
	}
	return nil
}
