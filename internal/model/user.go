package model

import "time"

// Plan names. Unknown plans are treated as free everywhere limits are resolved.
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

// Billing statuses stored on the user record.
const (
	BillingActive    = "active"
	BillingCancelled = "cancelled"
	BillingExpired   = "expired"
)

// User represents a user in the system, including the billing and AI usage
// state owned by the subscription reconciler and the quota gate.
type User struct {
	UserID       string  `db:"user_id" json:"user_id"`
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	AvatarURL    string  `db:"avatar_url" json:"avatar_url"`
	Bio          string  `db:"bio" json:"bio"`
	Website      string  `db:"website" json:"website"`
	Role         string  `db:"role" json:"role"`

	Plan                 string     `db:"plan" json:"plan"`
	BillingStatus        string     `db:"billing_status" json:"billing_status"`
	StripeCustomerID     *string    `db:"stripe_customer_id" json:"-"`
	StripeSubscriptionID *string    `db:"stripe_subscription_id" json:"-"`
	CurrentPeriodEnd     *time.Time `db:"current_period_end" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `db:"cancel_at_period_end" json:"cancel_at_period_end"`

	AIMonthlyCount int       `db:"ai_monthly_count" json:"-"`
	AILastResetAt  time.Time `db:"ai_last_reset_at" json:"-"`
	AITotalCount   int       `db:"ai_total_count" json:"-"`

	TotalBlogs int        `db:"total_blogs" json:"total_blogs"`
	LastLogin  *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// UsageSnapshot is returned after a successful quota consume.
type UsageSnapshot struct {
	MonthlyCount int    `json:"monthly_count"`
	TotalCount   int    `json:"total_count"`
	Limit        int    `json:"limit"`
	Plan         string `json:"plan"`
}

// SubscriptionView is the billing state reported to the user. It is the local
// record, optionally refreshed from Stripe when a live lookup succeeds.
type SubscriptionView struct {
	Plan              string     `json:"plan"`
	Status            string     `json:"status"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}
