package dto

import "time"

// CheckoutRequest starts a checkout session for a paid plan.
type CheckoutRequest struct {
	Plan string `json:"plan" validate:"required,oneof=pro premium"`
}

// CheckoutResponse returns the hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// SubscriptionResponse describes the caller's current subscription.
type SubscriptionResponse struct {
	Plan              string     `json:"plan"`
	Status            string     `json:"status"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

// UsageResponse reports monthly AI usage against the plan limit.
type UsageResponse struct {
	Plan         string `json:"plan"`
	MonthlyCount int    `json:"monthly_count"`
	TotalCount   int    `json:"total_count"`
	Limit        int    `json:"limit"`
	Remaining    int    `json:"remaining"`
}

// QuotaExceededResponse is returned when the monthly AI limit is hit.
type QuotaExceededResponse struct {
	Error string `json:"error"`
	Plan  string `json:"plan"`
	Used  int    `json:"used"`
	Limit int    `json:"limit"`
}
