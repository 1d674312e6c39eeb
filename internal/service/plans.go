package service

import (
	"app/internal/config"
	"app/internal/model"
)

// PlanConfig is the injected plan configuration: monthly AI ceilings per plan
// and the Stripe price ID backing each paid plan. Both come from the
// environment so pricing can change without a code change.
type PlanConfig struct {
	limits       map[string]int
	priceByPlan  map[string]string
	planByPrice  map[string]string
}

// NewPlanConfig builds the plan mapping from the loaded configuration.
func NewPlanConfig(cfg *config.Config) *PlanConfig {
	priceByPlan := map[string]string{
		model.PlanPro:     cfg.StripePricePro,
		model.PlanPremium: cfg.StripePricePremium,
	}
	planByPrice := make(map[string]string, len(priceByPlan))
	for plan, price := range priceByPlan {
		if price != "" {
			planByPrice[price] = plan
		}
	}
	return &PlanConfig{
		limits: map[string]int{
			model.PlanFree:    cfg.FreePlanAILimit,
			model.PlanPro:     cfg.ProPlanAILimit,
			model.PlanPremium: cfg.PremiumPlanAILimit,
		},
		priceByPlan: priceByPlan,
		planByPrice: planByPrice,
	}
}

// LimitFor returns the monthly AI ceiling for a plan. Unknown plans get the
// free ceiling, never unlimited.
func (p *PlanConfig) LimitFor(plan string) int {
	if limit, ok := p.limits[plan]; ok {
		return limit
	}
	return p.limits[model.PlanFree]
}

// PriceFor returns the Stripe price ID for a paid plan.
func (p *PlanConfig) PriceFor(plan string) (string, bool) {
	price, ok := p.priceByPlan[plan]
	return price, ok && price != ""
}

// PlanForPrice resolves a Stripe price ID back to a plan name. An unrecognized
// price returns ok=false; callers must not elevate the account in that case.
func (p *PlanConfig) PlanForPrice(priceID string) (string, bool) {
	plan, ok := p.planByPrice[priceID]
	return plan, ok
}
