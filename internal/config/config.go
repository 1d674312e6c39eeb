package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`
	ClientURL          string `envconfig:"CLIENT_URL" default:"http://localhost:5173"`

	// Stripe settings
	StripeSecretKey        string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	StripeWebhookSecret    string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	StripePricePro         string `envconfig:"STRIPE_PRO_PRICE_ID" required:"true"`
	StripePricePremium     string `envconfig:"STRIPE_PREMIUM_PRICE_ID" required:"true"`
	StripeCancelTimeoutSec int    `envconfig:"STRIPE_CANCEL_TIMEOUT_SEC" default:"10"`

	// Monthly AI request ceilings per plan
	FreePlanAILimit    int `envconfig:"FREE_PLAN_AI_LIMIT" default:"10"`
	ProPlanAILimit     int `envconfig:"PRO_PLAN_AI_LIMIT" default:"100"`
	PremiumPlanAILimit int `envconfig:"PREMIUM_PLAN_AI_LIMIT" default:"500"`

	// AI provider settings
	AIProvider   string `envconfig:"AI_PROVIDER" default:"openai"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Analytics fan-out; publishing is disabled when the project ID is empty
	GCPProjectID        string `envconfig:"GCP_PROJECT_ID"`
	AnalyticsEventTopic string `envconfig:"ANALYTICS_EVENT_TOPIC" default:"analytics_events"`

	// Media storage (S3-compatible)
	S3URL       string `envconfig:"S3_URL" required:"true"`
	S3Bucket    string `envconfig:"S3_BUCKET" required:"true"`
	S3Region    string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" required:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
