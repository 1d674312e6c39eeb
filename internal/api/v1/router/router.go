package router

import (
	"context"
	"net/http"
	"strings"

	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/pubsub"
	"app/internal/repository"
	"app/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the full v1 API and returns the root handler together with the
// connection pool so the caller can close it on shutdown.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	dsn := cfg.DBConnectionString
	// Local development runs against a plain Postgres without TLS.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "sslmode=disable"
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// S3-compatible object storage for cover image uploads.
	s3Config, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	s3Client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	})

	validate := validator.New(validator.WithRequiredStructEnabled())

	// Analytics fan-out is optional; with no project ID events stay local.
	var publisher pubsub.Publisher
	if cfg.GCPProjectID != "" {
		p, err := pubsub.NewPublisher(ctx, cfg.GCPProjectID)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		publisher = p
	}

	userRepo := repository.NewUserRepo(pool)
	usageRepo := repository.NewUsageRepo(pool)
	subscriptionRepo := repository.NewSubscriptionRepo(pool)
	blogRepo := repository.NewBlogRepo(pool, logger)
	commentRepo := repository.NewCommentRepo(pool)
	analyticsRepo := repository.NewAnalyticsRepo(pool)

	plans := service.NewPlanConfig(cfg)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, logger)
	userSvc := service.NewUserService(userRepo)
	usageSvc := service.NewUsageService(userRepo, usageRepo, plans, logger)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, userRepo, plans, logger)
	stripeSvc := service.NewStripeService(cfg, plans, userRepo, subscriptionSvc, logger)
	aiSvc := service.NewAIService(cfg, logger)
	blogSvc := service.NewBlogService(blogRepo, userRepo, aiSvc, logger)
	commentSvc := service.NewCommentService(commentRepo, blogRepo)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, blogRepo, publisher, cfg.AnalyticsEventTopic, logger)
	mediaSvc := service.NewMediaService(s3Client, cfg.S3Bucket, logger)

	commentHandler := handler.NewCommentHandler(commentSvc, validate, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, validate, logger)
	authHandler := handler.NewAuthHandler(authSvc, userSvc, validate, logger)
	blogHandler := handler.NewBlogHandler(blogSvc, usageSvc, aiSvc, commentHandler, analyticsHandler, validate, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(stripeSvc, usageSvc, validate, logger)
	mediaHandler := handler.NewMediaHandler(mediaSvc, cfg.S3URL, cfg.S3Bucket, validate, logger)

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	apiV1Mux := http.NewServeMux()
	authHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	blogHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	analyticsHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	subscriptionHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	mediaHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), pool, nil
}

// removeDisableGzip is a workaround for S3 signature errors with some
// S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
