package service

import (
	"context"
	"encoding/json"
	"time"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// BlogAnalytics aggregates one blog's engagement over a period.
type BlogAnalytics struct {
	Counts     []model.EventCount `json:"counts"`
	DailyViews []model.DailyViews `json:"daily_views"`
}

// UserDashboard aggregates engagement across all of a user's blogs.
type UserDashboard struct {
	TotalViews int                   `json:"total_views"`
	TopBlogs   []model.BlogViewCount `json:"top_blogs"`
}

// AnalyticsService tracks engagement events and serves aggregates.
type AnalyticsService interface {
	// TrackEvent records the event, bumps the blog's denormalized counter and
	// fans the event out to Pub/Sub when a publisher is configured. Fan-out is
	// best effort and never fails the request.
	TrackEvent(ctx context.Context, e *model.AnalyticsEvent) error
	// BlogAnalytics is restricted to the blog's author or an admin.
	BlogAnalytics(ctx context.Context, blogID, requesterID, role, timeRange string) (*BlogAnalytics, error)
	UserDashboard(ctx context.Context, userID, timeRange string) (*UserDashboard, error)
}

type analyticsService struct {
	repo      repository.AnalyticsRepository
	blogRepo  repository.BlogRepository
	publisher pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService with a scoped logger.
// publisher may be nil; fan-out is then disabled.
func NewAnalyticsService(repo repository.AnalyticsRepository, blogRepo repository.BlogRepository, publisher pubsub.Publisher, topic string, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		blogRepo:  blogRepo,
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("service", "AnalyticsService").Logger(),
	}
}

func (s *analyticsService) TrackEvent(ctx context.Context, e *model.AnalyticsEvent) error {
	if err := s.repo.InsertEvent(ctx, e); err != nil {
		return err
	}
	if err := s.blogRepo.IncrementCounter(ctx, e.BlogID, e.Event); err != nil {
		s.logger.Warn().Err(err).Str("blog_id", e.BlogID).Msg("Failed to bump blog counter")
	}

	if s.publisher != nil {
		payload, err := json.Marshal(e)
		if err == nil {
			if _, err := s.publisher.Publish(ctx, s.topic, payload); err != nil {
				s.logger.Warn().Err(err).Str("topic", s.topic).Msg("Failed to publish analytics event")
			}
		}
	}
	return nil
}

func (s *analyticsService) BlogAnalytics(ctx context.Context, blogID, requesterID, role, timeRange string) (*BlogAnalytics, error) {
	blog, err := s.blogRepo.GetBlogByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}
	if blog.UserID != requesterID && role != "admin" {
		return nil, ErrAccessDenied
	}

	since := startOfRange(timeRange)
	counts, err := s.repo.CountEventsByType(ctx, blogID, since)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.DailyViews(ctx, blogID, since)
	if err != nil {
		return nil, err
	}
	return &BlogAnalytics{Counts: counts, DailyViews: daily}, nil
}

func (s *analyticsService) UserDashboard(ctx context.Context, userID, timeRange string) (*UserDashboard, error) {
	since := startOfRange(timeRange)
	total, err := s.repo.TotalViewsForUser(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopBlogsForUser(ctx, userID, since, 5)
	if err != nil {
		return nil, err
	}
	return &UserDashboard{TotalViews: total, TopBlogs: top}, nil
}

// startOfRange maps a time range label to its start time. Unknown labels fall
// back to 30 days.
func startOfRange(timeRange string) time.Time {
	days := 30
	switch timeRange {
	case "7d":
		days = 7
	case "30d":
		days = 30
	case "90d":
		days = 90
	}
	return time.Now().AddDate(0, 0, -days)
}
