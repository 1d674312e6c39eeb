package repository

import (
	"context"
	"fmt"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsRepository stores and aggregates tracked events.
type AnalyticsRepository interface {
	InsertEvent(ctx context.Context, e *model.AnalyticsEvent) error
	CountEventsByType(ctx context.Context, blogID string, since time.Time) ([]model.EventCount, error)
	DailyViews(ctx context.Context, blogID string, since time.Time) ([]model.DailyViews, error)
	// TotalViewsForUser counts views across all of the user's blogs since the
	// given time.
	TotalViewsForUser(ctx context.Context, userID string, since time.Time) (int, error)
	TopBlogsForUser(ctx context.Context, userID string, since time.Time, limit int) ([]model.BlogViewCount, error)
}

type analyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepo creates a new AnalyticsRepository.
func NewAnalyticsRepo(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepo{pool: pool}
}

func (r *analyticsRepo) InsertEvent(ctx context.Context, e *model.AnalyticsEvent) error {
	const q = `
        INSERT INTO analytics_events (blog_id, user_id, event, ip_address, user_agent, referrer)
        VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, q, e.BlogID, e.UserID, e.Event, e.IPAddress, e.UserAgent, e.Referrer)
	if err != nil {
		return fmt.Errorf("insert %s event for blog %s: %w", e.Event, e.BlogID, err)
	}
	return nil
}

func (r *analyticsRepo) CountEventsByType(ctx context.Context, blogID string, since time.Time) ([]model.EventCount, error) {
	const q = `
        SELECT event, COUNT(*)
        FROM analytics_events
        WHERE blog_id = $1 AND created_at >= $2
        GROUP BY event`
	rows, err := r.pool.Query(ctx, q, blogID, since)
	if err != nil {
		return nil, fmt.Errorf("count events for blog %s: %w", blogID, err)
	}
	defer rows.Close()

	var counts []model.EventCount
	for rows.Next() {
		var c model.EventCount
		if err := rows.Scan(&c.Event, &c.Count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *analyticsRepo) DailyViews(ctx context.Context, blogID string, since time.Time) ([]model.DailyViews, error) {
	const q = `
        SELECT date_trunc('day', created_at) AS day, COUNT(*)
        FROM analytics_events
        WHERE blog_id = $1 AND event = 'view' AND created_at >= $2
        GROUP BY day
        ORDER BY day`
	rows, err := r.pool.Query(ctx, q, blogID, since)
	if err != nil {
		return nil, fmt.Errorf("daily views for blog %s: %w", blogID, err)
	}
	defer rows.Close()

	var days []model.DailyViews
	for rows.Next() {
		var d model.DailyViews
		if err := rows.Scan(&d.Day, &d.Views); err != nil {
			return nil, fmt.Errorf("scan daily views: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *analyticsRepo) TotalViewsForUser(ctx context.Context, userID string, since time.Time) (int, error) {
	const q = `
        SELECT COUNT(*)
        FROM analytics_events e
        JOIN blogs b ON b.blog_id = e.blog_id
        WHERE b.user_id = $1 AND e.event = 'view' AND e.created_at >= $2`
	var total int
	if err := r.pool.QueryRow(ctx, q, userID, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("total views for user %s: %w", userID, err)
	}
	return total, nil
}

func (r *analyticsRepo) TopBlogsForUser(ctx context.Context, userID string, since time.Time, limit int) ([]model.BlogViewCount, error) {
	const q = `
        SELECT b.blog_id, b.title, COUNT(*) AS views
        FROM analytics_events e
        JOIN blogs b ON b.blog_id = e.blog_id
        WHERE b.user_id = $1 AND e.event = 'view' AND e.created_at >= $2
        GROUP BY b.blog_id, b.title
        ORDER BY views DESC
        LIMIT $3`
	rows, err := r.pool.Query(ctx, q, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top blogs for user %s: %w", userID, err)
	}
	defer rows.Close()

	var tops []model.BlogViewCount
	for rows.Next() {
		var t model.BlogViewCount
		if err := rows.Scan(&t.BlogID, &t.Title, &t.Views); err != nil {
			return nil, fmt.Errorf("scan top blog: %w", err)
		}
		tops = append(tops, t)
	}
	return tops, rows.Err()
}
