package model

import "time"

// Tracked analytics events.
const (
	EventView    = "view"
	EventLike    = "like"
	EventShare   = "share"
	EventComment = "comment"
	EventClick   = "click"
)

// AnalyticsEvent is a single tracked interaction with a blog post.
type AnalyticsEvent struct {
	BlogID    string    `db:"blog_id" json:"blog_id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Event     string    `db:"event" json:"event"`
	IPAddress string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent string    `db:"user_agent" json:"user_agent,omitempty"`
	Referrer  string    `db:"referrer" json:"referrer,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EventCount is an aggregate of one event type over a period.
type EventCount struct {
	Event string `db:"event" json:"event"`
	Count int    `db:"count" json:"count"`
}

// DailyViews is the view count for one day.
type DailyViews struct {
	Day   time.Time `db:"day" json:"day"`
	Views int       `db:"views" json:"views"`
}

// BlogViewCount pairs a blog with its view count over a period.
type BlogViewCount struct {
	BlogID string `db:"blog_id" json:"blog_id"`
	Title  string `db:"title" json:"title"`
	Views  int    `db:"views" json:"views"`
}
