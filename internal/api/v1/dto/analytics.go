package dto

import "time"

// TrackEventRequest records an engagement event against a blog. IP and
// user agent are taken from the request itself, not the payload.
type TrackEventRequest struct {
	EventType string `json:"event_type" validate:"required,oneof=view like share comment click"`
	Referrer  string `json:"referrer" validate:"omitempty,max=2000"`
}

// EventCountDTO is an aggregate of one event type over a period.
type EventCountDTO struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// DailyViewsDTO is a single day's view count.
type DailyViewsDTO struct {
	Day   time.Time `json:"day"`
	Views int       `json:"views"`
}

// BlogAnalyticsResponse summarizes engagement for one blog.
type BlogAnalyticsResponse struct {
	BlogID     string          `json:"blog_id"`
	Counts     []EventCountDTO `json:"counts"`
	DailyViews []DailyViewsDTO `json:"daily_views"`
	Range      string          `json:"range"`
}

// TopBlogDTO ranks a blog by views.
type TopBlogDTO struct {
	BlogID string `json:"blog_id"`
	Title  string `json:"title"`
	Views  int    `json:"views"`
}

// DashboardResponse summarizes engagement across a user's blogs.
type DashboardResponse struct {
	TotalViews int          `json:"total_views"`
	TopBlogs   []TopBlogDTO `json:"top_blogs"`
	Range      string       `json:"range"`
}
