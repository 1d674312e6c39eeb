package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AnalyticsHandler serves engagement tracking and aggregates. The per-blog
// routes are dispatched by BlogHandler; the dashboard has its own route.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	validate         *validator.Validate
	logger           zerolog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService service.AnalyticsService, v *validator.Validate, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, validate: v, logger: logger}
}

// RegisterRoutes mounts the dashboard route.
func (h *AnalyticsHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/analytics/dashboard", authMw(http.HandlerFunc(h.dashboard)))
}

// TrackForBlog records an engagement event posted by a reader. The caller may
// be anonymous.
func (h *AnalyticsHandler) TrackForBlog(w http.ResponseWriter, r *http.Request, blogID string) {
	var req dto.TrackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	event := &model.AnalyticsEvent{
		BlogID:    blogID,
		Event:     req.EventType,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  req.Referrer,
	}
	if userID, ok := middleware.UserID(r); ok && userID != "" {
		event.UserID = &userID
	}

	if err := h.analyticsService.TrackEvent(r.Context(), event); err != nil {
		switch {
		case errors.Is(err, service.ErrBlogNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to track event")
			http.Error(w, "Failed to track event", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// TrackLike records a like for a blog. No payload is expected; the caller may
// be anonymous.
func (h *AnalyticsHandler) TrackLike(w http.ResponseWriter, r *http.Request, blogID string) {
	event := &model.AnalyticsEvent{
		BlogID:    blogID,
		Event:     model.EventLike,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	if userID, ok := middleware.UserID(r); ok && userID != "" {
		event.UserID = &userID
	}

	if err := h.analyticsService.TrackEvent(r.Context(), event); err != nil {
		switch {
		case errors.Is(err, service.ErrBlogNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to track like")
			http.Error(w, "Failed to track like", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RecordView tracks a view triggered by a public blog read. Best effort; a
// failed insert never fails the read.
func (h *AnalyticsHandler) RecordView(r *http.Request, blogID string) {
	event := &model.AnalyticsEvent{
		BlogID:    blogID,
		Event:     model.EventView,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	if err := h.analyticsService.TrackEvent(r.Context(), event); err != nil {
		h.logger.Warn().Err(err).Str("blog_id", blogID).Msg("failed to record view")
	}
}

// BlogAnalytics returns aggregates for one blog. Restricted to the author or
// an admin by the service.
func (h *AnalyticsHandler) BlogAnalytics(w http.ResponseWriter, r *http.Request, blogID string) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	timeRange := rangeParam(r)

	agg, err := h.analyticsService.BlogAnalytics(r.Context(), blogID, userID, middleware.Role(r), timeRange)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlogNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, service.ErrAccessDenied):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			h.logger.Error().Err(err).Msg("failed to aggregate blog analytics")
			http.Error(w, "Failed to retrieve analytics", http.StatusInternalServerError)
		}
		return
	}

	resp := dto.BlogAnalyticsResponse{BlogID: blogID, Range: timeRange}
	for _, c := range agg.Counts {
		resp.Counts = append(resp.Counts, dto.EventCountDTO{Event: c.Event, Count: c.Count})
	}
	for _, d := range agg.DailyViews {
		resp.DailyViews = append(resp.DailyViews, dto.DailyViewsDTO{Day: d.Day, Views: d.Views})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *AnalyticsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	timeRange := rangeParam(r)

	dash, err := h.analyticsService.UserDashboard(r.Context(), userID, timeRange)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to aggregate dashboard")
		http.Error(w, "Failed to retrieve dashboard", http.StatusInternalServerError)
		return
	}

	resp := dto.DashboardResponse{TotalViews: dash.TotalViews, Range: timeRange}
	for _, b := range dash.TopBlogs {
		resp.TopBlogs = append(resp.TopBlogs, dto.TopBlogDTO{BlogID: b.BlogID, Title: b.Title, Views: b.Views})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func rangeParam(r *http.Request) string {
	switch v := r.URL.Query().Get("range"); v {
	case "7d", "30d", "90d":
		return v
	default:
		return "30d"
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
