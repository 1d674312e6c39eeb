package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// BlogHandler handles blog endpoints, including the quota-gated AI assists.
// It owns the /blogs subtree and dispatches comment and analytics subresources
// to their handlers.
type BlogHandler struct {
	blogService  service.BlogService
	usageService service.UsageService
	aiService    service.AIService
	comments     *CommentHandler
	analytics    *AnalyticsHandler
	validate     *validator.Validate
	logger       zerolog.Logger
	authMw       func(http.Handler) http.Handler
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blogService service.BlogService, usageService service.UsageService, aiService service.AIService, comments *CommentHandler, analytics *AnalyticsHandler, v *validator.Validate, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		blogService:  blogService,
		usageService: usageService,
		aiService:    aiService,
		comments:     comments,
		analytics:    analytics,
		validate:     v,
		logger:       logger,
	}
}

// RegisterRoutes mounts the blog routes. Reads are public; writes and the AI
// assists go through the auth middleware per branch.
func (h *BlogHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	h.authMw = authMw
	mux.HandleFunc("/blogs", h.handleCollection)
	mux.Handle("/blogs/ai-status", authMw(middleware.AdminOnly(http.HandlerFunc(h.aiStatus))))
	mux.HandleFunc("/blogs/", h.handleItem)
}

func (h *BlogHandler) withAuth(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.authMw(fn).ServeHTTP(w, r)
	}
}

func (h *BlogHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBlogs(w, r)
	case http.MethodPost:
		h.withAuth(h.createBlog)(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BlogHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/blogs/"), "/"), "/")

	if len(segs) == 2 && segs[0] == "slug" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getBySlug(w, r, segs[1])
		return
	}

	blogID := segs[0]
	if blogID == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(segs) == 1:
		switch r.Method {
		case http.MethodGet:
			h.getByID(w, r, blogID)
		case http.MethodPut:
			h.withAuth(func(w http.ResponseWriter, r *http.Request) { h.updateBlog(w, r, blogID) })(w, r)
		case http.MethodDelete:
			h.withAuth(func(w http.ResponseWriter, r *http.Request) { h.deleteBlog(w, r, blogID) })(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}

	case len(segs) == 2 && segs[1] == "comments":
		switch r.Method {
		case http.MethodGet:
			h.comments.ListForBlog(w, r, blogID)
		case http.MethodPost:
			h.withAuth(func(w http.ResponseWriter, r *http.Request) { h.comments.CreateForBlog(w, r, blogID) })(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}

	case len(segs) == 2 && segs[1] == "like":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.analytics.TrackLike(w, r, blogID)

	case len(segs) == 2 && segs[1] == "events":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.analytics.TrackForBlog(w, r, blogID)

	case len(segs) == 2 && segs[1] == "analytics":
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.withAuth(func(w http.ResponseWriter, r *http.Request) { h.analytics.BlogAnalytics(w, r, blogID) })(w, r)

	case len(segs) == 3 && segs[1] == "ai":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.withAuth(func(w http.ResponseWriter, r *http.Request) { h.aiAssist(w, r, blogID, segs[2]) })(w, r)

	default:
		http.NotFound(w, r)
	}
}

func (h *BlogHandler) listBlogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.BlogFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		UserID:   q.Get("author"),
	}
	if tags := q.Get("tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		f.Limit = l
	}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o >= 0 {
		f.Offset = o
	}

	blogs, total, err := h.blogService.List(r.Context(), f)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list blogs")
		http.Error(w, "Failed to list blogs", http.StatusInternalServerError)
		return
	}

	resp := dto.BlogListResponse{Blogs: make([]dto.BlogResponse, 0, len(blogs)), Total: total, Limit: f.Limit, Offset: f.Offset}
	for i := range blogs {
		b := toBlogResponse(&blogs[i])
		// Listings carry the excerpt only.
		b.Content = ""
		resp.Blogs = append(resp.Blogs, b)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *BlogHandler) createBlog(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.BlogCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	blog, err := h.blogService.Create(r.Context(), userID, service.BlogInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CoverImageURL: req.CoverURL,
		Tags:          req.Tags,
		Category:      req.Category,
		Status:        req.Status,
		IsPremium:     req.IsPremium,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create blog")
		http.Error(w, "Failed to create blog", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toBlogResponse(blog))
}

func (h *BlogHandler) getBySlug(w http.ResponseWriter, r *http.Request, slug string) {
	blog, err := h.blogService.GetBySlug(r.Context(), slug)
	if err != nil {
		h.writeBlogErr(w, err, "Failed to retrieve blog")
		return
	}
	// Reads through the public slug route count as views.
	h.analytics.RecordView(r, blog.BlogID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBlogResponse(blog))
}

func (h *BlogHandler) getByID(w http.ResponseWriter, r *http.Request, blogID string) {
	blog, err := h.blogService.GetByID(r.Context(), blogID)
	if err != nil {
		h.writeBlogErr(w, err, "Failed to retrieve blog")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBlogResponse(blog))
}

func (h *BlogHandler) updateBlog(w http.ResponseWriter, r *http.Request, blogID string) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.BlogUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	blog, err := h.blogService.Update(r.Context(), blogID, userID, middleware.Role(r), service.BlogInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CoverImageURL: req.CoverURL,
		Tags:          req.Tags,
		Category:      req.Category,
		Status:        req.Status,
		IsPremium:     req.IsPremium,
	})
	if err != nil {
		h.writeBlogErr(w, err, "Failed to update blog")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBlogResponse(blog))
}

func (h *BlogHandler) deleteBlog(w http.ResponseWriter, r *http.Request, blogID string) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.blogService.Delete(r.Context(), blogID, userID, middleware.Role(r)); err != nil {
		h.writeBlogErr(w, err, "Failed to delete blog")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// aiAssist gates the AI operations behind the monthly quota: the counter is
// consumed before the provider is called, and a hit limit maps to 429.
func (h *BlogHandler) aiAssist(w http.ResponseWriter, r *http.Request, blogID, op string) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}

	if _, err := h.usageService.CheckAndConsume(r.Context(), userID); err != nil {
		var qe *service.QuotaExceededError
		switch {
		case errors.As(err, &qe):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(dto.QuotaExceededResponse{
				Error: "monthly AI request limit reached",
				Plan:  qe.Plan,
				Used:  qe.Used,
				Limit: qe.Limit,
			})
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to consume AI quota")
			http.Error(w, "Failed to check AI quota", http.StatusInternalServerError)
		}
		return
	}

	switch op {
	case "suggestions":
		res, err := h.blogService.SuggestContent(r.Context(), blogID, userID)
		if err != nil {
			h.writeBlogErr(w, err, "Failed to generate suggestions")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.SuggestionsResponse{Suggestions: res.Suggestions, Provider: res.Source})

	case "seo":
		res, err := h.blogService.OptimizeSEO(r.Context(), blogID, userID)
		if err != nil {
			h.writeBlogErr(w, err, "Failed to optimize SEO")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.SEOResponse{
			SEOTitle:        res.SEOTitle,
			MetaDescription: res.MetaDescription,
			Keywords:        res.Keywords,
			Provider:        res.Source,
		})

	case "tags":
		tags, err := h.blogService.GenerateTags(r.Context(), blogID, userID)
		if err != nil {
			h.writeBlogErr(w, err, "Failed to generate tags")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.TagsResponse{Tags: tags})

	default:
		http.NotFound(w, r)
	}
}

// aiStatus probes the configured provider so an operator can tell whether the
// assists run against a real model or the heuristic fallback. Admin only.
func (h *BlogHandler) aiStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := dto.AIStatusResponse{Status: "ok"}
	provider, err := h.aiService.TestConnection(r.Context())
	resp.Provider = provider
	if err != nil {
		resp.Status = "unavailable"
		resp.Detail = err.Error()
		if provider == "" {
			resp.Provider = "fallback"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *BlogHandler) writeBlogErr(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrBlogNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrAccessDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		h.logger.Error().Err(err).Msg(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func toBlogResponse(b *model.Blog) dto.BlogResponse {
	return dto.BlogResponse{
		BlogID:          b.BlogID,
		Title:           b.Title,
		Slug:            b.Slug,
		Content:         b.Content,
		Excerpt:         b.Excerpt,
		Category:        b.Category,
		Tags:            b.Tags,
		CoverURL:        b.CoverImageURL,
		Status:          b.Status,
		IsPremium:       b.IsPremium,
		AuthorID:        b.UserID,
		AuthorName:      b.AuthorName,
		AuthorAvatar:    b.AuthorAvatar,
		SEOTitle:        b.SEOTitle,
		MetaDescription: b.SEODescription,
		Keywords:        b.SEOKeywords,
		ViewCount:       b.Views,
		LikeCount:       b.Likes,
		ShareCount:      b.Shares,
		ReadTimeMinutes: b.ReadTimeMinutes,
		PublishedAt:     b.PublishedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
