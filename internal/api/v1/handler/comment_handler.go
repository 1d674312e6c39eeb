package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CommentHandler serves the comment subresource under /blogs/{id}/comments.
// Routing happens in BlogHandler; this handler only implements the leaf
// operations.
type CommentHandler struct {
	commentService service.CommentService
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService service.CommentService, v *validator.Validate, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{commentService: commentService, validate: v, logger: logger}
}

// ListForBlog returns a page of approved comments for the blog.
func (h *CommentHandler) ListForBlog(w http.ResponseWriter, r *http.Request, blogID string) {
	limit := 20
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	comments, total, err := h.commentService.ListByBlog(r.Context(), blogID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlogNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to list comments")
			http.Error(w, "Failed to list comments", http.StatusInternalServerError)
		}
		return
	}

	resp := dto.CommentListResponse{Comments: make([]dto.CommentResponse, 0, len(comments)), Total: total, Limit: limit, Offset: offset}
	for i := range comments {
		resp.Comments = append(resp.Comments, toCommentResponse(&comments[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateForBlog posts a comment as the authenticated user.
func (h *CommentHandler) CreateForBlog(w http.ResponseWriter, r *http.Request, blogID string) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.CommentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	var parentID *string
	if req.ParentID != "" {
		parentID = &req.ParentID
	}
	comment, err := h.commentService.Create(r.Context(), blogID, userID, req.Content, parentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBlogNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Msg("failed to create comment")
			http.Error(w, "Failed to create comment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toCommentResponse(comment))
}

func toCommentResponse(c *model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		CommentID:    c.CommentID,
		BlogID:       c.BlogID,
		UserID:       c.UserID,
		AuthorName:   c.AuthorName,
		AuthorAvatar: c.AuthorAvatar,
		Content:      c.Content,
		ParentID:     c.ParentCommentID,
		CreatedAt:    c.CreatedAt,
	}
}
