package service

import (
	"context"

	"app/internal/model"
	"app/internal/repository"

	"github.com/google/uuid"
)

// CommentService manages comments on blog posts.
type CommentService interface {
	Create(ctx context.Context, blogID, userID, content string, parentCommentID *string) (*model.Comment, error)
	ListByBlog(ctx context.Context, blogID string, limit, offset int) ([]model.Comment, int, error)
}

type commentService struct {
	repo     repository.CommentRepository
	blogRepo repository.BlogRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(repo repository.CommentRepository, blogRepo repository.BlogRepository) CommentService {
	return &commentService{repo: repo, blogRepo: blogRepo}
}

func (s *commentService) Create(ctx context.Context, blogID, userID, content string, parentCommentID *string) (*model.Comment, error) {
	blog, err := s.blogRepo.GetBlogByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}

	comment := &model.Comment{
		CommentID:       uuid.NewString(),
		BlogID:          blogID,
		UserID:          userID,
		Content:         content,
		ParentCommentID: parentCommentID,
		Status:          model.CommentApproved,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) ListByBlog(ctx context.Context, blogID string, limit, offset int) ([]model.Comment, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByBlog(ctx, blogID, limit, offset)
}
