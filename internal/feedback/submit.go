package feedback

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

// SubmitFeedback validates the form and stores a new post owned by user. New
// posts always start under review with no votes.
func (s *Service) SubmitFeedback(ctx context.Context, user *models.User, in SubmitInput) (*models.Post, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	post := models.Post{
		Title:       in.Title,
		Category:    models.Category(in.Category),
		Description: in.Description,
		Status:      models.StatusUnderReview,
		AuthorID:    user.ID,
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	post.Author = user
	return &post, nil
}
