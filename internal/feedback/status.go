package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

// UpdateStatus moves a post to another lifecycle state. Only admins may call
// it, and the status must be one of the four known values.
func (s *Service) UpdateStatus(ctx context.Context, user *models.User, postID int, status string) (*models.Post, error) {
	if !user.IsAdmin() {
		return nil, ErrUnauthorized
	}

	next, err := models.ParseStatus(status)
	if err != nil {
		return nil, fieldError("status", "Status must be one of: under_review, planned, in_progress, completed")
	}
	if !validPostID(postID) {
		return nil, ErrNotFound
	}

	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"status":     string(next),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update status of post %d: %w", postID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetPost(ctx, user, postID)
}
