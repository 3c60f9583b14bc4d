package feedback

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

// PostFilter narrows ListPosts. Empty fields match everything.
type PostFilter struct {
	Category string
	Status   string
}

type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int64           `json:"count"`
}

type StatusCount struct {
	Status models.Status `json:"status"`
	Count  int64         `json:"count"`
}

// Stats are the headline numbers shown on the landing page.
type Stats struct {
	TotalPosts     int64 `json:"total_posts"`
	TotalVotes     int64 `json:"total_votes"`
	CompletedPosts int64 `json:"completed_posts"`
}

// postsQuery selects posts with their author, vote count and whether viewer
// has voted. A nil viewer never has a vote.
func (s *Service) postsQuery(ctx context.Context, viewer *models.User) *gorm.DB {
	viewerID := 0
	if viewer != nil {
		viewerID = viewer.ID
	}

	return s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(`posts.*,
			(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id) AS vote_count,
			EXISTS (SELECT 1 FROM votes WHERE votes.post_id = posts.id AND votes.user_id = ?) AS has_voted`,
			viewerID,
		).
		Preload("Author")
}

// ListPosts returns posts newest first.
func (s *Service) ListPosts(ctx context.Context, viewer *models.User, f PostFilter) ([]models.Post, error) {
	q := s.postsQuery(ctx, viewer)

	if f.Category != "" {
		c, err := models.ParseCategory(f.Category)
		if err != nil {
			return nil, fieldError("category", "Category must be one of: "+models.CategoryList())
		}
		q = q.Where("posts.category = ?", string(c))
	}
	if f.Status != "" {
		st, err := models.ParseStatus(f.Status)
		if err != nil {
			return nil, fieldError("status", "Status must be one of: under_review, planned, in_progress, completed")
		}
		q = q.Where("posts.status = ?", string(st))
	}

	posts := []models.Post{}
	if err := q.Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *Service) GetPost(ctx context.Context, viewer *models.User, id int) (*models.Post, error) {
	if !validPostID(id) {
		return nil, ErrNotFound
	}

	var post models.Post
	err := s.postsQuery(ctx, viewer).Where("posts.id = ?", id).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &post, nil
}

// CategoryCounts returns how many posts each category has. Categories with
// no posts are omitted.
func (s *Service) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	counts := []CategoryCount{}
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	return counts, nil
}

// StatusCounts returns a count for every status in roadmap order, including
// statuses with no posts.
func (s *Service) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}

	byStatus := make(map[models.Status]int64, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r.Count
	}

	out := make([]StatusCount, len(models.Statuses))
	for i, st := range models.Statuses {
		out[i] = StatusCount{Status: st, Count: byStatus[st]}
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Post{}).Count(&st.TotalPosts).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if err := db.Model(&models.Vote{}).Count(&st.TotalVotes).Error; err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	err := db.Model(&models.Post{}).
		Where("status = ?", string(models.StatusCompleted)).
		Count(&st.CompletedPosts).Error
	if err != nil {
		return nil, fmt.Errorf("count completed posts: %w", err)
	}
	return &st, nil
}
