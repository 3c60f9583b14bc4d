package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/feedback-board/backend/internal/feedback"
	"github.com/emilythestrangee/feedback-board/backend/internal/middleware"
	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

// FeedbackService is the part of feedback.Service the HTTP layer uses.
type FeedbackService interface {
	SubmitFeedback(ctx context.Context, user *models.User, in feedback.SubmitInput) (*models.Post, error)
	ToggleVote(ctx context.Context, user *models.User, postID int) (feedback.VoteResult, error)
	UpdateStatus(ctx context.Context, user *models.User, postID int, status string) (*models.Post, error)
	ListPosts(ctx context.Context, viewer *models.User, f feedback.PostFilter) ([]models.Post, error)
	GetPost(ctx context.Context, viewer *models.User, id int) (*models.Post, error)
	CategoryCounts(ctx context.Context) ([]feedback.CategoryCount, error)
	StatusCounts(ctx context.Context) ([]feedback.StatusCount, error)
	Roadmap(ctx context.Context, viewer *models.User) (*feedback.Roadmap, error)
	Stats(ctx context.Context) (*feedback.Stats, error)
}

// Handler combines all handler types
type Handler struct {
	Auth  *AuthHandler
	Post  *PostHandler
	Vote  *VoteHandler
	Admin *AdminHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc FeedbackService) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(),
		Post:  NewPostHandler(svc),
		Vote:  NewVoteHandler(svc),
		Admin: NewAdminHandler(svc),
	}
}

// respondError maps service errors to status codes. Anything unexpected is
// logged and answered with a bare 500.
func respondError(c *gin.Context, err error) {
	var verr *feedback.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, feedback.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, feedback.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	default:
		slog.Error("request failed",
			"request_id", middleware.RequestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parsePostID(c *gin.Context) (int, bool) {
	// Post ids are int4 in the database.
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return 0, false
	}
	return int(id), true
}
