package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/feedback-board/backend/internal/feedback"
	"github.com/emilythestrangee/feedback-board/backend/internal/middleware"
	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

type AdminHandler struct {
	svc FeedbackService
}

func NewAdminHandler(svc FeedbackService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// GetPosts feeds the admin table: every post plus per-status counts.
func (h *AdminHandler) GetPosts(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := h.svc.ListPosts(ctx, middleware.CurrentUser(c), feedback.PostFilter{
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	counts, err := h.svc.StatusCounts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":         posts,
		"status_counts": counts,
	})
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	post, err := h.svc.UpdateStatus(c.Request.Context(), middleware.CurrentUser(c), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}
