package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/feedback-board/backend/internal/feedback"
	"github.com/emilythestrangee/feedback-board/backend/internal/middleware"
	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

type PostHandler struct {
	svc FeedbackService
}

func NewPostHandler(svc FeedbackService) *PostHandler {
	return &PostHandler{svc: svc}
}

// GetPosts lists feedback, optionally filtered by ?category= and ?status=.
func (h *PostHandler) GetPosts(c *gin.Context) {
	filter := feedback.PostFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}

	posts, err := h.svc.ListPosts(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	post, err := h.svc.GetPost(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var input feedback.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	post, err := h.svc.SubmitFeedback(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetCategories(c *gin.Context) {
	counts, err := h.svc.CategoryCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if counts == nil {
		counts = []feedback.CategoryCount{}
	}

	c.JSON(http.StatusOK, counts)
}

func (h *PostHandler) GetRoadmap(c *gin.Context) {
	roadmap, err := h.svc.Roadmap(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, roadmap)
}

func (h *PostHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
