package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/feedback-board/backend/internal/middleware"
)

type VoteHandler struct {
	svc FeedbackService
}

func NewVoteHandler(svc FeedbackService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Toggle handles POST /votes with {"post_id": n}.
func (h *VoteHandler) Toggle(c *gin.Context) {
	var input struct {
		PostID int `json:"post_id" binding:"required,gt=0,lte=2147483647"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	h.toggle(c, input.PostID)
}

// VotePost handles POST /posts/:id/vote.
func (h *VoteHandler) VotePost(c *gin.Context) {
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	h.toggle(c, id)
}

func (h *VoteHandler) toggle(c *gin.Context, postID int) {
	result, err := h.svc.ToggleVote(c.Request.Context(), middleware.CurrentUser(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
