package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/config"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/service"
)

// CommentHandler handles comment, reply and like endpoints
type CommentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// ListComments handles GET /v1/articles/:article_id/comments?page=N
func (h *CommentHandler) ListComments(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := h.services.Comment.ListComments(c.Request.Context(), c.Param("article_id"), viewerID(c), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListReplies handles GET /v1/comments/:comment_id/replies?page=N
func (h *CommentHandler) ListReplies(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := h.services.Comment.ListReplies(c.Request.Context(), c.Param("comment_id"), viewerID(c), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PostComment handles POST /v1/articles/:article_id/comments
func (h *CommentHandler) PostComment(c *gin.Context) {
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Comments.SubmitTimeout)
	defer cancel()

	comment, err := h.services.Comment.PostComment(ctx, c.Param("article_id"), viewerID(c), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// PostReply handles POST /v1/comments/:comment_id/replies
func (h *CommentHandler) PostReply(c *gin.Context) {
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Comments.SubmitTimeout)
	defer cancel()

	reply, err := h.services.Comment.PostReply(ctx, c.Param("comment_id"), viewerID(c), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// ToggleLike handles POST /v1/comments/:comment_id/like
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	result, err := h.services.Comment.ToggleLike(c.Request.Context(), c.Param("comment_id"), viewerID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
