package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/service"
	"github.com/sporthub-api/internal/validation"
)

// respondError maps a service error to its HTTP status and body
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	if ve, ok := validation.AsErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": ve,
		})
		return
	}

	var wait *cooldown.WaitError
	if errors.As(err, &wait) {
		secs := wait.Seconds()
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       err.Error(),
			"retry_after": secs,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrArticleNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNestedReply):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pageParam reads the 1-based ?page= query parameter
func pageParam(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.DefaultQuery("page", "1"))
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return 0, false
	}
	return page, true
}
