package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getFeed returns the requester's timeline: their own posts plus posts by
// everyone they follow, newest first. The limit query parameter is optional
// and clamped by the feed service.
func (r *Router) getFeed(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	posts, err := r.feed.Assemble(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		r.logger.Error("feed assembly failed", zap.Int64("user_id", currentUserID(c)), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to assemble feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
