package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/internal/cache"
	"github.com/wyejay/MedPeer/internal/search"
)

// searchCacheTTL bounds staleness of cached search result blocks
const searchCacheTTL = 30 * time.Second

// getSearch runs a full-text search over posts and users. An unknown type
// selector or a blank query yields an empty result set, not an error.
// Result blocks are cached briefly under a hash of the query and selector.
func (r *Router) getSearch(c *gin.Context) {
	query := c.Query("q")

	typ, ok := search.ParseType(c.Query("type"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"query": query, "results": []search.Result{}})
		return
	}

	trimmed := strings.TrimSpace(query)
	cacheKey := "search:" + cache.HashKey(trimmed, string(typ))
	if trimmed != "" {
		if cached, err := r.cache.Get(cacheKey); err == nil {
			var results []search.Result
			if json.Unmarshal([]byte(cached), &results) == nil {
				c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
				return
			}
		}
	}

	results, err := r.search.Search(c.Request.Context(), query, typ)
	if err != nil {
		r.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "search failed")
		return
	}

	if trimmed != "" {
		if data, err := json.Marshal(results); err == nil {
			if err := r.cache.Set(cacheKey, string(data), searchCacheTTL); err != nil && err != cache.ErrCacheDisabled {
				r.logger.Warn("failed to cache search results", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}
