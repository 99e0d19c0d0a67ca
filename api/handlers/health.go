package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/customeros/mailadmin/dto"
)

type CacheSizer interface {
	Len() int
}

type PoolSizer interface {
	Size() int
}

type HealthHandler struct {
	version   string
	startedAt time.Time
	cache     CacheSizer
	pool      PoolSizer
	now       func() time.Time
}

func NewHealthHandler(version string, startedAt time.Time, cache CacheSizer, pool PoolSizer) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startedAt: startedAt,
		cache:     cache,
		pool:      pool,
		now:       time.Now,
	}
}

// HealthCheck provides a simple health check endpoint
func (h *HealthHandler) HealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := h.now()
		response := dto.HealthResponse{
			Success:   true,
			Status:    "ok",
			Timestamp: now.UTC().Format(time.RFC3339),
			Uptime:    now.Sub(h.startedAt).Seconds(),
			Version:   h.version,
		}
		if h.cache != nil {
			response.CachedLists = h.cache.Len()
		}
		if h.pool != nil {
			response.Connections = h.pool.Size()
		}
		c.JSON(http.StatusOK, response)
	}
}
