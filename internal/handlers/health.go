package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/store"
)

type HealthHandler struct {
	store   store.Store
	logger  *logrus.Logger
	version string
}

func NewHealthHandler(nodeStore store.Store, logger *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		store:   nodeStore,
		logger:  logger,
		version: version,
	}
}

// Health performs a basic health check
func (h *HealthHandler) Health(c *gin.Context) {
	// The service is healthy when the endpoint record is readable
	if _, err := h.store.List(); err != nil {
		h.logger.WithError(err).Error("Endpoint store health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC(),
			"version":   h.version,
			"error":     "endpoint store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	})
}
