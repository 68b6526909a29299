package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
	"github.com/kyvra-tech/shard-node-dashboard/internal/store"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/errors"
)

// NodeHandler exposes the command surface as REST routes
type NodeHandler struct {
	store      store.Store
	aggregator Aggregator
	logger     *logrus.Logger
}

func NewNodeHandler(nodeStore store.Store, aggregator Aggregator, logger *logrus.Logger) *NodeHandler {
	return &NodeHandler{
		store:      nodeStore,
		aggregator: aggregator,
		logger:     logger,
	}
}

// GetNodes returns the status of every registered endpoint
func (h *NodeHandler) GetNodes(c *gin.Context) {
	statuses, err := h.aggregator.StatusOfAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to retrieve node statuses")
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// AddNode registers a new endpoint and returns its probed status
func (h *NodeHandler) AddNode(c *gin.Context) {
	var endpoint models.NodeEndpoint
	if err := c.ShouldBindJSON(&endpoint); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.store.Add(endpoint); err != nil {
		h.respondError(c, err, "Failed to add node")
		return
	}

	c.JSON(http.StatusCreated, h.aggregator.StatusOf(c.Request.Context(), endpoint))
}

// DeleteNode removes an endpoint by name and echoes the name back
func (h *NodeHandler) DeleteNode(c *gin.Context) {
	name := c.Param("name")

	if err := h.store.Remove(name); err != nil {
		h.respondError(c, err, "Failed to delete node")
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name})
}

// ExportNodes copies the endpoint record to the requested path
func (h *NodeHandler) ExportNodes(c *gin.Context) {
	var params TransferParams
	if err := c.ShouldBindJSON(&params); err != nil || params.Path == "" {
		c.JSON(http.StatusOK, gin.H{"result": "cancel"})
		return
	}

	if err := h.store.Export(params.Path); err != nil {
		h.respondError(c, err, "Failed to export nodes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// ImportNodes replaces the endpoint record from the requested path
func (h *NodeHandler) ImportNodes(c *gin.Context) {
	var params TransferParams
	if err := c.ShouldBindJSON(&params); err != nil || params.Path == "" {
		c.JSON(http.StatusOK, gin.H{"result": "cancel"})
		return
	}

	if err := h.store.Import(params.Path); err != nil {
		h.respondError(c, err, "Failed to import nodes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// GetChains returns the chain listing for one node. A failed or unknown
// node yields an empty chain list, not an error status.
func (h *NodeHandler) GetChains(c *gin.Context) {
	name := c.Param("name")
	c.JSON(http.StatusOK, h.aggregator.ChainsOf(c.Request.Context(), name))
}

// GetBlocks returns the most recent blocks of one chain
func (h *NodeHandler) GetBlocks(c *gin.Context) {
	name := c.Param("name")

	shardID, err := strconv.Atoi(c.Param("shardId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shard id"})
		return
	}

	blocks, err := h.aggregator.BlocksOf(c.Request.Context(), name, shardID)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve blocks")
		return
	}

	c.JSON(http.StatusOK, blocks)
}

// GetBlock returns a single block by hash
func (h *NodeHandler) GetBlock(c *gin.Context) {
	name := c.Param("name")
	hash := c.Param("hash")

	block, err := h.aggregator.BlockOf(c.Request.Context(), name, hash)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve block")
		return
	}

	c.JSON(http.StatusOK, block)
}

// respondError maps application errors to HTTP responses
func (h *NodeHandler) respondError(c *gin.Context, err error, message string) {
	h.logger.WithError(err).Error(message)

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr)
		return
	}

	internal := models.NewInternalError(message, err)
	c.JSON(internal.StatusCode, internal)
}
