package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
	"github.com/kyvra-tech/shard-node-dashboard/internal/store"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/errors"
)

// Aggregator is the slice of the status aggregator the command surface needs
type Aggregator interface {
	StatusOf(ctx context.Context, endpoint models.NodeEndpoint) *models.NodeStatus
	StatusOfAll(ctx context.Context) ([]*models.NodeStatus, error)
	ChainsOf(ctx context.Context, name string) *models.NodeChains
	BlocksOf(ctx context.Context, name string, shardID int) (*models.ChainBlocks, error)
	BlockOf(ctx context.Context, name, hash string) (*models.BlockSummary, error)
}

// CommandRequest is the JSON-RPC 2.0 envelope of the command surface
type CommandRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

// CommandResponse is the JSON-RPC 2.0 response envelope
type CommandResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *CommandError `json:"error,omitempty"`
	ID      interface{}   `json:"id"`
}

// CommandError is the JSON-RPC error object
type CommandError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Parameter payloads per command

type AddNodeParams struct {
	Name string `json:"name"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DeleteNodeParams struct {
	Name string `json:"name"`
}

type TransferParams struct {
	Path string `json:"path"`
}

type GetChainsParams struct {
	Name string `json:"name"`
}

type GetBlocksParams struct {
	Name    string `json:"name"`
	ShardID int    `json:"shardId"`
}

type GetBlockParams struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Dispatcher routes named commands to store and aggregator operations.
// It is a plain routing table: no retries, no queuing.
type Dispatcher struct {
	store      store.Store
	aggregator Aggregator
	logger     *logrus.Logger
}

// NewDispatcher creates a command dispatcher
func NewDispatcher(nodeStore store.Store, aggregator Aggregator, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		store:      nodeStore,
		aggregator: aggregator,
		logger:     logger,
	}
}

// HandleRequest serves single and batch JSON-RPC requests on one route
func (d *Dispatcher) HandleRequest(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		d.logger.WithError(err).Error("Failed to read request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	// Batch requests start with '['
	if len(body) > 0 && body[0] == '[' {
		d.handleBatchRequest(c, body)
		return
	}

	var req CommandRequest
	if err := json.Unmarshal(body, &req); err != nil {
		d.logger.WithError(err).Error("Failed to parse command request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse command request"})
		return
	}

	response := d.processRequest(c.Request.Context(), req)
	c.JSON(http.StatusOK, response)
}

func (d *Dispatcher) handleBatchRequest(c *gin.Context, body []byte) {
	var requests []CommandRequest
	if err := json.Unmarshal(body, &requests); err != nil {
		d.logger.WithError(err).Error("Failed to parse batch command request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse batch request"})
		return
	}

	responses := make([]CommandResponse, len(requests))
	for i, req := range requests {
		responses[i] = d.processRequest(c.Request.Context(), req)
	}

	c.JSON(http.StatusOK, responses)
}

// processRequest routes a single command to its operation
func (d *Dispatcher) processRequest(ctx context.Context, req CommandRequest) CommandResponse {
	response := CommandResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
	}

	var result interface{}
	var methodErr error

	switch req.Method {
	case "add-node":
		var params AddNodeParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			response.Error = invalidParamsError(err)
			return response
		}
		result, methodErr = d.addNode(ctx, params)
	case "delete-node":
		var params DeleteNodeParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			response.Error = invalidParamsError(err)
			return response
		}
		result, methodErr = d.deleteNode(params)
	case "get-nodes":
		result, methodErr = d.aggregator.StatusOfAll(ctx)
	case "export-nodes":
		var params TransferParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			response.Error = invalidParamsError(err)
			return response
		}
		result, methodErr = d.exportNodes(params)
	case "import-nodes":
		var params TransferParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			response.Error = invalidParamsError(err)
			return response
		}
		result, methodErr = d.importNodes(params)
	case "get-chains":
		var params GetChainsParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			response.Error = invalidParamsError(err)
			return response
		}
		result = d.aggregator.ChainsOf(ctx, params.Name)
	case "get-blocks":
		var params GetBlocksParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			response.Error = invalidParamsError(err)
			return response
		}
		result, methodErr = d.aggregator.BlocksOf(ctx, params.Name, params.ShardID)
	case "get-block":
		var params GetBlockParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			response.Error = invalidParamsError(err)
			return response
		}
		result, methodErr = d.aggregator.BlockOf(ctx, params.Name, params.Hash)
	default:
		d.logger.WithField("method", req.Method).Error("Method not found")
		response.Error = &CommandError{
			Code:    -32601,
			Message: "Method not found",
		}
	}

	if methodErr != nil {
		d.logger.WithField("method", req.Method).WithError(methodErr).Error("Failed to process command")
		response.Error = commandError(methodErr)
	} else if response.Error == nil {
		response.Result = result
	}

	return response
}

func (d *Dispatcher) addNode(ctx context.Context, params AddNodeParams) (*models.NodeStatus, error) {
	endpoint := models.NodeEndpoint{
		Name: params.Name,
		Host: params.Host,
		Port: params.Port,
	}

	if err := d.store.Add(endpoint); err != nil {
		return nil, err
	}

	return d.aggregator.StatusOf(ctx, endpoint), nil
}

func (d *Dispatcher) deleteNode(params DeleteNodeParams) (string, error) {
	if err := d.store.Remove(params.Name); err != nil {
		return "", err
	}
	return params.Name, nil
}

// exportNodes copies the endpoint record to the chosen path. An empty
// path means the user dismissed the destination picker: a cancellation,
// not an error.
func (d *Dispatcher) exportNodes(params TransferParams) (string, error) {
	if params.Path == "" {
		return "cancel", nil
	}
	if err := d.store.Export(params.Path); err != nil {
		return "", err
	}
	return "success", nil
}

func (d *Dispatcher) importNodes(params TransferParams) (string, error) {
	if params.Path == "" {
		return "cancel", nil
	}
	if err := d.store.Import(params.Path); err != nil {
		return "", err
	}
	return "success", nil
}

// unmarshalParams tolerates absent params; commands with defaults
// (e.g. export without a chosen path) rely on the zero value.
func unmarshalParams(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func invalidParamsError(err error) *CommandError {
	return &CommandError{
		Code:    -32602,
		Message: "Invalid params",
		Data:    err.Error(),
	}
}

func commandError(err error) *CommandError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return &CommandError{
			Code:    -32000,
			Message: appErr.Message,
			Data:    appErr.Code,
		}
	}
	return &CommandError{
		Code:    -32000,
		Message: err.Error(),
	}
}
