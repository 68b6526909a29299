package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/metrics"
)

// Client issues remote calls against a single full node
type Client interface {
	GetNetworkInfo(ctx context.Context) (*NetworkInfo, error)
	GetBlockCount(ctx context.Context, shardID int) (uint64, error)
	GetBeaconBestState(ctx context.Context) (*BeaconBestState, error)
	GetShardBestState(ctx context.Context, shardID int) (*ShardBestState, error)
	GetBlocks(ctx context.Context, count, shardID int) ([]Block, error)
	RetrieveBlock(ctx context.Context, hash string) (*Block, error)
}

// Factory builds a Client for one endpoint
type Factory func(endpoint models.NodeEndpoint) Client

// NewFactory returns a Factory producing HTTP JSON-RPC clients with the
// given per-call timeout.
func NewFactory(timeout time.Duration, logger *logrus.Logger) Factory {
	return func(endpoint models.NodeEndpoint) Client {
		return NewHTTPClient(endpoint, timeout, logger)
	}
}

// HTTPClient talks JSON-RPC over HTTP to one node. Every call is
// bounded by the configured timeout.
type HTTPClient struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
	metrics    *metrics.Metrics
}

// NewHTTPClient creates a JSON-RPC client for the given endpoint
func NewHTTPClient(endpoint models.NodeEndpoint, timeout time.Duration, logger *logrus.Logger) *HTTPClient {
	scheme := "http"
	if endpoint.Port == 443 {
		scheme = "https"
	}

	return &HTTPClient{
		url:     fmt.Sprintf("%s://%s:%d", scheme, endpoint.Host, endpoint.Port),
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics.NewMetrics(),
	}
}

func (c *HTTPClient) GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	var info NetworkInfo
	if err := c.call(ctx, "getnetworkinfo", []interface{}{}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) GetBlockCount(ctx context.Context, shardID int) (uint64, error) {
	var count uint64
	if err := c.call(ctx, "getblockcount", []interface{}{shardID}, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *HTTPClient) GetBeaconBestState(ctx context.Context) (*BeaconBestState, error) {
	var state BeaconBestState
	if err := c.call(ctx, "getbeaconbeststate", []interface{}{}, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *HTTPClient) GetShardBestState(ctx context.Context, shardID int) (*ShardBestState, error) {
	var state ShardBestState
	if err := c.call(ctx, "getshardbeststate", []interface{}{shardID}, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *HTTPClient) GetBlocks(ctx context.Context, count, shardID int) ([]Block, error) {
	var blocks []Block
	if err := c.call(ctx, "getblocks", []interface{}{count, shardID}, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (c *HTTPClient) RetrieveBlock(ctx context.Context, hash string) (*Block, error) {
	var block Block
	if err := c.call(ctx, "retrieveblock", []interface{}{hash, "1"}, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// call performs one JSON-RPC round trip and decodes the result into out
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.doCall(ctx, method, params, out)
	c.metrics.RecordRpcCall(method, err == nil, time.Since(start))

	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"url":    c.url,
			"method": method,
		}).WithError(err).Debug("RPC call failed")
	}

	return err
}

func (c *HTTPClient) doCall(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(request{
		JSONRPC: "1.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: HTTP %d: %s", method, resp.StatusCode, string(responseBody))
	}

	var envelope response
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		return fmt.Errorf("%s: invalid response: %w", method, err)
	}

	if envelope.Error != nil {
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}

	return nil
}
