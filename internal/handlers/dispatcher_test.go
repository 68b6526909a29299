package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
	"github.com/kyvra-tech/shard-node-dashboard/internal/store"
)

// stubAggregator satisfies Aggregator with canned answers
type stubAggregator struct {
	statuses []*models.NodeStatus
	chains   *models.NodeChains
	blocks   *models.ChainBlocks
	block    *models.BlockSummary
	err      error
}

func (s *stubAggregator) StatusOf(ctx context.Context, endpoint models.NodeEndpoint) *models.NodeStatus {
	return &models.NodeStatus{
		Name:   endpoint.Name,
		Host:   endpoint.Host,
		Port:   endpoint.Port,
		Status: models.StatusOffline,
	}
}

func (s *stubAggregator) StatusOfAll(ctx context.Context) ([]*models.NodeStatus, error) {
	return s.statuses, s.err
}

func (s *stubAggregator) ChainsOf(ctx context.Context, name string) *models.NodeChains {
	if s.chains != nil {
		return s.chains
	}
	return &models.NodeChains{Name: name, Chains: []models.ChainSummary{}}
}

func (s *stubAggregator) BlocksOf(ctx context.Context, name string, shardID int) (*models.ChainBlocks, error) {
	return s.blocks, s.err
}

func (s *stubAggregator) BlockOf(ctx context.Context, name, hash string) (*models.BlockSummary, error) {
	return s.block, s.err
}

func newTestRouter(t *testing.T, aggregator Aggregator) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	nodeStore := store.NewFileStore(filepath.Join(t.TempDir(), "nodes.json"), logger)
	dispatcher := NewDispatcher(nodeStore, aggregator, logger)

	router := gin.New()
	router.POST("/rpc", dispatcher.HandleRequest)

	return router, nodeStore
}

func perform(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) CommandResponse {
	t.Helper()

	var response CommandResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestDispatcher_MethodNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{})

	recorder := perform(t, router, `{"jsonrpc":"2.0","method":"no-such-op","id":1}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeResponse(t, recorder)
	require.NotNil(t, response.Error)
	assert.Equal(t, -32601, response.Error.Code)
}

func TestDispatcher_GetNodes(t *testing.T) {
	height := uint64(100)
	router, _ := newTestRouter(t, &stubAggregator{
		statuses: []*models.NodeStatus{
			{Name: "a", Status: models.StatusOnline, BeaconHeight: &height},
			{Name: "b", Status: models.StatusOffline},
		},
	})

	recorder := perform(t, router, `{"jsonrpc":"2.0","method":"get-nodes","id":1}`)

	response := decodeResponse(t, recorder)
	require.Nil(t, response.Error)

	data, err := json.Marshal(response.Result)
	require.NoError(t, err)

	var statuses []models.NodeStatus
	require.NoError(t, json.Unmarshal(data, &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, models.StatusOnline, statuses[0].Status)
	assert.Nil(t, statuses[1].BeaconHeight)
}

func TestDispatcher_AddNodeAndConflict(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{})

	body := `{"jsonrpc":"2.0","method":"add-node","params":{"name":"n1","host":"10.0.0.1","port":9334},"id":1}`

	response := decodeResponse(t, perform(t, router, body))
	require.Nil(t, response.Error)

	// Same name again is rejected with a conflict
	response = decodeResponse(t, perform(t, router, body))
	require.NotNil(t, response.Error)
	assert.Equal(t, -32000, response.Error.Code)
	assert.Equal(t, string(models.ErrCodeNameConflict), response.Error.Data)
}

func TestDispatcher_DeleteNodeEchoesName(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{})

	recorder := perform(t, router, `{"jsonrpc":"2.0","method":"delete-node","params":{"name":"gone"},"id":7}`)

	response := decodeResponse(t, recorder)
	require.Nil(t, response.Error)
	assert.Equal(t, "gone", response.Result)
	assert.Equal(t, float64(7), response.ID)
}

func TestDispatcher_ExportWithoutPathIsCancel(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{})

	response := decodeResponse(t, perform(t, router, `{"jsonrpc":"2.0","method":"export-nodes","id":1}`))
	require.Nil(t, response.Error)
	assert.Equal(t, "cancel", response.Result)

	response = decodeResponse(t, perform(t, router, `{"jsonrpc":"2.0","method":"import-nodes","params":{},"id":1}`))
	require.Nil(t, response.Error)
	assert.Equal(t, "cancel", response.Result)
}

func TestDispatcher_ExportToPath(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{})

	dst := filepath.Join(t.TempDir(), "out.json")
	body, err := json.Marshal(CommandRequest{
		JSONRPC: "2.0",
		Method:  "export-nodes",
		Params:  json.RawMessage(`{"path":"` + dst + `"}`),
		ID:      1,
	})
	require.NoError(t, err)

	response := decodeResponse(t, perform(t, router, string(body)))
	require.Nil(t, response.Error)
	assert.Equal(t, "success", response.Result)
}

func TestDispatcher_GetChainsAlwaysSucceeds(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{})

	recorder := perform(t, router, `{"jsonrpc":"2.0","method":"get-chains","params":{"name":"ghost"},"id":1}`)

	response := decodeResponse(t, recorder)
	require.Nil(t, response.Error)

	data, err := json.Marshal(response.Result)
	require.NoError(t, err)

	var chains models.NodeChains
	require.NoError(t, json.Unmarshal(data, &chains))
	assert.Equal(t, "ghost", chains.Name)
	assert.Empty(t, chains.Chains)
}

func TestDispatcher_GetBlocksFailure(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{
		err: models.NewRPCError("getblocks", assert.AnError),
	})

	recorder := perform(t, router, `{"jsonrpc":"2.0","method":"get-blocks","params":{"name":"x","shardId":0},"id":1}`)

	response := decodeResponse(t, recorder)
	require.NotNil(t, response.Error)
	assert.Equal(t, -32000, response.Error.Code)
	assert.Equal(t, string(models.ErrCodeRPC), response.Error.Data)
}

func TestDispatcher_BatchRequest(t *testing.T) {
	router, _ := newTestRouter(t, &stubAggregator{})

	body := `[
		{"jsonrpc":"2.0","method":"get-nodes","id":1},
		{"jsonrpc":"2.0","method":"no-such-op","id":2}
	]`

	recorder := perform(t, router, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var responses []CommandResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &responses))
	require.Len(t, responses, 2)
	assert.Nil(t, responses[0].Error)
	require.NotNil(t, responses[1].Error)
	assert.Equal(t, -32601, responses[1].Error.Code)
}
