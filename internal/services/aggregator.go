package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/internal/models"
	"github.com/kyvra-tech/shard-node-dashboard/internal/rpc"
	"github.com/kyvra-tech/shard-node-dashboard/internal/store"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/logger"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/metrics"
)

// blockPageSize is how many of the most recent blocks a chain listing returns
const blockPageSize = 10

// beaconChainName labels the beacon chain in chain and block listings
const beaconChainName = "Beacon"

// StatusAggregator turns stored endpoints plus live RPC calls into flat
// display models. All derived data is rebuilt per request; the
// aggregator holds no mutable state and is safe for concurrent use.
type StatusAggregator struct {
	store         store.Store
	newClient     rpc.Factory
	logger        *logrus.Logger
	metrics       *metrics.Metrics
	maxConcurrent int
}

// NewStatusAggregator creates a status aggregator over the given store
// and RPC client factory
func NewStatusAggregator(
	nodeStore store.Store,
	newClient rpc.Factory,
	maxConcurrent int,
	logger *logrus.Logger,
) *StatusAggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &StatusAggregator{
		store:         nodeStore,
		newClient:     newClient,
		logger:        logger,
		metrics:       metrics.NewMetrics(),
		maxConcurrent: maxConcurrent,
	}
}

// StatusOf probes one endpoint with three sequential RPC calls. All
// three must succeed for ONLINE; any failure degrades to OFFLINE with
// the numeric fields absent. The error is logged, never propagated, so
// one unreachable node cannot abort a batch.
func (a *StatusAggregator) StatusOf(ctx context.Context, endpoint models.NodeEndpoint) *models.NodeStatus {
	status := &models.NodeStatus{
		Name:   endpoint.Name,
		Host:   endpoint.Host,
		Port:   endpoint.Port,
		Status: models.StatusOffline,
	}

	start := time.Now()
	client := a.newClient(endpoint)

	err := func() error {
		if _, err := client.GetNetworkInfo(ctx); err != nil {
			return err
		}

		count, err := client.GetBlockCount(ctx, models.BeaconChainIndex)
		if err != nil {
			return err
		}

		state, err := client.GetBeaconBestState(ctx)
		if err != nil {
			return err
		}

		status.Status = models.StatusOnline
		status.TotalBlocks = &count
		status.BeaconHeight = &state.BeaconHeight
		return nil
	}()

	a.metrics.RecordStatusCheck(err == nil, time.Since(start))

	if err != nil {
		logger.WithRequest(ctx, a.logger).WithFields(logrus.Fields{
			"name": endpoint.Name,
			"host": endpoint.Host,
			"port": endpoint.Port,
		}).WithError(err).Warn("Node status probe failed")
	}

	return status
}

// StatusOfAll queries every stored endpoint concurrently, bounded by a
// semaphore. Results keep the store's insertion order regardless of
// completion order.
func (a *StatusAggregator) StatusOfAll(ctx context.Context) ([]*models.NodeStatus, error) {
	endpoints, err := a.store.List()
	if err != nil {
		return nil, err
	}

	a.metrics.UpdateRegisteredNodesCount(len(endpoints))

	results := make([]*models.NodeStatus, len(endpoints))
	semaphore := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup

	for i, endpoint := range endpoints {
		wg.Add(1)
		go func(i int, ep models.NodeEndpoint) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = a.StatusOf(ctx, ep)
		}(i, endpoint)
	}

	wg.Wait()
	return results, nil
}

// ChainsOf builds the chain listing for one node: the beacon chain at
// index -1 plus every active shard, queried in parallel and sorted
// ascending by index. The listing is all-or-nothing: any failure, or an
// unknown node name, degrades the whole response to an empty chain list
// tagged with the requested name.
func (a *StatusAggregator) ChainsOf(ctx context.Context, name string) *models.NodeChains {
	degraded := &models.NodeChains{
		Name:   name,
		Chains: []models.ChainSummary{},
	}

	endpoint, err := a.store.FindByName(name)
	if err != nil {
		logger.WithRequest(ctx, a.logger).WithField("name", name).WithError(err).Warn("Chain listing failed")
		return degraded
	}

	client := a.newClient(*endpoint)

	beacon, err := client.GetBeaconBestState(ctx)
	if err != nil {
		logger.WithRequest(ctx, a.logger).WithField("name", name).WithError(err).Warn("Beacon best state unavailable")
		return degraded
	}

	// The shard count comes from the node; a malformed response must not
	// crash the listing.
	if beacon.ActiveShards < 0 {
		logger.WithRequest(ctx, a.logger).WithFields(logrus.Fields{
			"name":          name,
			"active_shards": beacon.ActiveShards,
		}).Warn("Beacon best state reports invalid shard count")
		return degraded
	}

	shardChains := make([]models.ChainSummary, beacon.ActiveShards)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var shardErr error

	for i := 0; i < beacon.ActiveShards; i++ {
		wg.Add(1)
		go func(shardID int) {
			defer wg.Done()

			state, err := client.GetShardBestState(ctx, shardID)
			if err != nil {
				mu.Lock()
				if shardErr == nil {
					shardErr = err
				}
				mu.Unlock()
				return
			}

			shardChains[shardID] = models.ChainSummary{
				Name:     shardChainName(shardID),
				Height:   state.ShardHeight,
				Hash:     state.BestBlockHash,
				Epoch:    state.Epoch,
				TotalTxs: state.TotalTxns,
				Index:    shardID,
			}
		}(i)
	}

	wg.Wait()

	if shardErr != nil {
		logger.WithRequest(ctx, a.logger).WithField("name", name).WithError(shardErr).Warn("Shard best state unavailable")
		return degraded
	}

	chains := make([]models.ChainSummary, 0, beacon.ActiveShards+1)
	chains = append(chains, models.ChainSummary{
		Name:   beaconChainName,
		Height: beacon.BeaconHeight,
		Hash:   beacon.BestBlockHash,
		Epoch:  beacon.Epoch,
		Index:  models.BeaconChainIndex,
	})
	chains = append(chains, shardChains...)

	sort.Slice(chains, func(i, j int) bool {
		return chains[i].Index < chains[j].Index
	})

	status := a.StatusOf(ctx, *endpoint)

	return &models.NodeChains{
		Name:         status.Name,
		Host:         status.Host,
		Port:         status.Port,
		Status:       status.Status,
		TotalBlocks:  status.TotalBlocks,
		BeaconHeight: status.BeaconHeight,
		Chains:       chains,
	}
}

// BlocksOf fetches the most recent blocks of one chain. ShardID -1
// denotes the beacon chain. The chain's height and producer come from
// the highest block in the batch, not from its position.
func (a *StatusAggregator) BlocksOf(ctx context.Context, name string, shardID int) (*models.ChainBlocks, error) {
	endpoint, err := a.store.FindByName(name)
	if err != nil {
		return nil, err
	}

	client := a.newClient(*endpoint)

	raw, err := client.GetBlocks(ctx, blockPageSize, shardID)
	if err != nil {
		return nil, models.NewRPCError("getblocks", err)
	}

	chainName := beaconChainName
	if shardID >= 0 {
		chainName = shardChainName(shardID)
	}

	result := &models.ChainBlocks{
		Name:    chainName,
		ShardID: shardID,
		Blocks:  make([]models.BlockSummary, 0, len(raw)),
	}

	for _, block := range raw {
		result.Blocks = append(result.Blocks, toBlockSummary(block))
		if block.Height > result.TotalBlocks {
			result.TotalBlocks = block.Height
			result.Producer = block.BlockProducer
		}
	}

	return result, nil
}

// BlockOf retrieves a single block by hash
func (a *StatusAggregator) BlockOf(ctx context.Context, name, hash string) (*models.BlockSummary, error) {
	endpoint, err := a.store.FindByName(name)
	if err != nil {
		return nil, err
	}

	client := a.newClient(*endpoint)

	block, err := client.RetrieveBlock(ctx, hash)
	if err != nil {
		return nil, models.NewRPCError("retrieveblock", err)
	}

	summary := toBlockSummary(*block)
	return &summary, nil
}

func toBlockSummary(block rpc.Block) models.BlockSummary {
	return models.BlockSummary{
		Height:   block.Height,
		Hash:     block.Hash,
		Producer: block.BlockProducer,
		TxCount:  len(block.TxHashes),
		Fee:      block.Fee,
		Reward:   block.Reward,
		Time:     block.Time,
	}
}

func shardChainName(shardID int) string {
	return fmt.Sprintf("Shard %d", shardID)
}
