package models

// BeaconChainIndex is the index assigned to the beacon chain in chain
// listings; shards use their zero-based shard index.
const BeaconChainIndex = -1

// ChainSummary describes the best state of one chain (beacon or shard).
type ChainSummary struct {
	Name     string `json:"name"`
	Height   uint64 `json:"height"`
	Hash     string `json:"hash"`
	Epoch    uint64 `json:"epoch"`
	TotalTxs uint64 `json:"totalTxs,omitempty"`
	Index    int    `json:"index"`
}

// BlockSummary is the flat display model for one block. Optional numeric
// fields default to zero when the node omits them.
type BlockSummary struct {
	Height   uint64 `json:"height"`
	Hash     string `json:"hash"`
	Producer string `json:"producer"`
	TxCount  int    `json:"txCount"`
	Fee      uint64 `json:"fee"`
	Reward   uint64 `json:"reward"`
	Time     int64  `json:"time"`
}

// NodeChains is a node status together with its chain listing. A failed
// chain query degrades to an empty Chains slice with only Name set.
type NodeChains struct {
	Name         string          `json:"name"`
	Host         string          `json:"host,omitempty"`
	Port         int             `json:"port,omitempty"`
	Status       NodeStatusValue `json:"status,omitempty"`
	TotalBlocks  *uint64         `json:"totalBlocks,omitempty"`
	BeaconHeight *uint64         `json:"beaconHeight,omitempty"`
	Chains       []ChainSummary  `json:"chains"`
}

// ChainBlocks is the block listing for one chain of a node. TotalBlocks
// and Producer are derived from the highest block in the fetched batch.
type ChainBlocks struct {
	Name        string         `json:"name"`
	ShardID     int            `json:"shardId"`
	TotalBlocks uint64         `json:"totalBlocks"`
	Producer    string         `json:"producer"`
	Blocks      []BlockSummary `json:"blocks"`
}
