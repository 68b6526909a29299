package rpc

import "encoding/json"

// request is the JSON-RPC envelope the node expects
type request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// response is the JSON-RPC envelope the node returns
type response struct {
	Result json.RawMessage `json:"Result"`
	Error  *Error          `json:"Error"`
	ID     int             `json:"Id"`
}

// Error is an application-level error returned by the node
type Error struct {
	Code       int    `json:"Code"`
	Message    string `json:"Message"`
	StackTrace string `json:"StackTrace,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NetworkInfo is the liveness probe result
type NetworkInfo struct {
	Version         string `json:"Version"`
	SubVersion      string `json:"SubVersion"`
	ProtocolVersion string `json:"ProtocolVersion"`
	Connections     int    `json:"Connections"`
}

// BeaconBestState is the current head of the beacon chain
type BeaconBestState struct {
	BeaconHeight  uint64 `json:"BeaconHeight"`
	BestBlockHash string `json:"BestBlockHash"`
	Epoch         uint64 `json:"Epoch"`
	ActiveShards  int    `json:"ActiveShards"`
}

// ShardBestState is the current head of one shard chain
type ShardBestState struct {
	ShardID       int    `json:"ShardID"`
	ShardHeight   uint64 `json:"ShardHeight"`
	BestBlockHash string `json:"BestBlockHash"`
	Epoch         uint64 `json:"Epoch"`
	TotalTxns     uint64 `json:"TotalTxns"`
}

// Block is a raw block as reported by the node. Fee, Reward and
// TxHashes may be absent depending on chain and verbosity.
type Block struct {
	Hash          string   `json:"Hash"`
	Height        uint64   `json:"Height"`
	BlockProducer string   `json:"BlockProducer"`
	TxHashes      []string `json:"TxHashes"`
	Fee           uint64   `json:"Fee"`
	Reward        uint64   `json:"Reward"`
	Time          int64    `json:"Time"`
}
