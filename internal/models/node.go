package models

// NodeStatusValue indicates whether a node answered all status probes.
type NodeStatusValue string

const (
	StatusOnline  NodeStatusValue = "ONLINE"
	StatusOffline NodeStatusValue = "OFFLINE"
)

// NodeEndpoint is a registered full node. Name is the identity key and
// must be unique within the store.
type NodeEndpoint struct {
	Name string `json:"name"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

// NodeStatus is the per-request view of one endpoint. TotalBlocks and
// BeaconHeight are only set when the node is online.
type NodeStatus struct {
	Name         string          `json:"name"`
	Host         string          `json:"host"`
	Port         int             `json:"port"`
	Status       NodeStatusValue `json:"status"`
	TotalBlocks  *uint64         `json:"totalBlocks,omitempty"`
	BeaconHeight *uint64         `json:"beaconHeight,omitempty"`
}
