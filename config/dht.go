package config

import (
	"fmt"
	"time"
)

// DHTMode selects go-libp2p-kad-dht's routing table participation.
type DHTMode int

const (
	// DHTModeAuto lets the DHT decide based on observed reachability.
	DHTModeAuto DHTMode = iota
	// DHTModeServer always answers queries and stores records.
	DHTModeServer
	// DHTModeClient only issues queries, never stores for others.
	DHTModeClient
)

func (m DHTMode) String() string {
	switch m {
	case DHTModeServer:
		return "server"
	case DHTModeClient:
		return "client"
	default:
		return "auto"
	}
}

// DHTConfig configures the Kademlia behaviour (§6).
type DHTConfig struct {
	// ReplicationFactor is K, the default write quorum and provider
	// list bound.
	ReplicationFactor int `json:"replication_factor"`

	// QueryTimeout is the per-query deadline.
	QueryTimeout Duration `json:"query_timeout"`

	// Mode selects server/client/auto participation.
	Mode DHTMode `json:"mode"`
}

// DefaultDHTConfig mirrors spec §3's defaults (K=20, 60s timeout).
func DefaultDHTConfig() DHTConfig {
	return DHTConfig{
		ReplicationFactor: 20,
		QueryTimeout:      Duration(60 * time.Second),
		Mode:              DHTModeAuto,
	}
}

func (c *DHTConfig) Validate() error {
	if c.ReplicationFactor <= 0 {
		return fmt.Errorf("dht: replication_factor must be positive")
	}
	if c.QueryTimeout.Duration() <= 0 {
		return fmt.Errorf("dht: query_timeout must be positive")
	}
	return nil
}
