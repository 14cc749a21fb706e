package config

import "time"

// SwarmConfig paces the transport layer: how long idle connections
// are kept, how many inbound streams may negotiate concurrently, and
// how many dials run in parallel.
type SwarmConfig struct {
	ConnectionIdleTimeout        Duration `json:"connection_idle_timeout"`
	MaxNegotiatingInboundStreams int      `json:"max_negotiating_inbound_streams"`
	DialConcurrencyFactor        int      `json:"dial_concurrency_factor"`
}

func DefaultSwarmConfig() SwarmConfig {
	return SwarmConfig{
		ConnectionIdleTimeout:        Duration(30 * time.Minute),
		MaxNegotiatingInboundStreams: 128,
		DialConcurrencyFactor:        8,
	}
}

func (c *SwarmConfig) Validate() error { return nil }
