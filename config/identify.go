package config

// IdentifyConfig configures the values sent to peers during the
// libp2p identify handshake.
type IdentifyConfig struct {
	// ProtocolVersion is advertised as the node's protocol family
	// version, e.g. "netabase/1.0.0".
	ProtocolVersion string `json:"protocol_version"`

	// AgentVersion is advertised as a free-form user agent string.
	AgentVersion string `json:"agent_version"`
}

func DefaultIdentifyConfig() IdentifyConfig {
	return IdentifyConfig{
		ProtocolVersion: "netabase/1.0.0",
		AgentVersion:    "netabase-go/0.1.0",
	}
}

func (c *IdentifyConfig) Validate() error { return nil }
