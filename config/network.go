package config

import "fmt"

// NetworkConfig configures the libp2p host's listen and bootstrap
// addresses.
type NetworkConfig struct {
	// ListenAddresses are multiaddresses to bind, e.g.
	// "/ip4/0.0.0.0/tcp/4001" or "/ip4/0.0.0.0/udp/4001/quic-v1".
	ListenAddresses []string `json:"listen_addresses"`

	// BootstrapAddresses are peers to dial at startup, as full
	// multiaddresses including the /p2p/<peerID> suffix.
	BootstrapAddresses []string `json:"bootstrap_addresses"`
}

// DefaultNetworkConfig listens on an OS-assigned TCP and QUIC port.
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		ListenAddresses: []string{
			"/ip4/0.0.0.0/tcp/0",
			"/ip4/0.0.0.0/udp/0/quic-v1",
		},
	}
}

func (c *NetworkConfig) Validate() error {
	if len(c.ListenAddresses) == 0 {
		return fmt.Errorf("network: at least one listen address is required")
	}
	return nil
}
