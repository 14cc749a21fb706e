package config

// DiscoveryConfig toggles mDNS peer discovery.
type DiscoveryConfig struct {
	// MDNSEnabled toggles the mDNS discovery service.
	MDNSEnabled bool `json:"mdns_enabled"`

	// MDNSAutoConnect dials peers discovered via mDNS automatically
	// and adds them to the DHT routing table.
	MDNSAutoConnect bool `json:"mdns_auto_connect"`
}

// DefaultDiscoveryConfig enables mDNS with auto-connect, matching the
// loopback propagation scenario in spec §8 (S4).
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		MDNSEnabled:     true,
		MDNSAutoConnect: true,
	}
}

func (c *DiscoveryConfig) Validate() error { return nil }
