package config

import "time"

// Preset names recognized by ApplyPreset.
const (
	PresetNameServer = "server"
	PresetNameClient = "client"
	PresetNameLocal  = "local"
)

// NewServerPreset returns a config tuned for an always-on replica: the
// DHT always participates as a server and mDNS is disabled (servers
// are expected to reach each other via bootstrap addresses, not LAN
// broadcast).
func NewServerPreset() *Config {
	cfg := DefaultConfig()
	cfg.DHT.Mode = DHTModeServer
	cfg.Discovery.MDNSEnabled = false
	cfg.Discovery.MDNSAutoConnect = false
	return cfg
}

// NewClientPreset returns a config for a node that queries the DHT
// but never stores records for others.
func NewClientPreset() *Config {
	cfg := DefaultConfig()
	cfg.DHT.Mode = DHTModeClient
	return cfg
}

// NewLocalPreset returns a config for the two-node loopback scenario
// in spec §8 (S4): mDNS enabled with auto-connect, a short query
// timeout so tests fail fast.
func NewLocalPreset() *Config {
	cfg := DefaultConfig()
	cfg.DHT.QueryTimeout = Duration(5 * time.Second)
	return cfg
}

// ApplyPreset mutates cfg in place to match the named preset, leaving
// fields the preset doesn't govern untouched.
func ApplyPreset(cfg *Config, name string) error {
	var preset *Config
	switch name {
	case PresetNameServer:
		preset = NewServerPreset()
	case PresetNameClient:
		preset = NewClientPreset()
	case PresetNameLocal:
		preset = NewLocalPreset()
	default:
		return nil
	}
	cfg.DHT.Mode = preset.DHT.Mode
	cfg.Discovery = preset.Discovery
	cfg.DHT.QueryTimeout = preset.DHT.QueryTimeout
	return nil
}
