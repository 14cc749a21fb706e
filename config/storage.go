package config

import "fmt"

// StorageConfig configures the embedded record store (§4.2/§6).
//
// Path is the root directory of the BadgerDB database. Netabase
// partitions the keyspace underneath it into "records" and
// "providers", never separate databases, so restarts only ever touch
// one on-disk directory.
type StorageConfig struct {
	// Path is the root directory of the embedded engine.
	Path string `json:"path"`

	// MaxRecords is an advisory bound on the total number of stored
	// records. Exceeding it on already-stored data is permitted; only
	// new puts are rejected.
	MaxRecords int `json:"max_records"`

	// MaxValueBytes bounds a single record's value size.
	MaxValueBytes int `json:"max_value_bytes"`

	// MaxProvidersPerKey is K, the Kademlia replication factor bound
	// on provider-list length for a single key.
	MaxProvidersPerKey int `json:"max_providers_per_key"`

	// MaxProvidedKeys bounds the size of this node's own
	// locally-provided set.
	MaxProvidedKeys int `json:"max_provided_keys"`
}

// DefaultStorageConfig returns the spec's default capacity bounds.
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Path:               "./data/netabase.db",
		MaxRecords:         0, // 0 = unbounded
		MaxValueBytes:      1 << 20,
		MaxProvidersPerKey: 20,
		MaxProvidedKeys:    1024,
	}
}

func (c *StorageConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("storage: path cannot be empty")
	}
	if c.MaxProvidersPerKey <= 0 {
		return fmt.Errorf("storage: max_providers_per_key must be positive")
	}
	if c.MaxProvidedKeys <= 0 {
		return fmt.Errorf("storage: max_provided_keys must be positive")
	}
	return nil
}
