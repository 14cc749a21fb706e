// Package identity loads or generates the Ed25519 keypair a Node uses
// as its libp2p identity, persisting it alongside the record store so
// a node's peer.ID survives restarts. Adapted from the teacher's
// internal/core/identity key-storage idiom (PEM-encoded private key on
// disk, generate-on-first-run), simplified to the one key type
// go-libp2p's own default host setup prefers.
package identity

import (
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/libp2p/go-libp2p/core/crypto"
)

const pemBlockType = "NETABASE PRIVATE KEY"

// LoadOrGenerate reads an Ed25519 private key from path, or generates
// and persists a fresh one if the file does not exist.
func LoadOrGenerate(path string) (crypto.PrivKey, error) {
	priv, err := load(path)
	if err == nil {
		return priv, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	priv, _, err = crypto.GenerateEd25519Key(nil)
	if err != nil {
		return nil, fmt.Errorf("identity: generating key: %w", err)
	}
	if err := save(priv, path); err != nil {
		return nil, fmt.Errorf("identity: persisting key: %w", err)
	}
	return priv, nil
}

func load(path string) (crypto.PrivKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemBlockType {
		return nil, fmt.Errorf("identity: %s is not a valid identity key file", path)
	}
	priv, err := crypto.UnmarshalPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("identity: unmarshaling key: %w", err)
	}
	return priv, nil
}

func save(priv crypto.PrivKey, path string) error {
	raw, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	block := &pem.Block{Type: pemBlockType, Bytes: raw}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}
