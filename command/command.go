// Package command is the tagged command/response protocol the event
// loop (internal/engine) consumes and the public facade (root package)
// produces, per spec §4.4. Every command that expects a result embeds
// a reply channel; fire-and-forget commands carry a nil one.
package command

import (
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	"github.com/netabase/netabase/config"
)

// Command is the marker interface every command struct implements.
// Category() identifies which reply-routing table in the event loop
// handles it.
type Command interface {
	Category() Category
}

// Category groups commands exactly as spec §4.4 does.
type Category int

const (
	CategorySystem Category = iota
	CategoryDatabase
	CategoryNetwork
	CategoryConfiguration
)

func (c Category) String() string {
	switch c {
	case CategorySystem:
		return "system"
	case CategoryDatabase:
		return "database"
	case CategoryNetwork:
		return "network"
	case CategoryConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Response is a small tagged union carried on a command's reply
// channel: exactly one of Ok or Err is set.
type Response struct {
	Ok  any
	Err error
}

func Ok(v any) Response   { return Response{Ok: v} }
func Err(e error) Response { return Response{Err: e} }

// ReplyChan is embedded by every command expecting a reply.
type ReplyChan struct {
	Reply chan<- Response
}

// ReplyTo returns c's reply channel, or nil if it is fire-and-forget.
func (c ReplyChan) ReplyTo() chan<- Response { return c.Reply }

// --- System commands (§4.4 System) ---

type Initialize struct {
	ReplyChan
	Config *config.Config
}

func (Initialize) Category() Category { return CategorySystem }

type StartSwarm struct{ ReplyChan }

func (StartSwarm) Category() Category { return CategorySystem }

type StopSwarm struct{ ReplyChan }

func (StopSwarm) Category() Category { return CategorySystem }

type Shutdown struct{ ReplyChan }

func (Shutdown) Category() Category { return CategorySystem }

type QueryState struct{ ReplyChan }

func (QueryState) Category() Category { return CategorySystem }

// NodeState is QueryState's Ok payload.
type NodeState struct {
	Running        bool
	ListenAddrs    []multiaddr.Multiaddr
	ConnectedPeers []peer.ID
}

type HealthCheck struct{ ReplyChan }

func (HealthCheck) Category() Category { return CategorySystem }

// HealthStatus is HealthCheck's Ok payload.
type HealthStatus struct {
	Healthy bool
	Reason  string
}

// Statistics, ExportSnapshot, ImportSnapshot, Backup, and Restore are
// declared per spec §4.4's command surface but not implemented by
// this spec (§9 resolved Open Question) — the event loop answers them
// with errs.ErrNotImplemented without touching any state.

type Statistics struct{ ReplyChan }

func (Statistics) Category() Category { return CategorySystem }

type ExportSnapshot struct{ ReplyChan }

func (ExportSnapshot) Category() Category { return CategorySystem }

type ImportSnapshot struct {
	ReplyChan
	Data []byte
}

func (ImportSnapshot) Category() Category { return CategorySystem }

type Backup struct {
	ReplyChan
	Destination string
}

func (Backup) Category() Category { return CategorySystem }

type Restore struct {
	ReplyChan
	Source string
}

func (Restore) Category() Category { return CategorySystem }

// --- Database commands (§4.4 Database) ---

type Put struct {
	ReplyChan
	Key    []byte
	Value  []byte
	Quorum int
}

func (Put) Category() Category { return CategoryDatabase }

type Get struct {
	ReplyChan
	Key []byte
}

func (Get) Category() Category { return CategoryDatabase }

// GetResult is Get's Ok payload; Found distinguishes a genuinely
// absent key from an empty value.
type GetResult struct {
	Value []byte
	Found bool
}

type Delete struct {
	ReplyChan
	Key []byte
}

func (Delete) Category() Category { return CategoryDatabase }

type Contains struct {
	ReplyChan
	Key []byte
}

func (Contains) Category() Category { return CategoryDatabase }

type PutBatch struct {
	ReplyChan
	Entries []Put
}

func (PutBatch) Category() Category { return CategoryDatabase }

type GetBatch struct {
	ReplyChan
	Keys [][]byte
}

func (GetBatch) Category() Category { return CategoryDatabase }

// Transaction and RangeQuery are declared and compile like any other
// command, per spec §4.4's explicit "specified but unimplemented"
// scope. The event loop answers both at run time with
// errs.ErrNotImplemented.

type Transaction struct {
	ReplyChan
	Ops []Command
}

func (Transaction) Category() Category { return CategoryDatabase }

type RangeQuery struct {
	ReplyChan
	Start, End []byte
}

func (RangeQuery) Category() Category { return CategoryDatabase }

// --- Network commands (§4.4 Network) ---

type ConnectPeer struct {
	ReplyChan
	Addr multiaddr.Multiaddr
}

func (ConnectPeer) Category() Category { return CategoryNetwork }

type DisconnectPeer struct {
	ReplyChan
	Peer peer.ID
}

func (DisconnectPeer) Category() Category { return CategoryNetwork }

type Bootstrap struct{ ReplyChan }

func (Bootstrap) Category() Category { return CategoryNetwork }

type DHTPut struct {
	ReplyChan
	Key    []byte
	Value  []byte
	Quorum int
}

func (DHTPut) Category() Category { return CategoryNetwork }

type DHTGet struct {
	ReplyChan
	Key []byte
}

func (DHTGet) Category() Category { return CategoryNetwork }

type DHTClosestPeers struct {
	ReplyChan
	Key []byte
}

func (DHTClosestPeers) Category() Category { return CategoryNetwork }

type DHTProviders struct {
	ReplyChan
	Key []byte
}

func (DHTProviders) Category() Category { return CategoryNetwork }

// DHTMode reuses config.DHTMode so a ConfigureDHTMode command can't
// drift from the values config.DHTConfig itself accepts.
type ConfigureDHTMode struct {
	ReplyChan
	Mode config.DHTMode
}

func (ConfigureDHTMode) Category() Category { return CategoryNetwork }

type PeerInfo struct {
	ReplyChan
	Peer peer.ID
}

func (PeerInfo) Category() Category { return CategoryNetwork }

// SubscribeTopic and PublishTopic are declared per spec §4.4's
// command surface; pubsub is out of this spec's scope (DESIGN.md Open
// Questions), so both return errs.ErrNotImplemented.

type SubscribeTopic struct {
	ReplyChan
	Topic string
}

func (SubscribeTopic) Category() Category { return CategoryNetwork }

type PublishTopic struct {
	ReplyChan
	Topic string
	Data  []byte
}

func (PublishTopic) Category() Category { return CategoryNetwork }

// --- Configuration commands (§4.4 Configuration) ---

type GetSetting struct {
	ReplyChan
	Path string
}

func (GetSetting) Category() Category { return CategoryConfiguration }

type SetSetting struct {
	ReplyChan
	Path  string
	Value any
}

func (SetSetting) Category() Category { return CategoryConfiguration }

type Reload struct {
	ReplyChan
	Config *config.Config
}

func (Reload) Category() Category { return CategoryConfiguration }

type ValidateConfig struct{ ReplyChan }

func (ValidateConfig) Category() Category { return CategoryConfiguration }

// Merge, Watch, and LoadFrom are declared per spec §4.4; the event
// loop answers all three with errs.ErrNotImplemented.

type Merge struct {
	ReplyChan
	Overlay *config.Config
}

func (Merge) Category() Category { return CategoryConfiguration }

type Watch struct {
	ReplyChan
	Changes chan<- *config.Config
}

func (Watch) Category() Category { return CategoryConfiguration }

type LoadFrom struct {
	ReplyChan
	Path string
}

func (LoadFrom) Category() Category { return CategoryConfiguration }
