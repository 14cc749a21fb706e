// Package errs declares the error taxonomy shared by every Netabase
// subsystem. Callers see exactly these categories; internal packages
// wrap one of these sentinels with %w so errors.Is/errors.As survive
// the command/reply boundary.
package errs

import "errors"

var (
	// ────────────────────────────────────────────────────────────────
	// Lifecycle
	// ────────────────────────────────────────────────────────────────

	// ErrNotInitialized is returned when an operation is issued before
	// the node has been constructed.
	ErrNotInitialized = errors.New("netabase: not initialized")

	// ErrNotRunning is returned when an operation is issued before
	// StartSwarm has completed.
	ErrNotRunning = errors.New("netabase: not running")

	// ErrAlreadyRunning is returned by StartSwarm when called twice.
	ErrAlreadyRunning = errors.New("netabase: already running")

	// ErrShutdown is returned to every pending reply channel when the
	// event loop exits.
	ErrShutdown = errors.New("netabase: shutdown")

	// ────────────────────────────────────────────────────────────────
	// DHT query outcomes
	// ────────────────────────────────────────────────────────────────

	// ErrTimeout is returned when a DHT query does not complete within
	// its configured deadline.
	ErrTimeout = errors.New("netabase: query timeout")

	// ErrQuorumFailed is returned when a put could not reach the
	// requested number of replicas.
	ErrQuorumFailed = errors.New("netabase: quorum failed")

	// ErrNotFound is returned when a get completes without locating a
	// record.
	ErrNotFound = errors.New("netabase: not found")

	// ────────────────────────────────────────────────────────────────
	// Codec / storage
	// ────────────────────────────────────────────────────────────────

	// ErrSerialization is returned when a codec encode/decode fails,
	// including a corrupt record or provider wrapper on disk.
	ErrSerialization = errors.New("netabase: serialization failed")

	// ErrStorage is returned when the embedded engine reports an error
	// on an operation the store's contract allows to fail.
	ErrStorage = errors.New("netabase: storage error")

	// ErrStoreFull is returned when a put would exceed max_records.
	ErrStoreFull = errors.New("netabase: record store full")

	// ErrMaxProvidedKeys is returned when this node's locally-provided
	// set is already at max_provided_keys.
	ErrMaxProvidedKeys = errors.New("netabase: max provided keys reached")

	// ────────────────────────────────────────────────────────────────
	// Network
	// ────────────────────────────────────────────────────────────────

	// ErrConnectionRefused is returned when a peer actively refuses a
	// connection attempt.
	ErrConnectionRefused = errors.New("netabase: connection refused")

	// ErrDialError is returned when the transport fails to establish a
	// connection for any other reason.
	ErrDialError = errors.New("netabase: dial error")

	// ErrPeerNotFound is returned when an operation names a peer the
	// local node has no route to.
	ErrPeerNotFound = errors.New("netabase: peer not found")

	// ────────────────────────────────────────────────────────────────
	// Command protocol
	// ────────────────────────────────────────────────────────────────

	// ErrNotImplemented is returned by command categories the spec
	// names but leaves unimplemented (transactions, range queries,
	// pubsub, export/import, backup/restore). It is not part of the
	// original error table; it exists so declared-but-unbuilt commands
	// fail loudly instead of silently succeeding.
	ErrNotImplemented = errors.New("netabase: not implemented")

	// ErrInvalidCommand is returned when a command fails local
	// validation before being dispatched (e.g. an empty key).
	ErrInvalidCommand = errors.New("netabase: invalid command")
)
