package busproto

import "errors"

// Sentinel errors mirroring the bus-level failure modes spec.md §7
// requires callers to be able to distinguish.
var (
	// ErrAddressInUse is returned by Listen when the configured node
	// listen address or client bus socket path is already bound. The
	// orchestrator also wraps it when rejecting a node's Register call
	// (node already named, or name taken).
	ErrAddressInUse = errors.New("busproto: address already in use")

	// ErrNoMemory is returned when a message body cannot be encoded
	// for send; surfaced so callers can fail a job rather than wedge
	// waiting on a reply that will never arrive.
	ErrNoMemory = errors.New("busproto: allocation failed")

	// ErrTimeout is returned by Call/CallAsync when no reply arrives
	// within the requested deadline.
	ErrTimeout = errors.New("busproto: call timed out")

	// ErrClosed is returned by any operation attempted on a peer whose
	// underlying connection has already gone away.
	ErrClosed = errors.New("busproto: peer connection closed")

	// ErrUnknownMethod is returned (and sent back as an error reply)
	// when an inbound Call names a path/interface/member with no
	// registered handler.
	ErrUnknownMethod = errors.New("busproto: unknown method")

	// ErrAsyncReply is returned by a HandlerFunc that has taken over
	// responsibility for replying itself via ReplyTo/ReplyError, rather
	// than returning a body for dispatchInbound to send. A caller whose
	// reply ordering must be pinned relative to other messages it emits
	// on this connection (e.g. a state-change signal that must follow a
	// method reply) uses this to guarantee both writes are enqueued by
	// the same goroutine in the right order, instead of leaving the
	// reply to race with whatever else is writing to the peer.
	ErrAsyncReply = errors.New("busproto: reply sent asynchronously by handler")
)
