// Package node models a connected orchestrator fleet member: the
// unnamed peer that results from a fresh accept, and the named Node
// it becomes once it calls Register (spec.md §4.1, §4.2).
package node

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/orchfleet/orchd/internal/busproto"
)

// NodeIface is the interface name under which the orchestrator serves
// Register on each accepted node connection, at NodeBasePath.
const NodeIface = "org.orchfleet.Node"

// NodeBasePath is the path at which each node connection's Register
// method is served, and the prefix of a registered node's ObjectPath.
// No per-node object is published to clients under it. It is NOT
// where fan-out calls are dispatched — see NodePeerObjectPath.
const NodeBasePath = "/org/orchfleet/Orchestrator/Node"

// NodePeerObjectPath and NodePeerIface are fixed, name-independent:
// every node peer answers Isolate/Drain here regardless of whether
// (or under what name) it has registered, matching spec.md §6's
// separate NODE_PEER_OBJECT_PATH/NODE_PEER_IFACE from the reserved
// per-node enumeration object above.
const (
	NodePeerObjectPath = "/org/orchfleet/NodePeer"
	NodePeerIface      = "org.orchfleet.NodePeer"
)

// Node is one fleet member's connection, from accept through
// disconnect.
type Node struct {
	// Token is a pre-registration identifier minted at accept time,
	// before the node has chosen a name — the Registry's lookup key,
	// and what the ListNodes client operation reports in place of a
	// name so an operator can tell two not-yet-registered connections
	// apart.
	Token string

	// Peer is the framed connection used to call methods on this node
	// (e.g. Isolate) and to detect disconnection.
	Peer *busproto.Peer

	// Name is the value passed to Register; empty until registration
	// completes (I5: unique, non-empty once set).
	Name string

	// ObjectPath is this node's bus path once named, derived from
	// Name.
	ObjectPath string
}

// New wraps an accepted connection as an as-yet-unnamed Node.
func New(peer *busproto.Peer) *Node {
	return &Node{
		Token: ulid.Make().String(),
		Peer:  peer,
	}
}

// Registered reports whether Register has completed for this node.
func (n *Node) Registered() bool {
	return n.Name != ""
}

// Register assigns name to this node, deriving its object path.
// Callers must have already checked the name is unique via
// Registry.FindByName (I5) before calling Register.
func (n *Node) Register(name string) {
	n.Name = name
	n.ObjectPath = fmt.Sprintf("%s/%s", NodeBasePath, name)
}

// Call asynchronously invokes method against this node's fixed peer
// object (NodePeerObjectPath/NodePeerIface, not the name-derived
// ObjectPath above), passing target as the sole argument and invoking
// cb once a reply arrives or timeout elapses. Used by the isolate
// package to dispatch both Isolate and Drain fan-out calls, which a
// node answers whether or not it has registered a name.
func (n *Node) Call(method, target string, timeout time.Duration, cb func(busproto.Message, error)) {
	n.Peer.CallAsync(NodePeerObjectPath, NodePeerIface, method, target, timeout, cb)
}
