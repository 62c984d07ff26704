package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchfleet/orchd/internal/busproto"
	"github.com/orchfleet/orchd/internal/events"
	"github.com/orchfleet/orchd/internal/node"
)

// wireRecorder wraps one side of a net.Pipe to record, in the exact
// order the orchestrator's writePump goroutine wrote them onto the
// wire, every frame sent to a client — the ground truth for "does the
// method reply really get enqueued before the State signal", as
// opposed to inferring it from when the client-side Call happens to
// unblock.
type wireRecorder struct {
	net.Conn
	mu      sync.Mutex
	entries []string
}

func (w *wireRecorder) Write(p []byte) (int, error) {
	var msg busproto.Message
	if err := json.Unmarshal(bytes.TrimRight(p, "\n"), &msg); err == nil {
		label := string(msg.Kind)
		if msg.Member != "" {
			label += ":" + msg.Member
		}
		w.mu.Lock()
		w.entries = append(w.entries, label)
		w.mu.Unlock()
	}
	return w.Conn.Write(p)
}

func (w *wireRecorder) snapshot() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.entries))
	copy(out, w.entries)
	return out
}

// registerNode connects, accepts, and registers a node, then attaches
// a handler for Isolate calls on its own Peer (the node's side).
func registerNode(t *testing.T, o *Orchestrator, name string, isolateFn busproto.HandlerFunc) *busproto.Peer {
	t.Helper()
	nSide, orchSide := net.Pipe()
	n := busproto.NewPeer(nSide)
	o.AcceptNode(busproto.NewPeer(orchSide))

	reply, err := n.Call(node.NodeBasePath, node.NodeIface, "Register", name, time.Second)
	require.NoError(t, err)
	require.Equal(t, busproto.KindReply, reply.Kind)

	n.Handle(node.NodePeerObjectPath, node.NodePeerIface, "Isolate", isolateFn)
	return n
}

func TestTwoNodeFanOutSucceedsWhenBothReply(t *testing.T) {
	o, cancel := newRunningOrchestrator(t)
	defer cancel()

	a := registerNode(t, o, "alpha", func(msg busproto.Message) (any, error) { return "ok", nil })
	b := registerNode(t, o, "bravo", func(msg busproto.Message) (any, error) { return "ok", nil })
	defer a.Close()
	defer b.Close()

	clientSide, orchSide := net.Pipe()
	client := busproto.NewPeer(clientSide)
	defer client.Close()
	o.AcceptClient(busproto.NewPeer(orchSide))

	removed := make(chan events.Event, 1)
	o.bus.Subscribe(func(e events.Event) {
		if e.Type == events.JobRemoved {
			removed <- e
		}
	})

	_, err := client.Call(ObjectPath, Iface, "IsolateAll", "charlie", time.Second)
	require.NoError(t, err)

	select {
	case e := <-removed:
		assert.Empty(t, e.Error)
	case <-time.After(time.Second):
		t.Fatal("job never finished")
	}
}

// TestIsolateAllReachesUnregisteredNode pins DESIGN.md's open-question
// decision 5: fan-out dispatches to every accepted connection, not
// just ones that completed Register, matching orch.c's
// job_isolate_all (LIST_FOREACH over every node, no registration
// check).
func TestIsolateAllReachesUnregisteredNode(t *testing.T) {
	o, cancel := newRunningOrchestrator(t)
	defer cancel()

	nSide, orchSide := net.Pipe()
	n := busproto.NewPeer(nSide)
	defer n.Close()
	o.AcceptNode(busproto.NewPeer(orchSide))

	isolated := make(chan string, 1)
	n.Handle(node.NodePeerObjectPath, node.NodePeerIface, "Isolate", func(msg busproto.Message) (any, error) {
		var target string
		_ = msg.Decode(&target)
		isolated <- target
		return "ok", nil
	})

	clientSide, orchSide2 := net.Pipe()
	client := busproto.NewPeer(clientSide)
	defer client.Close()
	o.AcceptClient(busproto.NewPeer(orchSide2))

	_, err := client.Call(ObjectPath, Iface, "IsolateAll", "echo", time.Second)
	require.NoError(t, err)

	select {
	case target := <-isolated:
		assert.Equal(t, "echo", target)
	case <-time.After(time.Second):
		t.Fatal("unregistered node never received Isolate")
	}
}

func TestDisconnectDuringFanOutStillFinishesJob(t *testing.T) {
	o, cancel := newRunningOrchestrator(t)
	defer cancel()

	a := registerNode(t, o, "alpha", func(msg busproto.Message) (any, error) { return "ok", nil })
	bravoCalled := make(chan struct{}, 1)
	b := registerNode(t, o, "bravo", func(msg busproto.Message) (any, error) {
		bravoCalled <- struct{}{}
		// Never reply: the call stays outstanding until bravo goes away.
		return nil, busproto.ErrAsyncReply
	})
	defer a.Close()

	clientSide, orchSide := net.Pipe()
	client := busproto.NewPeer(clientSide)
	defer client.Close()
	o.AcceptClient(busproto.NewPeer(orchSide))

	removed := make(chan events.Event, 1)
	o.bus.Subscribe(func(e events.Event) {
		if e.Type == events.JobRemoved {
			removed <- e
		}
	})

	_, err := client.Call(ObjectPath, Iface, "IsolateAll", "delta", time.Second)
	require.NoError(t, err)

	// bravo disconnects mid-flight; its outstanding Isolate call
	// resolves via ErrClosed rather than a reply, which the fan-out
	// must still count toward outstanding reaching zero.
	select {
	case <-bravoCalled:
	case <-time.After(time.Second):
		t.Fatal("bravo never received Isolate")
	}
	b.Close()

	select {
	case e := <-removed:
		assert.NotEmpty(t, e.Error, "a disconnected node should count as a failure")
	case <-time.After(time.Second):
		t.Fatal("job never finished")
	}
}

// TestIsolateAllReplySentBeforeStateSignalOnWire guards spec.md §8's
// ordering law directly against the wire, not against when Call
// happens to return: the orchestrator must enqueue the IsolateAll
// reply onto the client connection before it broadcasts the job's
// State=running signal, on every run, not merely most of the time.
func TestIsolateAllReplySentBeforeStateSignalOnWire(t *testing.T) {
	o, cancel := newRunningOrchestrator(t)
	defer cancel()

	a := registerNode(t, o, "alpha", func(msg busproto.Message) (any, error) { return "ok", nil })
	defer a.Close()

	clientSide, orchSide := net.Pipe()
	client := busproto.NewPeer(clientSide)
	defer client.Close()

	rec := &wireRecorder{Conn: orchSide}
	o.AcceptClient(busproto.NewPeer(rec))

	removed := make(chan events.Event, 1)
	o.bus.Subscribe(func(e events.Event) {
		if e.Type == events.JobRemoved {
			removed <- e
		}
	})

	reply, err := client.Call(ObjectPath, Iface, "IsolateAll", "echo", time.Second)
	require.NoError(t, err)
	assert.Equal(t, busproto.KindReply, reply.Kind)

	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("job never finished")
	}

	var replyIdx, stateIdx int = -1, -1
	for i, entry := range rec.snapshot() {
		if entry == "reply" && replyIdx == -1 {
			replyIdx = i
		}
		if entry == "signal:State" && stateIdx == -1 {
			stateIdx = i
		}
	}
	require.NotEqual(t, -1, replyIdx, "IsolateAll reply was never written to the wire")
	require.NotEqual(t, -1, stateIdx, "no State signal was ever written to the wire")
	assert.Less(t, replyIdx, stateIdx,
		"method reply must be enqueued on the wire strictly before the job's State signal")
}
