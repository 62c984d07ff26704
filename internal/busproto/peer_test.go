package busproto

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipePeers() (*Peer, *Peer) {
	a, b := net.Pipe()
	return NewPeer(a), NewPeer(b)
}

func TestCallReceivesReplyFromHandler(t *testing.T) {
	client, server := pipePeers()
	defer client.Close()
	defer server.Close()

	server.Handle("/org/orchfleet/Orchestrator", "org.orchfleet.Orchestrator", "Ping", func(msg Message) (any, error) {
		var arg string
		require.NoError(t, msg.Decode(&arg))
		return "pong:" + arg, nil
	})

	reply, err := client.Call("/org/orchfleet/Orchestrator", "org.orchfleet.Orchestrator", "Ping", "hi", time.Second)
	require.NoError(t, err)

	var got string
	require.NoError(t, reply.Decode(&got))
	assert.Equal(t, "pong:hi", got)
}

func TestCallUnknownMethodReturnsError(t *testing.T) {
	client, server := pipePeers()
	defer client.Close()
	defer server.Close()

	reply, err := client.Call("/x", "y", "Z", nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, KindError, reply.Kind)
}

func TestCallTimesOutWhenNoReply(t *testing.T) {
	client, server := pipePeers()
	defer client.Close()
	defer server.Close()

	server.Handle("/x", "y", "Slow", func(msg Message) (any, error) {
		time.Sleep(50 * time.Millisecond)
		return nil, nil
	})

	_, err := client.Call("/x", "y", "Slow", nil, 5*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCallAsyncInvokesCallbackOnClose(t *testing.T) {
	client, server := pipePeers()
	defer server.Close()

	done := make(chan error, 1)
	client.CallAsync("/x", "y", "Z", nil, time.Second, func(msg Message, err error) {
		done <- err
	})

	client.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("callback never invoked")
	}
}

func TestEmitIsOneWay(t *testing.T) {
	client, server := pipePeers()
	defer client.Close()
	defer server.Close()

	received := make(chan Message, 1)
	server.OnSignal("/x", "y", "Signal", func(msg Message) {
		received <- msg
	})

	require.NoError(t, client.Emit("/x", "y", "Signal", "payload"))

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("signal never delivered")
	}
}
