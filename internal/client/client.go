// Package client is the orchctl-facing counterpart of the
// orchestrator's bus listener: it dials the daemon's Unix socket,
// wraps the connection in a busproto.Peer, and exposes the
// orchestrator's methods as plain Go calls.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/orchfleet/orchd/internal/busproto"
	"github.com/orchfleet/orchd/internal/orchestrator"
)

// defaultCallTimeout is used when ctx carries no deadline.
const defaultCallTimeout = 30 * time.Second

// Client wraps the bus connection and peer used to talk to orchd.
type Client struct {
	conn net.Conn
	peer *busproto.Peer
}

// New dials the daemon's client bus socket at socketPath.
func New(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", socketPath, err)
	}
	return &Client{conn: conn, peer: busproto.NewPeer(conn)}, nil
}

// Close releases the underlying bus connection. It is safe to call
// Close multiple times.
func (c *Client) Close() error {
	return c.peer.Close()
}

// Closed returns a channel that closes once the connection to orchd
// has gone away, for any reason.
func (c *Client) Closed() <-chan struct{} {
	return c.peer.Closed()
}

func callTimeout(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return defaultCallTimeout
}

func (c *Client) call(ctx context.Context, member string, body any, reply any) error {
	msg, err := c.peer.Call(orchestrator.ObjectPath, orchestrator.Iface, member, body, callTimeout(ctx))
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	return msg.Decode(reply)
}

// IsolateAll asks every connected node, registered or not, to isolate
// target. Returns the new job's ID.
func (c *Client) IsolateAll(ctx context.Context, target string) (uint32, error) {
	var id uint32
	if err := c.call(ctx, "IsolateAll", target, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// DrainAll asks every connected node to drain target, waiting up to
// graceSeconds plus the daemon's per-call timeout before treating a
// node as unresponsive. graceSeconds <= 0 uses the daemon's configured
// default. Returns the new job's ID.
func (c *Client) DrainAll(ctx context.Context, target string, graceSeconds int) (uint32, error) {
	args := struct {
		Target       string `json:"target"`
		GraceSeconds int    `json:"grace_seconds"`
	}{Target: target, GraceSeconds: graceSeconds}
	var id uint32
	if err := c.call(ctx, "DrainAll", args, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListJobs returns a snapshot of every live job, running or waiting.
// Finished jobs are already removed and do not appear.
func (c *Client) ListJobs(ctx context.Context) ([]JobSnapshot, error) {
	var jobs []JobSnapshot
	if err := c.call(ctx, "ListJobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobStatus returns the current snapshot for a single job. Returns
// an error if the job ID does not exist.
func (c *Client) GetJobStatus(ctx context.Context, id uint32) (JobSnapshot, error) {
	var snap JobSnapshot
	if err := c.call(ctx, "GetJobStatus", id, &snap); err != nil {
		return JobSnapshot{}, err
	}
	return snap, nil
}

// CancelJob cancels a waiting or running job. Returns an error if the
// job ID does not exist.
func (c *Client) CancelJob(ctx context.Context, id uint32) error {
	var ok bool
	return c.call(ctx, "CancelJob", id, &ok)
}

// ListNodes returns a snapshot of every connected fleet member, named
// and unnamed alike.
func (c *Client) ListNodes(ctx context.Context) ([]NodeSnapshot, error) {
	var nodes []NodeSnapshot
	if err := c.call(ctx, "ListNodes", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Health checks daemon liveness and current fleet size. This is a
// lightweight call suitable for polling.
func (c *Client) Health(ctx context.Context) (HealthInfo, error) {
	var info HealthInfo
	if err := c.call(ctx, "Health", nil, &info); err != nil {
		return HealthInfo{}, err
	}
	return info, nil
}

// SubscribeJobs registers handlers for every JobNew/State/JobRemoved
// signal broadcast on the bus, unfiltered by job id. Intended for
// fleet-wide dashboards; WatchJob is the single-job equivalent.
// Handlers run on the connection's read pump goroutine, so callers
// that need to touch other state (a bubbletea program, say) must
// hand off via a channel or Program.Send rather than mutating shared
// state directly.
func (c *Client) SubscribeJobs(onNew, onState, onRemoved func(JobSnapshot)) {
	decode := func(handler func(JobSnapshot)) func(busproto.Message) {
		return func(msg busproto.Message) {
			var snap JobSnapshot
			if err := msg.Decode(&snap); err != nil {
				return
			}
			handler(snap)
		}
	}
	c.peer.OnSignal(orchestrator.ObjectPath, orchestrator.Iface, "JobNew", decode(onNew))
	c.peer.OnSignal(orchestrator.ObjectPath, orchestrator.Iface, "State", decode(onState))
	c.peer.OnSignal(orchestrator.ObjectPath, orchestrator.Iface, "JobRemoved", decode(onRemoved))
}

// WatchJob subscribes to State and JobRemoved signals for id, calling
// handler for every snapshot observed. It blocks until the job is
// removed (returns nil), ctx is cancelled (returns ctx.Err()), or the
// connection is lost.
func (c *Client) WatchJob(ctx context.Context, id uint32, handler func(JobSnapshot)) error {
	done := make(chan error, 1)
	var once bool

	onSnapshot := func(msg busproto.Message, removed bool) {
		var snap JobSnapshot
		if err := msg.Decode(&snap); err != nil || snap.ID != id {
			return
		}
		handler(snap)
		if removed && !once {
			once = true
			done <- nil
		}
	}

	c.peer.OnSignal(orchestrator.ObjectPath, orchestrator.Iface, "State", func(msg busproto.Message) {
		onSnapshot(msg, false)
	})
	c.peer.OnSignal(orchestrator.ObjectPath, orchestrator.Iface, "JobRemoved", func(msg busproto.Message) {
		onSnapshot(msg, true)
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.peer.Closed():
		return fmt.Errorf("connection to orchd closed")
	}
}
