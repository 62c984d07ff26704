// Package orchestrator is the facade that owns the node registry and
// job queue, runs the single-threaded command loop spec.md §5
// requires, and exposes the orchestrator's bus-facing methods
// (IsolateAll, DrainAll, ListJobs, GetJobStatus) to connected clients.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/orchfleet/orchd/internal/busproto"
	"github.com/orchfleet/orchd/internal/events"
	"github.com/orchfleet/orchd/internal/idmint"
	"github.com/orchfleet/orchd/internal/isolate"
	"github.com/orchfleet/orchd/internal/job"
	"github.com/orchfleet/orchd/internal/node"
)

// defaultCallTimeout is used when Config.CallTimeout is zero, matching
// spec.md §4.6's fixed 30-second per-node reply timeout.
const defaultCallTimeout = isolate.CallTimeout

// ObjectPath is the bus path the orchestrator itself is published
// under.
const ObjectPath = "/org/orchfleet/Orchestrator"

// Iface is the interface name the orchestrator's own methods are
// called against.
const Iface = "org.orchfleet.Orchestrator"

// Config holds orchestrator behavior knobs (spec.md §6; ambient
// config layer is SPEC_FULL.md §2 expansion).
type Config struct {
	// DefaultDrainGraceSeconds is used by DrainAll when a client
	// doesn't specify one.
	DefaultDrainGraceSeconds int

	// CallTimeout bounds a single per-node Isolate/Drain RPC. Zero
	// uses defaultCallTimeout (spec.md §4.6's fixed 30s).
	CallTimeout time.Duration
}

// Dependencies bundles external collaborators, following the
// teacher's constructor-injection pattern.
type Dependencies struct {
	Bus *events.Bus
}

// Orchestrator coordinates the fleet: node registry, job queue, and
// the client-facing bus methods/signals built on top of both.
type Orchestrator struct {
	cfg Config
	bus *events.Bus

	registry *node.Registry
	queue    *job.Queue
	minter   *idmint.Minter

	clients map[*busproto.Peer]struct{}

	cmds chan func()
	stop chan struct{}
}

// New constructs an idle Orchestrator. Run must be called to start
// its command loop before any node or client connection is processed.
func New(cfg Config, deps Dependencies) *Orchestrator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	o := &Orchestrator{
		cfg:     cfg,
		bus:     deps.Bus,
		minter:  idmint.New(),
		clients: make(map[*busproto.Peer]struct{}),
		cmds:    make(chan func(), 256),
		stop:    make(chan struct{}),
	}
	o.queue = job.NewQueue(o.post, o.onJobNew, o.onJobStateChanged, o.onJobRemoved)
	o.registry = node.NewRegistry()
	return o
}

// Run drains the command loop until ctx is cancelled or Stop is
// called. This is the sole goroutine that ever touches registry,
// queue, or clients — every other entry point below posts a closure
// onto cmds instead of mutating state directly, which is what makes
// the no-locks, single-threaded model spec.md §5 requires hold in Go.
//
// On the way out it force-cancels every live job directly, rather than
// posting one more closure onto cmds: once this loop stops selecting,
// nothing will ever drain a closure posted after it, so Shutdown
// cannot go through the usual post-and-wait path (see ForceCancelAll).
func (o *Orchestrator) Run(ctx context.Context) error {
	var err error
loop:
	for {
		select {
		case fn := <-o.cmds:
			fn()
		case <-o.stop:
			break loop
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		}
	}
	o.queue.ForceCancelAll()
	return err
}

// Stop ends Run's loop.
func (o *Orchestrator) Stop() {
	close(o.stop)
}

// post schedules fn to run on the command loop. Safe to call from any
// goroutine, including busproto callbacks and Acceptor's onAccept.
func (o *Orchestrator) post(fn func()) {
	o.cmds <- fn
}

// callOnLoop runs fn on the command loop and replies to msg itself
// from there, before returning ErrAsyncReply to tell dispatchInbound
// (running on the connection's readPump goroutine) not to send a
// second reply. Every inbound bus method handler below uses this:
// busproto dispatches Call messages on the readPump goroutine, so
// without this indirection a handler would touch registry/queue state
// concurrently with the run loop and every other connection's
// handlers.
//
// Replying from inside the same posted closure that computes the
// result, rather than handing the result back across resCh for
// readPump to reply with, is what pins the reply strictly ahead of any
// State signal a deferred queue transition broadcasts: Queue.schedule
// posts its tryStart closure onto this same command-loop channel, so
// as long as this closure writes the reply onto peer.out before it
// returns, the loop cannot reach that tryStart closure — and therefore
// cannot broadcast State — until after the reply is already enqueued
// (spec.md §8's "state change observed strictly after the method
// reply").
func callOnLoop[T any](o *Orchestrator, peer *busproto.Peer, msg busproto.Message, fn func() (T, error)) (any, error) {
	o.post(func() {
		val, err := fn()
		if err != nil {
			_ = peer.ReplyError(msg.Serial, err)
			return
		}
		_ = peer.ReplyTo(msg.Serial, val)
	})
	return nil, busproto.ErrAsyncReply
}

// AcceptNode wraps a freshly accepted node connection, installs the
// standard Hello stub, and wires its Register handler (spec.md §4.8's
// two required vtables). Intended as a busproto.Listen onAccept
// callback for the node listener (spec.md §4.1, §4.2).
func (o *Orchestrator) AcceptNode(peer *busproto.Peer) {
	o.post(func() {
		n := node.New(peer)
		o.registry.Add(n)
		o.bus.Emit(events.NewEvent(events.NodeAccepted))

		busproto.InstallHello(peer)

		peer.Handle(node.NodeBasePath, node.NodeIface, "Register", func(msg busproto.Message) (any, error) {
			var name string
			if err := msg.Decode(&name); err != nil {
				return nil, err
			}

			type result struct {
				ok  bool
				err error
			}
			resCh := make(chan result, 1)
			o.post(func() {
				if n.Registered() {
					resCh <- result{err: fmt.Errorf("%w: node already registered as %q", busproto.ErrAddressInUse, n.Name)}
					return
				}
				if name == "" || o.registry.FindByName(name) != nil {
					resCh <- result{err: fmt.Errorf("%w: name %q already registered", busproto.ErrAddressInUse, name)}
					return
				}
				n.Register(name)
				o.bus.Emit(events.NewEvent(events.NodeRegistered).WithNode(name))
				resCh <- result{ok: true}
			})
			res := <-resCh
			if res.err != nil {
				return nil, res.err
			}
			return res.ok, nil
		})

		go func() {
			<-peer.Closed()
			o.post(func() {
				wasRegistered := n.Registered()
				name := n.Name
				o.registry.Remove(n)
				if wasRegistered {
					o.bus.Emit(events.NewEvent(events.NodeDisconnected).WithNode(name))
				}
				// spec.md §9 open question 3: a node that disconnects
				// before Register completes is dropped from the
				// registry without a NodeDisconnected event; it was
				// never findable by name (I5).
			})
		}()
	})
}

// AcceptClient wraps a freshly accepted client-bus connection, wiring
// the orchestrator's own methods and registering it to receive
// JobNew/State/JobRemoved signals. Intended as a busproto.Listen
// onAccept callback for the client bus listener.
func (o *Orchestrator) AcceptClient(peer *busproto.Peer) {
	o.post(func() {
		o.clients[peer] = struct{}{}

		peer.Handle(ObjectPath, Iface, "IsolateAll", func(msg busproto.Message) (any, error) {
			var target string
			if err := msg.Decode(&target); err != nil {
				return nil, err
			}
			return callOnLoop(o, peer, msg, func() (uint32, error) {
				return o.syncIsolateAll(target)
			})
		})
		peer.Handle(ObjectPath, Iface, "DrainAll", func(msg busproto.Message) (any, error) {
			var args struct {
				Target       string `json:"target"`
				GraceSeconds int    `json:"grace_seconds"`
			}
			if err := msg.Decode(&args); err != nil {
				return nil, err
			}
			if args.GraceSeconds <= 0 {
				args.GraceSeconds = o.cfg.DefaultDrainGraceSeconds
			}
			return callOnLoop(o, peer, msg, func() (uint32, error) {
				return o.syncDrainAll(args.Target, args.GraceSeconds)
			})
		})
		peer.Handle(ObjectPath, Iface, "Health", func(msg busproto.Message) (any, error) {
			return callOnLoop(o, peer, msg, func() (HealthInfo, error) {
				return HealthInfo{Healthy: true, TotalNodes: o.registry.Len(), NamedNodes: len(o.registry.Named())}, nil
			})
		})
		peer.Handle(ObjectPath, Iface, "ListJobs", func(msg busproto.Message) (any, error) {
			return callOnLoop(o, peer, msg, func() ([]JobSnapshot, error) {
				return o.listJobsSnapshot(), nil
			})
		})
		peer.Handle(ObjectPath, Iface, "GetJobStatus", func(msg busproto.Message) (any, error) {
			var id uint32
			if err := msg.Decode(&id); err != nil {
				return nil, err
			}
			return callOnLoop(o, peer, msg, func() (JobSnapshot, error) {
				j := o.queue.Find(id)
				if j == nil {
					return JobSnapshot{}, fmt.Errorf("no such job: %d", id)
				}
				return snapshotJob(j), nil
			})
		})
		peer.Handle(ObjectPath, Iface, "ListNodes", func(msg busproto.Message) (any, error) {
			return callOnLoop(o, peer, msg, func() ([]NodeSnapshot, error) {
				return o.listNodesSnapshot(), nil
			})
		})
		peer.Handle(ObjectPath, Iface, "CancelJob", func(msg busproto.Message) (any, error) {
			var id uint32
			if err := msg.Decode(&id); err != nil {
				return nil, err
			}
			return callOnLoop(o, peer, msg, func() (bool, error) {
				j := o.queue.Find(id)
				if j == nil {
					return false, fmt.Errorf("no such job: %d", id)
				}
				o.queue.Cancel(j)
				return true, nil
			})
		})

		go func() {
			<-peer.Closed()
			o.post(func() { delete(o.clients, peer) })
		}()
	})
}

// syncIsolateAll must run on the command loop (called from an
// in-loop Handle callback); it enqueues the job synchronously and
// returns its ID immediately, before the reply is sent — matching the
// JobNew-before-method-reply ordering of spec.md §6.
func (o *Orchestrator) syncIsolateAll(target string) (uint32, error) {
	j := &job.Job{ID: o.minter.Next(), Type: "IsolateAll"}
	j.ObjectPath = idmint.ObjectPath(j.ID)
	hooks := isolate.NewIsolateAllHooks(o.registry.All(), target, o.cfg.CallTimeout, o.post, func(r job.Result) {
		o.queue.Finish(j, r)
	})
	o.queue.Enqueue(j, hooks)
	return j.ID, nil
}

func (o *Orchestrator) syncDrainAll(target string, graceSeconds int) (uint32, error) {
	j := &job.Job{ID: o.minter.Next(), Type: "DrainAll"}
	j.ObjectPath = idmint.ObjectPath(j.ID)
	hooks := isolate.NewDrainAllHooks(o.registry.All(), target, graceSeconds, o.cfg.CallTimeout, o.post, func(r job.Result) {
		o.queue.Finish(j, r)
	})
	o.queue.Enqueue(j, hooks)
	return j.ID, nil
}

// JobSnapshot is the wire-serializable view of a job handed back to
// clients from ListJobs/GetJobStatus and carried in JobNew/State
// signals.
type JobSnapshot struct {
	ID     uint32  `json:"id"`
	Type   string  `json:"type"`
	State  string  `json:"state"`
	Result *string `json:"result,omitempty"`
}

func snapshotJob(j *job.Job) JobSnapshot {
	s := JobSnapshot{ID: j.ID, Type: j.Type, State: string(j.State)}
	if j.Result != nil {
		r := string(*j.Result)
		s.Result = &r
	}
	return s
}

func (o *Orchestrator) listJobsSnapshot() []JobSnapshot {
	all := o.queue.All()
	out := make([]JobSnapshot, 0, len(all))
	for _, j := range all {
		out = append(out, snapshotJob(j))
	}
	return out
}

// NodeSnapshot is the wire-serializable view of one fleet connection
// handed back to clients from ListNodes — named and unnamed alike, so
// an operator can tell two not-yet-registered connections apart by
// their pre-registration Token before either has called Register.
type NodeSnapshot struct {
	Token      string `json:"token"`
	Name       string `json:"name,omitempty"`
	Registered bool   `json:"registered"`
}

func (o *Orchestrator) listNodesSnapshot() []NodeSnapshot {
	out := make([]NodeSnapshot, 0, o.registry.Len())
	o.registry.Each(func(n *node.Node) {
		out = append(out, NodeSnapshot{Token: n.Token, Name: n.Name, Registered: n.Registered()})
	})
	return out
}

// HealthInfo is the wire-serializable reply to the Health method.
type HealthInfo struct {
	Healthy    bool `json:"healthy"`
	TotalNodes int  `json:"total_nodes"`
	NamedNodes int  `json:"named_nodes"`
}

func (o *Orchestrator) broadcast(member string, body any) {
	for peer := range o.clients {
		_ = peer.Emit(ObjectPath, Iface, member, body)
	}
}

func (o *Orchestrator) onJobNew(j *job.Job) {
	o.bus.Emit(events.NewEvent(events.JobNew).WithJobID(j.ID).WithPayload(j.Type))
	o.broadcast("JobNew", snapshotJob(j))
}

func (o *Orchestrator) onJobStateChanged(j *job.Job) {
	o.bus.Emit(events.NewEvent(events.JobStateChanged).WithJobID(j.ID))
	o.broadcast("State", snapshotJob(j))
}

func (o *Orchestrator) onJobRemoved(j *job.Job) {
	ev := events.NewEvent(events.JobRemoved).WithJobID(j.ID)
	if j.Result != nil && *j.Result != job.ResultDone {
		ev = ev.WithError(fmt.Errorf("job finished with result %s", *j.Result))
	}
	o.bus.Emit(ev)
	o.broadcast("JobRemoved", snapshotJob(j))
}

// NodeCount exposes fleet size for health reporting.
func (o *Orchestrator) NodeCount() (total, named int) {
	done := make(chan struct{})
	o.post(func() {
		total = o.registry.Len()
		named = len(o.registry.Named())
		close(done)
	})
	<-done
	return
}
