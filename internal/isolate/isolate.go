// Package isolate implements the orchestrator's fan-out jobs:
// IsolateAll, which asks every connected node (registered or not) to
// isolate a target, and the supplemented DrainAll, which asks every
// connected node to drain the target (spec.md §4.6; SPEC_FULL.md §4.6
// expansion).
package isolate

import (
	"time"

	"github.com/orchfleet/orchd/internal/busproto"
	"github.com/orchfleet/orchd/internal/job"
	"github.com/orchfleet/orchd/internal/node"
)

// CallTimeout is the per-node deadline for a single fan-out call
// (spec.md §4.6).
const CallTimeout = 30 * time.Second

const (
	NodeMethodIsolate = "Isolate"
	NodeMethodDrain   = "Drain"
)

// State is the Payload attached to an IsolateAll/DrainAll Job while
// it is in flight: how many nodes were dispatched to, how many have
// replied, and whether any reply was an error or timeout.
type State struct {
	Target string
	Total  int

	outstanding int
	anyFailed   bool
}

// Outstanding returns how many node replies are still pending.
func (s *State) Outstanding() int { return s.outstanding }

// fanout dispatches method against every node in nodes, invoking
// finish via post once every reply (or timeout) has been accounted
// for. post must run its argument on the orchestrator's single run
// loop, since busproto's CallAsync callbacks arrive on arbitrary
// goroutines and job.Queue has no locking of its own.
func fanout(j *job.Job, nodes []*node.Node, method, target string, timeout time.Duration, post func(func()), finish func(job.Result)) {
	st := &State{Target: target, Total: len(nodes)}
	j.Payload = st

	if len(nodes) == 0 {
		finish(job.ResultDone)
		return
	}

	st.outstanding = len(nodes)
	for _, n := range nodes {
		n := n
		n.Call(method, target, timeout, func(msg busproto.Message, err error) {
			post(func() {
				if j.Finished() {
					return
				}
				if err != nil || msg.Kind == busproto.KindError {
					st.anyFailed = true
				}
				st.outstanding--
				if st.outstanding == 0 {
					if st.anyFailed {
						finish(job.ResultFailed)
					} else {
						finish(job.ResultDone)
					}
				}
			})
		})
	}
}

// NewIsolateAllHooks builds the Hooks for an IsolateAll job: dispatch
// Isolate(target) to every node in nodes with the given per-call
// timeout (spec.md §4.6 default is 30s; configurable via
// orchestrator.Config.CallTimeout), finishing Done once every node has
// replied successfully, Failed if any errored or timed out (spec.md §9
// open question 1).
func NewIsolateAllHooks(nodes []*node.Node, target string, timeout time.Duration, post func(func()), finish func(job.Result)) job.Hooks {
	return job.Hooks{
		Start: func(j *job.Job) {
			fanout(j, nodes, NodeMethodIsolate, target, timeout, post, finish)
		},
	}
}

// NewDrainAllHooks builds the Hooks for a DrainAll job: the
// supplemented graceful-shutdown counterpart to IsolateAll, asking
// every node to drain target, with each call's deadline set to
// graceSeconds plus the per-call timeout. No Isolate call follows the
// drain.
func NewDrainAllHooks(nodes []*node.Node, target string, graceSeconds int, callTimeout time.Duration, post func(func()), finish func(job.Result)) job.Hooks {
	timeout := time.Duration(graceSeconds)*time.Second + callTimeout
	return job.Hooks{
		Start: func(j *job.Job) {
			fanout(j, nodes, NodeMethodDrain, target, timeout, post, finish)
		},
	}
}
