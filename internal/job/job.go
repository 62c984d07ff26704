// Package job implements the orchestrator's job lifecycle: a FIFO
// queue with at most one job Running at a time, deferred start/finish
// transitions, and the four-way terminal Result (spec.md §4.3, §4.4).
package job

import "fmt"

// State is a job's position in its lifecycle (spec.md §4.4).
type State string

const (
	StateWaiting State = "waiting"
	StateRunning State = "running"
)

// Result is the terminal outcome recorded when a job finishes. The
// zero value is intentionally not a valid Result — Job.Result is a
// pointer, nil until the job actually finishes (spec.md §9 open
// question 1: an RPC error or timeout maps to ResultFailed, decided in
// DESIGN.md, rather than silently leaving a job looking like it
// succeeded).
type Result string

const (
	ResultDone      Result = "done"
	ResultFailed    Result = "failed"
	ResultCancelled Result = "cancelled"
	ResultTimeout   Result = "timeout"
)

// Hooks are the behavior a concrete job type plugs into the generic
// Job/Queue machinery.
type Hooks struct {
	// Start is invoked once, when the job transitions from Waiting to
	// Running. Required.
	Start func(j *Job)

	// Cancel is invoked if the job is cancelled while Running.
	// Optional; jobs with no in-flight work to abort may leave it nil.
	Cancel func(j *Job)

	// Teardown is invoked exactly once, just before the job is
	// removed from the queue, regardless of outcome. Optional.
	Teardown func(j *Job)
}

// Job is one unit of orchestrator work: a method call whose effects
// (dispatching to nodes, waiting on replies) span multiple turns of
// the run loop.
type Job struct {
	ID   uint32
	Type string

	ObjectPath string

	State  State
	Result *Result

	hooks Hooks

	// finishScheduled guards against Finish being deferred twice for
	// the same job (e.g. a timeout reply racing an explicit Cancel).
	finishScheduled bool

	// Payload is job-type-specific state (e.g. *isolate.State); opaque
	// to the queue itself.
	Payload any
}

// String renders the job for log lines, e.g.
// "job#3[IsolateAll:running/pending]" (the part after the slash is the
// Result, or "pending" before one is recorded).
func (j *Job) String() string {
	res := "pending"
	if j.Result != nil {
		res = string(*j.Result)
	}
	return fmt.Sprintf("job#%d[%s:%s/%s]", j.ID, j.Type, j.State, res)
}

// Finished reports whether this job has reached a terminal Result.
func (j *Job) Finished() bool {
	return j.Result != nil
}

// finish records the terminal result. Called only from Queue's finish
// paths (finishNow, ForceCancelAll) — finishing a job is a queue-level
// transition (it dequeues
// the next waiting job), not a Job-level one.
func (j *Job) finish(r Result) {
	if j.Result != nil {
		return
	}
	j.Result = &r
}
