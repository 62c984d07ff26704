package job

// Queue holds every live job, enforcing the FIFO-with-at-most-one-
// Running invariant (spec.md §4.5, I1). Like Registry, it carries no
// internal locking: the orchestrator run loop is its only caller, so
// "deferred" here means "enqueued for the next turn of that loop", not
// "handled on a background goroutine".
type Queue struct {
	waiting []*Job
	running *Job

	// defer_ posts fn to run on a later turn of the orchestrator's run
	// loop — the Go stand-in for orch.c's sd_event_add_defer (spec.md
	// §4.5, §9 "deferred transitions"). Both start and finish go
	// through it, which is what keeps a method reply ordered strictly
	// before the State change signal it triggers (spec.md §6) and
	// keeps a synchronously-completing Start from tearing its own job
	// down while still on the scheduler's stack. Tests pass nil, which
	// NewQueue turns into an inline (run-now) stand-in.
	defer_ func(func())
	// transitionPending tracks I3: a deferred start is outstanding for
	// the queue (finish's own pending-ness is tracked per-Job via
	// Job.finishScheduled, since a finish is always about one specific
	// job rather than "the head").
	transitionPending bool

	// onJobNew fires once, synchronously, when a job is enqueued —
	// before the deferred Start runs, matching the JobNew-before-
	// method-reply ordering spec.md §6 requires for IsolateAll's own
	// reply.
	onJobNew func(*Job)
	// onStateChanged fires whenever a job's State field changes.
	onStateChanged func(*Job)
	// onJobRemoved fires exactly once per job, after Teardown and
	// before the job is dropped from the queue (I-JobRemoved-once).
	onJobRemoved func(*Job)
}

// NewQueue builds an empty Queue. defer_ is the mechanism used to run
// start/finish transitions on a later loop turn (pass the
// orchestrator's command-loop poster); nil runs them inline, which is
// what Queue's own unit tests want. Any of the callbacks may be nil.
func NewQueue(defer_ func(func()), onJobNew, onStateChanged, onJobRemoved func(*Job)) *Queue {
	if defer_ == nil {
		defer_ = func(fn func()) { fn() }
	}
	return &Queue{
		defer_:         defer_,
		onJobNew:       onJobNew,
		onStateChanged: onStateChanged,
		onJobRemoved:   onJobRemoved,
	}
}

// Enqueue adds a new job to the back of the FIFO and schedules it.
// hooks.Start runs on a later loop turn if the queue was idle, never
// on Enqueue's own call stack.
func (q *Queue) Enqueue(j *Job, hooks Hooks) {
	j.State = StateWaiting
	j.hooks = hooks

	q.waiting = append(q.waiting, j)
	if q.onJobNew != nil {
		q.onJobNew(j)
	}
	q.schedule()
}

// schedule arranges for the head of the queue to start on a later
// loop turn — the Go equivalent of orch.c's schedule(), which only
// ever registers the deferred start_head task rather than running it.
func (q *Queue) schedule() {
	if q.running != nil || q.transitionPending || len(q.waiting) == 0 {
		return
	}

	q.transitionPending = true
	q.defer_(func() {
		q.transitionPending = false
		q.tryStart()
	})
}

// tryStart is orch.c's try_start_job, run on the deferred task
// schedule() posted.
func (q *Queue) tryStart() {
	if len(q.waiting) == 0 {
		return
	}

	j := q.waiting[0]
	q.waiting = q.waiting[1:]
	q.running = j

	j.State = StateRunning
	if q.onStateChanged != nil {
		q.onStateChanged(j)
	}
	j.hooks.Start(j)
}

// Finish schedules the finish transition for j as a deferred event
// (spec.md §4.4); callable from any callback context, including one
// that is itself already running on the loop (a Start hook that
// completes synchronously with zero outstanding work). Safe to call
// more than once per job — only the first call takes effect, since a
// fan-out job's completion callback may race a timeout or an explicit
// Cancel.
func (q *Queue) Finish(j *Job, result Result) {
	if j.Finished() || j.finishScheduled {
		return
	}
	j.finishScheduled = true
	q.defer_(func() {
		q.finishNow(j, result)
	})
}

// finishNow is orch.c's finish_head: records the result, tears the job
// down, emits JobRemoved, unlinks it from the queue, then pulls the
// next waiting job.
func (q *Queue) finishNow(j *Job, result Result) {
	if j.Finished() {
		return
	}
	j.finish(result)

	if j.hooks.Teardown != nil {
		j.hooks.Teardown(j)
	}
	if q.onJobRemoved != nil {
		q.onJobRemoved(j)
	}

	if q.running == j {
		q.running = nil
	} else {
		for i, w := range q.waiting {
			if w == j {
				q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
				break
			}
		}
	}

	q.schedule()
}

// Cancel aborts j, whether it is waiting or running, finishing it with
// ResultCancelled.
func (q *Queue) Cancel(j *Job) {
	if j.Finished() {
		return
	}
	if q.running == j && j.hooks.Cancel != nil {
		j.hooks.Cancel(j)
	}
	q.Finish(j, ResultCancelled)
}

// ForceCancelAll immediately tears down every live job, bypassing
// defer_ entirely. Used exactly once, by the orchestrator's run loop
// as it exits: once that loop stops selecting on its command channel,
// nothing will ever run a closure posted onto it afterward, so the
// usual post-a-finish-and-wait path (Cancel/Finish) would hang
// forever. Safe only from the loop's own goroutine, after it has
// stopped accepting new work.
func (q *Queue) ForceCancelAll() {
	for _, j := range q.All() {
		if j.Finished() {
			continue
		}
		if q.running == j && j.hooks.Cancel != nil {
			j.hooks.Cancel(j)
		}
		j.finish(ResultCancelled)
		if j.hooks.Teardown != nil {
			j.hooks.Teardown(j)
		}
		if q.onJobRemoved != nil {
			q.onJobRemoved(j)
		}
	}
	q.waiting = nil
	q.running = nil
}

// Running returns the currently running job, or nil if the queue is
// idle.
func (q *Queue) Running() *Job {
	return q.running
}

// Waiting returns the jobs currently waiting, in FIFO order.
func (q *Queue) Waiting() []*Job {
	out := make([]*Job, len(q.waiting))
	copy(out, q.waiting)
	return out
}

// All returns every live job (running first, then waiting in FIFO
// order) — used to answer a ListJobs-style query.
func (q *Queue) All() []*Job {
	out := make([]*Job, 0, len(q.waiting)+1)
	if q.running != nil {
		out = append(out, q.running)
	}
	out = append(out, q.waiting...)
	return out
}

// Find returns the live job with the given ID, or nil.
func (q *Queue) Find(id uint32) *Job {
	if q.running != nil && q.running.ID == id {
		return q.running
	}
	for _, w := range q.waiting {
		if w.ID == id {
			return w
		}
	}
	return nil
}
