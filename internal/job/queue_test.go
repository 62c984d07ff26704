package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJob(id uint32) *Job {
	return &Job{ID: id, Type: "Test"}
}

func TestEnqueueStartsImmediatelyWhenIdle(t *testing.T) {
	var started []*Job
	q := NewQueue(nil, nil, nil, nil)

	j := newTestJob(1)
	q.Enqueue(j, Hooks{Start: func(j *Job) { started = append(started, j) }})

	require.Len(t, started, 1)
	assert.Same(t, j, q.Running())
	assert.Empty(t, q.Waiting())
}

func TestEnqueueDefersStartToALaterLoopTurn(t *testing.T) {
	var deferred []func()
	runDeferred := func(fn func()) { deferred = append(deferred, fn) }

	var started bool
	q := NewQueue(runDeferred, nil, nil, nil)

	j := newTestJob(1)
	q.Enqueue(j, Hooks{Start: func(j *Job) { started = true }})

	assert.False(t, started, "Start must not run on Enqueue's own call stack")
	assert.Nil(t, q.Running())
	require.Len(t, deferred, 1)

	deferred[0]()

	assert.True(t, started)
	assert.Same(t, j, q.Running())
}

func TestFinishDefersTeardownToALaterLoopTurn(t *testing.T) {
	var deferred []func()
	runDeferred := func(fn func()) { deferred = append(deferred, fn) }

	var removed bool
	q := NewQueue(runDeferred, nil, nil, func(j *Job) { removed = true })

	j := newTestJob(1)
	q.Enqueue(j, Hooks{Start: func(j *Job) {}})
	require.Len(t, deferred, 1)
	deferred[0]() // run the deferred start
	deferred = nil

	q.Finish(j, ResultDone)

	assert.False(t, removed, "JobRemoved must not fire on Finish's own call stack")
	assert.Nil(t, j.Result, "result must not be recorded until the deferred finish runs")
	require.Len(t, deferred, 1)

	deferred[0]()

	assert.True(t, removed)
	require.NotNil(t, j.Result)
	assert.Equal(t, ResultDone, *j.Result)
}

func TestSecondJobQueuesBehindRunningJob(t *testing.T) {
	q := NewQueue(nil, nil, nil, nil)

	j1 := newTestJob(1)
	q.Enqueue(j1, Hooks{Start: func(j *Job) {}})

	var startedSecond bool
	j2 := newTestJob(2)
	q.Enqueue(j2, Hooks{Start: func(j *Job) { startedSecond = true }})

	assert.Same(t, j1, q.Running())
	assert.False(t, startedSecond)
	require.Len(t, q.Waiting(), 1)
	assert.Same(t, j2, q.Waiting()[0])
}

func TestFinishStartsNextWaitingJob(t *testing.T) {
	q := NewQueue(nil, nil, nil, nil)

	j1 := newTestJob(1)
	q.Enqueue(j1, Hooks{Start: func(j *Job) {}})

	var startedSecond bool
	j2 := newTestJob(2)
	q.Enqueue(j2, Hooks{Start: func(j *Job) { startedSecond = true }})

	q.Finish(j1, ResultDone)

	assert.True(t, startedSecond)
	assert.Same(t, j2, q.Running())
	require.NotNil(t, j1.Result)
	assert.Equal(t, ResultDone, *j1.Result)
}

func TestFinishIsIdempotent(t *testing.T) {
	q := NewQueue(nil, nil, nil, nil)
	teardownCalls := 0

	j := newTestJob(1)
	q.Enqueue(j, Hooks{
		Start:    func(j *Job) {},
		Teardown: func(j *Job) { teardownCalls++ },
	})

	q.Finish(j, ResultFailed)
	q.Finish(j, ResultDone) // should be a no-op

	assert.Equal(t, ResultFailed, *j.Result)
	assert.Equal(t, 1, teardownCalls)
}

func TestJobRemovedFiresExactlyOnceAfterTeardownCompletes(t *testing.T) {
	var removedCount int
	var orderOK bool
	teardownDone := false

	q := NewQueue(nil, nil, nil, func(j *Job) {
		removedCount++
		orderOK = teardownDone
	})

	j := newTestJob(1)
	q.Enqueue(j, Hooks{
		Start:    func(j *Job) {},
		Teardown: func(j *Job) { teardownDone = true },
	})
	q.Finish(j, ResultDone)

	assert.Equal(t, 1, removedCount)
	assert.True(t, orderOK, "JobRemoved must fire after Teardown completes")
}

func TestCancelWaitingJobDoesNotInvokeCancelHook(t *testing.T) {
	q := NewQueue(nil, nil, nil, nil)

	j1 := newTestJob(1)
	q.Enqueue(j1, Hooks{Start: func(j *Job) {}})

	cancelCalled := false
	j2 := newTestJob(2)
	q.Enqueue(j2, Hooks{
		Start:  func(j *Job) {},
		Cancel: func(j *Job) { cancelCalled = true },
	})

	q.Cancel(j2)

	assert.False(t, cancelCalled)
	assert.Equal(t, ResultCancelled, *j2.Result)
	assert.Empty(t, q.Waiting())
}

func TestCancelRunningJobInvokesCancelHook(t *testing.T) {
	q := NewQueue(nil, nil, nil, nil)

	cancelCalled := false
	j := newTestJob(1)
	q.Enqueue(j, Hooks{
		Start:  func(j *Job) {},
		Cancel: func(j *Job) { cancelCalled = true },
	})

	q.Cancel(j)

	assert.True(t, cancelCalled)
	assert.Equal(t, ResultCancelled, *j.Result)
	assert.Nil(t, q.Running())
}

func TestFindReturnsRunningAndWaitingJobs(t *testing.T) {
	q := NewQueue(nil, nil, nil, nil)

	j1 := newTestJob(1)
	q.Enqueue(j1, Hooks{Start: func(j *Job) {}})
	j2 := newTestJob(2)
	q.Enqueue(j2, Hooks{Start: func(j *Job) {}})

	assert.Same(t, j1, q.Find(1))
	assert.Same(t, j2, q.Find(2))
	assert.Nil(t, q.Find(99))
}
