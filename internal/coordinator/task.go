package coordinator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/FranLegon/cloud-drives-search/internal/search"
	"github.com/google/uuid"
)

// TaskState is the lifecycle state of a fetch task.
type TaskState int32

const (
	TaskIdle TaskState = iota
	TaskRunning
	TaskCompleted
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskIdle:
		return "idle"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Task is the handle of one asynchronous page fetch. Cancellation is
// cooperative: the worker observes it through its context and the checked
// state, and a cancelled task can never be marked completed.
type Task struct {
	ID      string
	Request search.Request
	Page    int

	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newTask(parent context.Context, req search.Request, page int) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		ID:      uuid.NewString(),
		Request: req,
		Page:    page,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// start runs work on a new goroutine. Done is closed when work returns.
func (t *Task) start(work func(ctx context.Context)) {
	if !t.state.CompareAndSwap(int32(TaskIdle), int32(TaskRunning)) {
		return
	}
	go func() {
		defer t.once.Do(func() { close(t.done) })
		work(t.ctx)
	}()
}

// State returns the current state.
func (t *Task) State() TaskState {
	return TaskState(t.state.Load())
}

// Cancelled reports whether Cancel won against completion.
func (t *Task) Cancelled() bool {
	return t.State() == TaskCancelled
}

// Done is closed once the worker has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel requests cancellation. It returns false if the task had already
// completed or was cancelled before.
func (t *Task) Cancel() bool {
	for {
		cur := t.state.Load()
		if cur == int32(TaskCompleted) || cur == int32(TaskCancelled) {
			return false
		}
		if t.state.CompareAndSwap(cur, int32(TaskCancelled)) {
			t.cancel()
			if cur == int32(TaskIdle) {
				t.once.Do(func() { close(t.done) })
			}
			return true
		}
	}
}

// complete marks a running task as completed. It fails if the task was
// cancelled in the meantime.
func (t *Task) complete() bool {
	if t.state.CompareAndSwap(int32(TaskRunning), int32(TaskCompleted)) {
		t.cancel()
		return true
	}
	return false
}
