package pjs

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Task is the handle of a run started by "&". The spawning run never sees
// the task's outcome; the host does, through the handle.
type Task struct {
	ID int

	cancel context.CancelFunc
	done   chan struct{}
	result *Stack
	err    error
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel asks the task to stop at its next step.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the task's failure once it is done.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Result returns the task's final data stack once it is done.
func (t *Task) Result() *Stack {
	select {
	case <-t.done:
		return t.result
	default:
		return nil
	}
}

func (t *Task) String() string { return fmt.Sprintf("task#%v", t.ID) }

type taskGroup struct {
	mu    sync.Mutex
	group errgroup.Group
	last  int
	live  map[int]*Task
}

func (tg *taskGroup) add(t *Task) {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.last++
	t.ID = tg.last
	if tg.live == nil {
		tg.live = make(map[int]*Task)
	}
	tg.live[t.ID] = t
}

func (tg *taskGroup) remove(t *Task) {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	delete(tg.live, t.ID)
}

func (tg *taskGroup) each(f func(*Task)) {
	tg.mu.Lock()
	tasks := make([]*Task, 0, len(tg.live))
	for _, t := range tg.live {
		tasks = append(tasks, t)
	}
	tg.mu.Unlock()
	for _, t := range tasks {
		f(t)
	}
}

// Spawn runs prog as an independent task. The task keeps ctx's values but not
// its cancellation: it outlives the run that spawned it, and stops only when
// cancelled through its handle or CancelTasks.
func (vm *VM) Spawn(ctx context.Context, sel Selection, prog Program, data *Stack, dict *Dictionary) *Task {
	tctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t := &Task{cancel: cancel, done: make(chan struct{})}
	vm.tasks.add(t)
	vm.logf("&", "spawn %v", t)

	vm.tasks.group.Go(func() error {
		defer vm.tasks.remove(t)
		defer close(t.done)
		defer cancel()
		t.result, t.err = vm.Run(tctx, sel, prog, data, dict)
		if t.err != nil {
			vm.logf("&", "%v failed: %v", t, t.err)
			return errors.Wrap(t.err, t.String())
		}
		return nil
	})

	if vm.spawnHook != nil {
		vm.spawnHook(t)
	}
	return t
}

// Wait blocks until every spawned task has finished, returning the first
// task failure.
func (vm *VM) Wait() error { return vm.tasks.group.Wait() }

// CancelTasks cancels every task that is still running.
func (vm *VM) CancelTasks() { vm.tasks.each((*Task).Cancel) }
