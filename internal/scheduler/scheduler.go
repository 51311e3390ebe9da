// Package scheduler implements the single-threaded cooperative scheduler
// described in spec §4.6/§5: three task queues (runnable, awaiting, done),
// a main loop that steps one task at a time via internal/interp, and the
// async/await/emit isolation rules. It implements interp.TaskHost so the
// interpreter loop can spawn and poll tasks without knowing how they are
// scheduled relative to one another.
package scheduler

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/quillrt/quill/internal/context"
	"github.com/quillrt/quill/internal/heap"
	"github.com/quillrt/quill/internal/interp"
	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

// Task is one scheduled unit of execution: a Machine driving a lambda's
// body plus the bookkeeping the scheduler needs to route it between
// queues. Handle is the lambda object itself, used as the task's
// identity everywhere spec §4.6 says "the lambda itself" — await-task,
// valueof, and the waiter map are all keyed on this same pointer.
type Task struct {
	ID     uuid.UUID
	Handle *value.Object
	m      *interp.Machine

	// awaiting is the handle this task is blocked on, set while it sits
	// in the scheduler's waiting map. Purely diagnostic — resolving the
	// wait itself happens inside interp's continueAwait, which re-polls
	// the host every time this task is stepped again.
	awaiting *value.Object

	// failed reports whether this task's terminal value (once Done) is
	// an uncaught error rather than a normal return.
	failed bool
}

// Scheduler owns every task spawned during one program run and the three
// queues spec §4.6 describes. It is not safe for concurrent use — the
// cooperative model has exactly one goroutine driving tasks at a time.
type Scheduler struct {
	Heap *heap.Heap

	runnable []*Task
	waiting  map[*value.Object][]*Task // keyed by the handle being awaited
	done     map[*value.Object]*Task
	tasks    map[*value.Object]*Task // every task ever spawned, by handle

	// idleSweep, when true, runs a GC mark-sweep cycle whenever runnable
	// drains to empty with tasks still awaiting — a safepoint per spec §5
	// ("a mark cycle... runs at scheduler-chosen safepoints... when all
	// tasks are awaiting"). Tunable from internal/runtime's config.
	idleSweep bool
	roots     rootWalker

	// SeedRoot, if set, runs once against the root task's own context
	// before its first step — internal/runtime uses this to define the
	// built-in registry's callables into the root's initial binding
	// table (spec §4.7). It never runs for a spawned child task, which
	// is exactly the isolation property spec §4.7 describes: "async
	// tasks spawned later do not automatically see host built-ins
	// unless they were captured or passed in as parameters."
	SeedRoot func(*context.Context) error

	// snapshot holds the most recent []TaskSnapshot published by Run,
	// read lock-free by internal/inspect's debug endpoint — a simpler
	// stand-in for the teacher's worker.Do request-marshaling: rather
	// than blocking the loop on an inspector's query, the loop publishes
	// a best-effort, eventually-consistent snapshot once per iteration.
	snapshot atomic.Value
}

// TaskSnapshot is one task's diagnostic state as of the last published
// snapshot, consumed only by internal/inspect.
type TaskSnapshot struct {
	ID     string
	Status string // "runnable", "waiting", or "done"
	Failed bool
}

// LastSnapshot returns the most recently published task table. Safe to
// call from any goroutine; it never blocks the scheduler's own loop.
func (s *Scheduler) LastSnapshot() []TaskSnapshot {
	v, _ := s.snapshot.Load().([]TaskSnapshot)
	return v
}

func (s *Scheduler) publishSnapshot() {
	runnableSet := make(map[*Task]bool, len(s.runnable))
	for _, t := range s.runnable {
		runnableSet[t] = true
	}
	out := make([]TaskSnapshot, 0, len(s.tasks))
	for handle, t := range s.tasks {
		status := "waiting"
		if runnableSet[t] {
			status = "runnable"
		} else if _, done := s.done[handle]; done {
			status = "done"
		}
		out = append(out, TaskSnapshot{ID: t.ID.String(), Status: status, Failed: t.failed})
	}
	s.snapshot.Store(out)
}

// New constructs an empty scheduler over h. idleSweep enables the
// between-task GC safepoint described above.
func New(h *heap.Heap, idleSweep bool) *Scheduler {
	s := &Scheduler{
		Heap:      h,
		waiting:   make(map[*value.Object][]*Task),
		done:      make(map[*value.Object]*Task),
		tasks:     make(map[*value.Object]*Task),
		idleSweep: idleSweep,
	}
	s.roots = rootWalker{s: s}
	return s
}

// Spawn constructs and enqueues a fresh, isolated task running
// callee(args), satisfying interp.TaskHost. Per spec §4.6, the new task
// gets a brand-new Context — none of the caller's lexical frames,
// captures, or built-ins beyond what callee itself already closed over
// are visible to it.
func (s *Scheduler) Spawn(callee, args *value.Object) (*value.Object, error) {
	if callee.Kind != value.KindLambda {
		return nil, fmt.Errorf("%w: spawn target must be a Lambda, got %s", value.ErrKindMismatch, callee.Kind)
	}
	m, err := interp.New(s.Heap, s, callee, args)
	if err != nil {
		return nil, err
	}
	t := &Task{ID: uuid.New(), Handle: callee, m: m}
	s.tasks[callee] = t
	s.runnable = append(s.runnable, t)
	return callee, nil
}

// Poll satisfies interp.TaskHost: it reports whether handle's task has
// reached a terminal state and, if so, the value spec §4.6 publishes in
// the task-lambda's result slot.
func (s *Scheduler) Poll(handle *value.Object) (finished bool, result *value.Object, failed bool) {
	t, ok := s.done[handle]
	if !ok {
		return false, nil, false
	}
	return true, handle.Lambda.Result, t.failed
}

// Run drives the root task (and everything it transitively spawns) to
// completion per spec §4.6's main loop, and returns the root task's
// terminal value plus whether it was a failure (an Err-aliased record)
// rather than a normal return — the distinction cmd/quillrun maps onto
// process exit codes 0/1.
func (s *Scheduler) Run(root, args *value.Object) (result *value.Object, failed bool, err error) {
	rootHandle, spawnErr := s.Spawn(root, args)
	if spawnErr != nil {
		return nil, false, spawnErr
	}
	if s.SeedRoot != nil {
		if seedErr := s.SeedRoot(s.tasks[rootHandle].m.Ctx); seedErr != nil {
			return nil, false, fmt.Errorf("scheduler: seeding root task: %w", seedErr)
		}
	}

	for len(s.runnable) > 0 || len(s.waiting) > 0 {
		s.publishSnapshot()
		if len(s.runnable) == 0 {
			if s.idleSweep {
				s.Heap.Collect(s.roots)
			}
			s.failDeadlocked()
			continue
		}

		if s.Heap.ShouldCollect() {
			s.Heap.Collect(s.roots)
		}

		t := s.runnable[0]
		s.runnable = s.runnable[1:]

		res := t.m.StepUntilYieldOrDone()
		switch res.Status {
		case interp.Yielded:
			if _, alreadyDone := s.done[res.Await]; alreadyDone {
				// The target finished between this task's last step and
				// now: re-enqueue immediately rather than parking it.
				// The next step re-enters continueAwait, which re-polls
				// the host and finds it finished without yielding again.
				s.wake(t)
				continue
			}
			t.awaiting = res.Await
			s.waiting[res.Await] = append(s.waiting[res.Await], t)
		case interp.Done:
			s.finish(t, res.Value, false)
		case interp.Failed:
			s.finish(t, res.Value, true)
		}
	}
	s.publishSnapshot()

	finalTask, ok := s.tasks[rootHandle]
	if !ok {
		return nil, false, fmt.Errorf("scheduler: root task vanished")
	}
	return rootHandle.Lambda.Result, finalTask.failed, nil
}

// finish publishes a terminal task's result per spec §4.6 step 4: the
// value lands in the lambda's own result slot (what valueof reads), the
// task moves to done, and every waiter blocked on it returns to runnable.
func (s *Scheduler) finish(t *Task, v *value.Object, failed bool) {
	old := t.Handle.Lambda.Result
	t.Handle.Lambda.Result = v
	s.Heap.Release(old)
	s.Heap.Retain(v)
	t.failed = failed
	s.done[t.Handle] = t

	waiters := s.waiting[t.Handle]
	delete(s.waiting, t.Handle)
	for _, w := range waiters {
		s.wake(w)
	}
}

// wake returns a previously-awaiting task to runnable. Its next step
// re-enters continueAwait, which re-polls the host and finds the target
// finished — the stack delivery spec §4.6 step 3 describes happens there,
// not here.
func (s *Scheduler) wake(t *Task) {
	t.awaiting = nil
	s.runnable = append(s.runnable, t)
}

// failDeadlocked implements spec §4.6 step 5: runnable is empty and at
// least one task is still waiting, so nothing can ever make progress
// again. Every such task fails with DeadlockError, which in turn may
// wake further waiters (themselves now unblockable) — drained until the
// wait graph is empty.
func (s *Scheduler) failDeadlocked() {
	for len(s.waiting) > 0 {
		for target, waiters := range s.waiting {
			delete(s.waiting, target)
			for _, t := range waiters {
				rec := s.Heap.Alloc(rterr.New(rterr.DeadlockError, "scheduler: no runnable task and task is still awaiting completion"))
				s.finish(t, rec, true)
			}
			break // map iteration order is unspecified; restart after each mutation
		}
	}
}

// rootWalker implements heap.RootSource over every task the scheduler
// currently knows about: each task's frame and operand stacks, plus any
// handle a finished-but-still-awaited task is waiting on.
type rootWalker struct{ s *Scheduler }

func (r rootWalker) Roots() []*value.Object {
	var roots []*value.Object
	for _, t := range r.s.tasks {
		roots = append(roots, t.Handle)
		roots = append(roots, t.m.Ctx.Operands...)
		for _, f := range t.m.Ctx.Frames {
			for _, v := range f.Bindings {
				roots = append(roots, v)
			}
			if f.Args != nil {
				roots = append(roots, f.Args)
			}
		}
	}
	return roots
}
