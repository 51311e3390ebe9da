package interp

import (
	"fmt"

	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/value"
)

func (m *Machine) opSpawnTask() (StepResult, error) {
	if m.Host == nil {
		return m.raiseRecord(m.Heap.Alloc(rterr.New(rterr.ArgumentError, errNoHost.Error())))
	}
	args, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	callee, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if callee.Kind != value.KindLambda {
		return m.raiseOrFail(fmt.Errorf("%w: spawn_task target must be a Lambda, got %s", value.ErrKindMismatch, callee.Kind))
	}
	handle, spawnErr := m.Host.Spawn(callee, args)
	if spawnErr != nil {
		return m.raiseRecord(m.Heap.Alloc(rterr.New(rterr.ModuleError, spawnErr.Error())))
	}
	m.push(handle)
	return StepResult{Status: Running}, nil
}

// opAwaitTask implements `await-task`: the first visit pops the task
// handle off the stack and remembers it (the instruction pointer has
// already advanced past this opcode); every subsequent visit — driven
// by the scheduler re-entering step_until_yield_or_done once the
// target may have progressed — re-polls the same remembered handle
// without touching the stack again, so a Yielded result never loses
// the operand that produced it.
func (m *Machine) opAwaitTask() (StepResult, error) {
	if m.Host == nil {
		return m.raiseRecord(m.Heap.Alloc(rterr.New(rterr.ArgumentError, errNoHost.Error())))
	}
	handle, err := m.pop()
	if err != nil {
		return StepResult{}, err
	}
	if handle.Kind != value.KindLambda {
		return m.raiseOrFail(fmt.Errorf("%w: await_task target must be a Lambda, got %s", value.ErrKindMismatch, handle.Kind))
	}
	m.pendingAwait = handle
	return m.continueAwait()
}

func (m *Machine) continueAwait() (StepResult, error) {
	finished, result, failed := m.Host.Poll(m.pendingAwait)
	if !finished {
		return StepResult{Status: Yielded, Await: m.pendingAwait}, nil
	}
	m.pendingAwait = nil
	if failed {
		return m.raiseRecord(result)
	}
	m.push(result)
	return StepResult{Status: Running}, nil
}
