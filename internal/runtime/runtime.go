package runtime

import (
	"github.com/quillrt/quill/internal/builtin"
	"github.com/quillrt/quill/internal/heap"
	"github.com/quillrt/quill/internal/scheduler"
	"github.com/quillrt/quill/internal/value"
)

// Result is the outcome of one Run call.
type Result struct {
	Value  *value.Object
	Failed bool
}

// Options configures a Run call beyond the TOML-sourced Config.
type Options struct {
	// NativeModules are loaded into the built-in registry before the
	// root task's first step.
	NativeModules []builtin.NativeModule

	// OnScheduler, if set, runs once the scheduler is constructed and its
	// SeedRoot hook is set, before Run seeds the root task and starts
	// executing — cmd/quillrun uses this to
	// hand the live *scheduler.Scheduler to internal/inspect's opt-in
	// debug servers, which read it concurrently with the run.
	OnScheduler func(*scheduler.Scheduler)
}

// Run loads the program at path, seeds a built-in registry into its
// root task, and drives it to completion.
func Run(path string, args *value.Object, cfg *Config, opts *Options) (Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	root, err := LoadProgram(path)
	if err != nil {
		return Result{}, err
	}

	h := heap.New(cfg.GC.InitialThreshold)
	registry := builtin.New().StdLib()
	for _, m := range opts.NativeModules {
		if loadErr := registry.Load(m); loadErr != nil {
			return Result{}, loadErr
		}
	}
	defer registry.Close()

	sched := scheduler.New(h, cfg.Scheduler.IdleSweep)
	sched.SeedRoot = registry.Seed

	if opts.OnScheduler != nil {
		opts.OnScheduler(sched)
	}

	if args == nil {
		args = value.NewTuple(nil)
	}
	v, failed, runErr := sched.Run(root, args)
	if runErr != nil {
		return Result{}, runErr
	}
	return Result{Value: v, Failed: failed}, nil
}
