// Package builtin implements the registry of native callables a task
// root is seeded with (spec §4.7), the Go-native native-module ABI
// adaptation of spec §6's module_entry/module_destroy/callable_<sym>
// shape, and the small stdlib surface (sleep, fetch) built on top of
// the core scheduler primitives.
package builtin

import (
	"fmt"

	"github.com/quillrt/quill/internal/context"
	"github.com/quillrt/quill/internal/value"
)

// NativeModule is this runtime's Go-native stand-in for spec §6's
// dlopen'd C module: the same four-verb shape — entry/destroy/lookup/call,
// the last through the resolved value.NativeCaller — without cgo. Entry runs once at load time; Destroy runs once when
// the registry that loaded it is torn down; Lookup resolves one of the
// module's exported callable_<sym> symbols.
type NativeModule interface {
	Name() string
	Entry() error
	Destroy()
	Lookup(symbol string) (value.NativeCaller, bool)
}

// Registry is the mapping from symbol name to native callable spec
// §4.7 says is populated once at task-root construction and read-only
// thereafter: "async tasks spawned later do not automatically see host
// built-ins unless they were captured or passed in as parameters" —
// Seed only ever runs against the root task's own context, never a
// spawned child's.
type Registry struct {
	direct  map[string]value.NativeCaller
	modules []NativeModule
	module  *value.Object // shared KindNativeModule body every built-in Lambda's Sym resolves through
}

// New returns an empty registry. Call Register/Load to populate it,
// then Seed exactly once against the root task's context before its
// first step.
func New() *Registry {
	r := &Registry{direct: make(map[string]value.NativeCaller)}
	r.module = value.NewNativeModule(&value.NativeModuleData{Name: "builtin", Lookup: r.lookup})
	return r
}

// Register installs a directly-implemented (Go-native) callable under
// name, overwriting any existing entry of the same name.
func (r *Registry) Register(name string, caller value.NativeCaller) {
	r.direct[name] = caller
}

// StdLib populates r with this runtime's fixed built-in surface
// (sleep, fetch; see stdlib.go) and returns r for chaining.
func (r *Registry) StdLib() *Registry {
	r.Register("sleep", funcCaller(sleepCall))
	r.Register("fetch", funcCaller(fetchCall))
	return r
}

// Load runs an externally-supplied native module's Entry hook and adds
// it to the lookup chain; its symbols are tried after every directly
// registered name, so a module cannot shadow a stdlib built-in.
func (r *Registry) Load(m NativeModule) error {
	if err := m.Entry(); err != nil {
		return fmt.Errorf("builtin: loading module %q: %w", m.Name(), err)
	}
	r.modules = append(r.modules, m)
	return nil
}

// Close runs Destroy on every loaded module, in load order. internal/runtime's
// Run defers this, so it runs once after the scheduler's Run returns.
func (r *Registry) Close() {
	for _, m := range r.modules {
		m.Destroy()
	}
}

func (r *Registry) lookup(symbol string) (value.NativeCaller, bool) {
	if c, ok := r.direct[symbol]; ok {
		return c, true
	}
	for _, m := range r.modules {
		if c, ok := m.Lookup(symbol); ok {
			return c, true
		}
	}
	return nil, false
}

// Seed defines every registered built-in as a callable Lambda in ctx's
// current (innermost) frame — the root task's initial binding table
// spec §4.7 describes. Must run once, before the root task's code
// starts executing, and only against the root task's own context.
func (r *Registry) Seed(ctx *context.Context) error {
	for name := range r.direct {
		l := value.NewLambda(&value.Lambda{Body: r.module, Sym: name, Static: true})
		if _, err := ctx.Define(name, l); err != nil {
			return fmt.Errorf("builtin: seeding %q: %w", name, err)
		}
	}
	return nil
}

// Names reports the directly registered built-in names, in no particular
// order, for diagnostics. Symbols that resolve only through a loaded
// native module are not listed.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.direct))
	for name := range r.direct {
		names = append(names, name)
	}
	return names
}
