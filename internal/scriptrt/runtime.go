// Package scriptrt is the script runtime binding: it embeds an
// embedded JS runtime (github.com/dop251/goja) and exposes the fixed
// calling convention tile scripts are invoked through.
package scriptrt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dop251/goja"

	"github.com/automancy/automancy/internal/ids"
)

// ErrFunctionNotFound is returned by Invoke when the script defines no
// function for the requested entry point. This is the one script
// error the caller must treat as a silent no-op rather than log.
var ErrFunctionNotFound = errors.New("scriptrt: function not found")

// Source is one tile script's body: its declared script id (returned by
// its script_id() function) and the raw source evaluated into a fresh
// goja VM on first use. Its id_deps bindings are evaluated from that
// source by EnsureIdDeps.
type Source struct {
	ScriptID string
	Code     string
}

// Library is a named shared module made available as a global to every
// tile script VM.
type Library struct {
	Name string
	Code string
}

// Runtime owns one goja VM per distinct tile script id (library code is
// evaluated into each VM once, at first use) and the fixed entry-point
// calling convention every tile script shares.
type Runtime struct {
	log *slog.Logger

	mu         sync.Mutex
	libraries  []Library
	sources    map[ids.Id]Source
	vms        map[ids.Id]*goja.Runtime
	idDepsDone map[ids.Id]bool
}

// New returns an empty Runtime. Register libraries and tile scripts
// before the first Invoke.
func New(log *slog.Logger) *Runtime {
	if log == nil {
		log = slog.Default()
	}
	return &Runtime{
		log:        log,
		sources:    make(map[ids.Id]Source),
		vms:        make(map[ids.Id]*goja.Runtime),
		idDepsDone: make(map[ids.Id]bool),
	}
}

// RegisterLibrary adds a shared library module, evaluated into every
// tile script VM before its own source.
func (rt *Runtime) RegisterLibrary(lib Library) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.libraries = append(rt.libraries, lib)
}

// RegisterTileScript associates scriptID with src, to be compiled into
// its own VM lazily on first Invoke.
func (rt *Runtime) RegisterTileScript(scriptID ids.Id, src Source) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.sources[scriptID] = src
}

func (rt *Runtime) vmFor(scriptID ids.Id) (*goja.Runtime, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if vm, ok := rt.vms[scriptID]; ok {
		return vm, nil
	}
	src, ok := rt.sources[scriptID]
	if !ok {
		return nil, fmt.Errorf("scriptrt: no script registered for id %v", scriptID)
	}
	vm := goja.New()
	for _, lib := range rt.libraries {
		if _, err := vm.RunString(lib.Code); err != nil {
			return nil, fmt.Errorf("scriptrt: evaluating library %q: %w", lib.Name, err)
		}
	}
	if _, err := vm.RunString(src.Code); err != nil {
		return nil, fmt.Errorf("scriptrt: evaluating script %q: %w", src.ScriptID, err)
	}
	rt.vms[scriptID] = vm
	return vm, nil
}

// IdDep is one (string_id, scope_name) constant binding evaluated by a
// tile script's id_deps() entry point and pushed into its scope before
// any handler runs.
type IdDep struct {
	StringID  string
	ScopeName string
}

// EnsureIdDeps evaluates scriptID's id_deps() function exactly once
// (subsequent calls are no-ops) and, for each returned (string_id,
// scope_name) pair, interns string_id via resolve and sets scope_name
// as a global constant in the script's VM holding the resulting Id.
func (rt *Runtime) EnsureIdDeps(scriptID ids.Id, resolve func(string) ids.Id) error {
	rt.mu.Lock()
	if rt.idDepsDone[scriptID] {
		rt.mu.Unlock()
		return nil
	}
	rt.mu.Unlock()

	vm, err := rt.vmFor(scriptID)
	if err != nil {
		return err
	}
	fn, ok := goja.AssertFunction(vm.Get("id_deps"))
	if !ok {
		rt.mu.Lock()
		rt.idDepsDone[scriptID] = true
		rt.mu.Unlock()
		return nil
	}
	result, err := fn(goja.Undefined())
	if err != nil {
		return fmt.Errorf("scriptrt: id_deps(): %w", err)
	}
	var pairs [][]string
	if err := vm.ExportTo(result, &pairs); err != nil {
		return fmt.Errorf("scriptrt: id_deps() return value: %w", err)
	}
	for _, pair := range pairs {
		if len(pair) != 2 {
			return fmt.Errorf("scriptrt: id_deps() entry %q is not a (string_id, scope_name) pair", pair)
		}
		dep := IdDep{StringID: pair[0], ScopeName: pair[1]}
		id := resolve(dep.StringID)
		vm.Set(dep.ScopeName, uint32(id))
	}
	rt.mu.Lock()
	rt.idDepsDone[scriptID] = true
	rt.mu.Unlock()
	return nil
}

// Invoke calls entryPoint on scriptID's VM with args passed as its single
// object parameter ("this" is undefined), then returns the function's
// raw return value for the caller to cast. A missing
// entryPoint function returns
// ErrFunctionNotFound (silent no-op per policy); any other error is
// returned for the caller to log.
func (rt *Runtime) Invoke(scriptID ids.Id, entryPoint string, args map[string]any) (any, error) {
	vm, err := rt.vmFor(scriptID)
	if err != nil {
		return nil, err
	}
	fnVal := vm.Get(entryPoint)
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, ErrFunctionNotFound
	}

	argsObj := vm.NewObject()
	for k, v := range args {
		if err := argsObj.Set(k, v); err != nil {
			return nil, fmt.Errorf("scriptrt: binding arg %q: %w", k, err)
		}
	}

	result, err := fn(goja.Undefined(), argsObj)
	if err != nil {
		return nil, fmt.Errorf("scriptrt: %s: %w", entryPoint, err)
	}
	if goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}
	return result.Export(), nil
}
