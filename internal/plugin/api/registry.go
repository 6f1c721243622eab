package api

import (
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// APIVersion is reported to scripts as gitpanel.api_version.
const APIVersion = 1

// LoaderName is the name scripts pass to require.
const LoaderName = "gitpanel"

// Module is a Lua API module.
type Module interface {
	// Name returns the field the module is exposed under, e.g. "git".
	Name() string

	// Build creates the module table in L.
	Build(L *lua.LState) (*lua.LTable, error)
}

// Registry manages API modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns the registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InjectAll builds every module and preloads them as require("gitpanel").
func (r *Registry) InjectAll(L *lua.LState) error {
	root := L.NewTable()
	for _, name := range r.List() {
		mod, _ := r.Get(name)
		tbl, err := mod.Build(L)
		if err != nil {
			return fmt.Errorf("failed to build module %q: %w", name, err)
		}
		L.SetField(root, name, tbl)
	}
	L.SetField(root, "api_version", lua.LNumber(APIVersion))

	L.PreloadModule(LoaderName, func(L *lua.LState) int {
		L.Push(root)
		return 1
	})
	return nil
}
