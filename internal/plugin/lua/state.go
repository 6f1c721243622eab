package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a script when no option overrides it.
const DefaultTimeout = 30 * time.Second

// State wraps a gopher-lua state. LState is not goroutine-safe; the
// mutex serializes executions started from Go.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	out     io.Writer
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout bounds each execution. Zero disables the bound; the
// caller's context still applies.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput sets where print writes. Default discards.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// NewState creates a sandboxed state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultTimeout,
		out:     io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.sandbox()
	return s
}

func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.LoadLibName, lua.OpenPackage},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// sandbox removes file loading, confines require to preloaded modules and
// redirects print.
func (s *State) sandbox() {
	L := s.L
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// DoString runs code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func(L *lua.LState) error {
		return L.DoString(code)
	})
}

func (s *State) run(ctx context.Context, fn func(*lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrScript, r)
		}
	}()

	if err := fn(s.L); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%w: %s", ErrScript, apiErr.Object.String())
		}
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	return nil
}

// LuaState returns the underlying state for module registration. Do not
// use it while an execution is running.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// Close releases the state. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
