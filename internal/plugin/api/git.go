package api

import (
	"context"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

// GitModule exposes dispatcher verbs to scripts as gitpanel.git.
type GitModule struct {
	d *dispatcher.Dispatcher
}

// NewGitModule creates a git module backed by d.
func NewGitModule(d *dispatcher.Dispatcher) *GitModule {
	return &GitModule{d: d}
}

// Name implements Module.
func (m *GitModule) Name() string {
	return "git"
}

// Build implements Module.
func (m *GitModule) Build(L *lua.LState) (*lua.LTable, error) {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"run":   m.run,
		"call":  m.call,
		"verbs": m.verbs,
	}), nil
}

// run(verb, args..., [opts]) -> result
func (m *GitModule) run(L *lua.LState) int {
	L.Push(resultTable(L, m.dispatch(L)))
	return 1
}

// call(verb, args..., [opts]) -> data; raises when the verb fails.
func (m *GitModule) call(L *lua.LState) int {
	res := m.dispatch(L)
	if res.Error != nil {
		L.RaiseError("%s: %s", L.CheckString(1), res.Error.Error())
		return 0
	}
	L.Push(toLua(L, res.Data))
	return 1
}

// verbs() -> { {name=, usage=}, ... }
func (m *GitModule) verbs(L *lua.LState) int {
	tbl := L.NewTable()
	for _, v := range m.d.Verbs() {
		entry := L.NewTable()
		L.SetField(entry, "name", lua.LString(v.Name))
		L.SetField(entry, "usage", lua.LString(v.Usage))
		tbl.Append(entry)
	}
	L.Push(tbl)
	return 1
}

func (m *GitModule) dispatch(L *lua.LState) handler.Result {
	verb := L.CheckString(1)
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return m.d.Dispatch(ctx, verb, scriptArgs(L, 2))
}

// scriptArgs converts arguments from position start on. A table becomes
// options: true is a bare flag, false is dropped and underscores in keys
// become dashes. Options precede positionals so a "--" argument cannot
// swallow them.
func scriptArgs(L *lua.LState, start int) []string {
	var opts, positional []string
	for i := start; i <= L.GetTop(); i++ {
		switch v := L.Get(i).(type) {
		case *lua.LTable:
			opts = append(opts, optionArgs(v)...)
		case lua.LString, lua.LNumber:
			positional = append(positional, v.String())
		case lua.LBool:
			positional = append(positional, v.String())
		default:
			L.ArgError(i, "expected string, number, boolean or options table")
		}
	}
	return append(opts, positional...)
}

func optionArgs(tbl *lua.LTable) []string {
	var out []string
	tbl.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			return
		}
		name := "--" + strings.ReplaceAll(string(key), "_", "-")
		switch v := v.(type) {
		case lua.LBool:
			if v {
				out = append(out, name)
			}
		case lua.LString, lua.LNumber:
			out = append(out, name+"="+v.String())
		}
	})
	sort.Strings(out)
	return out
}

func resultTable(L *lua.LState, res handler.Result) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "status", lua.LString(res.Status.String()))
	L.SetField(tbl, "ok", lua.LBool(res.Error == nil))
	L.SetField(tbl, "message", lua.LString(res.Message))
	L.SetField(tbl, "generation", lua.LNumber(res.Generation))

	lines := L.NewTable()
	for _, line := range res.Lines {
		lines.Append(lua.LString(line))
	}
	L.SetField(tbl, "lines", lines)

	if res.Error != nil {
		L.SetField(tbl, "error", lua.LString(res.Error.Error()))
	}
	if len(res.Data) > 0 {
		L.SetField(tbl, "data", toLua(L, res.Data))
	} else {
		L.SetField(tbl, "data", L.NewTable())
	}
	return tbl
}
