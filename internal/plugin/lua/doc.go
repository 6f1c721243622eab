// Package lua runs user scripts in a sandboxed gopher-lua state.
//
// Only the base, table, string and math libraries are opened. dofile,
// loadfile, load and loadstring are removed, require only resolves
// preloaded modules, and print writes to the configured output instead
// of stdout.
//
// Every execution is bounded by a context. The state checks it between
// instructions, so a runaway loop stops when the context is cancelled or
// its deadline passes.
//
//	st := lua.NewState(lua.WithOutput(os.Stdout), lua.WithTimeout(10*time.Second))
//	defer st.Close()
//
//	if err := registry.InjectAll(st.LuaState()); err != nil {
//	    return err
//	}
//	if err := st.DoFile(ctx, "release.lua"); err != nil {
//	    return err
//	}
package lua
