// Package api provides the Lua modules exposed to gitpanel scripts.
//
// Modules are collected in a Registry and injected into a Lua state.
// InjectAll also preloads an aggregate module, so scripts use:
//
//	local gp = require("gitpanel")
//	local res = gp.git.run("status")
//	for _, line in ipairs(res.lines) do print(line) end
//
//	local data = gp.git.call("branches")          -- raises on failure
//	gp.git.run("merge", "feature", { no_ff = true }) -- options table
//
// Results are tables with status, ok, message, lines, error and data.
// data holds the verb's typed payload with Go field names as keys.
package api
