package api

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"
)

// toLua converts a Go value to Lua through its JSON form. Structs become
// tables keyed by field name, slices become 1-based arrays and values
// that do not marshal become nil.
func toLua(L *lua.LState, v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return lua.LNil
	}
	return fromJSON(L, gjson.ParseBytes(data))
}

func fromJSON(L *lua.LState, res gjson.Result) lua.LValue {
	switch {
	case res.IsArray():
		tbl := L.NewTable()
		for _, item := range res.Array() {
			tbl.Append(fromJSON(L, item))
		}
		return tbl
	case res.IsObject():
		tbl := L.NewTable()
		res.ForEach(func(key, value gjson.Result) bool {
			L.SetField(tbl, key.String(), fromJSON(L, value))
			return true
		})
		return tbl
	}

	switch res.Type {
	case gjson.String:
		return lua.LString(res.String())
	case gjson.Number:
		return lua.LNumber(res.Float())
	case gjson.True:
		return lua.LTrue
	case gjson.False:
		return lua.LFalse
	}
	return lua.LNil
}
