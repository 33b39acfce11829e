package lua

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestToGoPrimitives(t *testing.T) {
	if got := toGo(lua.LString("hi")); got != "hi" {
		t.Errorf("string: got %v", got)
	}
	if got := toGo(lua.LBool(true)); got != true {
		t.Errorf("bool: got %v", got)
	}
	if got := toGo(lua.LNumber(3)); got != int64(3) {
		t.Errorf("whole number should be int64, got %v (%T)", got, got)
	}
	if got := toGo(lua.LNumber(2.5)); got != 2.5 {
		t.Errorf("fraction should be float64, got %v", got)
	}
	if got := toGo(lua.LNil); got != nil {
		t.Errorf("nil: got %v", got)
	}
}

func TestToGoTables(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	arr := L.NewTable()
	arr.Append(lua.LNumber(1))
	arr.Append(lua.LString("two"))
	if got, ok := toGo(arr).([]any); !ok || len(got) != 2 || got[0] != int64(1) || got[1] != "two" {
		t.Errorf("array table: got %v", toGo(arr))
	}

	obj := L.NewTable()
	obj.RawSetString("k", lua.LString("v"))
	if got, ok := toGo(obj).(map[string]any); !ok || got["k"] != "v" {
		t.Errorf("map table: got %v", toGo(obj))
	}
}

func TestToGoCircularTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tbl := L.NewTable()
	tbl.RawSetString("self", tbl)

	got, ok := toGo(tbl).(map[string]any)
	if !ok {
		t.Fatalf("expected a map, got %T", toGo(tbl))
	}
	if got["self"] != nil {
		t.Errorf("cycle must break to nil, got %v", got["self"])
	}
}

func TestToLuaRoundTrip(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	in := map[string]any{
		"s":    "str",
		"n":    int64(7),
		"f":    1.5,
		"b":    true,
		"list": []any{int64(1), "two"},
	}

	out, ok := toGo(toLua(L, in)).(map[string]any)
	if !ok {
		t.Fatalf("round trip lost the map: %T", toGo(toLua(L, in)))
	}
	if out["s"] != "str" || out["n"] != int64(7) || out["f"] != 1.5 || out["b"] != true {
		t.Errorf("round trip mangled scalars: %v", out)
	}
	list, ok := out["list"].([]any)
	if !ok || len(list) != 2 || list[0] != int64(1) || list[1] != "two" {
		t.Errorf("round trip mangled list: %v", out["list"])
	}
}
