package lua

import lua "github.com/yuin/gopher-lua"

// toGo converts a Lua value to a Go value. Functions convert to nil;
// circular tables are broken with nil.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	if lv == nil {
		return nil
	}

	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *lua.LNilType:
		return nil
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a table to a []any when it is a pure array, and a
// map[string]any otherwise.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	arrayLen := t.Len()
	if arrayLen > 0 {
		isArray := true
		t.ForEach(func(k, _ lua.LValue) {
			if n, ok := k.(lua.LNumber); !ok || float64(n) != float64(int(n)) || int(n) < 1 || int(n) > arrayLen {
				isArray = false
			}
		})
		if isArray {
			arr := make([]any, 0, arrayLen)
			for i := 1; i <= arrayLen; i++ {
				arr = append(arr, toGoVisited(t.RawGetInt(i), visited))
			}
			return arr
		}
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoVisited(v, visited)
	})
	return m
}

// toLua converts a Go value to a Lua value in the given state.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for _, item := range val {
			t.Append(toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	default:
		ud := L.NewUserData()
		ud.Value = val
		return ud
	}
}
