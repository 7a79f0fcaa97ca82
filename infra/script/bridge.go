package script

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/mzki/pluto/variant"
)

// tableToLua copies t into a new Lua table.
func tableToLua(L *lua.LState, t *variant.Table) *lua.LTable {
	ltbl := L.CreateTable(0, t.Len())
	t.Range(func(key string, v variant.Variant) bool {
		ltbl.RawSetString(key, variantToLua(L, v))
		return true
	})
	return ltbl
}

func variantToLua(L *lua.LState, v variant.Variant) lua.LValue {
	switch v.Kind() {
	case variant.KindFloat:
		f, _ := v.AsFloat()
		return lua.LNumber(f)
	case variant.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case variant.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	case variant.KindTable:
		sub, _ := v.AsTable()
		return tableToLua(L, sub)
	default:
		return lua.LNil
	}
}

// luaToTable converts ltbl back into a Table. Keys which exist in prev keep
// their order, keys the script added are appended in sorted order.
// prev may be nil.
func luaToTable(ltbl *lua.LTable, prev *variant.Table, depth int) (*variant.Table, error) {
	if depth >= variant.MaxDepth {
		return nil, fmt.Errorf("%w: nested deeper than %d, or cyclic", ErrUnsupportedValue, variant.MaxDepth)
	}

	values := make(map[string]lua.LValue)
	var convErr error
	ltbl.ForEach(func(lk, lv lua.LValue) {
		if convErr != nil {
			return
		}
		key, ok := lk.(lua.LString)
		if !ok {
			convErr = fmt.Errorf("%w: key %v of type %s", ErrUnsupportedValue, lk, lk.Type())
			return
		}
		values[string(key)] = lv
	})
	if convErr != nil {
		return nil, convErr
	}

	order := make([]string, 0, len(values))
	if prev != nil {
		for _, k := range prev.Keys() {
			if _, ok := values[k]; ok {
				order = append(order, k)
			}
		}
	}
	var added []string
	for k := range values {
		if prev == nil || !prev.Has(k) {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	order = append(order, added...)

	t := variant.NewTable()
	for _, k := range order {
		var prevSub *variant.Table
		if prev != nil {
			prevSub, _ = prev.SubTable(k)
		}
		v, err := luaToVariant(values[k], prevSub, depth)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
		t.Replace(k, v)
	}
	return t, nil
}

func luaToVariant(lv lua.LValue, prevSub *variant.Table, depth int) (variant.Variant, error) {
	switch v := lv.(type) {
	case lua.LNumber:
		return variant.Float(float64(v)), nil
	case lua.LBool:
		return variant.Bool(bool(v)), nil
	case lua.LString:
		return variant.String(string(v)), nil
	case *lua.LTable:
		sub, err := luaToTable(v, prevSub, depth+1)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.TableValue(sub), nil
	default:
		return variant.Variant{}, fmt.Errorf("%w: %s", ErrUnsupportedValue, lv.Type())
	}
}
