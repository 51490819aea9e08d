package scriptrt

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/ids"
)

// InvokeStateful calls entryPoint with state marshaled as the script's
// mutable "this" binding and args as its function parameter. The
// script's mutable "this" binding is the tile's DataMap; on return the
// engine reads the (possibly new) map back rather than taking it as an
// ordinary argument.
//
// goja has no equivalent of rhai's tagged Dynamic, so the kind of every
// field is remembered going in (preKind) and reused coming out; a field
// a script adds fresh has its kind inferred from its JS shape and its
// key interned. This is a narrowing relative to rhai's fully dynamic
// typing.
func (rt *Runtime) InvokeStateful(scriptID ids.Id, entryPoint string, args map[string]any, state *data.DataMap, interner *ids.Interner) (result any, newState *data.DataMap, err error) {
	vm, err := rt.vmFor(scriptID)
	if err != nil {
		return nil, state, err
	}
	fn, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return nil, state, ErrFunctionNotFound
	}

	entries, err := data.ToStrLive(state, interner)
	if err != nil {
		return nil, state, fmt.Errorf("scriptrt: marshaling state: %w", err)
	}
	preKind := make(map[string]string, len(entries))
	thisObj := vm.NewObject()
	for _, e := range entries {
		preKind[e.Key] = e.Kind
		if err := thisObj.Set(e.Key, e.Value); err != nil {
			return nil, state, fmt.Errorf("scriptrt: binding state field %q: %w", e.Key, err)
		}
	}

	argsObj := vm.NewObject()
	for k, v := range args {
		if err := argsObj.Set(k, v); err != nil {
			return nil, state, fmt.Errorf("scriptrt: binding arg %q: %w", k, err)
		}
	}

	ret, callErr := fn(thisObj, argsObj)
	if callErr != nil {
		return nil, state, fmt.Errorf("scriptrt: %s: %w", entryPoint, callErr)
	}

	out := make([]data.StrEntry, 0, len(thisObj.Keys()))
	for _, key := range thisObj.Keys() {
		val := thisObj.Get(key)
		kind := preKind[key]
		if kind == "" {
			kind = inferKind(val)
			interner.Intern(key)
		}
		coerced, err := coerceForKind(kind, val)
		if err != nil {
			return nil, state, fmt.Errorf("scriptrt: reading back state field %q: %w", key, err)
		}
		out = append(out, data.StrEntry{Key: key, Kind: kind, Value: coerced})
	}
	newData, err := data.FromStr(out, interner)
	if err != nil {
		return nil, state, fmt.Errorf("scriptrt: unmarshaling returned state: %w", err)
	}

	if goja.IsUndefined(ret) || goja.IsNull(ret) {
		return nil, newData, nil
	}
	return ret.Export(), newData, nil
}

// inferKind guesses a Kind for a field a script introduced that was not
// present in the pre-call state, from its exported JS shape. Ambiguous
// shapes (e.g. a string could be an Id or a Color) resolve to the more
// common case in tile scripts.
func inferKind(v goja.Value) string {
	exported := v.Export()
	switch x := exported.(type) {
	case bool:
		return "Bool"
	case string:
		return "Id"
	case int64:
		return "Amount"
	case float64:
		return "Amount"
	case []any:
		if len(x) == 2 {
			if _, ok := asInt32(x[0]); ok {
				if _, ok := asInt32(x[1]); ok {
					return "Coord"
				}
			}
		}
		if len(x) > 0 {
			if _, ok := x[0].(string); ok {
				return "VecId"
			}
		}
		return "VecCoord"
	case map[string]any:
		for _, mv := range x {
			if _, ok := mv.(string); ok {
				return "TileMap"
			}
			break
		}
		return "Inventory"
	default:
		return "Amount"
	}
}

func asInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int64:
		return int32(n), true
	case float64:
		return int32(n), true
	case int:
		return int32(n), true
	default:
		return 0, false
	}
}

// coerceForKind converts val's exported JS representation into the
// shape data.FromStr expects for kind (the same shapes data.ToStrLive
// produces), so a field a script left untouched round-trips exactly and
// one it mutated is read back in its new form.
func coerceForKind(kind string, val goja.Value) (any, error) {
	exported := val.Export()
	switch kind {
	case "Coord":
		list, ok := exported.([]any)
		if !ok || len(list) != 2 {
			return nil, fmt.Errorf("expected a 2-element coord array, got %T", exported)
		}
		q, ok1 := asInt32(list[0])
		r, ok2 := asInt32(list[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("coord elements must be numeric")
		}
		return [2]int32{q, r}, nil
	case "VecCoord":
		list, ok := exported.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a coord-list array, got %T", exported)
		}
		out := make([][2]int32, 0, len(list))
		for _, item := range list {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("expected a 2-element coord array in list")
			}
			q, ok1 := asInt32(pair[0])
			r, ok2 := asInt32(pair[1])
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("coord elements must be numeric")
			}
			out = append(out, [2]int32{q, r})
		}
		return out, nil
	case "Amount":
		n, ok := asInt32(exported)
		if !ok {
			return nil, fmt.Errorf("expected a numeric amount, got %T", exported)
		}
		return n, nil
	case "Bool":
		b, ok := exported.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean, got %T", exported)
		}
		return b, nil
	case "Color":
		s, ok := exported.(string)
		if !ok {
			return nil, fmt.Errorf("expected a hex color string, got %T", exported)
		}
		return s, nil
	case "Id":
		s, ok := exported.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string id, got %T", exported)
		}
		return s, nil
	case "VecId":
		list, ok := exported.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a string-id array, got %T", exported)
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string id in list, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case "SetId":
		list, ok := exported.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a string-id array, got %T", exported)
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string id in set, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case "TileMap":
		m, ok := exported.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %T", exported)
		}
		out := make(map[string]string, len(m))
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string id for key %q, got %T", k, v)
			}
			out[k] = s
		}
		return out, nil
	case "MapSetId":
		m, ok := exported.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %T", exported)
		}
		out := make(map[string][]string, len(m))
		for k, v := range m {
			list, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("expected a string-id array for key %q, got %T", k, v)
			}
			vals := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("expected a string id in set for key %q", k)
				}
				vals = append(vals, s)
			}
			out[k] = vals
		}
		return out, nil
	case "Inventory":
		m, ok := exported.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %T", exported)
		}
		out := make(map[string]int32, len(m))
		for k, v := range m {
			n, ok := asInt32(v)
			if !ok {
				return nil, fmt.Errorf("expected a numeric amount for item %q, got %T", k, v)
			}
			out[k] = n
		}
		return out, nil
	case "TileBounds":
		return exported, nil
	default:
		return nil, fmt.Errorf("unknown datum kind %q", kind)
	}
}
