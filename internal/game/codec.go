package game

import (
	"fmt"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/resources"
)

// strEntriesToValue renders a DataMap's string form (data.StrEntry) as
// a resources.Value map keyed by field name, each wrapped in a
// Struct(kind, value) tagged pair so the RON round-trips through
// valueToStrEntries without losing which Datum variant it came from.
// This is the save-file counterpart to registry.go's narrower
// valueToDatumArgs (which only needs to read tile-definition authored
// data, not the full Datum vocabulary a live map can contain).
func strEntriesToValue(entries []data.StrEntry) resources.Value {
	out := make(map[string]resources.Value, len(entries))
	for _, e := range entries {
		out[e.Key] = resources.Struct{Name: e.Kind, Tuple: []resources.Value{kindValue(e.Kind, e.Value)}}
	}
	return out
}

func kindValue(kind string, v any) resources.Value {
	switch kind {
	case "Coord":
		p := v.([2]int32)
		return []resources.Value{int32(p[0]), int32(p[1])}
	case "VecCoord":
		list := v.([][2]int32)
		out := make([]resources.Value, len(list))
		for i, p := range list {
			out[i] = []resources.Value{int32(p[0]), int32(p[1])}
		}
		return out
	case "Amount":
		return v.(int32)
	case "Bool":
		return v.(bool)
	case "Color":
		return v.(string)
	case "Id":
		return v.(string)
	case "VecId", "SetId":
		list := v.([]string)
		out := make([]resources.Value, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	case "TileMap":
		m := v.(map[string]string)
		out := make(map[string]resources.Value, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	case "MapSetId":
		m := v.(map[string][]string)
		out := make(map[string]resources.Value, len(m))
		for k, list := range m {
			vals := make([]resources.Value, len(list))
			for i, s := range list {
				vals[i] = s
			}
			out[k] = vals
		}
		return out
	case "Inventory":
		m := v.(map[string]int32)
		out := make(map[string]resources.Value, len(m))
		for k, n := range m {
			out[k] = int32(n)
		}
		return out
	default:
		// TileBounds and any future kind: best-effort passthrough, not
		// expected to be mutated by saved tile data in practice.
		return nil
	}
}

// valueToStrEntries is the inverse of strEntriesToValue: it reads a
// decoded RON map[string]Value back into []data.StrEntry ready for
// data.FromStr.
func valueToStrEntries(v resources.Value) ([]data.StrEntry, error) {
	m, ok := v.(map[string]resources.Value)
	if !ok {
		return nil, fmt.Errorf("game: data map root is not an object (got %T)", v)
	}
	entries := make([]data.StrEntry, 0, len(m))
	for key, field := range m {
		s, ok := field.(resources.Struct)
		if !ok {
			return nil, fmt.Errorf("game: field %q is not a tagged struct", key)
		}
		if len(s.Tuple) != 1 {
			return nil, fmt.Errorf("game: field %q struct %q has %d positional values, want 1", key, s.Name, len(s.Tuple))
		}
		value, err := valueFromKind(s.Name, s.Tuple[0])
		if err != nil {
			return nil, fmt.Errorf("game: field %q: %w", key, err)
		}
		entries = append(entries, data.StrEntry{Key: key, Kind: s.Name, Value: value})
	}
	return entries, nil
}

func valueFromKind(kind string, v resources.Value) (any, error) {
	switch kind {
	case "Coord":
		return coordFromRON(v)
	case "VecCoord":
		list, _ := v.([]resources.Value)
		out := make([][2]int32, len(list))
		for i, item := range list {
			c, err := coordFromRON(item)
			if err != nil {
				return nil, fmt.Errorf("coord at index %d: %w", i, err)
			}
			out[i] = axialPairFromCoord(c)
		}
		return out, nil
	case "Amount":
		return toInt32Value(v), nil
	case "Bool":
		b, _ := v.(bool)
		return b, nil
	case "Color", "Id":
		s, _ := v.(string)
		return s, nil
	case "VecId", "SetId":
		list, _ := v.([]resources.Value)
		out := make([]string, len(list))
		for i, item := range list {
			out[i], _ = item.(string)
		}
		return out, nil
	case "TileMap":
		m, _ := v.(map[string]resources.Value)
		out := make(map[string]string, len(m))
		for k, item := range m {
			out[k], _ = item.(string)
		}
		return out, nil
	case "MapSetId":
		m, _ := v.(map[string]resources.Value)
		out := make(map[string][]string, len(m))
		for k, item := range m {
			list, _ := item.([]resources.Value)
			vals := make([]string, len(list))
			for i, x := range list {
				vals[i], _ = x.(string)
			}
			out[k] = vals
		}
		return out, nil
	case "Inventory":
		m, _ := v.(map[string]resources.Value)
		out := make(map[string]int32, len(m))
		for k, item := range m {
			out[k] = toInt32Value(item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported datum kind %q", kind)
	}
}

// coordFromRON reads a coordinate field that may be written either as
// a plain [q, r] axial pair or as a tagged RowCol(row, col, even_row)
// struct, the row/column form some hand-authored tile tables use.
// RowCol values come back as a hexcoord.OffsetCoord for the caller to
// resolve to axial; pairs come back as [2]int32 directly.
func coordFromRON(v resources.Value) (any, error) {
	if s, ok := v.(resources.Struct); ok && s.Name == "RowCol" {
		if len(s.Tuple) != 3 {
			return nil, fmt.Errorf("RowCol coord wants 3 positional fields, got %d", len(s.Tuple))
		}
		return hexcoord.OffsetCoord{
			Row:     toInt32Value(s.Tuple[0]),
			Col:     toInt32Value(s.Tuple[1]),
			EvenRow: toBoolValue(s.Tuple[2]),
		}, nil
	}
	pair, ok := v.([]resources.Value)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("expected a 2-element coord pair")
	}
	return [2]int32{toInt32Value(pair[0]), toInt32Value(pair[1])}, nil
}

// axialPairFromCoord resolves a coordFromRON result down to a plain
// axial pair, converting an offset form if that's what was read.
func axialPairFromCoord(v any) [2]int32 {
	switch c := v.(type) {
	case [2]int32:
		return c
	case hexcoord.OffsetCoord:
		axial := hexcoord.AxialFromOffset(c)
		return [2]int32{axial.Q, axial.R}
	default:
		return [2]int32{}
	}
}

func toBoolValue(v resources.Value) bool {
	b, _ := v.(bool)
	return b
}

func toInt32Value(v resources.Value) int32 {
	switch n := v.(type) {
	case float64:
		return int32(n)
	case int32:
		return n
	case int:
		return int32(n)
	default:
		return 0
	}
}
