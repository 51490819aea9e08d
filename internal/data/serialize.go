package data

import (
	"fmt"

	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
)

// DataMapRaw is the first serialization stage for a DataMap: the same
// structure, still carrying numeric Ids, paired with the IdMap built
// by walking every Id the map references. Saves do not use it: map.zst
// and data.ron are written from the ToStrLive string form.
type DataMapRaw struct {
	Data  *DataMap
	IdMap *ids.IdMap
}

// IntoRaw walks m, recording every Id it references (as keys or as
// Id/VecId/SetId/TileMap/MapSetId values) into an IdMap sourced from
// interner.
func IntoRaw(m *DataMap, interner *ids.Interner) DataMapRaw {
	idMap := ids.NewIdMap()
	for _, k := range m.Keys() {
		idMap.Record(interner, k)
		d, _ := m.Get(k)
		recordDatumIds(d, interner, idMap)
	}
	return DataMapRaw{Data: m, IdMap: idMap}
}

func recordDatumIds(d Datum, interner *ids.Interner, idMap *ids.IdMap) {
	switch v := d.(type) {
	case IdDatum:
		idMap.Record(interner, v.Value)
	case VecId:
		for _, id := range v.Value {
			idMap.Record(interner, id)
		}
	case SetId:
		for id := range v.Value {
			idMap.Record(interner, id)
		}
	case TileMap:
		for _, id := range v.Value {
			idMap.Record(interner, id)
		}
	case MapSetId:
		for k, set := range v.Value {
			idMap.Record(interner, k)
			for id := range set {
				idMap.Record(interner, id)
			}
		}
	case InventoryDatum:
		for _, id := range v.Value.Keys() {
			idMap.Record(interner, id)
		}
	}
}

// IntoData is the inverse of IntoRaw: it re-validates that every Id
// referenced by raw.Data has a string counterpart in raw.IdMap. It does
// not re-intern anything (the Ids are already numbers valid for the
// process that produced them); that only happens when restoring from
// the fully string-formed DataMapStr after a process restart.
func (raw DataMapRaw) IntoData() (*DataMap, error) {
	for _, k := range raw.Data.Keys() {
		if _, err := raw.IdMap.String(k); err != nil {
			return nil, err
		}
		d, _ := raw.Data.Get(k)
		if err := checkDatumIds(d, raw.IdMap); err != nil {
			return nil, err
		}
	}
	return raw.Data, nil
}

func checkDatumIds(d Datum, idMap *ids.IdMap) error {
	switch v := d.(type) {
	case IdDatum:
		_, err := idMap.String(v.Value)
		return err
	case VecId:
		for _, id := range v.Value {
			if _, err := idMap.String(id); err != nil {
				return err
			}
		}
	case SetId:
		for id := range v.Value {
			if _, err := idMap.String(id); err != nil {
				return err
			}
		}
	case TileMap:
		for _, id := range v.Value {
			if _, err := idMap.String(id); err != nil {
				return err
			}
		}
	case MapSetId:
		for k, set := range v.Value {
			if _, err := idMap.String(k); err != nil {
				return err
			}
			for id := range set {
				if _, err := idMap.String(id); err != nil {
					return err
				}
			}
		}
	case InventoryDatum:
		for _, id := range v.Value.Keys() {
			if _, err := idMap.String(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// StrEntry is one key/value pair of the string form of a DataMap
// (DataMapStr): human-authored RON as found under resources/<ns>/tiles.
type StrEntry struct {
	Key   string
	Kind  string
	Value any
}

// ToStr converts raw into its fully string-formed representation for
// on-disk persistence, resolving every Id through raw.IdMap.
func ToStr(raw DataMapRaw) ([]StrEntry, error) {
	return toStr(raw.Data, raw.IdMap.String)
}

// ToStrLive converts m into its string-formed representation by
// resolving ids directly against a live Interner rather than a
// persisted IdMap. Used to marshal a DataMap into a script's "this"
// binding, where the process's own Interner is always available and a
// separate IdMap would be redundant.
func ToStrLive(m *DataMap, interner *ids.Interner) ([]StrEntry, error) {
	return toStr(m, func(id ids.Id) (string, error) {
		s, ok := interner.Lookup(id)
		if !ok {
			return "", fmt.Errorf("data: id %v not present in interner", id)
		}
		return s, nil
	})
}

func toStr(m *DataMap, resolve func(ids.Id) (string, error)) ([]StrEntry, error) {
	out := make([]StrEntry, 0, m.Len())
	for _, k := range m.Keys() {
		keyStr, err := resolve(k)
		if err != nil {
			return nil, err
		}
		d, _ := m.Get(k)
		kind, val, err := datumToStrResolve(d, resolve)
		if err != nil {
			return nil, err
		}
		out = append(out, StrEntry{Key: keyStr, Kind: kind, Value: val})
	}
	return out, nil
}

func datumToStrResolve(d Datum, resolve func(ids.Id) (string, error)) (kind string, value any, err error) {
	switch v := d.(type) {
	case Coord:
		return "Coord", [2]int32{v.Value.Q, v.Value.R}, nil
	case VecCoord:
		out := make([][2]int32, len(v.Value))
		for i, c := range v.Value {
			out[i] = [2]int32{c.Q, c.R}
		}
		return "VecCoord", out, nil
	case Amount:
		return "Amount", v.Value, nil
	case Bool:
		return "Bool", v.Value, nil
	case TileBoundsDatum:
		return "TileBounds", v.Value, nil
	case Color:
		return "Color", v.HexString(), nil
	case IdDatum:
		s, err := resolve(v.Value)
		return "Id", s, err
	case VecId:
		out := make([]string, len(v.Value))
		for i, id := range v.Value {
			s, err := resolve(id)
			if err != nil {
				return "", nil, err
			}
			out[i] = s
		}
		return "VecId", out, nil
	case SetId:
		out := make([]string, 0, len(v.Value))
		for id := range v.Value {
			s, err := resolve(id)
			if err != nil {
				return "", nil, err
			}
			out = append(out, s)
		}
		return "SetId", out, nil
	case TileMap:
		out := make(map[string]string, len(v.Value))
		for c, id := range v.Value {
			s, err := resolve(id)
			if err != nil {
				return "", nil, err
			}
			out[fmt.Sprintf("%d,%d", c.Q, c.R)] = s
		}
		return "TileMap", out, nil
	case MapSetId:
		out := make(map[string][]string, len(v.Value))
		for k, set := range v.Value {
			ks, err := resolve(k)
			if err != nil {
				return "", nil, err
			}
			vals := make([]string, 0, len(set))
			for id := range set {
				s, err := resolve(id)
				if err != nil {
					return "", nil, err
				}
				vals = append(vals, s)
			}
			out[ks] = vals
		}
		return "MapSetId", out, nil
	case InventoryDatum:
		out := make(map[string]int32, len(v.Value.Keys()))
		for _, id := range v.Value.Keys() {
			s, err := resolve(id)
			if err != nil {
				return "", nil, err
			}
			out[s] = v.Value.Peek(id)
		}
		return "Inventory", out, nil
	default:
		return "", nil, fmt.Errorf("data: unknown datum kind %T", d)
	}
}

// FromStr is the inverse of ToStr: it resolves every string id back
// into an Id via interner, failing with ErrInternerMissingStringId
// rather than minting new ones. Coordinates accept both canonical
// axial pairs and a row/column offset form, converting the latter via
// hexcoord.AxialFromOffset.
func FromStr(entries []StrEntry, interner *ids.Interner) (*DataMap, error) {
	m := New()
	for _, e := range entries {
		key, err := ids.Resolve(interner, e.Key)
		if err != nil {
			return nil, err
		}
		d, err := datumFromStr(e.Kind, e.Value, interner)
		if err != nil {
			return nil, err
		}
		m.Set(key, d)
	}
	return m, nil
}

func datumFromStr(kind string, value any, interner *ids.Interner) (Datum, error) {
	switch kind {
	case "Coord":
		c, err := coordFromAny(value)
		return Coord{Value: c}, err
	case "VecCoord":
		list, _ := value.([][2]int32)
		out := make([]hexcoord.TileCoord, len(list))
		for i, p := range list {
			out[i] = hexcoord.TileCoord{Q: p[0], R: p[1]}
		}
		return VecCoord{Value: out}, nil
	case "Amount":
		n, _ := value.(int32)
		return Amount{Value: n}, nil
	case "Bool":
		b, _ := value.(bool)
		return Bool{Value: b}, nil
	case "TileBounds":
		b, _ := value.(hexcoord.TileBounds)
		return TileBoundsDatum{Value: b}, nil
	case "Color":
		s, _ := value.(string)
		return ColorFromHex(s), nil
	case "Id":
		s, _ := value.(string)
		id, err := ids.Resolve(interner, s)
		return IdDatum{Value: id}, err
	case "VecId":
		list, _ := value.([]string)
		out := make([]ids.Id, len(list))
		for i, s := range list {
			id, err := ids.Resolve(interner, s)
			if err != nil {
				return nil, err
			}
			out[i] = id
		}
		return VecId{Value: out}, nil
	case "SetId":
		list, _ := value.([]string)
		out := make(map[ids.Id]struct{}, len(list))
		for _, s := range list {
			id, err := ids.Resolve(interner, s)
			if err != nil {
				return nil, err
			}
			out[id] = struct{}{}
		}
		return SetId{Value: out}, nil
	case "TileMap":
		m, _ := value.(map[string]string)
		out := make(map[hexcoord.TileCoord]ids.Id, len(m))
		for k, v := range m {
			c, err := parseOffsetOrAxialKey(k)
			if err != nil {
				return nil, err
			}
			id, err := ids.Resolve(interner, v)
			if err != nil {
				return nil, err
			}
			out[c] = id
		}
		return TileMap{Value: out}, nil
	case "MapSetId":
		m, _ := value.(map[string][]string)
		out := make(map[ids.Id]map[ids.Id]struct{}, len(m))
		for k, vals := range m {
			key, err := ids.Resolve(interner, k)
			if err != nil {
				return nil, err
			}
			set := make(map[ids.Id]struct{}, len(vals))
			for _, v := range vals {
				id, err := ids.Resolve(interner, v)
				if err != nil {
					return nil, err
				}
				set[id] = struct{}{}
			}
			out[key] = set
		}
		return MapSetId{Value: out}, nil
	case "Inventory":
		m, _ := value.(map[string]int32)
		inv := NewInventory()
		for k, n := range m {
			id, err := ids.Resolve(interner, k)
			if err != nil {
				return nil, err
			}
			inv.Add(id, n)
		}
		return InventoryDatum{Value: inv}, nil
	default:
		return nil, fmt.Errorf("data: unknown datum kind %q", kind)
	}
}

// coordFromAny accepts either a canonical [q, r] axial pair or an
// offset {row, col, even_row} form, normalizing both to axial.
func coordFromAny(value any) (hexcoord.TileCoord, error) {
	switch v := value.(type) {
	case [2]int32:
		return hexcoord.TileCoord{Q: v[0], R: v[1]}, nil
	case hexcoord.OffsetCoord:
		return hexcoord.AxialFromOffset(v), nil
	default:
		return hexcoord.TileCoord{}, fmt.Errorf("data: unrecognized coord encoding %T", value)
	}
}

// parseOffsetOrAxialKey parses a TileMap string key as either a
// canonical "q,r" axial pair or a "row,col,even" offset triple (the
// even component is 1 for an even-row offset, 0 otherwise), converting
// the latter to axial via hexcoord.AxialFromOffset.
func parseOffsetOrAxialKey(s string) (hexcoord.TileCoord, error) {
	var row, col, even int32
	if n, err := fmt.Sscanf(s, "%d,%d,%d", &row, &col, &even); err == nil && n == 3 {
		return hexcoord.AxialFromOffset(hexcoord.OffsetCoord{Row: row, Col: col, EvenRow: even != 0}), nil
	}
	var q, r int32
	if _, err := fmt.Sscanf(s, "%d,%d", &q, &r); err != nil {
		return hexcoord.TileCoord{}, fmt.Errorf("data: invalid coord key %q: %w", s, err)
	}
	return hexcoord.TileCoord{Q: q, R: r}, nil
}
