package data

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/automancy/automancy/internal/ids"
)

// DataMap is an ordered Id -> Datum mapping: the per-tile mutable state
// exchanged with scripts and the on-disk serialization unit.
type DataMap struct {
	order []ids.Id
	data  map[ids.Id]Datum
}

// New returns an empty DataMap.
func New() *DataMap {
	return &DataMap{data: make(map[ids.Id]Datum)}
}

// Get returns the datum at key and whether it was present.
func (m *DataMap) Get(key ids.Id) (Datum, bool) {
	d, ok := m.data[key]
	return d, ok
}

// Set inserts or replaces the datum at key, tracking insertion order on
// first write.
func (m *DataMap) Set(key ids.Id, v Datum) {
	if m.data == nil {
		m.data = make(map[ids.Id]Datum)
	}
	if _, ok := m.data[key]; !ok {
		m.order = append(m.order, key)
	}
	m.data[key] = v
}

// Remove deletes key, if present.
func (m *DataMap) Remove(key ids.Id) {
	if _, ok := m.data[key]; !ok {
		return
	}
	delete(m.data, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Clear empties the map.
func (m *DataMap) Clear() {
	m.order = nil
	m.data = make(map[ids.Id]Datum)
}

// Keys returns every key present, in insertion order.
func (m *DataMap) Keys() []ids.Id {
	out := make([]ids.Id, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of entries.
func (m *DataMap) Len() int { return len(m.order) }

// Clone returns an independent deep copy; every Datum is cloned so a
// script mutating the copy never aliases the original (e.g. a tile
// definition's default data).
func (m *DataMap) Clone() *DataMap {
	out := New()
	for _, k := range m.order {
		out.Set(k, m.data[k].Clone())
	}
	return out
}

// Entry returns the datum at key, or zero, ok=false.
func (m *DataMap) Entry(key ids.Id) (Datum, bool) { return m.Get(key) }

// InventoryMut returns the Inventory datum at key, lazily inserting an
// empty Inventory if key is absent or holds a datum of a different
// shape.
func (m *DataMap) InventoryMut(key ids.Id) *Inventory {
	if d, ok := m.data[key]; ok {
		if inv, ok := d.(InventoryDatum); ok {
			return inv.Value
		}
	}
	inv := NewInventory()
	m.Set(key, InventoryDatum{Value: inv})
	return inv
}

// SetIdMut returns the SetId datum at key, lazily inserting an empty set
// if key is absent or holds a datum of a different shape.
func (m *DataMap) SetIdMut(key ids.Id) map[ids.Id]struct{} {
	if d, ok := m.data[key]; ok {
		if s, ok := d.(SetId); ok {
			return s.Value
		}
	}
	s := make(map[ids.Id]struct{})
	m.Set(key, SetId{Value: s})
	return s
}

// BoolOrDefault returns the Bool datum at key, or def if absent or of
// a different shape (it does not mutate the map the way the *Mut
// helpers do; this is a read-only accessor for flags).
func (m *DataMap) BoolOrDefault(key ids.Id, def bool) bool {
	if d, ok := m.data[key]; ok {
		if b, ok := d.(Bool); ok {
			return b.Value
		}
	}
	return def
}

// ContainsId checks structural containment of id within the datum at
// key: an Inventory key treats id as an item check with amount 1, an Id
// datum checks equality, a VecId/SetId datum checks membership. Types
// where containment is undefined (Amount, Bool, Coord, ...) return
// false.
func (m *DataMap) ContainsId(key ids.Id, id ids.Id) bool {
	d, ok := m.data[key]
	if !ok {
		return false
	}
	switch v := d.(type) {
	case InventoryDatum:
		return v.Value.Contains(ItemStack{Id: id, Amount: 1})
	case IdDatum:
		return v.Value == id
	case VecId:
		for _, x := range v.Value {
			if x == id {
				return true
			}
		}
		return false
	case SetId:
		_, ok := v.Value[id]
		return ok
	case TileMap:
		for _, x := range v.Value {
			if x == id {
				return true
			}
		}
		return false
	case MapSetId:
		_, ok := v.Value[id]
		return ok
	default:
		return false
	}
}

// contentHash is a cheap fingerprint of a Datum's value, used by Diff to
// short-circuit the deep Equal call on the (common) case where two
// values are certainly different. fmt's %#v sorts map keys, so this is
// stable across calls for the map-backed Datum kinds (Inventory, SetId,
// TileMap, MapSetId). An Inventory is hashed by its item amounts rather
// than by the pointer its Datum holds.
func contentHash(d Datum) uint64 {
	if inv, ok := d.(InventoryDatum); ok && inv.Value != nil {
		return xxhash.Sum64String(fmt.Sprintf("%#v", inv.Value.amount))
	}
	return xxhash.Sum64String(fmt.Sprintf("%#v", d))
}

// Diff returns the set of keys that differ between prev and next: keys
// newly inserted, keys whose value changed, and (if includeRemoved)
// keys removed. Used to compute field_changes after a script handler
// returns or a tile's data is replaced wholesale.
func Diff(prev, next *DataMap, includeRemoved bool) map[ids.Id]struct{} {
	changed := make(map[ids.Id]struct{})
	for _, k := range next.order {
		nv := next.data[k]
		pv, ok := prev.data[k]
		if !ok {
			changed[k] = struct{}{}
			continue
		}
		// contentHash(pv) != contentHash(nv) already proves a difference;
		// Equal is only reached to rule out a hash collision.
		if contentHash(pv) != contentHash(nv) || !pv.Equal(nv) {
			changed[k] = struct{}{}
		}
	}
	if includeRemoved {
		for _, k := range prev.order {
			if _, ok := next.data[k]; !ok {
				changed[k] = struct{}{}
			}
		}
	}
	return changed
}
