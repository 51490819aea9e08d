// Package data implements the per-tile value model: the Datum tagged
// union, the DataMap that holds a tile's mutable state, and Inventory.
// Datum is a closed Go interface instead of bare `any`, so a
// mismatched accessor fails a type switch instead of a runtime panic.
package data

import (
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
)

// Datum is the tagged union of values a DataMap key can hold. Only the
// types declared in this file implement it; the set is closed by
// convention (an unexported marker method).
type Datum interface {
	isDatum()
	// Equal reports whether two data of the same concrete type carry
	// the same value. Used by field-change diffing.
	Equal(Datum) bool
	// Clone returns an independent copy, so a script mutating its
	// "this" DataMap never aliases the tile-definition's default data.
	Clone() Datum
}

// Coord wraps a single hex coordinate.
type Coord struct{ Value hexcoord.TileCoord }

// VecCoord wraps a list of hex coordinates.
type VecCoord struct{ Value []hexcoord.TileCoord }

// Amount wraps a signed 32-bit quantity (item counts, etc).
type Amount struct{ Value int32 }

// Bool wraps a boolean flag.
type Bool struct{ Value bool }

// TileBoundsDatum wraps a culling/placement region.
type TileBoundsDatum struct{ Value hexcoord.TileBounds }

// Color wraps an RGBA float color.
type Color struct{ R, G, B, A float32 }

// InventoryDatum wraps an Inventory.
type InventoryDatum struct{ Value *Inventory }

// IdDatum wraps a single interned Id.
type IdDatum struct{ Value ids.Id }

// VecId wraps an ordered list of Ids.
type VecId struct{ Value []ids.Id }

// SetId wraps an unordered set of Ids.
type SetId struct{ Value map[ids.Id]struct{} }

// TileMap wraps a Coord -> Id mapping (e.g. tracked neighbor links).
type TileMap struct{ Value map[hexcoord.TileCoord]ids.Id }

// MapSetId wraps an Id -> set-of-Id mapping.
type MapSetId struct{ Value map[ids.Id]map[ids.Id]struct{} }

func (Coord) isDatum() {}
func (VecCoord) isDatum() {}
func (Amount) isDatum() {}
func (Bool) isDatum() {}
func (TileBoundsDatum) isDatum() {}
func (Color) isDatum() {}
func (InventoryDatum) isDatum() {}
func (IdDatum) isDatum() {}
func (VecId) isDatum() {}
func (SetId) isDatum() {}
func (TileMap) isDatum() {}
func (MapSetId) isDatum() {}

func (d Coord) Equal(o Datum) bool {
	v, ok := o.(Coord)
	return ok && v.Value == d.Value
}
func (d Coord) Clone() Datum { return d }

func (d VecCoord) Equal(o Datum) bool {
	v, ok := o.(VecCoord)
	if !ok || len(v.Value) != len(d.Value) {
		return false
	}
	for i := range d.Value {
		if d.Value[i] != v.Value[i] {
			return false
		}
	}
	return true
}
func (d VecCoord) Clone() Datum {
	out := make([]hexcoord.TileCoord, len(d.Value))
	copy(out, d.Value)
	return VecCoord{Value: out}
}

func (d Amount) Equal(o Datum) bool {
	v, ok := o.(Amount)
	return ok && v.Value == d.Value
}
func (d Amount) Clone() Datum { return d }

func (d Bool) Equal(o Datum) bool {
	v, ok := o.(Bool)
	return ok && v.Value == d.Value
}
func (d Bool) Clone() Datum { return d }

func (d TileBoundsDatum) Equal(o Datum) bool {
	v, ok := o.(TileBoundsDatum)
	return ok && v.Value == d.Value
}
func (d TileBoundsDatum) Clone() Datum { return d }

func (d Color) Equal(o Datum) bool {
	v, ok := o.(Color)
	return ok && v == d
}
func (d Color) Clone() Datum { return d }

func (d InventoryDatum) Equal(o Datum) bool {
	v, ok := o.(InventoryDatum)
	return ok && d.Value.Equal(v.Value)
}
func (d InventoryDatum) Clone() Datum { return InventoryDatum{Value: d.Value.Clone()} }

func (d IdDatum) Equal(o Datum) bool {
	v, ok := o.(IdDatum)
	return ok && v.Value == d.Value
}
func (d IdDatum) Clone() Datum { return d }

func (d VecId) Equal(o Datum) bool {
	v, ok := o.(VecId)
	if !ok || len(v.Value) != len(d.Value) {
		return false
	}
	for i := range d.Value {
		if d.Value[i] != v.Value[i] {
			return false
		}
	}
	return true
}
func (d VecId) Clone() Datum {
	out := make([]ids.Id, len(d.Value))
	copy(out, d.Value)
	return VecId{Value: out}
}

func (d SetId) Equal(o Datum) bool {
	v, ok := o.(SetId)
	if !ok || len(v.Value) != len(d.Value) {
		return false
	}
	for k := range d.Value {
		if _, ok := v.Value[k]; !ok {
			return false
		}
	}
	return true
}
func (d SetId) Clone() Datum {
	out := make(map[ids.Id]struct{}, len(d.Value))
	for k := range d.Value {
		out[k] = struct{}{}
	}
	return SetId{Value: out}
}

func (d TileMap) Equal(o Datum) bool {
	v, ok := o.(TileMap)
	if !ok || len(v.Value) != len(d.Value) {
		return false
	}
	for k, id := range d.Value {
		if v.Value[k] != id {
			return false
		}
	}
	return true
}
func (d TileMap) Clone() Datum {
	out := make(map[hexcoord.TileCoord]ids.Id, len(d.Value))
	for k, v := range d.Value {
		out[k] = v
	}
	return TileMap{Value: out}
}

func (d MapSetId) Equal(o Datum) bool {
	v, ok := o.(MapSetId)
	if !ok || len(v.Value) != len(d.Value) {
		return false
	}
	for k, set := range d.Value {
		vset, ok := v.Value[k]
		if !ok || len(vset) != len(set) {
			return false
		}
		for id := range set {
			if _, ok := vset[id]; !ok {
				return false
			}
		}
	}
	return true
}
func (d MapSetId) Clone() Datum {
	out := make(map[ids.Id]map[ids.Id]struct{}, len(d.Value))
	for k, set := range d.Value {
		inner := make(map[ids.Id]struct{}, len(set))
		for id := range set {
			inner[id] = struct{}{}
		}
		out[k] = inner
	}
	return MapSetId{Value: out}
}
