// Package ids implements the interned string identifier scheme used
// throughout the engine: every tile, item, model and script is addressed
// by a namespaced string such as "core:belt", but carried around the hot
// path as a 32-bit Id once it has been interned.
package ids

import "fmt"

// Id is an opaque 32-bit symbol interned from a "namespace:name" string.
// It is only meaningful relative to the Interner that produced it; an Id
// minted by one Interner must never be looked up in another.
type Id uint32

// None is the zero value, reserved for "no id" / the core:none sentinel
// tile before it has been interned.
const None Id = 0

// TileId and ModelId exist solely to prevent category confusion at
// call sites (placing a ModelId where a TileId is expected, etc). They
// share representation with Id and convert freely.
type TileId Id
type ModelId Id

func (i TileId) Id() Id   { return Id(i) }
func (i ModelId) Id() Id  { return Id(i) }
func TileIdOf(i Id) TileId   { return TileId(i) }
func ModelIdOf(i Id) ModelId { return ModelId(i) }

func (i Id) String() string      { return fmt.Sprintf("Id(%d)", uint32(i)) }
func (i TileId) String() string  { return fmt.Sprintf("TileId(%d)", uint32(i)) }
func (i ModelId) String() string { return fmt.Sprintf("ModelId(%d)", uint32(i)) }
