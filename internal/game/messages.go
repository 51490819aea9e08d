// Package game is the game scheduler: the actor that owns the tile
// map, drives the tick clock, routes inter-tile messages (applying
// OnFailAction compensation when a destination tile is gone), keeps
// the undo journal, and loads/saves maps. Its own mailbox follows the
// same goroutine-plus-channel shape as internal/tile.Actor, with a
// reply-channel-per-command convention for queries and placements.
package game

import (
	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
	"github.com/automancy/automancy/internal/tile"
)

// Msg is one message the scheduler's mailbox accepts.
type Msg interface{ isGameMsg() }

// TickMsg drives one tick of the tile map.
type TickMsg struct{}

// SendTileMsgMsg forwards Msg to the tile at Coord, the scheduler's
// "inner ring" entry point tile actors reach through GameLink. Source
// and OnFail are only consulted if Coord has no live tile: the
// compensation is then applied against Source.
type SendTileMsgMsg struct {
	Source hexcoord.TileCoord
	Coord  hexcoord.TileCoord
	Msg    tile.Msg
	OnFail tile.OnFailAction
}

// SaveMapMsg persists the current map without unloading it.
type SaveMapMsg struct{}

// SaveAndUnloadMsg persists the current map and tears down every tile
// actor, leaving the scheduler mapless.
type SaveAndUnloadMsg struct {
	Reply chan error
}

// LoadMapMsg replaces the current map with the one named by id.
type LoadMapMsg struct {
	ID    GameMapId
	Reply chan bool
}

// GetMapIdAndDataMsg returns the active map's id and map-level DataMap.
type GetMapIdAndDataMsg struct {
	Reply chan MapIdAndData
}

// MapIdAndData is the reply payload of GetMapIdAndDataMsg.
type MapIdAndData struct {
	ID   GameMapId
	Data *data.DataMap
	Ok   bool
}

// PlacementTile is the (id, init_data) pair a placement message carries.
type PlacementTile struct {
	ID       ids.TileId
	InitData *data.DataMap
}

// PlaceTileMsg places (or removes, for core:none) a single tile.
type PlaceTileMsg struct {
	Coord  hexcoord.TileCoord
	Tile   PlacementTile
	Record bool
	Reply  chan PlaceTileResponse
}

// PlaceTileResponse is the per-coordinate outcome of a placement.
type PlaceTileResponse int

const (
	Placed PlaceTileResponse = iota
	Removed
	Ignored
)

func (r PlaceTileResponse) String() string {
	switch r {
	case Placed:
		return "Placed"
	case Removed:
		return "Removed"
	default:
		return "Ignored"
	}
}

// FlatTile is one (coord, id, data) triple as used by the batched
// placement and inspection messages: a flattened tile-map snapshot
// exchanged across the actor boundary.
type FlatTile struct {
	Coord hexcoord.TileCoord
	ID    ids.TileId
	Data  *data.DataMap
}

// PlaceTilesMsg is the batched form of PlaceTileMsg.
type PlaceTilesMsg struct {
	Tiles   []FlatTile
	Replace bool
	Record  bool
	Reply   chan []PlaceTileResponse
}

// MoveTilesMsg re-homes every coordinate in Coords so that Coords[0]
// lands on Anchor and every other source keeps its offset from
// Coords[0]. A destination already holding a tile causes that one
// relocation to be skipped.
type MoveTilesMsg struct {
	Coords []hexcoord.TileCoord
	Anchor hexcoord.TileCoord
	Record bool
}

// UndoMsg pops and applies the most recent undo journal group.
type UndoMsg struct{}

// GetTileMsg looks up the live tile at coord.
type GetTileMsg struct {
	Coord hexcoord.TileCoord
	Reply chan TileLookup
}

// TileLookup is the reply payload of GetTileMsg: the entry and whether
// one was present.
type TileLookup struct {
	Entry TileEntry
	Ok    bool
}

// GetTileFlatMsg looks up coord's tile and a snapshot of its data.
type GetTileFlatMsg struct {
	Coord hexcoord.TileCoord
	Reply chan FlatTileLookup
}

type FlatTileLookup struct {
	Tile FlatTile
	Ok   bool
}

// GetTilesMsg batches GetTileMsg over multiple coordinates.
type GetTilesMsg struct {
	Coords []hexcoord.TileCoord
	Reply  chan map[hexcoord.TileCoord]TileEntry
}

// GetTilesFlatMsg batches GetTileFlatMsg over multiple coordinates.
type GetTilesFlatMsg struct {
	Coords []hexcoord.TileCoord
	Reply  chan []FlatTile
}

// GetAllRenderCommandsMsg fans CollectRenderCommands out to every tile
// within CullingBounds, plus every tile that was inside the previous
// request's bounds and is now outside them.
type GetAllRenderCommandsMsg struct {
	CullingBounds hexcoord.TileBounds
	Reply         chan RenderCommandsResult
}

// RenderCommandsResult is the two-map reply of GetAllRenderCommandsMsg:
// commands from tiles newly or continuously in view, and from tiles
// just leaving view.
type RenderCommandsResult struct {
	Loaded    map[hexcoord.TileCoord][]tile.RenderCommand
	Unloading map[hexcoord.TileCoord][]tile.RenderCommand
}

func (TickMsg) isGameMsg() {}
func (SendTileMsgMsg) isGameMsg() {}
func (SaveMapMsg) isGameMsg() {}
func (SaveAndUnloadMsg) isGameMsg() {}
func (LoadMapMsg) isGameMsg() {}
func (GetMapIdAndDataMsg) isGameMsg() {}
func (PlaceTileMsg) isGameMsg() {}
func (PlaceTilesMsg) isGameMsg() {}
func (MoveTilesMsg) isGameMsg() {}
func (UndoMsg) isGameMsg() {}
func (GetTileMsg) isGameMsg() {}
func (GetTileFlatMsg) isGameMsg() {}
func (GetTilesMsg) isGameMsg() {}
func (GetTilesFlatMsg) isGameMsg() {}
func (GetAllRenderCommandsMsg) isGameMsg() {}
