package game

import (
	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/tile"
)

// placeTile implements the placement algorithm for a single
// coordinate. record controls whether an inverse op is pushed onto the
// undo journal (false for undo replay itself and for OnFailAction
// compensations, which "never feed back into the undo journal").
func (g *Game) placeTile(coord hexcoord.TileCoord, t PlacementTile, record bool) PlaceTileResponse {
	op, resp := g.applyPlacement(coord, t)
	if record && op != nil {
		g.undo.push([]undoOp{*op})
	}
	return resp
}

// applyPlacement performs one coordinate's placement and returns the
// undo-journal entry for it (nil if nothing changed, i.e. Ignored).
func (g *Game) applyPlacement(coord hexcoord.TileCoord, t PlacementTile) (*undoOp, PlaceTileResponse) {
	prev, hadPrev := g.current.tiles[coord]

	if t.ID == g.registry.NoneTileID() {
		if !hadPrev {
			return nil, Ignored
		}
		snapshot := g.snapshotEntry(prev)
		g.retire(coord)
		return &undoOp{coord: coord, action: Removed, prevID: prev.ID, prevData: snapshot}, Removed
	}

	if hadPrev && prev.ID == t.ID {
		return nil, Ignored
	}

	if hadPrev {
		g.retire(coord)
	}
	g.instantiate(coord, t)
	return &undoOp{coord: coord, action: Placed}, Placed
}

// snapshotEntry takes a deep copy of entry's current data for the undo
// journal, since the actor's own map keeps mutating after this point.
func (g *Game) snapshotEntry(entry *TileEntry) *data.DataMap {
	reply := make(chan *data.DataMap, 1)
	entry.Handle.Send(tile.GetDataMsg{Reply: reply})
	return (<-reply).Clone()
}

// retire stops coord's tile actor and removes its entry.
func (g *Game) retire(coord hexcoord.TileCoord) {
	entry, ok := g.current.tiles[coord]
	if !ok {
		return
	}
	entry.Handle.Stop()
	delete(g.current.tiles, coord)
}

// instantiate creates a fresh tile actor at coord bound to t.ID, with
// its data initialized from the tile definition's default data merged
// under t.InitData (t.InitData takes precedence).
func (g *Game) instantiate(coord hexcoord.TileCoord, t PlacementTile) {
	actor := tile.NewActor(g.log, g, g.registry, g.scripts, t.ID, coord)
	initial := g.initialData(t)
	if initial != nil && initial.Len() > 0 {
		actor.Send(tile.SetDataMsg{Data: initial})
	}
	g.current.tiles[coord] = &TileEntry{ID: t.ID, Handle: actor}
	g.current.order = append(g.current.order, coord)
}

// initialData merges a tile definition's default data with an explicit
// InitData override, InitData winning on key collision.
func (g *Game) initialData(t PlacementTile) *data.DataMap {
	def, ok := g.registry.Tile(t.ID)
	var base *data.DataMap
	if ok && def.Data != nil {
		base = def.Data.Clone()
	} else {
		base = data.New()
	}
	if t.InitData == nil {
		return base
	}
	for _, k := range t.InitData.Keys() {
		v, _ := t.InitData.Get(k)
		base.Set(k, v)
	}
	return base
}

// placeTiles is the batched form of placeTile. replace=false skips
// coordinates that already hold a tile; replace=true uses the
// single-placement rule at every coordinate. One grouped undo entry is
// recorded for the whole call.
func (g *Game) placeTiles(tiles []FlatTile, replace, record bool) []PlaceTileResponse {
	resps := make([]PlaceTileResponse, len(tiles))
	var group []undoOp
	for i, ft := range tiles {
		if !replace {
			if _, hadPrev := g.current.tiles[ft.Coord]; hadPrev {
				resps[i] = Ignored
				continue
			}
		}
		op, resp := g.applyPlacement(ft.Coord, PlacementTile{ID: ft.ID, InitData: ft.Data})
		resps[i] = resp
		if op != nil {
			group = append(group, *op)
		}
	}
	if record {
		g.undo.push(group)
	}
	return resps
}

// moveTiles implements MoveTiles: coords[0] is
// re-homed onto anchor, and every other source keeps its offset from
// coords[0]. Unlike PlaceTile, the tile's actor is kept running and
// simply told its new coordinate (tile.SetCoordMsg) rather than being
// destroyed and recreated, so in-flight mailbox state survives the
// move. A destination coordinate already holding a tile skips that one
// relocation entirely (source left in place).
func (g *Game) moveTiles(coords []hexcoord.TileCoord, anchor hexcoord.TileCoord, record bool) {
	if len(coords) == 0 {
		return
	}
	origin := coords[0]
	var group []undoOp
	for _, from := range coords {
		entry, ok := g.current.tiles[from]
		if !ok {
			continue
		}
		to := anchor.Add(from.Sub(origin))
		if to == from {
			continue
		}
		if _, occupied := g.current.tiles[to]; occupied {
			continue
		}

		snapshot := g.snapshotEntry(entry)
		delete(g.current.tiles, from)
		entry.Handle.Send(tile.SetCoordMsg{Coord: to})
		g.current.tiles[to] = entry
		g.current.order = append(g.current.order, to)

		group = append(group,
			undoOp{coord: to, action: Placed},
			undoOp{coord: from, action: Removed, prevID: entry.ID, prevData: snapshot},
		)
	}
	if record {
		g.undo.push(group)
	}
}

// applyUndo pops the most recent undo group and replays each op's
// inverse through the ordinary placement path with record=false.
func (g *Game) applyUndo() {
	group, ok := g.undo.pop()
	if !ok {
		return
	}
	for _, op := range group {
		switch op.action {
		case Placed:
			g.placeTile(op.coord, PlacementTile{ID: g.registry.NoneTileID()}, false)
		case Removed:
			g.placeTile(op.coord, PlacementTile{ID: op.prevID, InitData: op.prevData}, false)
		}
	}
}
