package game

import (
	"github.com/automancy/automancy/internal/hexcoord"
)

func (g *Game) getTile(coord hexcoord.TileCoord) TileLookup {
	entry, ok := g.current.tiles[coord]
	if !ok {
		return TileLookup{}
	}
	return TileLookup{Entry: *entry, Ok: true}
}

func (g *Game) getTileFlat(coord hexcoord.TileCoord) FlatTileLookup {
	entry, ok := g.current.tiles[coord]
	if !ok {
		return FlatTileLookup{}
	}
	snapshot := g.snapshotEntry(entry)
	return FlatTileLookup{Tile: FlatTile{Coord: coord, ID: entry.ID, Data: snapshot}, Ok: true}
}

func (g *Game) getTiles(coords []hexcoord.TileCoord) map[hexcoord.TileCoord]TileEntry {
	out := make(map[hexcoord.TileCoord]TileEntry, len(coords))
	for _, c := range coords {
		if entry, ok := g.current.tiles[c]; ok {
			out[c] = *entry
		}
	}
	return out
}

func (g *Game) getTilesFlat(coords []hexcoord.TileCoord) []FlatTile {
	out := make([]FlatTile, 0, len(coords))
	for _, c := range coords {
		if entry, ok := g.current.tiles[c]; ok {
			out = append(out, FlatTile{Coord: c, ID: entry.ID, Data: g.snapshotEntry(entry)})
		}
	}
	return out
}
