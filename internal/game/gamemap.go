package game

import (
	"fmt"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
	"github.com/automancy/automancy/internal/tile"
)

// GameMapId names which map a scheduler has loaded.
type GameMapId struct {
	kind gameMapKind
	name string
}

type gameMapKind uint8

const (
	mapEmpty gameMapKind = iota
	mapSaveFile
	mapMainMenu
	mapDebug
)

func EmptyMap() GameMapId { return GameMapId{kind: mapEmpty} }
func SaveFile(name string) GameMapId { return GameMapId{kind: mapSaveFile, name: name} }
func MainMenuMap() GameMapId { return GameMapId{kind: mapMainMenu} }
func DebugMap() GameMapId { return GameMapId{kind: mapDebug} }

// SaveName returns the save directory name and true if id names a save
// file, or "", false otherwise.
func (id GameMapId) SaveName() (string, bool) {
	if id.kind != mapSaveFile {
		return "", false
	}
	return id.name, true
}

func (id GameMapId) String() string {
	switch id.kind {
	case mapSaveFile:
		return fmt.Sprintf("SaveFile(%s)", id.name)
	case mapMainMenu:
		return "MainMenu"
	case mapDebug:
		return "Debug"
	default:
		return "Empty"
	}
}

func (id GameMapId) Equal(o GameMapId) bool { return id.kind == o.kind && id.name == o.name }

// TileEntry is the scheduler's live record for a placed tile: its id
// plus a handle to its actor.
type TileEntry struct {
	ID     ids.TileId
	Handle *tile.Actor
}

// gameMap is the scheduler's full in-memory state for one loaded map:
// the tile map plus map-level data.
type gameMap struct {
	id    GameMapId
	tiles map[hexcoord.TileCoord]*TileEntry
	// order records placement insertion order for stable tick dispatch;
	// entries for removed coordinates are left in place (a coordinate
	// placed again is appended again) and tileOrder filters them by
	// membership and de-duplicates rather than compacting, since ticking
	// is far hotter than placement churn.
	order   []hexcoord.TileCoord
	mapData *data.DataMap
}

func newGameMap(id GameMapId) *gameMap {
	return &gameMap{id: id, tiles: make(map[hexcoord.TileCoord]*TileEntry), mapData: data.New()}
}
