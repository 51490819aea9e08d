package game

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/mod/semver"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
	"github.com/automancy/automancy/internal/resources"
	"github.com/automancy/automancy/internal/tile"
)

// engineVersion gates save compatibility: a save written by an engine
// whose major.minor differs is rejected rather than partially loaded:
// the load is logged and aborted, replying false.
const engineVersion = "v0.1.0"

// ErrInvalidMapData is returned by load paths when a save's files are
// missing, malformed, or written by an incompatible engine version.
var ErrInvalidMapData = errors.New("game: invalid map data")

// persister resolves save directories under root and keeps a small
// goleveldb index of each save's metadata (tile count, engine version)
// so a save browser can list saves without opening every data.ron.
// Tile data itself round-trips through the human-readable RON files;
// the index is purely an acceleration structure over their metadata.
type persister struct {
	root  string
	index *leveldb.DB
}

func newPersister(root string) *persister {
	if root == "" {
		root = "saves"
	}
	return &persister{root: root}
}

func (p *persister) ensureIndex() (*leveldb.DB, error) {
	if p.index != nil {
		return p.index, nil
	}
	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return nil, fmt.Errorf("game: creating save root: %w", err)
	}
	db, err := leveldb.OpenFile(filepath.Join(p.root, ".save-index"), nil)
	if err != nil {
		return nil, fmt.Errorf("game: opening save index: %w", err)
	}
	p.index = db
	return db, nil
}

func (p *persister) recordIndex(name string, tileCount int, sessionID uuid.UUID) {
	db, err := p.ensureIndex()
	if err != nil {
		return
	}
	_ = db.Put([]byte(name), []byte(fmt.Sprintf("%s;%d;%s", engineVersion, tileCount, sessionID)), nil)
}

func (p *persister) dir(name string) string {
	return filepath.Join(p.root, name)
}

// saveCurrent writes the active map's data.ron and map.zst. It is a
// no-op if the active map has no save name (Empty/MainMenu/Debug are
// not persisted).
func (g *Game) saveCurrent() error {
	name, ok := g.current.id.SaveName()
	if !ok {
		return nil
	}
	dir := g.persist.dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("game: creating save directory: %w", err)
	}

	mapEntries, err := data.ToStrLive(g.current.mapData, g.registry.Interner)
	if err != nil {
		return fmt.Errorf("game: encoding map data: %w", err)
	}
	tileOrder := g.tileOrder()

	dataDoc := map[string]resources.Value{
		"tile_count":     int32(len(tileOrder)),
		"engine_version": engineVersion,
		"data":           strEntriesToValue(mapEntries),
	}
	if err := os.WriteFile(filepath.Join(dir, "data.ron"), []byte(resources.Encode(dataDoc)), 0o644); err != nil {
		return fmt.Errorf("game: writing data.ron: %w", err)
	}

	tileValues := make([]resources.Value, 0, len(tileOrder))
	for _, coord := range tileOrder {
		entry := g.current.tiles[coord]
		idStr, ok := g.registry.Interner.Lookup(entry.ID.Id())
		if !ok {
			return fmt.Errorf("%w: tile id %v not in interner", ErrInvalidMapData, entry.ID)
		}
		snapshot := g.snapshotEntry(entry)
		entries, err := data.ToStrLive(snapshot, g.registry.Interner)
		if err != nil {
			return fmt.Errorf("game: encoding tile %v data: %w", coord, err)
		}
		tileValues = append(tileValues, resources.Struct{Name: "Tile", Tuple: []resources.Value{
			[]resources.Value{coord.Q, coord.R},
			idStr,
			strEntriesToValue(entries),
		}})
	}
	mapDoc := map[string]resources.Value{"tiles": tileValues}
	if err := writeZstRon(filepath.Join(dir, "map.zst"), mapDoc); err != nil {
		return fmt.Errorf("game: writing map.zst: %w", err)
	}

	g.persist.recordIndex(name, len(tileOrder), g.sessionID)
	return nil
}

// saveAndUnload persists the current map, then retires every tile actor
// and resets to an Empty map.
func (g *Game) saveAndUnload() error {
	err := g.saveCurrent()
	for coord := range g.current.tiles {
		g.retire(coord)
	}
	g.current = newGameMap(EmptyMap())
	g.undo.clear()
	g.prevCulling = hexcoord.Empty()
	g.sessionID = uuid.New()
	return err
}

// loadMap replaces the active map with the one named by id. A non-save
// id (Empty/MainMenu/Debug) simply resets to a fresh, empty map of that
// kind. Returns false (without mutating scheduler state) if the save
// could not be read or is from an incompatible engine version.
func (g *Game) loadMap(id GameMapId) bool {
	name, ok := id.SaveName()
	if !ok {
		for coord := range g.current.tiles {
			g.retire(coord)
		}
		g.current = newGameMap(id)
		g.undo.clear()
		g.prevCulling = hexcoord.Empty()
		return true
	}

	dir := g.persist.dir(name)
	dataRaw, err := os.ReadFile(filepath.Join(dir, "data.ron"))
	if err != nil {
		g.log.Error("load: reading data.ron", "save", name, "err", err)
		return false
	}
	dataDoc, err := resources.Decode(string(dataRaw))
	if err != nil {
		g.log.Error("load: decoding data.ron", "save", name, "err", err)
		return false
	}
	dataMap, ok := dataDoc.(map[string]resources.Value)
	if !ok {
		g.log.Error("load: data.ron root is not a map", "save", name)
		return false
	}
	version, _ := dataMap["engine_version"].(string)
	if !compatibleVersion(version) {
		g.log.Error("load: incompatible save version", "save", name, "version", version, "engine", engineVersion)
		return false
	}

	mapEntries, err := valueToStrEntries(dataMap["data"])
	if err != nil {
		g.log.Error("load: decoding map data", "save", name, "err", err)
		return false
	}
	mapData, err := data.FromStr(mapEntries, g.registry.Interner)
	if err != nil {
		if errors.Is(err, ids.ErrInternerMissingStringId) {
			g.onCorruptInterner("load: interner missing string id for map data", "save", name, "err", err)
			return false
		}
		g.log.Error("load: resolving map data ids", "save", name, "err", err)
		return false
	}

	mapDoc, err := readZstRon(filepath.Join(dir, "map.zst"))
	if err != nil {
		g.log.Error("load: reading map.zst", "save", name, "err", err)
		return false
	}
	tilesRaw, _ := mapDoc["tiles"].([]resources.Value)

	type loadedTile struct {
		coord hexcoord.TileCoord
		id    string
		data  []data.StrEntry
	}
	loaded := make([]loadedTile, 0, len(tilesRaw))
	for _, raw := range tilesRaw {
		s, ok := raw.(resources.Struct)
		if !ok || len(s.Tuple) != 3 {
			g.log.Error("load: malformed tile entry", "save", name)
			return false
		}
		coordPair, ok := s.Tuple[0].([]resources.Value)
		if !ok || len(coordPair) != 2 {
			g.log.Error("load: malformed tile coordinate", "save", name)
			return false
		}
		idStr, _ := s.Tuple[1].(string)
		entries, err := valueToStrEntries(s.Tuple[2])
		if err != nil {
			g.log.Error("load: decoding tile data", "save", name, "err", err)
			return false
		}
		loaded = append(loaded, loadedTile{
			coord: hexcoord.TileCoord{Q: toInt32Value(coordPair[0]), R: toInt32Value(coordPair[1])},
			id:    idStr,
			data:  entries,
		})
	}

	for coord := range g.current.tiles {
		g.retire(coord)
	}
	g.current = newGameMap(id)
	g.current.mapData = mapData
	g.undo.clear()
	g.prevCulling = hexcoord.Empty()

	for _, lt := range loaded {
		tileID := ids.TileIdOf(g.registry.Interner.Intern(lt.id))
		tdMap, err := data.FromStr(lt.data, g.registry.Interner)
		if err != nil {
			if errors.Is(err, ids.ErrInternerMissingStringId) {
				g.onCorruptInterner("load: interner missing string id for tile data", "save", name, "coord", lt.coord, "err", err)
				continue
			}
			g.log.Error("load: resolving tile data ids", "save", name, "coord", lt.coord, "err", err)
			continue
		}
		actor := tile.NewActor(g.log, g, g.registry, g.scripts, tileID, lt.coord)
		actor.Send(tile.SetDataMsg{Data: tdMap})
		g.current.tiles[lt.coord] = &TileEntry{ID: tileID, Handle: actor}
		g.current.order = append(g.current.order, lt.coord)
	}
	return true
}

// compatibleVersion reports whether a save's recorded engine version
// shares the same major.minor as the running engine.
func compatibleVersion(v string) bool {
	if v == "" || !semver.IsValid(v) {
		return false
	}
	return semver.MajorMinor(v) == semver.MajorMinor(engineVersion)
}

func writeZstRon(path string, v resources.Value) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.Copy(w, bytes.NewReader([]byte(resources.Encode(v))))
	return err
}

func readZstRon(path string) (map[string]resources.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapData, err)
	}
	v, err := resources.Decode(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapData, err)
	}
	m, ok := v.(map[string]resources.Value)
	if !ok {
		return nil, fmt.Errorf("%w: map.zst root is not a map", ErrInvalidMapData)
	}
	return m, nil
}
