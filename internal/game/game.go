package game

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/resources"
	"github.com/automancy/automancy/internal/scriptrt"
	"github.com/automancy/automancy/internal/tile"
)

// DefaultTickInterval is the scheduler's fixed tick period, 30 Hz by
// default. The ticker shape itself (time.NewTicker driving a
// single-goroutine transaction queue) stays fixed regardless of rate.
const DefaultTickInterval = time.Second / 30

// Game is the scheduler actor. It owns the tile map, drives the tick
// clock, routes inter-tile messages, keeps the undo journal and
// loads/saves maps. Only one message is handled at a time, on its own
// goroutine, so the tile map is never touched concurrently.
type Game struct {
	log      *slog.Logger
	registry *resources.Registry
	scripts  *scriptrt.Runtime

	inbox chan Msg
	done  chan struct{}

	tickInterval time.Duration
	tickCount    uint64
	tickStop     chan struct{}
	tickWg       chan struct{}

	current   *gameMap
	undo      *undoJournal
	sessionID uuid.UUID

	prevCulling hexcoord.TileBounds

	persist *persister

	// onCorruptInterner is invoked when a load finds
	// ids.ErrInternerMissingStringId: the active Interner has no string
	// for an Id reachable from a save's payload, meaning the interner
	// itself has been corrupted relative to what wrote the save. This
	// is treated as unrecoverable; the default hook logs and panics,
	// but it is a field (not an ambient panic call) so tests can
	// substitute a hook that records the call instead of crashing the
	// test binary.
	onCorruptInterner func(msg string, args ...any)
}

// Option configures a Game at construction.
type Option func(*Game)

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(g *Game) { g.tickInterval = d }
}

// WithCorruptInternerHook overrides the panic hook invoked when a load
// finds a string id with no interner entry (a corrupt save). Tests use
// this to assert the hook fires without crashing the test binary.
func WithCorruptInternerHook(fn func(msg string, args ...any)) Option {
	return func(g *Game) { g.onCorruptInterner = fn }
}

// New constructs a scheduler bound to registry/scripts, starts with an
// Empty map, and starts its mailbox goroutine and tick ticker.
func New(log *slog.Logger, registry *resources.Registry, scripts *scriptrt.Runtime, saveRoot string, opts ...Option) *Game {
	if log == nil {
		log = slog.Default()
	}
	g := &Game{
		log:          log,
		registry:     registry,
		scripts:      scripts,
		inbox:        make(chan Msg, 256),
		done:         make(chan struct{}),
		tickInterval: DefaultTickInterval,
		tickStop:     make(chan struct{}),
		tickWg:       make(chan struct{}),
		current:      newGameMap(EmptyMap()),
		undo:         newUndoJournal(),
		sessionID:    uuid.New(),
		prevCulling:  hexcoord.Empty(),
		persist:      newPersister(saveRoot),
	}
	g.onCorruptInterner = func(msg string, args ...any) {
		g.log.Error(msg, args...)
		panic(msg)
	}
	for _, opt := range opts {
		opt(g)
	}
	go g.loop()
	go g.tickLoop()
	return g
}

// Send enqueues msg on the scheduler's mailbox.
func (g *Game) Send(msg Msg) {
	g.inbox <- msg
}

// Stop drains the mailbox, saves the current map (if it is a save
// file), and shuts the scheduler down gracefully: pending messages are
// drained and SaveMap runs before Stop returns.
func (g *Game) Stop() {
	close(g.tickStop)
	<-g.tickWg // wait for the ticker to stop before closing the mailbox it sends to
	reply := make(chan error, 1)
	g.Send(SaveAndUnloadMsg{Reply: reply})
	<-reply
	close(g.inbox)
	<-g.done
}

func (g *Game) tickLoop() {
	defer close(g.tickWg)
	tc := time.NewTicker(g.tickInterval)
	defer tc.Stop()
	for {
		select {
		case <-tc.C:
			g.Send(TickMsg{})
		case <-g.tickStop:
			return
		}
	}
}

func (g *Game) loop() {
	defer close(g.done)
	for msg := range g.inbox {
		g.handle(msg)
	}
}

func (g *Game) handle(msg Msg) {
	switch m := msg.(type) {
	case TickMsg:
		g.handleTick()
	case SendTileMsgMsg:
		g.handleSendTileMsg(m)
	case SaveMapMsg:
		if err := g.saveCurrent(); err != nil {
			g.log.Error("save failed", "map", g.current.id, "err", err)
		}
	case SaveAndUnloadMsg:
		m.Reply <- g.saveAndUnload()
	case LoadMapMsg:
		m.Reply <- g.loadMap(m.ID)
	case GetMapIdAndDataMsg:
		m.Reply <- MapIdAndData{ID: g.current.id, Data: g.current.mapData, Ok: true}
	case PlaceTileMsg:
		resp := g.placeTile(m.Coord, m.Tile, m.Record)
		if m.Reply != nil {
			m.Reply <- resp
		}
	case PlaceTilesMsg:
		resps := g.placeTiles(m.Tiles, m.Replace, m.Record)
		if m.Reply != nil {
			m.Reply <- resps
		}
	case MoveTilesMsg:
		g.moveTiles(m.Coords, m.Anchor, m.Record)
	case UndoMsg:
		g.applyUndo()
	case GetTileMsg:
		m.Reply <- g.getTile(m.Coord)
	case GetTileFlatMsg:
		m.Reply <- g.getTileFlat(m.Coord)
	case GetTilesMsg:
		m.Reply <- g.getTiles(m.Coords)
	case GetTilesFlatMsg:
		m.Reply <- g.getTilesFlat(m.Coords)
	case GetAllRenderCommandsMsg:
		m.Reply <- g.getAllRenderCommands(m.CullingBounds)
	}
}

// handleTick broadcasts Tick to every live tile in stable (insertion)
// order; tick order is never randomized.
func (g *Game) handleTick() {
	g.tickCount++
	tc := g.tickCount
	for _, coord := range g.tileOrder() {
		entry := g.current.tiles[coord]
		entry.Handle.Send(tile.TickMsg{TickCount: tc})
	}
}

// ForwardTileMsg implements tile.GameLink by enqueueing a
// SendTileMsgMsg onto the scheduler's own mailbox; the scheduler is the
// only path that ever reaches into the tile map.
func (g *Game) ForwardTileMsg(source, to hexcoord.TileCoord, msg tile.Msg, onFail tile.OnFailAction) {
	g.Send(SendTileMsgMsg{Source: source, Coord: to, Msg: msg, OnFail: onFail})
}

func (g *Game) handleSendTileMsg(m SendTileMsgMsg) {
	entry, ok := g.current.tiles[m.Coord]
	if !ok {
		g.applyOnFail(m.Source, m.OnFail)
		return
	}
	entry.Handle.Send(m.Msg)
}

// applyOnFail applies the sender-side compensation when a forward's
// destination tile does not exist. Compensations never feed the undo
// journal (they are reactive, not user-initiated).
func (g *Game) applyOnFail(sender hexcoord.TileCoord, onFail tile.OnFailAction) {
	switch onFail.Kind {
	case tile.OnFailNone:
		return
	case tile.OnFailRemoveTile:
		g.placeTile(sender, PlacementTile{ID: g.registry.NoneTileID()}, false)
	case tile.OnFailRemoveAllData:
		entry, ok := g.current.tiles[sender]
		if !ok {
			return
		}
		entry.Handle.Send(tile.SetDataMsg{Data: data.New()})
	case tile.OnFailRemoveData:
		entry, ok := g.current.tiles[sender]
		if !ok {
			return
		}
		entry.Handle.Send(tile.RemoveDatumMsg{Key: onFail.RemoveKey})
	}
}

// tileOrder returns each live tile coordinate once, in order of first
// insertion. The scheduler tracks this explicitly rather than relying
// on Go map iteration order, which is randomized.
func (g *Game) tileOrder() []hexcoord.TileCoord {
	out := make([]hexcoord.TileCoord, 0, len(g.current.order))
	seen := make(map[hexcoord.TileCoord]struct{}, len(g.current.tiles))
	for _, c := range g.current.order {
		if _, ok := g.current.tiles[c]; !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
