package game

import (
	"log/slog"
	"testing"
	"time"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
	"github.com/automancy/automancy/internal/resources"
	"github.com/automancy/automancy/internal/scriptrt"
)

// newTestGame builds a scheduler with its own registry/interner/script
// runtime, a tick interval long enough that the background ticker never
// fires during a test, and a temp save root.
func newTestGame(t *testing.T) (*Game, *resources.Registry, *scriptrt.Runtime) {
	t.Helper()
	interner := ids.NewInterner()
	registry := resources.NewRegistry(interner)
	scripts := scriptrt.New(slog.Default())

	g := New(slog.Default(), registry, scripts, t.TempDir(), WithTickInterval(time.Hour))
	t.Cleanup(g.Stop)
	return g, registry, scripts
}

func registerPlainTile(registry *resources.Registry, name string) ids.TileId {
	return registry.RegisterTile(name, resources.TileDefinition{Name: name, Data: data.New()})
}

func registerScriptedTile(registry *resources.Registry, scripts *scriptrt.Runtime, name, code string) ids.TileId {
	scriptID := registry.Interner.Intern(name + "#script")
	scripts.RegisterTileScript(scriptID, scriptrt.Source{ScriptID: name, Code: code})
	return registry.RegisterTile(name, resources.TileDefinition{Name: name, Data: data.New(), ScriptID: &scriptID})
}

func placeTile(g *Game, coord hexcoord.TileCoord, id ids.TileId, initData *data.DataMap, record bool) PlaceTileResponse {
	reply := make(chan PlaceTileResponse, 1)
	g.Send(PlaceTileMsg{Coord: coord, Tile: PlacementTile{ID: id, InitData: initData}, Record: record, Reply: reply})
	return <-reply
}

func getTile(g *Game, coord hexcoord.TileCoord) TileLookup {
	reply := make(chan TileLookup, 1)
	g.Send(GetTileMsg{Coord: coord, Reply: reply})
	return <-reply
}

func getTileFlat(g *Game, coord hexcoord.TileCoord) FlatTileLookup {
	reply := make(chan FlatTileLookup, 1)
	g.Send(GetTileFlatMsg{Coord: coord, Reply: reply})
	return <-reply
}

// waitForAmount polls coord's tile data for key to become an
// Amount{want}, since transaction propagation crosses several actor
// mailboxes asynchronously relative to the test's own scheduler
// messages.
func waitForAmount(t *testing.T, g *Game, coord hexcoord.TileCoord, interner *ids.Interner, key string, want int32, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	k := interner.Intern(key)
	for time.Now().Before(deadline) {
		lookup := getTileFlat(g, coord)
		if lookup.Ok {
			if d, ok := lookup.Tile.Data.Get(k); ok {
				if amt, ok := d.(data.Amount); ok && amt.Value == want {
					return true
				}
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestPlaceTileReturnsPlacedAndIsFindable(t *testing.T) {
	g, registry, _ := newTestGame(t)
	tileID := registerPlainTile(registry, "test:box")
	coord := hexcoord.TileCoord{Q: 0, R: 0}

	resp := placeTile(g, coord, tileID, nil, true)
	if resp != Placed {
		t.Fatalf("PlaceTile = %v, want Placed", resp)
	}

	lookup := getTile(g, coord)
	if !lookup.Ok {
		t.Fatal("GetTile found nothing after a Placed response")
	}
	if lookup.Entry.ID != tileID {
		t.Fatalf("GetTile id = %v, want %v", lookup.Entry.ID, tileID)
	}
}

func TestPlacingNoneRemovesExistingTile(t *testing.T) {
	g, registry, _ := newTestGame(t)
	tileID := registerPlainTile(registry, "test:box")
	coord := hexcoord.TileCoord{Q: 0, R: 0}

	if resp := placeTile(g, coord, tileID, nil, true); resp != Placed {
		t.Fatalf("initial PlaceTile = %v, want Placed", resp)
	}

	resp := placeTile(g, coord, registry.NoneTileID(), nil, true)
	if resp != Removed {
		t.Fatalf("PlaceTile(core:none) = %v, want Removed", resp)
	}

	if lookup := getTile(g, coord); lookup.Ok {
		t.Fatal("GetTile still found a tile after Removed")
	}
}

func TestDoublePlacementOfSameIdIsIgnored(t *testing.T) {
	g, registry, _ := newTestGame(t)
	tileID := registerPlainTile(registry, "test:box")
	coord := hexcoord.TileCoord{Q: 0, R: 0}

	if resp := placeTile(g, coord, tileID, nil, true); resp != Placed {
		t.Fatalf("initial PlaceTile = %v, want Placed", resp)
	}

	resp := placeTile(g, coord, tileID, nil, true)
	if resp != Ignored {
		t.Fatalf("re-placing the same id = %v, want Ignored", resp)
	}

	lookup := getTile(g, coord)
	if !lookup.Ok || lookup.Entry.ID != tileID {
		t.Fatalf("tile changed after an Ignored placement: %+v", lookup)
	}
}

func TestUndoAfterPlacedRestoresEmptiness(t *testing.T) {
	g, registry, _ := newTestGame(t)
	tileID := registerPlainTile(registry, "test:box")
	coord := hexcoord.TileCoord{Q: 0, R: 0}

	if resp := placeTile(g, coord, tileID, nil, true); resp != Placed {
		t.Fatalf("PlaceTile = %v, want Placed", resp)
	}

	g.Send(UndoMsg{})

	// UndoMsg carries no reply; round-trip through a query so we only
	// observe state after the undo has actually been applied.
	if lookup := getTile(g, coord); lookup.Ok {
		t.Fatal("GetTile still found a tile after undoing its placement")
	}
}

func TestUndoAfterRemovedRestoresPriorTile(t *testing.T) {
	g, registry, _ := newTestGame(t)
	tileID := registerPlainTile(registry, "test:box")
	coord := hexcoord.TileCoord{Q: 0, R: 0}

	placeTile(g, coord, tileID, nil, true)
	if resp := placeTile(g, coord, registry.NoneTileID(), nil, true); resp != Removed {
		t.Fatalf("PlaceTile(core:none) = %v, want Removed", resp)
	}

	g.Send(UndoMsg{})

	lookup := getTile(g, coord)
	if !lookup.Ok {
		t.Fatal("GetTile found nothing after undoing a removal")
	}
	if lookup.Entry.ID != tileID {
		t.Fatalf("restored tile id = %v, want %v", lookup.Entry.ID, tileID)
	}
}

// TestChainTransportDeliversThroughBeltToSink is the spec's source ->
// belt (PassOn) -> sink (Consume) scenario: a tick on the source starts
// a transaction that crosses two forwarding hops before the sink's
// Consume result reaches back to the source as a TransactionResultMsg.
func TestChainTransportDeliversThroughBeltToSink(t *testing.T) {
	g, registry, scripts := newTestGame(t)

	sourceCode := `
function handle_tick(args) {
  if (this.sent) { return null }
  this.sent = true
  return {
    type: "MakeTransaction",
    coord: [1, 0],
    source_id: args.id,
    source_coord: args.coord,
    stacks: [{id: "core:item", amount: 1}]
  }
}
function handle_transaction_result(args) {
  this.delivered = (this.delivered || 0) + 1
  return null
}
`
	beltCode := `
function handle_transaction(args) {
  return {
    type: "PassOn",
    coord: [2, 0],
    stack: args.stack,
    root_id: args.root_id,
    root_coord: args.root_coord
  }
}
`
	sinkCode := `
function handle_transaction(args) {
  return {
    type: "Consume",
    consumed: args.stack,
    root_coord: args.root_coord
  }
}
`
	sourceID := registerScriptedTile(registry, scripts, "test:source", sourceCode)
	beltID := registerScriptedTile(registry, scripts, "test:belt", beltCode)
	sinkID := registerScriptedTile(registry, scripts, "test:sink", sinkCode)

	sourceCoord := hexcoord.TileCoord{Q: 0, R: 0}
	beltCoord := hexcoord.TileCoord{Q: 1, R: 0}
	sinkCoord := hexcoord.TileCoord{Q: 2, R: 0}

	placeTile(g, sourceCoord, sourceID, nil, false)
	placeTile(g, beltCoord, beltID, nil, false)
	placeTile(g, sinkCoord, sinkID, nil, false)

	g.Send(TickMsg{})

	if !waitForAmount(t, g, sourceCoord, registry.Interner, "delivered", 1, 2*time.Second) {
		t.Fatal("source's delivered count never reached 1 after a tick routed through belt and sink")
	}
}

// TestOrphanTransactionLeavesNothingDelivered mirrors the chain test but
// omits the sink: the belt's PassOn targets an empty coordinate, the
// forward is a silent no-op (transaction forwarding always uses
// OnFailNone), and the source never hears back.
func TestOrphanTransactionLeavesNothingDelivered(t *testing.T) {
	g, registry, scripts := newTestGame(t)

	sourceCode := `
function handle_tick(args) {
  if (this.sent) { return null }
  this.sent = true
  return {
    type: "MakeTransaction",
    coord: [1, 0],
    source_id: args.id,
    source_coord: args.coord,
    stacks: [{id: "core:item", amount: 1}]
  }
}
function handle_transaction_result(args) {
  this.delivered = (this.delivered || 0) + 1
  return null
}
`
	beltCode := `
function handle_transaction(args) {
  return {
    type: "PassOn",
    coord: [2, 0],
    stack: args.stack,
    root_id: args.root_id,
    root_coord: args.root_coord
  }
}
`
	sourceID := registerScriptedTile(registry, scripts, "test:source", sourceCode)
	beltID := registerScriptedTile(registry, scripts, "test:belt", beltCode)

	sourceCoord := hexcoord.TileCoord{Q: 0, R: 0}
	beltCoord := hexcoord.TileCoord{Q: 1, R: 0}

	placeTile(g, sourceCoord, sourceID, nil, false)
	placeTile(g, beltCoord, beltID, nil, false)

	g.Send(TickMsg{})

	if waitForAmount(t, g, sourceCoord, registry.Interner, "delivered", 1, 300*time.Millisecond) {
		t.Fatal("source was delivered a transaction result with no sink tile present")
	}
}

// TestMoveTilesRelocatesGroupKeepingOffsets places two tiles, moves
// them with coords[0] anchored onto a new coordinate, and checks every
// tile kept its offset from the anchor and the source coordinates are
// now empty.
func TestMoveTilesRelocatesGroupKeepingOffsets(t *testing.T) {
	g, registry, _ := newTestGame(t)
	aID := registerPlainTile(registry, "test:a")
	bID := registerPlainTile(registry, "test:b")

	origin := hexcoord.TileCoord{Q: 0, R: 0}
	second := hexcoord.TileCoord{Q: 1, R: 0}
	placeTile(g, origin, aID, nil, false)
	placeTile(g, second, bID, nil, false)

	anchor := hexcoord.TileCoord{Q: 5, R: 5}
	g.Send(MoveTilesMsg{Coords: []hexcoord.TileCoord{origin, second}, Anchor: anchor, Record: true})

	// MoveTilesMsg carries no reply; round-trip through a query so we
	// only observe state after the move has actually been applied.
	if lookup := getTile(g, origin); lookup.Ok {
		t.Fatal("origin coordinate still holds a tile after MoveTiles")
	}
	if lookup := getTile(g, second); lookup.Ok {
		t.Fatal("second source coordinate still holds a tile after MoveTiles")
	}

	movedA := getTile(g, anchor)
	if !movedA.Ok || movedA.Entry.ID != aID {
		t.Fatalf("anchor coordinate = %+v, want tile %v", movedA, aID)
	}
	wantSecond := hexcoord.TileCoord{Q: 6, R: 5}
	movedB := getTile(g, wantSecond)
	if !movedB.Ok || movedB.Entry.ID != bID {
		t.Fatalf("offset destination %v = %+v, want tile %v", wantSecond, movedB, bID)
	}
}

// TestMoveTilesSkipsOccupiedDestination checks that a relocation whose
// destination already holds a tile is skipped in place, leaving both
// tiles exactly where they were.
func TestMoveTilesSkipsOccupiedDestination(t *testing.T) {
	g, registry, _ := newTestGame(t)
	movingID := registerPlainTile(registry, "test:moving")
	blockerID := registerPlainTile(registry, "test:blocker")

	source := hexcoord.TileCoord{Q: 0, R: 0}
	dest := hexcoord.TileCoord{Q: 3, R: 0}
	placeTile(g, source, movingID, nil, false)
	placeTile(g, dest, blockerID, nil, false)

	g.Send(MoveTilesMsg{Coords: []hexcoord.TileCoord{source}, Anchor: dest, Record: true})

	if lookup := getTile(g, source); !lookup.Ok || lookup.Entry.ID != movingID {
		t.Fatalf("source coordinate changed despite an occupied destination: %+v", lookup)
	}
	if lookup := getTile(g, dest); !lookup.Ok || lookup.Entry.ID != blockerID {
		t.Fatalf("destination's existing tile was disturbed: %+v", lookup)
	}
}

// TestMoveTilesNoOpWhenAnchorMatchesOrigin checks that moving a single
// coordinate onto itself is a no-op, not a destroy-and-recreate.
func TestMoveTilesNoOpWhenAnchorMatchesOrigin(t *testing.T) {
	g, registry, _ := newTestGame(t)
	tileID := registerPlainTile(registry, "test:box")
	coord := hexcoord.TileCoord{Q: 2, R: 2}
	placeTile(g, coord, tileID, nil, false)

	g.Send(MoveTilesMsg{Coords: []hexcoord.TileCoord{coord}, Anchor: coord, Record: true})

	lookup := getTile(g, coord)
	if !lookup.Ok || lookup.Entry.ID != tileID {
		t.Fatalf("tile disturbed by a no-op move: %+v", lookup)
	}
}

// TestUndoAfterMoveTilesRestoresOriginalCoordinates checks that a
// recorded MoveTiles pushes a single undo group that relocates the
// tile back to its source coordinate.
func TestUndoAfterMoveTilesRestoresOriginalCoordinates(t *testing.T) {
	g, registry, _ := newTestGame(t)
	tileID := registerPlainTile(registry, "test:box")
	source := hexcoord.TileCoord{Q: 0, R: 0}
	anchor := hexcoord.TileCoord{Q: 4, R: 4}
	placeTile(g, source, tileID, nil, false)

	g.Send(MoveTilesMsg{Coords: []hexcoord.TileCoord{source}, Anchor: anchor, Record: true})
	if lookup := getTile(g, anchor); !lookup.Ok || lookup.Entry.ID != tileID {
		t.Fatalf("tile did not relocate to the anchor: %+v", lookup)
	}

	g.Send(UndoMsg{})

	if lookup := getTile(g, anchor); lookup.Ok {
		t.Fatal("anchor coordinate still holds a tile after undoing a move")
	}
	if lookup := getTile(g, source); !lookup.Ok || lookup.Entry.ID != tileID {
		t.Fatalf("source coordinate not restored after undoing a move: %+v", lookup)
	}
}

// TestSaveLoadRoundTripPreservesTilesAndData saves a map holding one
// plain tile and one tile with live data, unloads it, loads it back
// into the same scheduler, and checks every tile and field survived
// the round trip through data.ron/map.zst.
func TestSaveLoadRoundTripPreservesTilesAndData(t *testing.T) {
	g, registry, _ := newTestGame(t)
	g.current = newGameMap(SaveFile("roundtrip"))

	boxID := registerPlainTile(registry, "test:box")
	tankID := registerPlainTile(registry, "test:tank")
	boxCoord := hexcoord.TileCoord{Q: 0, R: 0}
	tankCoord := hexcoord.TileCoord{Q: 2, R: -1}

	amountKey := registry.Interner.Intern("test:amount")
	initData := data.New()
	initData.Set(amountKey, data.Amount{Value: 42})

	placeTile(g, boxCoord, boxID, nil, false)
	placeTile(g, tankCoord, tankID, initData, false)

	saveReply := make(chan error, 1)
	g.Send(SaveAndUnloadMsg{Reply: saveReply})
	if err := <-saveReply; err != nil {
		t.Fatalf("SaveAndUnload: %v", err)
	}

	if lookup := getTile(g, boxCoord); lookup.Ok {
		t.Fatal("tile still present immediately after SaveAndUnload")
	}

	loadReply := make(chan bool, 1)
	g.Send(LoadMapMsg{ID: SaveFile("roundtrip"), Reply: loadReply})
	if ok := <-loadReply; !ok {
		t.Fatal("LoadMap reported failure reloading the save just written")
	}

	box := getTile(g, boxCoord)
	if !box.Ok || box.Entry.ID != boxID {
		t.Fatalf("box tile after reload = %+v, want %v", box, boxID)
	}
	tank := getTileFlat(g, tankCoord)
	if !tank.Ok || tank.Tile.ID != tankID {
		t.Fatalf("tank tile after reload = %+v, want %v", tank, tankID)
	}
	d, ok := tank.Tile.Data.Get(amountKey)
	if !ok {
		t.Fatal("tank tile lost its data field across the save/load round trip")
	}
	if amt, ok := d.(data.Amount); !ok || amt.Value != 42 {
		t.Fatalf("tank tile amount after reload = %#v, want Amount{42}", d)
	}
}

// TestExtractRequestOnFailRemovesRequesterTile drives a tile script
// that issues a MakeExtractRequest against a coordinate with no live
// tile and an OnFail of RemoveTile, checking the scheduler applies the
// compensation against the requesting tile rather than dropping it.
func TestExtractRequestOnFailRemovesRequesterTile(t *testing.T) {
	g, registry, scripts := newTestGame(t)
	code := `
function handle_tick(args) {
  return {
    type: "MakeExtractRequest",
    coord: [5, 5],
    requested_from_id: "test:sink",
    on_fail_action: "RemoveTile"
  }
}
`
	requesterID := registerScriptedTile(registry, scripts, "test:requester", code)
	coord := hexcoord.TileCoord{Q: 0, R: 0}
	placeTile(g, coord, requesterID, nil, false)

	g.Send(TickMsg{})

	deadline := time.Now().Add(time.Second)
	var removed bool
	for time.Now().Before(deadline) {
		lookup := getTile(g, coord)
		if !lookup.Ok {
			removed = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !removed {
		t.Fatal("requester tile was not removed after its extract request's OnFail=RemoveTile fired")
	}
}

// TestLoadWithCorruptInternerInvokesHook writes a save whose data.ron
// references a string id that a fresh interner (standing in for one
// that lost that mapping) has never seen, and checks the configurable
// corrupt-interner hook fires instead of the scheduler silently eating
// the error or crashing the test binary with an ambient panic.
func TestLoadWithCorruptInternerInvokesHook(t *testing.T) {
	root := t.TempDir()
	registry := resources.NewRegistry(ids.NewInterner())

	// Build a save directly through one scheduler instance, placing a
	// tile whose data references a key string ("test:flag") that only
	// this interner has ever seen...
	seed := New(slog.Default(), registry, nil, root, WithTickInterval(time.Hour))
	seed.current = newGameMap(SaveFile("default"))
	tileID := registerPlainTile(registry, "test:box")
	flagKey := registry.Interner.Intern("test:flag")
	initData := data.New()
	initData.Set(flagKey, data.Bool{Value: true})
	placeTile(seed, hexcoord.TileCoord{Q: 0, R: 0}, tileID, initData, false)
	seed.Send(SaveAndUnloadMsg{Reply: make(chan error, 1)})
	seed.Stop()

	// ...then load it with a second scheduler whose registry has a
	// brand new interner that was never told "test:flag" exists.
	var hookCalled bool
	freshRegistry := resources.NewRegistry(ids.NewInterner())
	g := New(slog.Default(), freshRegistry, nil, root, WithTickInterval(time.Hour),
		WithCorruptInternerHook(func(msg string, args ...any) { hookCalled = true }))
	t.Cleanup(g.Stop)

	loadReply := make(chan bool, 1)
	g.Send(LoadMapMsg{ID: SaveFile("default"), Reply: loadReply})
	<-loadReply

	if !hookCalled {
		t.Fatal("expected the corrupt-interner hook to fire when loading with an interner missing a referenced string id")
	}
}

func TestManualTickAdvancesTileScriptState(t *testing.T) {
	g, registry, scripts := newTestGame(t)
	code := `
function handle_tick(args) {
  this.count = (this.count || 0) + 1
  return null
}
`
	tileID := registerScriptedTile(registry, scripts, "test:counter", code)
	coord := hexcoord.TileCoord{Q: 0, R: 0}
	placeTile(g, coord, tileID, nil, false)

	g.Send(TickMsg{})
	g.Send(TickMsg{})
	g.Send(TickMsg{})

	if !waitForAmount(t, g, coord, registry.Interner, "count", 3, time.Second) {
		t.Fatal("counter tile did not reach count = 3 after three ticks")
	}
}
