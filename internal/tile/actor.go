package tile

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
	"github.com/automancy/automancy/internal/resources"
	"github.com/automancy/automancy/internal/scriptrt"
)

// rngMu guards rng, which backs every tile script's "random" argument.
// A package-level source (rather than one per actor) lets SeedRandom
// make a whole engine's tile scripts reproducible from a single
// engine.toml rng_seed.
var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
)

// SeedRandom reseeds the shared source backing every tile script's
// "random" argument. Intended to be called once at startup from the
// engine's configured rng_seed.
func SeedRandom(seed uint64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng = rand.New(rand.NewPCG(seed, seed))
}

func nextRandom() uint32 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Uint32()
}

// Actor owns one placed tile's script-driven state, running on its own
// goroutine behind a command channel.
type Actor struct {
	log      *slog.Logger
	game     GameLink
	registry *resources.Registry
	scripts  *scriptrt.Runtime

	ID    ids.TileId
	Coord hexcoord.TileCoord

	inbox chan Msg

	data         *data.DataMap
	fieldChanges *fieldChanges
}

// NewActor constructs an actor for a freshly placed tile and starts its
// mailbox goroutine.
func NewActor(log *slog.Logger, game GameLink, registry *resources.Registry, scripts *scriptrt.Runtime, id ids.TileId, coord hexcoord.TileCoord) *Actor {
	if log == nil {
		log = slog.Default()
	}
	a := &Actor{
		log:          log,
		game:         game,
		registry:     registry,
		scripts:      scripts,
		ID:           id,
		Coord:        coord,
		inbox:        make(chan Msg, 256),
		data:         data.New(),
		fieldChanges: newFieldChanges(),
	}
	go a.loop()
	return a
}

// Send enqueues msg on the actor's mailbox, blocking while the mailbox
// (256 messages) is full.
func (a *Actor) Send(msg Msg) {
	a.inbox <- msg
}

// Stop closes the mailbox; any messages already queued are still
// processed before the goroutine exits.
func (a *Actor) Stop() {
	close(a.inbox)
}

func (a *Actor) loop() {
	for msg := range a.inbox {
		a.handle(msg)
	}
}

func (a *Actor) handle(msg Msg) {
	switch m := msg.(type) {
	case TickMsg:
		a.handleTick()
	case TransactionMsg:
		a.handleTransaction(m)
	case TransactionResultMsg:
		a.handleTransactionResult(m)
	case ExtractRequestMsg:
		a.handleExtractRequest(m)
	case CollectRenderCommandsMsg:
		m.Reply <- a.collectRenderCommands(m.Loading, m.Unloading)
	case GetTileConfigUiMsg:
		m.Reply <- a.tileConfigUi()
	case GetDataMsg:
		m.Reply <- a.data.Clone()
	case GetDatumMsg:
		v, ok := a.data.Get(m.Key)
		m.Reply <- datumReply{Value: v, Ok: ok}
	case SetDataMsg:
		for k := range data.Diff(a.data, m.Data, true) {
			a.fieldChanges.Insert(k)
		}
		a.data = m.Data
	case SetDatumMsg:
		a.fieldChanges.Insert(m.Key)
		a.data.Set(m.Key, m.Value)
	case TakeDataMsg:
		a.fieldChanges.InsertAll(a.data.Keys())
		taken := a.data
		a.data = data.New()
		m.Reply <- taken
	case RemoveDatumMsg:
		a.fieldChanges.Insert(m.Key)
		a.data.Remove(m.Key)
	case ReadDataMsg:
		a.fieldChanges.InsertAll(a.data.Keys())
		m.Fn(a.data)
		close(m.Done)
	case SetCoordMsg:
		a.Coord = m.Coord
	}
}

func (a *Actor) tileDef() (*resources.TileDefinition, bool) {
	return a.registry.Tile(a.ID)
}

// resolveIDStr resolves an interned Id back to its namespaced string
// for exposure to scripts, which only ever see the string form.
func (a *Actor) resolveIDStr(id ids.Id) string {
	s, ok := a.registry.Interner.Lookup(id)
	if !ok {
		return ""
	}
	return s
}

// sendToTile forwards msg to coord via the scheduler with onFail as the
// compensation the scheduler applies against this tile if coord turns
// out to have no tile.
func (a *Actor) sendToTile(coord hexcoord.TileCoord, msg Msg, onFail OnFailAction) {
	if a.game == nil {
		return
	}
	a.game.ForwardTileMsg(a.Coord, coord, msg, onFail)
}

// runTileScript assembles the fixed (coord, id, random, setup, ...)
// argument envelope, invokes entryPoint with the tile's DataMap bound
// as the script's mutable state, and folds every key the call inserted,
// changed or removed (data.Diff) into fieldChanges. A missing entry point is a silent no-op; any other
// script error is logged and also treated as a no-op.
func (a *Actor) runTileScript(entryPoint string, extra map[string]any) (any, bool) {
	def, ok := a.tileDef()
	if !ok || def.ScriptID == nil {
		return nil, false
	}

	args := map[string]any{
		"coord":  []int32{a.Coord.Q, a.Coord.R},
		"id":     a.resolveIDStr(a.ID.Id()),
		"random": int64(nextRandom()),
		"setup":  a.setupArgs(def),
	}
	for k, v := range extra {
		args[k] = v
	}

	if err := a.scripts.EnsureIdDeps(*def.ScriptID, a.registry.Interner.Intern); err != nil {
		a.log.Error("tile script id_deps failed", "tile", a.ID, "script_id", a.resolveIDStr(*def.ScriptID), "coord", a.Coord, "err", err)
		return nil, false
	}

	prev := a.data
	result, newState, err := a.scripts.InvokeStateful(*def.ScriptID, entryPoint, args, a.data, a.registry.Interner)
	a.data = newState
	for k := range data.Diff(prev, newState, true) {
		a.fieldChanges.Insert(k)
	}

	if err != nil {
		if err == scriptrt.ErrFunctionNotFound {
			return nil, false
		}
		a.log.Error("tile script error", "entry_point", entryPoint, "tile", a.ID, "script_id", a.resolveIDStr(*def.ScriptID), "coord", a.Coord, "err", err)
		return nil, false
	}
	return result, true
}

// setupArgs flattens a tile's immutable template data into a plain
// key -> value map for a script's read-only "setup" argument; it is
// intentionally not the same marshaling path as the mutable "this"
// binding, since setup is never read back into a DataMap.
func (a *Actor) setupArgs(def *resources.TileDefinition) map[string]any {
	if def.Data == nil {
		return map[string]any{}
	}
	entries, err := data.ToStrLive(def.Data, a.registry.Interner)
	if err != nil {
		a.log.Error("tile setup data could not be resolved", "tile", a.ID, "err", err)
		return map[string]any{}
	}
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out
}

func (a *Actor) handleTick() {
	result, ok := a.runTileScript("handle_tick", nil)
	if !ok {
		return
	}
	a.applyResult(result)
}

func (a *Actor) handleTransaction(m TransactionMsg) {
	result, ok := a.runTileScript("handle_transaction", map[string]any{
		"source_coord": []int32{m.SourceCoord.Q, m.SourceCoord.R},
		"source_id":    a.resolveIDStr(m.SourceID.Id()),
		"root_coord":   []int32{m.RootCoord.Q, m.RootCoord.R},
		"root_id":      a.resolveIDStr(m.RootID.Id()),
		"stack":        a.itemStackArgs(m.Stack),
	})
	if !ok {
		return
	}
	a.applyTransactionResult(result)
}

func (a *Actor) applyTransactionResult(raw any) {
	tr, ok := a.decodeTransactionResult(raw)
	if !ok {
		return
	}
	none := OnFailAction{Kind: OnFailNone}
	switch v := tr.(type) {
	case PassOnResult:
		a.sendToTile(v.Coord, TransactionMsg{
			Stack: v.Stack, SourceID: a.ID, SourceCoord: a.Coord,
			RootID: v.RootID, RootCoord: v.RootCoord, Hidden: false,
		}, none)
	case ProxyResult:
		a.sendToTile(v.Coord, TransactionMsg{
			Stack: v.Stack, SourceID: v.SourceID, SourceCoord: v.SourceCoord,
			RootID: v.RootID, RootCoord: v.RootCoord, Hidden: false,
		}, none)
	case ConsumeResult:
		a.sendToTile(v.RootCoord, TransactionResultMsg{Result: v.Consumed}, none)
	}
}

func (a *Actor) handleTransactionResult(m TransactionResultMsg) {
	def, ok := a.tileDef()
	if !ok || def.ScriptID == nil {
		return
	}
	a.runTileScript("handle_transaction_result", map[string]any{
		"transferred": a.itemStackArgs(m.Result),
	})
}

func (a *Actor) handleExtractRequest(m ExtractRequestMsg) {
	result, ok := a.runTileScript("handle_extract_request", map[string]any{
		"requested_from_coord": []int32{m.RequestedFromCoord.Q, m.RequestedFromCoord.R},
		"requested_from_id":    a.resolveIDStr(m.RequestedFromID.Id()),
	})
	if !ok {
		return
	}
	a.applyResult(result)
}

func (a *Actor) applyResult(raw any) {
	r, ok := a.decodeResult(raw)
	if !ok {
		return
	}
	switch v := r.(type) {
	case MakeTransactionResult:
		for _, stack := range v.Stacks {
			a.sendToTile(v.Coord, TransactionMsg{
				Stack: stack, SourceCoord: v.SourceCoord, SourceID: v.SourceID,
				RootCoord: v.SourceCoord, RootID: v.SourceID, Hidden: false,
			}, OnFailAction{Kind: OnFailNone})
		}
	case MakeExtractRequestResult:
		a.sendToTile(v.Coord, ExtractRequestMsg{
			RequestedFromID:    v.RequestedFromID,
			RequestedFromCoord: v.RequestedFromCoord,
		}, v.OnFail)
	}
}

func (a *Actor) collectRenderCommands(loading, unloading bool) []RenderCommand {
	def, ok := a.tileDef()
	if !ok || def.ScriptID == nil {
		return nil
	}
	changed := a.fieldChanges.Take()
	if !loading && !unloading && len(changed) == 0 {
		return nil
	}
	changedStrs := make([]string, 0, len(changed))
	for _, id := range changed {
		if s, ok := a.registry.Interner.Lookup(id); ok {
			changedStrs = append(changedStrs, s)
		}
	}
	result, ok := a.runTileScript("tile_render", map[string]any{
		"loading":       loading,
		"unloading":     unloading,
		"field_changes": changedStrs,
	})
	if !ok {
		return nil
	}
	return decodeRenderCommands(result)
}

func (a *Actor) tileConfigUi() any {
	def, ok := a.tileDef()
	if !ok || def.ScriptID == nil {
		return nil
	}
	result, ok := a.runTileScript("tile_config", nil)
	if !ok {
		return nil
	}
	return result
}

func (a *Actor) itemStackArgs(s data.ItemStack) map[string]any {
	return map[string]any{
		"id":     a.resolveIDStr(s.Id),
		"amount": s.Amount,
	}
}
