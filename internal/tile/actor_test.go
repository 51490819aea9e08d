package tile

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

type recordingLink struct {
	sent []struct {
		source, to hexcoord.TileCoord
		msg        Msg
		onFail     OnFailAction
	}
}

func (r *recordingLink) ForwardTileMsg(source, to hexcoord.TileCoord, msg Msg, onFail OnFailAction) {
	r.sent = append(r.sent, struct {
		source, to hexcoord.TileCoord
		msg        Msg
		onFail     OnFailAction
	}{source, to, msg, onFail})
}

func newTestActor(t *testing.T, code string, link GameLink) (*Actor, *resources.Registry) {
	t.Helper()
	interner := ids.NewInterner()
	registry := resources.NewRegistry(interner)
	scripts := scriptrt.New(slog.Default())

	scriptID := interner.Intern("core:test_script")
	scripts.RegisterTileScript(scriptID, scriptrt.Source{ScriptID: "core:test_script", Code: code})

	tileID := registry.RegisterTile("core:test_tile", resources.TileDefinition{
		Name:     "Test Tile",
		Data:     data.New(),
		ScriptID: &scriptID,
	})

	a := NewActor(slog.Default(), link, registry, scripts, tileID, hexcoord.TileCoord{Q: 0, R: 0})
	t.Cleanup(a.Stop)
	return a, registry
}

func TestHandleTickIncrementsCounter(t *testing.T) {
	code := `
function handle_tick(args) {
  if (this.count === undefined) { this.count = 0 }
  this.count = this.count + 1
  return null
}
`
	a, registry := newTestActor(t, code, nil)
	a.Send(TickMsg{TickCount: 1})
	a.Send(TickMsg{TickCount: 2})

	reply := make(chan *data.DataMap, 1)
	a.Send(GetDataMsg{Reply: reply})
	result := <-reply

	countKey := registry.Interner.Intern("count")
	d, ok := result.Get(countKey)
	if !ok {
		t.Fatalf("count field missing after two ticks")
	}
	amt, ok := d.(data.Amount)
	if !ok || amt.Value != 2 {
		t.Fatalf("count = %#v, want Amount{2}", d)
	}
}

func TestHandleTickMakeTransactionForwardsToNeighbor(t *testing.T) {
	code := `
function handle_tick(args) {
  return {
    type: "MakeTransaction",
    coord: [1, 0],
    source_id: args.id,
    source_coord: args.coord,
    stacks: [{id: "core:item", amount: 5}]
  }
}
`
	link := &recordingLink{}
	a, _ := newTestActor(t, code, link)
	a.Send(TickMsg{TickCount: 1})

	// Drain via a synchronous round trip so the tick has been processed
	// before we inspect the link.
	done := make(chan struct{})
	a.Send(ReadDataMsg{Fn: func(*data.DataMap) {}, Done: done})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("actor did not drain mailbox in time")
	}

	if len(link.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(link.sent))
	}
	if link.sent[0].to != (hexcoord.TileCoord{Q: 1, R: 0}) {
		t.Fatalf("forwarded to %v, want (1,0)", link.sent[0].to)
	}
	tm, ok := link.sent[0].msg.(TransactionMsg)
	if !ok {
		t.Fatalf("forwarded msg = %#v, want TransactionMsg", link.sent[0].msg)
	}
	if tm.Stack.Amount != 5 {
		t.Fatalf("stack amount = %d, want 5", tm.Stack.Amount)
	}
}

func TestSetAndGetDatumRoundTrip(t *testing.T) {
	a, registry := newTestActor(t, `function handle_tick(args) { return null }`, nil)
	key := registry.Interner.Intern("core:flag")

	a.Send(SetDatumMsg{Key: key, Value: data.Bool{Value: true}})

	reply := make(chan datumReply, 1)
	a.Send(GetDatumMsg{Key: key, Reply: reply})
	got := <-reply
	if !got.Ok {
		t.Fatal("datum not found")
	}
	if b, ok := got.Value.(data.Bool); !ok || !b.Value {
		t.Fatalf("datum = %#v, want Bool{true}", got.Value)
	}

	a.Send(RemoveDatumMsg{Key: key})
	a.Send(GetDatumMsg{Key: key, Reply: reply})
	got = <-reply
	if got.Ok {
		t.Fatal("datum still present after RemoveDatumMsg")
	}
}

// TestCollectRenderCommandsFiresOnFieldChangeAlone checks that a tile
// already in view (loading=false, unloading=false) still gets
// tile_render invoked when one of its subscribed fields changed since
// the last collection, not only on entering or leaving view.
func TestCollectRenderCommandsFiresOnFieldChangeAlone(t *testing.T) {
	code := `
function tile_render(args) {
  return [{kind: "highlight", args: {loading: args.loading, unloading: args.unloading}}]
}
`
	a, registry := newTestActor(t, code, nil)
	key := registry.Interner.Intern("core:flag")
	a.Send(SetDatumMsg{Key: key, Value: data.Bool{Value: true}})

	reply := make(chan []RenderCommand, 1)
	a.Send(CollectRenderCommandsMsg{Loading: false, Unloading: false, Reply: reply})
	commands := <-reply

	if len(commands) != 1 {
		t.Fatalf("got %d render commands, want 1 for a changed field while steady in view", len(commands))
	}
	if commands[0].Kind != "highlight" {
		t.Fatalf("command kind = %q, want %q", commands[0].Kind, "highlight")
	}
}

// TestCollectRenderCommandsSkipsWhenNothingChanged checks the inverse:
// a steady in-view tile with no field changes and no load/unload
// transition gets no render command at all.
func TestCollectRenderCommandsSkipsWhenNothingChanged(t *testing.T) {
	code := `
function tile_render(args) {
  return [{kind: "highlight", args: {}}]
}
`
	a, _ := newTestActor(t, code, nil)

	reply := make(chan []RenderCommand, 1)
	a.Send(CollectRenderCommandsMsg{Loading: false, Unloading: false, Reply: reply})
	commands := <-reply

	if commands != nil {
		t.Fatalf("got %#v, want nil when nothing changed and not loading/unloading", commands)
	}
}

func TestMissingScriptEntryPointIsNoOp(t *testing.T) {
	a, _ := newTestActor(t, `function handle_transaction(args) { return null }`, nil)
	a.Send(TickMsg{TickCount: 1})

	done := make(chan struct{})
	a.Send(ReadDataMsg{Fn: func(*data.DataMap) {}, Done: done})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("actor did not drain mailbox in time")
	}
}
