// Package tile is the tile entity actor: one mailbox per placed tile,
// running its script's handlers and tracking which data fields changed
// since they were last collected for rendering. Each tile runs on its
// own goroutine behind a command channel rather than a shared
// Erlang-style actor runtime.
package tile

import (
	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
)

// Msg is one message a tile actor's mailbox accepts.
type Msg interface{ isTileMsg() }

type TickMsg struct {
	TickCount uint64
}

type TransactionMsg struct {
	Stack       data.ItemStack
	SourceCoord hexcoord.TileCoord
	SourceID    ids.TileId
	RootCoord   hexcoord.TileCoord
	RootID      ids.TileId
	Hidden      bool
}

type TransactionResultMsg struct {
	Result data.ItemStack
}

type ExtractRequestMsg struct {
	RequestedFromID    ids.TileId
	RequestedFromCoord hexcoord.TileCoord
}

type CollectRenderCommandsMsg struct {
	Loading, Unloading bool
	Reply              chan []RenderCommand
}

type GetTileConfigUiMsg struct {
	Reply chan any
}

type GetDataMsg struct {
	Reply chan *data.DataMap
}

type GetDatumMsg struct {
	Key   ids.Id
	Reply chan datumReply
}

type datumReply struct {
	Value data.Datum
	Ok    bool
}

type SetDataMsg struct {
	Data *data.DataMap
}

type SetDatumMsg struct {
	Key   ids.Id
	Value data.Datum
}

type TakeDataMsg struct {
	Reply chan *data.DataMap
}

type RemoveDatumMsg struct {
	Key ids.Id
}

// SetCoordMsg re-homes the actor to a new coordinate, processed on the
// actor's own goroutine so a concurrent script invocation never observes
// a half-updated Coord. Used by the scheduler's MoveTiles, which moves
// an actor in place rather than destroying and recreating it.
type SetCoordMsg struct {
	Coord hexcoord.TileCoord
}

// ReadDataMsg runs Fn against the actor's live DataMap on the actor's
// own goroutine, a boxed closure given exclusive access to the map.
type ReadDataMsg struct {
	Fn   func(*data.DataMap)
	Done chan struct{}
}

func (TickMsg) isTileMsg() {}
func (TransactionMsg) isTileMsg() {}
func (TransactionResultMsg) isTileMsg() {}
func (ExtractRequestMsg) isTileMsg() {}
func (CollectRenderCommandsMsg) isTileMsg() {}
func (GetTileConfigUiMsg) isTileMsg() {}
func (GetDataMsg) isTileMsg() {}
func (GetDatumMsg) isTileMsg() {}
func (SetDataMsg) isTileMsg() {}
func (SetDatumMsg) isTileMsg() {}
func (TakeDataMsg) isTileMsg() {}
func (RemoveDatumMsg) isTileMsg() {}
func (SetCoordMsg) isTileMsg() {}
func (ReadDataMsg) isTileMsg() {}

// RenderCommand is the opaque payload a tile script's tile_render
// handler produces; the engine core does not interpret it, only
// collects and forwards it.
type RenderCommand struct {
	Kind string
	Args map[string]any
}

// OnFailAction is the compensation the scheduler applies against the
// sending tile when a message forwarded on its behalf finds no tile at
// its destination coordinate.
type OnFailAction struct {
	Kind      OnFailKind
	RemoveKey ids.Id
}

type OnFailKind uint8

const (
	OnFailNone OnFailKind = iota
	OnFailRemoveTile
	OnFailRemoveAllData
	OnFailRemoveData
)

// Result is what a tile script's handle_tick/handle_extract_request
// entry point may ask the actor to do next.
type Result interface{ isTileResult() }

type MakeTransactionResult struct {
	Coord       hexcoord.TileCoord
	SourceID    ids.TileId
	SourceCoord hexcoord.TileCoord
	Stacks      []data.ItemStack
}

type MakeExtractRequestResult struct {
	Coord              hexcoord.TileCoord
	RequestedFromID    ids.TileId
	RequestedFromCoord hexcoord.TileCoord
	OnFail             OnFailAction
}

func (MakeTransactionResult) isTileResult() {}
func (MakeExtractRequestResult) isTileResult() {}

// TransactionResult is what handle_transaction may return.
type TransactionResult interface{ isTransactionResult() }

type PassOnResult struct {
	Coord       hexcoord.TileCoord
	Stack       data.ItemStack
	SourceCoord hexcoord.TileCoord
	RootCoord   hexcoord.TileCoord
	RootID      ids.TileId
}

type ProxyResult struct {
	Coord       hexcoord.TileCoord
	Stack       data.ItemStack
	SourceCoord hexcoord.TileCoord
	SourceID    ids.TileId
	RootCoord   hexcoord.TileCoord
	RootID      ids.TileId
}

type ConsumeResult struct {
	Consumed    data.ItemStack
	SourceCoord hexcoord.TileCoord
	RootCoord   hexcoord.TileCoord
}

func (PassOnResult) isTransactionResult() {}
func (ProxyResult) isTransactionResult() {}
func (ConsumeResult) isTransactionResult() {}

// GameLink is the subset of the scheduler a tile actor needs to reach
// back into: forwarding a message to another tile, with the
// OnFailAction the scheduler applies against the sending tile if the
// destination no longer exists. Kept as a narrow interface so this
// package never imports internal/game.
type GameLink interface {
	ForwardTileMsg(source, to hexcoord.TileCoord, msg Msg, onFail OnFailAction)
}
