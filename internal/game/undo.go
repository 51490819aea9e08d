package game

import (
	"github.com/google/uuid"

	"github.com/automancy/automancy/internal/data"
	"github.com/automancy/automancy/internal/hexcoord"
	"github.com/automancy/automancy/internal/ids"
)

// undoOp is one inverse operation recorded while placing or removing a
// single tile: the journal is a stack of inverse operations. action
// is the PlaceTileResponse the original call
// produced; replaying the op re-applies its opposite:
//   - action == Placed: undo removes the tile that was placed.
//   - action == Removed: undo restores prevID/prevData at coord.
type undoOp struct {
	coord    hexcoord.TileCoord
	action   PlaceTileResponse
	prevID   ids.TileId
	prevData *data.DataMap
}

// undoGroup is one undo-journal entry: the inverse ops of a single
// PlaceTile/PlaceTiles/MoveTiles call, tagged with its own id so the
// console/log output can refer to a pushed entry unambiguously.
type undoGroup struct {
	ID  uuid.UUID
	Ops []undoOp
}

// undoJournal is a stack of undo groups; each PlaceTile/PlaceTiles/
// MoveTiles call with record=true pushes exactly one group.
type undoJournal struct {
	groups []undoGroup
}

func newUndoJournal() *undoJournal {
	return &undoJournal{}
}

func (j *undoJournal) push(ops []undoOp) {
	if len(ops) == 0 {
		return
	}
	j.groups = append(j.groups, undoGroup{ID: uuid.New(), Ops: ops})
}

// pop removes and returns the most recent group's ops, or nil, false if
// the journal is empty.
func (j *undoJournal) pop() ([]undoOp, bool) {
	if len(j.groups) == 0 {
		return nil, false
	}
	last := j.groups[len(j.groups)-1]
	j.groups = j.groups[:len(j.groups)-1]
	return last.Ops, true
}

func (j *undoJournal) clear() {
	j.groups = nil
}

func (j *undoJournal) empty() bool {
	return len(j.groups) == 0
}
