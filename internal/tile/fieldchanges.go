package tile

import (
	"github.com/brentp/intintmap"

	"github.com/automancy/automancy/internal/ids"
)

// fieldChanges is the set of data keys a tile's scripts have touched
// since the set was last collected for rendering. Ticking runs this
// set on the hot path of every active tile every tick, so membership
// checks go through an open-addressed int64 map rather than Go's
// built-in map.
type fieldChanges struct {
	seen  *intintmap.Map
	order []ids.Id
}

func newFieldChanges() *fieldChanges {
	return &fieldChanges{seen: intintmap.New(64, 0.6)}
}

func (f *fieldChanges) Insert(id ids.Id) {
	if _, ok := f.seen.Get(int64(id)); ok {
		return
	}
	f.seen.Put(int64(id), 1)
	f.order = append(f.order, id)
}

func (f *fieldChanges) InsertAll(ids []ids.Id) {
	for _, id := range ids {
		f.Insert(id)
	}
}

// Take returns every key inserted since construction or the last Take,
// and resets the set.
func (f *fieldChanges) Take() []ids.Id {
	out := f.order
	f.order = nil
	f.seen = intintmap.New(64, 0.6)
	return out
}
