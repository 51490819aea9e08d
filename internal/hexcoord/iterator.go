package hexcoord

// ExactSizeCoordIterator iterates a Hex TileBounds in deterministic
// row-major order: the outer loop runs over q in [-radius, radius], the
// inner loop over the valid r slice for that q. It advertises its exact
// remaining size and never panics at radius 0 (a single coordinate,
// the center).
type ExactSizeCoordIterator struct {
	bounds  TileBounds
	q       int32
	r       int32
	rMax    int32
	done    bool
	total   int
	emitted int
}

// NewIterator returns an iterator over bounds. Iterating an Empty bounds
// yields zero coordinates.
func NewIterator(bounds TileBounds) *ExactSizeCoordIterator {
	it := &ExactSizeCoordIterator{bounds: bounds}
	if bounds.IsEmpty() {
		it.done = true
		return it
	}
	radius := bounds.Radius
	it.total = 3*int(radius)*(int(radius)+1) + 1
	it.q = -radius
	it.r, it.rMax = rRangeFor(radius, it.q)
	return it
}

// rRangeFor returns the inclusive [rMin, rMax] slice of r values valid
// for the given q within a hex of the given radius, centered at origin.
func rRangeFor(radius, q int32) (rMin, rMax int32) {
	rMin = max32(-radius, -q-radius)
	rMax = min32(radius, -q+radius)
	return
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Len reports the number of coordinates remaining to be yielded.
func (it *ExactSizeCoordIterator) Len() int {
	return it.total - it.emitted
}

// Next returns the next coordinate (translated into the bounds' center)
// and true, or the zero value and false once exhausted.
func (it *ExactSizeCoordIterator) Next() (TileCoord, bool) {
	if it.done || it.q > it.bounds.Radius {
		return TileCoord{}, false
	}
	rel := TileCoord{Q: it.q, R: it.r}
	out := it.bounds.Center.Add(rel)
	it.emitted++

	it.r++
	if it.r > it.rMax {
		it.q++
		if it.q <= it.bounds.Radius {
			it.r, it.rMax = rRangeFor(it.bounds.Radius, it.q)
		}
	}
	return out, true
}

// All collects every coordinate the iterator yields into a slice. It is
// a convenience for callers that do not need streaming iteration (most
// render-culling and placement-batch call sites).
func (b TileBounds) All() []TileCoord {
	it := NewIterator(b)
	out := make([]TileCoord, 0, it.Len())
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}
