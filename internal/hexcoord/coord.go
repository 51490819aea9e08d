// Package hexcoord implements the pointy-topped axial hex grid algebra
// the engine places tiles on: coordinates, the six cardinal directions,
// bounded regions, and pixel/world conversions for the renderer.
package hexcoord

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TileCoord is an axial hex coordinate (q, r); s is implicit (-q-r).
type TileCoord struct {
	Q, R int32
}

// New returns the coordinate (q, r).
func New(q, r int32) TileCoord { return TileCoord{Q: q, R: r} }

// S returns the implicit third cube coordinate.
func (c TileCoord) S() int32 { return -c.Q - c.R }

func (c TileCoord) String() string { return fmt.Sprintf("(%d, %d)", c.Q, c.R) }

// Add, Sub and Mul give TileCoord a module structure over the signed
// integers.
func (c TileCoord) Add(o TileCoord) TileCoord { return TileCoord{c.Q + o.Q, c.R + o.R} }
func (c TileCoord) Sub(o TileCoord) TileCoord { return TileCoord{c.Q - o.Q, c.R - o.R} }
func (c TileCoord) Mul(scalar int32) TileCoord { return TileCoord{c.Q * scalar, c.R * scalar} }

// Direction enumerates the six cardinal neighbor directions, in a
// fixed order.
type Direction int

const (
	TopRight Direction = iota
	TopLeft
	Left
	BottomLeft
	BottomRight
	Right
)

// directionDeltas is indexed by Direction and gives the fixed ordering
// TOP_RIGHT, TOP_LEFT, LEFT, BOTTOM_LEFT, BOTTOM_RIGHT, RIGHT.
var directionDeltas = [6]TileCoord{
	{Q: 1, R: -1},  // TOP_RIGHT
	{Q: 0, R: -1},  // TOP_LEFT
	{Q: -1, R: 0},  // LEFT
	{Q: -1, R: 1},  // BOTTOM_LEFT
	{Q: 0, R: 1},   // BOTTOM_RIGHT
	{Q: 1, R: 0},   // RIGHT
}

// Neighbor returns the coordinate adjacent to c in direction d.
func (c TileCoord) Neighbor(d Direction) TileCoord {
	delta := directionDeltas[d]
	return c.Add(delta)
}

// Neighbors returns all six coordinates adjacent to c, in the fixed
// direction order.
func (c TileCoord) Neighbors() [6]TileCoord {
	var out [6]TileCoord
	for i := range directionDeltas {
		out[i] = c.Add(directionDeltas[i])
	}
	return out
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// Distance returns the hexagonal Manhattan distance between a and b.
func Distance(a, b TileCoord) int32 {
	d := a.Sub(b)
	return (abs32(d.Q) + abs32(d.R) + abs32(d.S())) / 2
}

// AsTranslation returns the 2D world-space translation of c for
// rendering, using mathgl's vector type rather than hand-rolled float
// pairs.
func (c TileCoord) AsTranslation(scale float32) mgl32.Vec2 {
	x := scale * (float32(c.Q)*1.7320508 + float32(c.R)*0.8660254)
	y := scale * (float32(c.R) * 1.5)
	return mgl32.Vec2{x, y}
}

// FromWorldPos converts a world-space position back to the nearest
// hex coordinate (rounding cube coordinates to the nearest integer
// triple that still satisfies q+r+s=0).
func FromWorldPos(pos mgl32.Vec2, scale float32) TileCoord {
	q := (0.5773502692*pos.X() - 1.0/3.0*pos.Y()) / scale
	r := (2.0 / 3.0 * pos.Y()) / scale
	return roundCube(q, r)
}

// ToWorldPos is an alias for AsTranslation kept for symmetry with
// FromWorldPos at call sites in the renderer collaborator.
func ToWorldPos(c TileCoord, scale float32) mgl32.Vec2 { return c.AsTranslation(scale) }

func roundCube(qf, rf float32) TileCoord {
	sf := -qf - rf
	q, r, s := round(qf), round(rf), round(sf)

	qDiff := abs32f(q - qf)
	rDiff := abs32f(r - rf)
	sDiff := abs32f(s - sf)

	if qDiff > rDiff && qDiff > sDiff {
		q = -r - s
	} else if rDiff > sDiff {
		r = -q - s
	}
	return TileCoord{Q: int32(q), R: int32(r)}
}

func round(f float32) float32 {
	if f >= 0 {
		return float32(int32(f + 0.5))
	}
	return float32(int32(f - 0.5))
}

func abs32f(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
