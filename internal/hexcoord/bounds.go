package hexcoord

import "github.com/go-gl/mathgl/mgl32"

// TileBounds is either Empty or a Hex region (center, radius). It is the
// culling/placement-region primitive used throughout the scheduler.
type TileBounds struct {
	empty  bool
	Center TileCoord
	Radius int32
}

// Empty returns the empty TileBounds, which contains no coordinate.
func Empty() TileBounds { return TileBounds{empty: true} }

// NewHex returns a TileBounds around center with the given radius.
// A negative radius is clamped to 0 (a single coordinate).
func NewHex(center TileCoord, radius int32) TileBounds {
	if radius < 0 {
		radius = 0
	}
	return TileBounds{Center: center, Radius: radius}
}

// FromMinMax returns the smallest Hex TileBounds whose radius covers
// both corner coordinates, centered on their midpoint (each axis
// halved with Go integer division, which truncates toward zero).
func FromMinMax(a, b TileCoord) TileBounds {
	center := TileCoord{Q: (a.Q + b.Q) / 2, R: (a.R + b.R) / 2}
	radius := Distance(center, a)
	if d := Distance(center, b); d > radius {
		radius = d
	}
	return NewHex(center, radius)
}

// IsEmpty reports whether b is the Empty bounds.
func (b TileBounds) IsEmpty() bool { return b.empty }

// Contains reports whether c lies within b.
func (b TileBounds) Contains(c TileCoord) bool {
	if b.empty {
		return false
	}
	return Distance(b.Center, c) <= b.Radius
}

// Viewport describes an axis-aligned viewport in world-space pixels,
// as handed to FromDisplay by the renderer collaborator for culling.
type Viewport struct {
	Width, Height float32
}

// Camera describes the camera position and zoom used to project a
// Viewport into hex-grid space.
type Camera struct {
	X, Y float32
	Zoom float32
}

// FromDisplay computes a TileBounds covering the projected viewport
// rectangle at the given camera, for render culling. The radius is an
// approximation padded by one ring, not the smallest covering bounds.
func FromDisplay(viewport Viewport, camera Camera, scale float32) TileBounds {
	if camera.Zoom <= 0 {
		camera.Zoom = 1
	}
	halfW := viewport.Width / (2 * camera.Zoom)
	halfH := viewport.Height / (2 * camera.Zoom)

	centerCoord := FromWorldPos(mgl32.Vec2{camera.X, camera.Y}, scale)
	// Approximate the viewport's half-diagonal in hex units and pad by
	// one ring so partially visible edge tiles are still included.
	diag := (halfW + halfH) / scale
	radius := int32(diag) + 1
	if radius < 0 {
		radius = 0
	}
	return NewHex(centerCoord, radius)
}
