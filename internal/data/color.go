package data

import (
	"encoding/hex"
	"strings"
)

// HexString encodes a Color as 8 hex characters (RGBA, each channel
// 0-255), the on-disk form used by the RON persistence layer.
func (d Color) HexString() string {
	b := [4]byte{
		byte(clamp01(d.R) * 255),
		byte(clamp01(d.G) * 255),
		byte(clamp01(d.B) * 255),
		byte(clamp01(d.A) * 255),
	}
	return hex.EncodeToString(b[:])
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ColorFromHex decodes an 8-hex-character RGBA string. A malformed
// string decodes to opaque black rather than erroring: color is
// cosmetic, not an invariant-bearing field.
func ColorFromHex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 4 {
		return Color{R: 0, G: 0, B: 0, A: 1}
	}
	return Color{
		R: float32(b[0]) / 255,
		G: float32(b[1]) / 255,
		B: float32(b[2]) / 255,
		A: float32(b[3]) / 255,
	}
}
