package hexcoord

// OffsetCoord is a row/column (odd-r, or even-r when EvenRow is set)
// offset coordinate, the form
// some hand-authored save/resource files use instead of axial (q, r).
// It exists only at the serialization boundary: every in-memory
// TileCoord is axial.
type OffsetCoord struct {
	Row, Col int32
	EvenRow  bool
}

// AxialFromOffset converts a row/column coordinate into canonical
// axial form.
func AxialFromOffset(o OffsetCoord) TileCoord {
	x := o.Col - (o.Row-(o.Row&1))/2
	if o.EvenRow {
		x = o.Col - (o.Row+(o.Row&1))/2
	}
	z := o.Row
	return TileCoord{Q: x, R: z}
}

// OffsetFromAxial converts an axial TileCoord into row/column form,
// used only when a resource file or renderer explicitly requests it.
func OffsetFromAxial(c TileCoord, evenRow bool) OffsetCoord {
	row := c.R
	col := c.Q + (c.R-(c.R&1))/2
	if evenRow {
		col = c.Q + (c.R+(c.R&1))/2
	}
	return OffsetCoord{Row: row, Col: col, EvenRow: evenRow}
}
