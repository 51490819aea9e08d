package ids

import "errors"

// ErrMissingId is returned when a raw, interned payload references an Id
// with no corresponding entry in its accompanying IdMap.
var ErrMissingId = errors.New("ids: missing id in id map")

// ErrInternerMissingStringId is returned when re-interning a string
// recovered from a save's string form finds no matching Id in the
// active Interner. This signals a corrupt or version-mismatched save
// and is treated as fatal by the scheduler, not recoverable by this
// package.
var ErrInternerMissingStringId = errors.New("ids: interner missing string id")
