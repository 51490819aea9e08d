package ids

import "fmt"

// IdMap is a persisted Id -> string table accompanying any serialized
// payload that references Ids (spec invariant I5). It is built while
// walking a DataMap into its raw form and consumed while restoring one.
type IdMap struct {
	forward map[Id]string
}

// NewIdMap returns an empty IdMap.
func NewIdMap() *IdMap {
	return &IdMap{forward: make(map[Id]string)}
}

// Record inserts the string for id, populated from the Interner that
// produced it. It is idempotent.
func (m *IdMap) Record(interner *Interner, id Id) {
	if id == None {
		return
	}
	if _, ok := m.forward[id]; ok {
		return
	}
	if s, ok := interner.Lookup(id); ok {
		m.forward[id] = s
	}
}

// String returns the string recorded for id, or an error satisfying
// ErrMissingId if none was recorded (DataMapRaw references an Id with
// no accompanying IdMap entry).
func (m *IdMap) String(id Id) (string, error) {
	if id == None {
		return "", nil
	}
	s, ok := m.forward[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrMissingId, id)
	}
	return s, nil
}

// Resolve re-interns a string recovered from an IdMap's string form
// back into an Id using the active Interner. It fails with
// ErrInternerMissingStringId rather than silently minting a new Id:
// the caller is reconstituting a reference that is supposed to already
// exist in the current process's interner.
func Resolve(interner *Interner, s string) (Id, error) {
	if s == "" {
		return None, nil
	}
	// The caller is expected to have pre-populated the interner for every
	// id referenced by a save file (resource load walks all RON tables
	// before any scheduler reads a save); a miss here means the save
	// references an id that no longer exists in the loaded resource set.
	id, ok := lookupOnly(interner, s)
	if !ok {
		return None, fmt.Errorf("%w: %q", ErrInternerMissingStringId, s)
	}
	return id, nil
}

// lookupOnly performs a read-only reverse lookup without minting a new
// Id, unlike Interner.Intern.
func lookupOnly(interner *Interner, s string) (Id, bool) {
	sh := interner.shardFor(s)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	id, ok := sh.byName[s]
	return id, ok
}

// All returns every (Id, string) pair recorded, for serializing the
// IdMap itself.
func (m *IdMap) All() map[Id]string {
	return m.forward
}

// FromPairs reconstructs an IdMap from its serialized (Id, string) pairs.
func FromPairs(pairs map[Id]string) *IdMap {
	m := NewIdMap()
	for id, s := range pairs {
		m.forward[id] = s
	}
	return m
}
