package ids

import (
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
)

const shardCount = 16

type shard struct {
	mu      sync.RWMutex
	byName  map[string]Id
	byId    map[Id]string
}

// Interner is the process-wide string <-> Id table. It is append-only:
// once a string has been interned it keeps the same Id for the lifetime
// of the Interner. Re-interning changes Id values, so a process must
// never construct more than one Interner that outlives a given save.
//
// Reads are lock-free with respect to each other (RWMutex read lock);
// writes take the shard's write lock. Shards are selected by a fast
// hash of the name so that concurrent interning of unrelated strings
// rarely contends on the same shard.
type Interner struct {
	shards [shardCount]*shard
	mu     sync.Mutex // guards next
	next   uint32
}

// NewInterner creates an empty Interner. Id 0 (None) is never assigned.
func NewInterner() *Interner {
	in := &Interner{next: 1}
	for i := range in.shards {
		in.shards[i] = &shard{byName: make(map[string]Id), byId: make(map[Id]string)}
	}
	return in
}

func (in *Interner) shardFor(name string) *shard {
	h := fnv1a.HashString32(name)
	return in.shards[h%shardCount]
}

// Intern returns the Id for name, assigning a fresh one on first use.
func (in *Interner) Intern(name string) Id {
	sh := in.shardFor(name)
	sh.mu.RLock()
	if id, ok := sh.byName[name]; ok {
		sh.mu.RUnlock()
		return id
	}
	sh.mu.RUnlock()

	in.mu.Lock()
	id := Id(in.next)
	in.next++
	in.mu.Unlock()

	sh.mu.Lock()
	if existing, ok := sh.byName[name]; ok {
		// Lost a race with another interner of the same name; keep theirs.
		sh.mu.Unlock()
		return existing
	}
	sh.byName[name] = id
	sh.byId[id] = name
	sh.mu.Unlock()
	return id
}

// Lookup returns the string a previously-interned Id maps to. It scans
// all shards since an Id alone does not identify its shard; callers on
// a hot path should prefer carrying the string alongside the Id (as an
// IdMap entry) rather than calling Lookup repeatedly.
func (in *Interner) Lookup(id Id) (string, bool) {
	if id == None {
		return "", false
	}
	for _, sh := range in.shards {
		sh.mu.RLock()
		s, ok := sh.byId[id]
		sh.mu.RUnlock()
		if ok {
			return s, true
		}
	}
	return "", false
}

// MustIntern is a convenience for resource-load code paths where a
// missing name is a programming error, not a runtime condition.
func (in *Interner) MustIntern(name string) Id {
	return in.Intern(name)
}
