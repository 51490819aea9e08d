package data

import (
	"golang.org/x/exp/maps"

	"github.com/automancy/automancy/internal/ids"
)

// Inventory is an ordered Id -> signed item amount mapping. Ordering of
// Keys()/iteration reflects first-touch insertion order: Get(id) on an
// absent key inserts a zero and thereby affects subsequent stable
// iteration. This quirk is preserved since at least one script path is
// documented to rely on it.
type Inventory struct {
	order  []ids.Id
	amount map[ids.Id]int32
}

// NewInventory returns an empty Inventory.
func NewInventory() *Inventory {
	return &Inventory{amount: make(map[ids.Id]int32)}
}

// Add increments the stored amount of id by n (n may be negative).
func (inv *Inventory) Add(id ids.Id, n int32) {
	inv.ensure(id)
	inv.amount[id] += n
}

// Take removes up to n from the stored amount of id and returns how
// much was actually removed: min(stored, n).
func (inv *Inventory) Take(id ids.Id, n int32) int32 {
	inv.ensure(id)
	stored := inv.amount[id]
	taken := n
	if stored < taken {
		taken = stored
	}
	if taken < 0 {
		taken = 0
	}
	inv.amount[id] -= taken
	return taken
}

// Get returns the stored amount of id, inserting a zero entry (and
// thereby extending stable iteration order) if id was never touched.
func (inv *Inventory) Get(id ids.Id) int32 {
	inv.ensure(id)
	return inv.amount[id]
}

// Peek returns the stored amount of id without the zero-insertion side
// effect of Get. Prefer this for read-only queries that must not affect
// iteration order.
func (inv *Inventory) Peek(id ids.Id) int32 {
	return inv.amount[id]
}

func (inv *Inventory) ensure(id ids.Id) {
	if _, ok := inv.amount[id]; !ok {
		if inv.amount == nil {
			inv.amount = make(map[ids.Id]int32)
		}
		inv.amount[id] = 0
		inv.order = append(inv.order, id)
	}
}

// Contains reports whether the inventory stores at least stack.Amount
// of stack.Id.
func (inv *Inventory) Contains(stack ItemStack) bool {
	return inv.Peek(stack.Id) >= stack.Amount
}

// Keys returns every Id that has been touched, in stable first-touch
// order.
func (inv *Inventory) Keys() []ids.Id {
	out := make([]ids.Id, len(inv.order))
	copy(out, inv.order)
	return out
}

// Clone returns an independent deep copy.
func (inv *Inventory) Clone() *Inventory {
	out := &Inventory{
		order:  append([]ids.Id(nil), inv.order...),
		amount: maps.Clone(inv.amount),
	}
	if out.amount == nil {
		out.amount = make(map[ids.Id]int32)
	}
	return out
}

// Equal reports whether two inventories hold the same amounts for the
// same set of ids, irrespective of insertion order (spec I4: equal
// "modulo iteration order of set-typed data").
func (inv *Inventory) Equal(o *Inventory) bool {
	if inv == nil || o == nil {
		return inv == o
	}
	if len(inv.amount) != len(o.amount) {
		return false
	}
	for id, n := range inv.amount {
		if o.amount[id] != n {
			return false
		}
	}
	return true
}

// ItemStack names an amount of a specific item Id; the unit of exchange
// carried by transactions.
type ItemStack struct {
	Id     ids.Id
	Amount int32
}
