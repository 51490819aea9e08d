package data

import (
	"testing"

	"github.com/automancy/automancy/internal/ids"
)

func TestDataMapRoundTripViaIdMap(t *testing.T) {
	interner := ids.NewInterner()
	iron := interner.Intern("core:iron_ore")
	countKey := interner.Intern("core:count")
	flagKey := interner.Intern("core:active")

	m := New()
	m.Set(countKey, Amount{Value: 7})
	m.Set(flagKey, Bool{Value: true})
	m.InventoryMut(interner.Intern("core:inventory")).Add(iron, 5)

	raw := IntoRaw(m, interner)
	restored, err := raw.IntoData()
	if err != nil {
		t.Fatalf("IntoData: %v", err)
	}
	if restored.Len() != m.Len() {
		t.Fatalf("restored map has %d keys, want %d", restored.Len(), m.Len())
	}

	entries, err := ToStr(raw)
	if err != nil {
		t.Fatalf("ToStr: %v", err)
	}

	second := ids.NewInterner()
	// Pre-populate the second interner with the same names (as resource
	// load would) before resolving the string form.
	second.Intern("core:iron_ore")
	second.Intern("core:count")
	second.Intern("core:active")
	second.Intern("core:inventory")

	reconstructed, err := FromStr(entries, second)
	if err != nil {
		t.Fatalf("FromStr: %v", err)
	}
	if reconstructed.Len() != m.Len() {
		t.Fatalf("reconstructed map has %d keys, want %d", reconstructed.Len(), m.Len())
	}
}

func TestFromStrFailsOnUnknownId(t *testing.T) {
	interner := ids.NewInterner()
	entries := []StrEntry{{Key: "core:never_interned", Kind: "Bool", Value: true}}
	if _, err := FromStr(entries, interner); err == nil {
		t.Fatal("expected error resolving an id absent from the interner")
	}
}

func TestInventoryTakeReturnsMin(t *testing.T) {
	interner := ids.NewInterner()
	iron := interner.Intern("core:iron_ore")

	inv := NewInventory()
	inv.Add(iron, 3)

	got := inv.Take(iron, 10)
	if got != 3 {
		t.Fatalf("Take returned %d, want 3", got)
	}
	if inv.Get(iron) != 0 {
		t.Fatalf("Get after Take = %d, want 0", inv.Get(iron))
	}
}

func TestInventoryAddThenTakeRestoresPrior(t *testing.T) {
	interner := ids.NewInterner()
	iron := interner.Intern("core:iron_ore")

	inv := NewInventory()
	inv.Add(iron, 5)
	prior := inv.Get(iron)

	inv.Add(iron, 2)
	inv.Take(iron, 2)

	if inv.Get(iron) != prior {
		t.Fatalf("Get() = %d after add/take of same n, want %d", inv.Get(iron), prior)
	}
}

func TestDiffDetectsInsertedAndChanged(t *testing.T) {
	interner := ids.NewInterner()
	a := interner.Intern("core:a")
	b := interner.Intern("core:b")

	prev := New()
	prev.Set(a, Amount{Value: 1})

	next := New()
	next.Set(a, Amount{Value: 2})
	next.Set(b, Bool{Value: true})

	changed := Diff(prev, next, false)
	if _, ok := changed[a]; !ok {
		t.Fatal("expected key a to be reported changed")
	}
	if _, ok := changed[b]; !ok {
		t.Fatal("expected key b (newly inserted) to be reported changed")
	}
}

func TestContainsIdInventory(t *testing.T) {
	interner := ids.NewInterner()
	key := interner.Intern("core:inv")
	iron := interner.Intern("core:iron_ore")

	m := New()
	m.InventoryMut(key).Add(iron, 4)

	if !m.ContainsId(key, iron) {
		t.Fatal("expected ContainsId to find iron in the inventory")
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	c := Color{R: 1, G: 0, B: 0.5, A: 1}
	s := c.HexString()
	back := ColorFromHex(s)
	if back.HexString() != s {
		t.Fatalf("color round trip mismatch: %s != %s", back.HexString(), s)
	}
}

func TestColorFromHexMalformedIsOpaqueBlack(t *testing.T) {
	c := ColorFromHex("not-hex")
	want := Color{R: 0, G: 0, B: 0, A: 1}
	if c != want {
		t.Fatalf("malformed hex decoded to %+v, want opaque black %+v", c, want)
	}
}
