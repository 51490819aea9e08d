package ids

import "testing"

func TestInternerRoundTrip(t *testing.T) {
	in := NewInterner()

	id1 := in.Intern("core:belt")
	id2 := in.Intern("core:belt")
	if id1 != id2 {
		t.Fatalf("interning the same name twice produced different ids: %v != %v", id1, id2)
	}

	id3 := in.Intern("core:sink")
	if id3 == id1 {
		t.Fatalf("distinct names interned to the same id")
	}

	s, ok := in.Lookup(id1)
	if !ok || s != "core:belt" {
		t.Fatalf("Lookup(%v) = %q, %v; want core:belt, true", id1, s, ok)
	}
}

func TestIdMapRoundTrip(t *testing.T) {
	in := NewInterner()
	id := in.Intern("core:iron_ore")

	m := NewIdMap()
	m.Record(in, id)

	s, err := m.String(id)
	if err != nil || s != "core:iron_ore" {
		t.Fatalf("IdMap.String(%v) = %q, %v; want core:iron_ore, nil", id, s, err)
	}

	resolved, err := Resolve(in, s)
	if err != nil || resolved != id {
		t.Fatalf("Resolve(%q) = %v, %v; want %v, nil", s, resolved, err, id)
	}
}

func TestIdMapMissingId(t *testing.T) {
	m := NewIdMap()
	if _, err := m.String(Id(99)); err == nil {
		t.Fatal("expected ErrMissingId for unrecorded id")
	}
}

func TestResolveMissingString(t *testing.T) {
	in := NewInterner()
	if _, err := Resolve(in, "core:never_interned"); err == nil {
		t.Fatal("expected ErrInternerMissingStringId for unknown string")
	}
}
