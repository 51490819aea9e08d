package resources

import "testing"

func TestDecodeScalarsAndCollections(t *testing.T) {
	v, err := Decode(`{"a": 1, "b": [1, 2, 3], "c": "hi", "d": true}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m, ok := v.(map[string]Value)
	if !ok {
		t.Fatalf("root is %T, want map", v)
	}
	if m["a"].(float64) != 1 {
		t.Fatalf("a = %v", m["a"])
	}
	list, ok := m["b"].([]Value)
	if !ok || len(list) != 3 {
		t.Fatalf("b = %v", m["b"])
	}
	if m["c"].(string) != "hi" {
		t.Fatalf("c = %v", m["c"])
	}
	if m["d"].(bool) != true {
		t.Fatalf("d = %v", m["d"])
	}
}

func TestDecodeNamedStruct(t *testing.T) {
	v, err := Decode(`Amount(7)`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s, ok := v.(Struct)
	if !ok || s.Name != "Amount" || len(s.Tuple) != 1 {
		t.Fatalf("got %#v", v)
	}
	if s.Tuple[0].(float64) != 7 {
		t.Fatalf("tuple[0] = %v", s.Tuple[0])
	}
}

func TestDecodeNamedFieldsStruct(t *testing.T) {
	v, err := Decode(`TileDef(id: "core:belt", speed: 2)`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s, ok := v.(Struct)
	if !ok || s.Name != "TileDef" {
		t.Fatalf("got %#v", v)
	}
	if s.Fields["id"].(string) != "core:belt" {
		t.Fatalf("id = %v", s.Fields["id"])
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := map[string]Value{
		"x": 1.0,
		"y": "hello",
	}
	encoded := Encode(original)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode(Encode(...)): %v", err)
	}
	m := decoded.(map[string]Value)
	if m["x"].(float64) != 1 || m["y"].(string) != "hello" {
		t.Fatalf("round trip mismatch: %#v", m)
	}
}

func TestLoadTranslation(t *testing.T) {
	tr, err := LoadTranslation("en-US", `{"gui.title": "Automancy"}`)
	if err != nil {
		t.Fatalf("LoadTranslation: %v", err)
	}
	if tr.Lookup("gui.title") != "Automancy" {
		t.Fatalf("Lookup = %q", tr.Lookup("gui.title"))
	}
	if tr.Lookup("missing.key") != "missing.key" {
		t.Fatalf("Lookup(missing) = %q, want key echoed back", tr.Lookup("missing.key"))
	}
}

func TestLoadTranslationRejectsBadTag(t *testing.T) {
	if _, err := LoadTranslation("not a tag!!", `{}`); err == nil {
		t.Fatal("expected error for invalid BCP 47 tag")
	}
}
