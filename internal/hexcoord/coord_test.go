package hexcoord

import "testing"

func TestNeighborsContainAddedDirection(t *testing.T) {
	c := New(3, -2)
	neighbors := c.Neighbors()
	for d := TopRight; d <= Right; d++ {
		want := c.Neighbor(d)
		found := false
		for _, n := range neighbors {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("neighbors of %v does not contain direction %d result %v", c, d, want)
		}
	}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	a := New(1, 2)
	b := New(-3, 4)
	if Distance(a, b) != Distance(b, a) {
		t.Fatalf("distance not symmetric: %d != %d", Distance(a, b), Distance(b, a))
	}
	if Distance(a, a) != 0 {
		t.Fatalf("distance(c, c) = %d, want 0", Distance(a, a))
	}
}

func TestBoundsCount(t *testing.T) {
	for radius := int32(0); radius <= 6; radius++ {
		b := NewHex(New(0, 0), radius)
		want := 3*int(radius)*(int(radius)+1) + 1
		got := b.All()
		if len(got) != want {
			t.Fatalf("radius %d: got %d coords, want %d", radius, len(got), want)
		}
		for _, c := range got {
			if !b.Contains(c) {
				t.Fatalf("radius %d: iterator yielded %v which bounds.Contains rejects", radius, c)
			}
		}
	}
}

func TestIteratorLenTracksRemaining(t *testing.T) {
	b := NewHex(New(0, 0), 2)
	it := NewIterator(b)
	total := it.Len()
	count := 0
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
		if it.Len() != total-count {
			t.Fatalf("Len() = %d after %d emitted, want %d", it.Len(), count, total-count)
		}
	}
}

func TestEmptyBoundsIteratesZero(t *testing.T) {
	it := NewIterator(Empty())
	if it.Len() != 0 {
		t.Fatalf("Empty bounds Len() = %d, want 0", it.Len())
	}
	if _, ok := it.Next(); ok {
		t.Fatal("Empty bounds yielded a coordinate")
	}
}
