package geometry

import "testing"

func TestRangeOf(t *testing.T) {
	r := RangeOf([]float64{3, -1, 7, 2})
	if r.Min != -1 || r.Max != 7 {
		t.Fatalf("range: %+v", r)
	}
	if r.Span() != 8 {
		t.Fatalf("span: %v", r.Span())
	}
	if z := RangeOf(nil); z.Min != 0 || z.Max != 0 {
		t.Fatalf("empty range: %+v", z)
	}
}

func TestNormalize(t *testing.T) {
	r := Range{Min: -2, Max: 6}
	if got := r.Normalize(-2); got != 0 {
		t.Fatalf("min: %v", got)
	}
	if got := r.Normalize(6); got != 1 {
		t.Fatalf("max: %v", got)
	}
	if got := r.Normalize(2); got != 0.5 {
		t.Fatalf("mid: %v", got)
	}
	if got := (Range{Min: 3, Max: 3}).Normalize(3); got != 0 {
		t.Fatalf("degenerate: %v", got)
	}
}
