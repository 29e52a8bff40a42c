package mondrian

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/blockmondrian/pkg/errors"
)

func mustNew(t *testing.T, w, h float64) *Layout {
	t.Helper()
	l, err := New(w, h)
	if err != nil {
		t.Fatalf("New(%g, %g): %v", w, h, err)
	}
	return l
}

func TestNew(t *testing.T) {
	l := mustNew(t, 10, 8)

	w, h := l.Size()
	if w != 10 || h != 8 {
		t.Errorf("Size() = %gx%g, want 10x8", w, h)
	}
	want := []Slot{{X: 0, Y: 0, W: 10, H: 8}}
	if got := l.Slots(); !reflect.DeepEqual(got, want) {
		t.Errorf("Slots() = %v, want %v", got, want)
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"zero", 0, 0},
		{"negative width", -1, 5},
		{"nan height", 5, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h)
			if !errors.Is(err, errors.ErrCodeInvalidDimensions) {
				t.Errorf("New(%g, %g) error = %v, want %s", tt.w, tt.h, err, errors.ErrCodeInvalidDimensions)
			}
		})
	}
}

func TestPlaceRightRemainder(t *testing.T) {
	l := mustNew(t, 10, 10)

	p, ok := l.Place(6)
	if !ok || p != (Placement{Position: Point{0, 0}, Side: 6}) {
		t.Fatalf("Place(6) = %v, %v", p, ok)
	}

	p, ok = l.Place(4)
	if !ok || p != (Placement{Position: Point{6, 0}, Side: 4}) {
		t.Fatalf("Place(4) = %v, %v, want {6,0} side 4", p, ok)
	}
}

func TestPlaceSplitsSlots(t *testing.T) {
	l := mustNew(t, 10, 10)

	if _, ok := l.Place(3); !ok {
		t.Fatal("Place(3) should fit")
	}
	want := []Slot{
		{X: 3, Y: 0, W: 7, H: 10}, // right remainder keeps the full height
		{X: 0, Y: 3, W: 3, H: 7},  // bottom remainder is clamped to the side
	}
	if got := l.Slots(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after Place(3): Slots() = %v, want %v", got, want)
	}

	p, ok := l.Place(4)
	if !ok || p.Position != (Point{3, 0}) {
		t.Fatalf("Place(4) = %v, %v, want position {3,0}", p, ok)
	}
	want = []Slot{
		{X: 0, Y: 3, W: 3, H: 7},
		{X: 7, Y: 0, W: 3, H: 10},
		{X: 3, Y: 4, W: 4, H: 6},
	}
	if got := l.Slots(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after Place(4): Slots() = %v, want %v", got, want)
	}

	p, ok = l.Place(3)
	if !ok || p.Position != (Point{0, 3}) {
		t.Fatalf("Place(3) = %v, %v, want position {0,3}", p, ok)
	}
	want = []Slot{
		{X: 7, Y: 0, W: 3, H: 10},
		{X: 3, Y: 4, W: 4, H: 6},
		{X: 0, Y: 6, W: 3, H: 4},
	}
	if got := l.Slots(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after second Place(3): Slots() = %v, want %v", got, want)
	}
}

func TestPlaceNoFitDoesNotMutate(t *testing.T) {
	l := mustNew(t, 10, 10)
	l.Place(3)
	l.Place(4)
	before := l.Slots()

	if p, ok := l.Place(5); ok {
		t.Fatalf("Place(5) = %v, want no fit", p)
	}
	if got := l.Slots(); !reflect.DeepEqual(got, before) {
		t.Errorf("failed Place mutated slots: %v, want %v", got, before)
	}

	// Smaller squares still fit after a failure.
	if _, ok := l.Place(2); !ok {
		t.Error("Place(2) after a failed Place should fit")
	}
}

func TestPlaceExactFit(t *testing.T) {
	l := mustNew(t, 5, 5)

	p, ok := l.Place(5)
	if !ok || p.Position != (Point{0, 0}) {
		t.Fatalf("Place(5) = %v, %v", p, ok)
	}
	if n := len(l.Slots()); n != 0 {
		t.Errorf("exact fit left %d slots, want 0", n)
	}
	if _, ok := l.Place(1); ok {
		t.Error("Place(1) on a full layout should not fit")
	}
}

func TestPlaceInvalidSize(t *testing.T) {
	for _, size := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		l := mustNew(t, 10, 10)
		if _, ok := l.Place(size); ok {
			t.Errorf("Place(%g) should not fit", size)
		}
		if n := len(l.Slots()); n != 1 {
			t.Errorf("Place(%g) changed slots: %d", size, n)
		}
	}
}

func TestSlotsReturnsCopy(t *testing.T) {
	l := mustNew(t, 4, 4)
	s := l.Slots()
	s[0].W = 1
	if l.Slots()[0].W != 4 {
		t.Error("mutating Slots() result changed the layout")
	}
}

func TestPlaceDeterministic(t *testing.T) {
	sizes := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	run := func() []Placement {
		l := mustNew(t, 20, 20)
		var out []Placement
		for _, s := range sizes {
			if p, ok := l.Place(s); ok {
				out = append(out, p)
			}
		}
		return out
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("identical sequences produced different placements:\n%v\n%v", a, b)
	}
}
