package mondrian

import (
	"testing"
)

func TestBoundingSide(t *testing.T) {
	tests := []struct {
		name  string
		sizes []float64
		want  float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3}, 3},
		{"pythagorean", []float64{3, 4}, 5},
		{"rounds up", []float64{1, 1}, 2},
		{"mixed", []float64{10, 1, 1, 1}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundingSide(tt.sizes); got != tt.want {
				t.Errorf("BoundingSide(%v) = %g, want %g", tt.sizes, got, tt.want)
			}
		})
	}
}

func TestPackEmpty(t *testing.T) {
	res := Pack(nil)
	if res.Side != 0 || len(res.Placements) != 0 {
		t.Errorf("Pack(nil) = %+v, want empty", res)
	}
}

func TestPackAlignment(t *testing.T) {
	sizes := []float64{3, 4}
	res := Pack(sizes)

	if res.Side != 5 {
		t.Fatalf("Side = %g, want 5", res.Side)
	}
	if len(res.Placements) != len(sizes) {
		t.Fatalf("len(Placements) = %d, want %d", len(res.Placements), len(sizes))
	}
	if p := res.Placements[0]; p == nil || p.Position != (Point{0, 0}) {
		t.Errorf("Placements[0] = %v, want {0,0}", p)
	}
	// 3 leaves a 2-wide right column and a 3x2 bottom strip; 4 fits nowhere.
	if p := res.Placements[1]; p != nil {
		t.Errorf("Placements[1] = %v, want nil", p)
	}
	if res.Stats.Placed != 1 || res.Stats.Skipped != 1 {
		t.Errorf("Stats = %+v, want 1 placed, 1 skipped", res.Stats)
	}
	if res.Stats.FilledArea != 9 {
		t.Errorf("FilledArea = %g, want 9", res.Stats.FilledArea)
	}
}

func TestPackInvariants(t *testing.T) {
	sizes := make([]float64, 0, 200)
	for i := 0; i < 200; i++ {
		sizes = append(sizes, float64(1+(i*7)%10))
	}
	res := Pack(sizes)

	var placed []*Placement
	for i, p := range res.Placements {
		if p == nil {
			continue
		}
		if p.Side != sizes[i] {
			t.Errorf("placement %d side = %g, want %g", i, p.Side, sizes[i])
		}
		if p.Position.X < 0 || p.Position.Y < 0 ||
			p.Position.X+p.Side > res.Side || p.Position.Y+p.Side > res.Side {
			t.Errorf("placement %d %v outside bounding square %g", i, p, res.Side)
		}
		placed = append(placed, p)
	}

	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			if overlaps(placed[i], placed[j]) {
				t.Fatalf("placements overlap: %v and %v", placed[i], placed[j])
			}
		}
	}

	if res.Stats.Placed+res.Stats.Skipped != len(sizes) {
		t.Errorf("placed+skipped = %d, want %d", res.Stats.Placed+res.Stats.Skipped, len(sizes))
	}
	if res.Stats.FillRatio <= 0 || res.Stats.FillRatio > 1 {
		t.Errorf("FillRatio = %g, want in (0, 1]", res.Stats.FillRatio)
	}
}

func overlaps(a, b *Placement) bool {
	return a.Position.X < b.Position.X+b.Side && b.Position.X < a.Position.X+a.Side &&
		a.Position.Y < b.Position.Y+b.Side && b.Position.Y < a.Position.Y+a.Side
}
