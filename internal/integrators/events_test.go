package integrators

import (
	"math"
	"testing"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

func TestSegmentInterp_Endpoints(t *testing.T) {
	seg := segment{
		t0: 0, t1: 1,
		y0: hybrid.State{0, 1},
		y1: hybrid.State{1, 1},
		f0: hybrid.State{1, 0},
		f1: hybrid.State{1, 0},
	}

	at0 := seg.interp(0)
	at1 := seg.interp(1)
	for i := range at0 {
		if math.Abs(at0[i]-seg.y0[i]) > 1e-15 {
			t.Errorf("interp(t0)[%d] = %v, want %v", i, at0[i], seg.y0[i])
		}
		if math.Abs(at1[i]-seg.y1[i]) > 1e-15 {
			t.Errorf("interp(t1)[%d] = %v, want %v", i, at1[i], seg.y1[i])
		}
	}
}

func TestSegmentInterp_ExactOnCubics(t *testing.T) {
	// y(t) = t^3 is reproduced exactly by a cubic Hermite.
	seg := segment{
		t0: 1, t1: 3,
		y0: hybrid.State{1},
		y1: hybrid.State{27},
		f0: hybrid.State{3},
		f1: hybrid.State{27},
	}

	for _, tt := range []float64{1.25, 2, 2.8} {
		got := seg.interp(tt)[0]
		want := tt * tt * tt
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("interp(%v) = %v, want %v", tt, got, want)
		}
	}
}

func TestCrossings(t *testing.T) {
	tests := []struct {
		name   string
		gA, gB []float64
		strict bool
		want   []int
	}{
		{"upward", []float64{-1}, []float64{1}, false, []int{0}},
		{"downward ignored", []float64{1}, []float64{-1}, false, nil},
		{"still negative", []float64{-1}, []float64{-0.5}, false, nil},
		{"from zero relaxed", []float64{0}, []float64{1}, false, []int{0}},
		{"from zero strict", []float64{0}, []float64{1}, true, nil},
		{"to zero not a crossing", []float64{-1}, []float64{0}, false, nil},
		{"multiple ascending", []float64{-1, 2, -3}, []float64{1, 3, 4}, false, []int{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crossings(tt.gA, tt.gB, tt.strict)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLocalize_LinearGuard(t *testing.T) {
	// Straight-line state y(t) = t with guard y - 0.37: root at 0.37.
	seg := segment{
		t0: 0, t1: 1,
		y0: hybrid.State{0},
		y1: hybrid.State{1},
		f0: hybrid.State{1},
		f1: hybrid.State{1},
	}
	g := func(t float64, y hybrid.State) ([]float64, error) {
		return []float64{y[0] - 0.37}, nil
	}

	gA, _ := g(0, seg.y0)
	gB, _ := g(1, seg.y1)

	tE, yE, fired, err := localize(g, seg, gA, gB, false)
	if err != nil {
		t.Fatalf("localize failed: %v", err)
	}
	if math.Abs(tE-0.37) > 1e-10 {
		t.Errorf("crossing time %v, want 0.37", tE)
	}
	if math.Abs(yE[0]-0.37) > 1e-10 {
		t.Errorf("crossing state %v, want 0.37", yE[0])
	}
	if len(fired) != 1 || fired[0] != 0 {
		t.Errorf("fired = %v, want [0]", fired)
	}
}

func TestLocalize_PicksFirstOfTwoGuards(t *testing.T) {
	// Two guards crossing at 0.2 and 0.8 inside the same step; only the
	// earlier one should come out fired.
	seg := segment{
		t0: 0, t1: 1,
		y0: hybrid.State{0},
		y1: hybrid.State{1},
		f0: hybrid.State{1},
		f1: hybrid.State{1},
	}
	g := func(t float64, y hybrid.State) ([]float64, error) {
		return []float64{y[0] - 0.2, y[0] - 0.8}, nil
	}

	gA, _ := g(0, seg.y0)
	gB, _ := g(1, seg.y1)

	tE, _, fired, err := localize(g, seg, gA, gB, false)
	if err != nil {
		t.Fatalf("localize failed: %v", err)
	}
	if math.Abs(tE-0.2) > 1e-9 {
		t.Errorf("crossing time %v, want 0.2", tE)
	}
	if len(fired) != 1 || fired[0] != 0 {
		t.Errorf("fired = %v, want [0]", fired)
	}
}
