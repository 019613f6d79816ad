package integrators

import (
	"math"
	"testing"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

func TestRK4_HarmonicAccuracy(t *testing.T) {
	integ := NewRK4(0.001)

	sol, err := integ.Integrate(harmonic, nil, 0, 2*math.Pi, hybrid.State{1, 0}, hybrid.StepOptions{}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if math.Abs(sol.Y[0]-1.0) > 1e-8 || math.Abs(sol.Y[1]) > 1e-8 {
		t.Errorf("expected [1, 0] after one period, got [%v, %v]", sol.Y[0], sol.Y[1])
	}
}

func TestRK4_EventLocalization(t *testing.T) {
	integ := NewRK4(0.3)

	f := func(t float64, y hybrid.State) (hybrid.State, error) {
		return hybrid.State{1}, nil
	}
	g := func(t float64, y hybrid.State) ([]float64, error) {
		return []float64{y[0] - 1}, nil
	}

	// The crossing at t=1 lands mid-step; the interpolant must pin it.
	sol, err := integ.Integrate(f, g, 0, 5, hybrid.State{0}, hybrid.StepOptions{}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if sol.Fired == nil {
		t.Fatal("expected an event")
	}
	if math.Abs(sol.T-1.0) > 1e-9 {
		t.Errorf("expected crossing at t=1, got %v", sol.T)
	}
}

func TestRK4_RejectsNonPositiveStep(t *testing.T) {
	integ := NewRK4(0)
	if _, err := integ.Integrate(harmonic, nil, 0, 1, hybrid.State{1, 0}, hybrid.StepOptions{}, nil); err == nil {
		t.Error("expected an error for dt=0")
	}
}

func TestEuler_Decay(t *testing.T) {
	integ := NewEuler(1e-4)

	f := func(t float64, y hybrid.State) (hybrid.State, error) {
		return hybrid.State{-y[0]}, nil
	}

	sol, err := integ.Integrate(f, nil, 0, 1, hybrid.State{1}, hybrid.StepOptions{}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if math.Abs(sol.Y[0]-math.Exp(-1)) > 1e-3 {
		t.Errorf("expected e^-1, got %v", sol.Y[0])
	}
}

func TestEuler_RejectsNonPositiveStep(t *testing.T) {
	integ := NewEuler(-0.1)
	if _, err := integ.Integrate(harmonic, nil, 0, 1, hybrid.State{1, 0}, hybrid.StepOptions{}, nil); err == nil {
		t.Error("expected an error for negative dt")
	}
}

func TestFixed_EndpointLandsExactly(t *testing.T) {
	integ := NewRK4(0.3)

	sol, err := integ.Integrate(harmonic, nil, 0, 1, hybrid.State{1, 0}, hybrid.StepOptions{}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if sol.T != 1 {
		t.Errorf("expected final time 1, got %v", sol.T)
	}
}
