package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/integrators"
	"github.com/RenardDesNeiges/hopsim/internal/models"
)

func TestRange(t *testing.T) {
	vs := Range(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(vs) != len(want) {
		t.Fatalf("got %d values, want %d", len(vs), len(want))
	}
	for i := range vs {
		if math.Abs(vs[i]-want[i]) > 1e-12 {
			t.Errorf("value %d = %v, want %v", i, vs[i], want[i])
		}
	}

	if vs := Range(3, 9, 1); len(vs) != 1 || vs[0] != 3 {
		t.Errorf("single-point range = %v, want [3]", vs)
	}
}

func TestRunner_SweepsRestitution(t *testing.T) {
	b := models.NewBouncer()
	p := b.DefaultParams()
	p[models.BounceMinSpeed] = 1.0

	r := &Runner{
		Model:         b,
		NewIntegrator: func() hybrid.Integrator { return integrators.NewRK45() },
		Y0:            b.InitialState(1),
		Z0:            b.InitialDiscrete(),
		P0:            p,
		Index:         models.BounceRestitution,
	}

	cfg := hybrid.DefaultConfig()
	cfg.TMax = 30

	points, err := r.Run(context.Background(), []float64{0, 0.3, 0.6}, cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}

	// Bouncier balls take longer to drop below the terminal speed.
	for i := 1; i < len(points); i++ {
		if points[i].Res.T <= points[i-1].Res.T {
			t.Errorf("settle time did not grow with restitution: %v then %v",
				points[i-1].Res.T, points[i].Res.T)
		}
	}
	if points[0].Res.Jumps != 1 {
		t.Errorf("dead drop made %d jumps, want 1", points[0].Res.Jumps)
	}

	// The base parameter vector is untouched.
	if p[models.BounceRestitution] != 0.8 {
		t.Errorf("sweep mutated the base parameters: %v", p[models.BounceRestitution])
	}

	// Headless by default.
	for i, pt := range points {
		if pt.Traj != nil {
			t.Errorf("point %d recorded a trajectory without Record", i)
		}
	}
}

func TestRunner_RecordsTrajectories(t *testing.T) {
	b := models.NewBouncer()

	r := &Runner{
		Model:         b,
		NewIntegrator: func() hybrid.Integrator { return integrators.NewRK45() },
		Y0:            b.InitialState(1),
		Z0:            b.InitialDiscrete(),
		P0:            b.DefaultParams(),
		Index:         models.BounceRestitution,
		Record:        true,
	}

	cfg := hybrid.DefaultConfig()
	cfg.TMax = 30

	points, err := r.Run(context.Background(), []float64{0, 0.5}, cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	for i, pt := range points {
		if pt.Traj == nil || pt.Traj.Len() == 0 {
			t.Fatalf("point %d has no recorded trajectory", i)
		}
		events := 0
		for _, s := range pt.Traj.Samples {
			if s.Event {
				events++
			}
		}
		if events != pt.Res.Jumps {
			t.Errorf("point %d recorded %d event samples for %d jumps", i, events, pt.Res.Jumps)
		}
	}
}

func TestRunner_ErrorDiscardsBatch(t *testing.T) {
	b := models.NewBouncer()

	r := &Runner{
		Model:         b,
		NewIntegrator: func() hybrid.Integrator { return integrators.NewRK45() },
		Y0:            b.InitialState(1),
		Z0:            b.InitialDiscrete(),
		P0:            b.DefaultParams(),
		Index:         models.BounceRestitution,
	}

	// An invalid time budget fails validation inside every run.
	cfg := hybrid.DefaultConfig()
	cfg.TMax = -5

	if _, err := r.Run(context.Background(), []float64{0, 0.5}, cfg); err == nil {
		t.Error("expected the runs' error to surface")
	}
}
