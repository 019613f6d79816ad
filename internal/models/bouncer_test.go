package models

import (
	"context"
	"math"
	"testing"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/integrators"
)

func TestBouncer_SingleDrop(t *testing.T) {
	b := NewBouncer()
	p := b.DefaultParams()
	p[BounceRestitution] = 0
	p[BounceMinSpeed] = 0

	sim := hybrid.New(b, integrators.NewRK45(), nil)

	cfg := hybrid.DefaultConfig()
	cfg.TMax = 10

	res, err := sim.Run(context.Background(), b.InitialState(1), b.InitialDiscrete(), p, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// A dead drop from 1 m lands at sqrt(2/g) and stays down.
	want := math.Sqrt(2 / p[BounceGravity])
	if math.Abs(res.T-want) > 1e-8 {
		t.Errorf("impact at t=%v, want %v", res.T, want)
	}
	if res.Jumps != 1 {
		t.Errorf("expected a single terminal impact, got %d jumps", res.Jumps)
	}
	if res.Y[BounceVY] != 0 {
		t.Errorf("rebound speed %v, want 0", res.Y[BounceVY])
	}
}

func TestBouncer_ReboundSequence(t *testing.T) {
	b := NewBouncer()
	p := b.DefaultParams()
	p[BounceRestitution] = 0.5
	p[BounceMinSpeed] = 1.5

	sim := hybrid.New(b, integrators.NewRK45(), nil)

	cfg := hybrid.DefaultConfig()
	cfg.TMax = 10

	res, err := sim.Run(context.Background(), b.InitialState(1), b.InitialDiscrete(), p, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Impact speeds halve each bounce: v1 = sqrt(2g) ~ 4.43, rebound
	// 2.21, second rebound 1.11 which is under the 1.5 threshold. The
	// second impact lands at t1 + 2*v1'/g.
	g := p[BounceGravity]
	t1 := math.Sqrt(2 / g)
	v1 := math.Sqrt(2 * g)
	t2 := t1 + 2*0.5*v1/g

	if res.Jumps != 2 {
		t.Fatalf("expected two impacts, got %d", res.Jumps)
	}
	if res.Z[BounceCount] != 2 {
		t.Errorf("impact counter %v, want 2", res.Z[BounceCount])
	}
	if math.Abs(res.T-t2) > 1e-6 {
		t.Errorf("final impact at t=%v, want %v", res.T, t2)
	}
	if math.Abs(res.Y[BounceVY]-0.25*v1) > 1e-6 {
		t.Errorf("final rebound speed %v, want %v", res.Y[BounceVY], 0.25*v1)
	}
}

func TestBouncer_JumpReflectsVelocity(t *testing.T) {
	b := NewBouncer()
	p := b.DefaultParams()

	y := hybrid.State{0, -3}
	yPlus, zPlus, terminal, err := b.Jump(1, y, b.InitialDiscrete(), p, nil, []int{0})
	if err != nil {
		t.Fatalf("jump failed: %v", err)
	}
	if yPlus[BounceY] != 0 {
		t.Errorf("post-impact height %v, want 0", yPlus[BounceY])
	}
	if math.Abs(yPlus[BounceVY]-2.4) > 1e-12 {
		t.Errorf("post-impact speed %v, want 2.4", yPlus[BounceVY])
	}
	if zPlus[BounceCount] != 1 {
		t.Errorf("impact counter %v, want 1", zPlus[BounceCount])
	}
	if terminal {
		t.Error("a fast impact must not terminate")
	}
}

func TestExcitations(t *testing.T) {
	sine := Sine{Amp: 2, Freq: 0.5, Phase: math.Pi / 2}
	u := sine.Input(0, nil, nil)
	if len(u) != 1 || math.Abs(u[0]-2) > 1e-12 {
		t.Errorf("sine at phase π/2 gave %v, want [2]", u)
	}

	c := Constant{U: hybrid.Input{0.1}}
	u = c.Input(3.7, nil, nil)
	if len(u) != 1 || u[0] != 0.1 {
		t.Errorf("constant excitation gave %v, want [0.1]", u)
	}
}

func TestStaircase(t *testing.T) {
	// Driven by a state component: 2.5 m into 1 m treads of 0.1 m rise
	// is the third tread.
	st := Staircase{Rise: 0.1, Run: 1.0, Index: 0}
	u := st.Input(0, hybrid.State{2.5}, nil)
	if len(u) != 1 || math.Abs(u[0]-0.2) > 1e-12 {
		t.Errorf("position-driven staircase gave %v, want [0.2]", u)
	}

	// A negative index drives the staircase by time instead.
	st = Staircase{Rise: 0.1, Run: 1.0, Index: -1}
	u = st.Input(3.2, hybrid.State{99}, nil)
	if len(u) != 1 || math.Abs(u[0]-0.3) > 1e-12 {
		t.Errorf("time-driven staircase gave %v, want [0.3]", u)
	}

	// Flat ground before the first tread.
	u = st.Input(0.5, nil, nil)
	if len(u) != 1 || u[0] != 0 {
		t.Errorf("staircase before the first tread gave %v, want [0]", u)
	}

	// Degenerate tread width stays flat instead of dividing by zero.
	st = Staircase{Rise: 0.1, Run: 0}
	if u := st.Input(5, nil, nil); len(u) != 1 || u[0] != 0 {
		t.Errorf("zero-width staircase gave %v, want [0]", u)
	}
}
