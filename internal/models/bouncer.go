package models

import "github.com/RenardDesNeiges/hopsim/internal/hybrid"

// State, discrete, and parameter layouts of the bouncing mass.
const (
	BounceY = iota
	BounceVY

	BounceStateDim
)

const (
	BounceCount = iota

	BounceDiscreteDim
)

const (
	BounceGravity = iota
	BounceRestitution
	BounceMinSpeed // impacts slower than this are terminal

	BounceParamDim
)

// Bouncer is a point mass falling under gravity that rebounds with a
// restitution factor at ground impact. With restitution zero it is the
// classic single-drop benchmark; with restitution below one the
// terminal speed threshold cuts the Zeno accumulation off.
type Bouncer struct{}

func NewBouncer() *Bouncer { return &Bouncer{} }

func (b *Bouncer) DefaultParams() hybrid.Params {
	p := make(hybrid.Params, BounceParamDim)
	p[BounceGravity] = 9.81
	p[BounceRestitution] = 0.8
	p[BounceMinSpeed] = 0.05
	return p
}

func (b *Bouncer) InitialState(h float64) hybrid.State {
	y := make(hybrid.State, BounceStateDim)
	y[BounceY] = h
	return y
}

func (b *Bouncer) InitialDiscrete() hybrid.Discrete {
	return make(hybrid.Discrete, BounceDiscreteDim)
}

func (b *Bouncer) Flow(t float64, y hybrid.State, z hybrid.Discrete, p hybrid.Params, u hybrid.Input) (hybrid.State, hybrid.Params, error) {
	return hybrid.State{y[BounceVY], -p[BounceGravity]}, nil, nil
}

func (b *Bouncer) Events(t float64, y hybrid.State, z hybrid.Discrete, p hybrid.Params, u hybrid.Input) ([]float64, error) {
	// Rises through zero as the mass falls through the ground plane.
	return []float64{-y[BounceY]}, nil
}

func (b *Bouncer) Jump(t float64, y hybrid.State, z hybrid.Discrete, p hybrid.Params, u hybrid.Input, fired []int) (hybrid.State, hybrid.Discrete, bool, error) {
	yPlus := y.Clone()
	zPlus := z.Clone()

	impact := y[BounceVY]
	yPlus[BounceY] = 0
	yPlus[BounceVY] = -p[BounceRestitution] * impact
	zPlus[BounceCount]++

	terminal := yPlus[BounceVY] <= p[BounceMinSpeed]
	return yPlus, zPlus, terminal, nil
}
