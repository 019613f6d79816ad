package models

import (
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

// Sine is a sinusoidal scalar excitation, typically used to modulate
// the SLIP attack angle.
type Sine struct {
	Amp   float64
	Freq  float64 // Hz
	Phase float64
}

func (s Sine) Input(t float64, y hybrid.State, z hybrid.Discrete) hybrid.Input {
	return hybrid.Input{s.Amp * math.Sin(2*math.Pi*s.Freq*t+s.Phase)}
}

// Constant feeds a fixed input vector.
type Constant struct {
	U hybrid.Input
}

func (c Constant) Input(t float64, y hybrid.State, z hybrid.Discrete) hybrid.Input {
	return c.U
}

// Staircase is a terrain-style step input: it rises by Rise every Run
// units of the driving coordinate. The coordinate is y[Index] when
// Index is in range, otherwise elapsed time, so a hopper sees steps in
// its path while a time-driven system sees a staircase signal.
type Staircase struct {
	Rise  float64
	Run   float64
	Index int
}

func (s Staircase) Input(t float64, y hybrid.State, z hybrid.Discrete) hybrid.Input {
	if s.Run <= 0 {
		return hybrid.Input{0}
	}
	x := t
	if s.Index >= 0 && s.Index < len(y) {
		x = y[s.Index]
	}
	return hybrid.Input{s.Rise * math.Floor(x/s.Run)}
}
