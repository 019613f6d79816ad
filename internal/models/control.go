package models

import "github.com/RenardDesNeiges/hopsim/internal/hybrid"

// ApexController regulates the hopping height of the SLIP model by
// offsetting the flight attack angle in proportion to the error
// between the last recorded apex and a target height. Overshooting
// steepens the leg, which brakes the hop; undershooting flattens it.
//
// The controller reads only the discrete state, so the integrator's
// trial evaluations at out-of-order times cannot corrupt it.
type ApexController struct {
	Target float64 // desired apex height, m
	Gain   float64 // rad per meter of apex error
}

func (c ApexController) Input(t float64, y hybrid.State, z hybrid.Discrete) hybrid.Input {
	if len(z) <= SlipApexY || z[SlipApexY] <= 0 {
		// No apex passage recorded yet; fly with the nominal angle.
		return hybrid.Input{0}
	}
	return hybrid.Input{c.Gain * (z[SlipApexY] - c.Target)}
}
