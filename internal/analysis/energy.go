package analysis

import (
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/record"
)

// EnergyFunc maps one sample to a total mechanical energy.
type EnergyFunc func(y hybrid.State, z hybrid.Discrete) float64

// EnergyReport summarizes the energy evolution of a recorded run.
type EnergyReport struct {
	Initial  float64
	Final    float64
	MaxDrift float64 // largest |e - e0| / |e0| over the run
}

// EnergyAudit walks a trajectory with the model's energy function and
// reports the drift relative to the first sample. For conservative
// models the max drift doubles as an integration accuracy check.
func EnergyAudit(tr *record.Trajectory, energy EnergyFunc) EnergyReport {
	var rep EnergyReport
	if tr.Len() == 0 {
		return rep
	}

	rep.Initial = energy(tr.Samples[0].Y, tr.Samples[0].Z)
	rep.Final = rep.Initial

	for _, s := range tr.Samples[1:] {
		e := energy(s.Y, s.Z)
		rep.Final = e
		if rep.Initial != 0 {
			drift := math.Abs(e-rep.Initial) / math.Abs(rep.Initial)
			rep.MaxDrift = math.Max(rep.MaxDrift, drift)
		}
	}
	return rep
}
