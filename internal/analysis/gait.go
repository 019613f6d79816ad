package analysis

import (
	"github.com/RenardDesNeiges/hopsim/internal/models"
	"github.com/RenardDesNeiges/hopsim/internal/record"
)

// Apex is one apex passage of a hopping run.
type Apex struct {
	T      float64
	Height float64
}

// Apexes extracts the apex passages from a recorded SLIP run by
// watching the apex-height slot of the discrete state across event
// samples.
func Apexes(tr *record.Trajectory) []Apex {
	var out []Apex
	prev := -1.0
	for _, s := range tr.EventSamples() {
		if len(s.Z) <= models.SlipApexY {
			continue
		}
		h := s.Z[models.SlipApexY]
		if h != prev && h > 0 {
			out = append(out, Apex{T: s.T, Height: h})
			prev = h
		}
	}
	return out
}

// ReturnMap pairs consecutive apex heights (h_k, h_k+1), the Poincaré
// return map of the hopper around its apex section.
func ReturnMap(apexes []Apex) []struct{ H, HNext float64 } {
	if len(apexes) < 2 {
		return nil
	}
	pairs := make([]struct{ H, HNext float64 }, 0, len(apexes)-1)
	for i := 0; i+1 < len(apexes); i++ {
		pairs = append(pairs, struct{ H, HNext float64 }{apexes[i].Height, apexes[i+1].Height})
	}
	return pairs
}

// Step is one completed stance phase.
type Step struct {
	Touchdown float64
	Liftoff   float64
	Length    float64 // horizontal hip travel during stance
}

// Steps extracts the stance phases of a recorded SLIP run from the
// phase transitions in its event samples.
func Steps(tr *record.Trajectory) []Step {
	var out []Step
	var cur *Step
	prevPhase := models.PhaseFlight

	for _, s := range tr.EventSamples() {
		if len(s.Z) <= models.SlipPhase {
			continue
		}
		phase := int(s.Z[models.SlipPhase])
		switch {
		case phase == models.PhaseStance && prevPhase == models.PhaseFlight:
			cur = &Step{Touchdown: s.T, Length: -s.Y[models.SlipX]}
		case phase == models.PhaseFlight && prevPhase == models.PhaseStance && cur != nil:
			cur.Liftoff = s.T
			cur.Length += s.Y[models.SlipX]
			out = append(out, *cur)
			cur = nil
		}
		prevPhase = phase
	}
	return out
}

// Census counts continuous and event samples of a run.
type Census struct {
	Samples int
	Jumps   int
}

func Count(tr *record.Trajectory) Census {
	c := Census{Samples: tr.Len()}
	for _, s := range tr.Samples {
		if s.Event {
			c.Jumps++
		}
	}
	return c
}
