package analysis

import (
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/record"
	"github.com/RenardDesNeiges/hopsim/internal/viz"
)

// BifurcationPoint holds the distinct apex heights reached at one
// parameter value after the transient has died out.
type BifurcationPoint struct {
	Param   float64
	Heights []float64
}

// Bifurcation reduces a family of recorded hopper runs, one per
// parameter value, to an apex bifurcation diagram. The leading
// transient fraction of each run's apexes is discarded and the
// remainder quantized to 1 mm so a settled period-k gait contributes k
// distinct heights.
func Bifurcation(params []float64, trs []*record.Trajectory, transient float64) []BifurcationPoint {
	n := len(params)
	if len(trs) < n {
		n = len(trs)
	}

	out := make([]BifurcationPoint, 0, n)
	for i := 0; i < n; i++ {
		var heights []float64
		if trs[i] != nil {
			apexes := Apexes(trs[i])
			skip := int(transient * float64(len(apexes)))
			seen := make(map[int]bool)
			for _, a := range apexes[skip:] {
				key := int(a.Height * 1000)
				if !seen[key] {
					seen[key] = true
					heights = append(heights, a.Height)
				}
			}
		}
		out = append(out, BifurcationPoint{Param: params[i], Heights: heights})
	}
	return out
}

// RenderBifurcation draws the diagram on a braille canvas, parameter
// values left to right, apex heights bottom to top.
func RenderBifurcation(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minH, maxH float64
	found := false
	for _, p := range data {
		for _, h := range p.Heights {
			if !found {
				minH, maxH = h, h
				found = true
				continue
			}
			minH = math.Min(minH, h)
			maxH = math.Max(maxH, h)
		}
	}
	if !found {
		return ""
	}
	if maxH == minH {
		maxH = minH + 1
	}

	c := viz.NewCanvas(width, height)
	w := width*2 - 1
	h := height*4 - 1
	for i, p := range data {
		px := i * w / len(data)
		for _, v := range p.Heights {
			py := h - int(math.Round((v-minH)/(maxH-minH)*float64(h)))
			c.Set(px, py)
		}
	}
	return c.String()
}
