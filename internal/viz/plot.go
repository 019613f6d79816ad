package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/RenardDesNeiges/hopsim/internal/record"
)

// TimeSeries plots one continuous state component of a trajectory as a
// terminal graph, with a caption counting the discrete jumps.
func TimeSeries(tr *record.Trajectory, component int, label string, width, height int) string {
	if tr == nil || tr.Len() == 0 {
		return "no samples recorded"
	}

	data := tr.Component(component)
	graph := asciigraph.Plot(data,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(label),
	)

	jumps := 0
	for _, s := range tr.Samples {
		if s.Event {
			jumps++
		}
	}

	out := graphStyle.Render(graph)
	if jumps > 0 {
		out += "\n" + eventStyle.Render(fmt.Sprintf("%d discrete jump(s)", jumps))
	}
	return out
}
