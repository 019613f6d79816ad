package export

import (
	"strings"
	"testing"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/record"
	"github.com/RenardDesNeiges/hopsim/internal/viz"
)

func TestTimeSeriesSVG(t *testing.T) {
	tr := record.NewTrajectory()
	tr.Record(hybrid.Sample{T: 0, Y: hybrid.State{1}})
	tr.Record(hybrid.Sample{T: 0.5, Y: hybrid.State{0.5}})
	tr.Record(hybrid.Sample{T: 1, Y: hybrid.State{0}, Event: true})

	svg := TimeSeriesSVG(tr, 0, 400, 200, "#00ff88")

	if !strings.HasPrefix(svg, `<?xml`) || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete SVG document")
	}
	if !strings.Contains(svg, "<path") {
		t.Error("missing the trace path")
	}
	if strings.Count(svg, "<circle") != 1 {
		t.Errorf("expected one event marker, got %d", strings.Count(svg, "<circle"))
	}
	if !strings.Contains(svg, `width="400"`) || !strings.Contains(svg, `height="200"`) {
		t.Error("dimensions not honored")
	}
}

func TestTimeSeriesSVG_TooShort(t *testing.T) {
	tr := record.NewTrajectory()
	tr.Record(hybrid.Sample{T: 0, Y: hybrid.State{1}})
	if svg := TimeSeriesSVG(tr, 0, 400, 200, "#fff"); svg != "" {
		t.Error("a one-sample run has nothing to plot")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 4)
	c.Set(0, 0)
	c.Set(5, 10)

	svg := CanvasToSVG(c, 4)
	if !strings.Contains(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete SVG document")
	}
	if strings.Count(svg, "<circle") != 2 {
		t.Errorf("expected 2 dots, got %d", strings.Count(svg, "<circle"))
	}

	if CanvasToSVG(nil, 4) != "" {
		t.Error("nil canvas should render nothing")
	}
}
