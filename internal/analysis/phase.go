package analysis

import (
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/record"
	"github.com/RenardDesNeiges/hopsim/internal/viz"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []struct{ X, Y float64 }
}

// PhasePortrait projects a recorded trajectory onto two state
// components.
func PhasePortrait(tr *record.Trajectory, xIdx, yIdx int) *PhasePortrait2D {
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]struct{ X, Y float64 }, 0, tr.Len()),
	}
	for _, s := range tr.Samples {
		if xIdx >= len(s.Y) || yIdx >= len(s.Y) {
			return nil
		}
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: s.Y[xIdx],
			Y: s.Y[yIdx],
		})
	}
	return portrait
}

// Render draws the portrait on a braille canvas of width x height
// terminal cells, one sub-pixel dot per sample. Axes are drawn where
// they cross the visible range.
func (p *PhasePortrait2D) Render(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX = maxX - minX
	rangeY *= 1.2

	c := viz.NewCanvas(width, height)
	w := width*2 - 1
	h := height*4 - 1

	if minY <= 0 && minY+rangeY >= 0 {
		c.DrawHLine(h - int(math.Round(-minY/rangeY*float64(h))))
	}
	if minX <= 0 && maxX >= 0 {
		c.DrawVLine(int(math.Round(-minX / rangeX * float64(w))))
	}

	for _, pt := range p.Points {
		px := int(math.Round((pt.X - minX) / rangeX * float64(w)))
		py := h - int(math.Round((pt.Y-minY)/rangeY*float64(h)))
		c.Set(px, py)
	}

	return c.String()
}
