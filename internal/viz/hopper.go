package viz

import (
	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/models"
)

const (
	frameWidth  = 80
	frameHeight = 20
	metersWide  = 4.0
)

// Frame draws one sample of a run as a braille scene: ground plane,
// body, and the stance leg when the model exposes one. The viewport
// follows the body horizontally.
func Frame(s hybrid.Sample) string {
	return FrameCanvas(s).String()
}

// FrameCanvas renders the scene onto a fresh canvas. Callers that want
// the raw cells, like the SVG exporter, use this instead of Frame.
func FrameCanvas(s hybrid.Sample) *Canvas {
	c := NewCanvas(frameWidth, frameHeight)

	pxW := frameWidth * 2
	pxH := frameHeight * 4
	scale := float64(pxW) / metersWide
	groundY := pxH - 5

	toScreen := func(wx, wy, xLeft float64) (int, int) {
		return int((wx - xLeft) * scale), groundY - int(wy*scale)
	}

	if len(s.Y) == 0 {
		return c
	}

	// Bouncer states are [height, velocity]; SLIP states carry a
	// horizontal position first.
	var hipX, hipY float64
	if len(s.Y) >= models.SlipStateDim {
		hipX, hipY = s.Y[models.SlipX], s.Y[models.SlipY]
	} else {
		hipX, hipY = 0, s.Y[models.BounceY]
	}

	xLeft := hipX - metersWide/2

	c.DrawHLine(groundY)

	bx, by := toScreen(hipX, hipY, xLeft)
	c.DrawCircle(bx, by, 3)

	if len(s.Y) >= models.SlipStateDim &&
		len(s.Z) > models.SlipFootX &&
		s.Z[models.SlipPhase] == models.PhaseStance {
		fx, fy := toScreen(s.Z[models.SlipFootX], 0, xLeft)
		c.DrawLine(bx, by+3, fx, fy)
	}

	return c
}
