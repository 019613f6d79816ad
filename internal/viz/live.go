package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/models"
	"github.com/RenardDesNeiges/hopsim/internal/record"
)

const tickInterval = 33 * time.Millisecond

// TickMsg drives playback.
type TickMsg time.Time

// Live replays a recorded trajectory in the terminal at a chosen
// speed. It is a pure viewer; the simulation has already run.
type Live struct {
	tr        *record.Trajectory
	modelName string
	factor    float64 // wall seconds per simulated second

	idx     int
	clock   float64 // simulated seconds since the first sample
	playing bool
	jumps   int
}

func NewLive(tr *record.Trajectory, modelName string, factor float64) Live {
	if factor <= 0 {
		factor = 1
	}
	return Live{tr: tr, modelName: modelName, factor: factor, playing: true}
}

func (m Live) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.idx = 0
			m.clock = 0
			m.jumps = 0
			m.playing = true
		}
		return m, nil

	case TickMsg:
		if m.playing && m.tr.Len() > 0 {
			m.clock += tickInterval.Seconds() / m.factor
			base := m.tr.Samples[0].T
			for m.idx+1 < m.tr.Len() && m.tr.Samples[m.idx+1].T-base <= m.clock {
				m.idx++
				if m.tr.Samples[m.idx].Event {
					m.jumps++
				}
			}
			if m.idx+1 >= m.tr.Len() {
				m.playing = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Live) View() string {
	if m.tr.Len() == 0 {
		return "empty trajectory\n"
	}

	s := m.tr.Samples[m.idx]

	header := headerStyle.Render(fmt.Sprintf("hopsim · %s", m.modelName))
	scene := canvasStyle.Render(Frame(s))

	stats := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("t")+valueStyle.Render(fmt.Sprintf("%.3f s", s.T)),
		statLine(s),
		labelStyle.Render("jumps")+valueStyle.Render(fmt.Sprintf("%d", m.jumps)),
	)

	state := "paused"
	if m.playing {
		state = fmt.Sprintf("playing %.2gx", 1/m.factor)
	}
	help := helpStyle.Render(fmt.Sprintf("[space] pause  [r] restart  [q] quit · %s", state))

	return lipgloss.JoinVertical(lipgloss.Left, header, scene, stats, help)
}

func statLine(s hybrid.Sample) string {
	if len(s.Y) >= models.SlipStateDim && len(s.Z) > models.SlipPhase {
		phase := "flight"
		if s.Z[models.SlipPhase] == models.PhaseStance {
			phase = "stance"
		}
		return labelStyle.Render("state") + valueStyle.Render(fmt.Sprintf(
			"x=%.2f y=%.2f vx=%.2f vy=%.2f · %s",
			s.Y[models.SlipX], s.Y[models.SlipY], s.Y[models.SlipVX], s.Y[models.SlipVY], phase))
	}
	if len(s.Y) >= models.BounceStateDim {
		return labelStyle.Render("state") + valueStyle.Render(fmt.Sprintf(
			"y=%.2f vy=%.2f", s.Y[models.BounceY], s.Y[models.BounceVY]))
	}
	return ""
}
