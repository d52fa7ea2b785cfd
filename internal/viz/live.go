package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/geom"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	canvasWidth     = 72
	canvasHeight    = 22
	historyCapacity = 400
	maxWarnings     = 3
)

type TickMsg time.Time

// Model drives a simulator from the terminal: the keyboard issues
// play/pause/step/reset commands, each frame feeds elapsed wall time
// into Advance and redraws from a fresh snapshot.
type Model struct {
	sim       *engine.Simulator
	sceneName string
	frameRate int
	timeScale float64

	canvas        *Canvas
	lastFrame     time.Time
	energyHistory []float64
	warnings      []engine.Event
	showHelp      bool
}

func NewModel(sim *engine.Simulator, sceneName string, frameRate int, timeScale float64) *Model {
	// A non-positive rate would zero the tick interval.
	if frameRate < 1 {
		frameRate = 1
	}
	m := &Model{
		sim:           sim,
		sceneName:     sceneName,
		frameRate:     frameRate,
		timeScale:     timeScale,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		energyHistory: make([]float64, 0, historyCapacity),
	}
	sim.AddListener(func(e engine.Event) {
		m.warnings = append(m.warnings, e)
		if len(m.warnings) > maxWarnings {
			m.warnings = m.warnings[len(m.warnings)-maxWarnings:]
		}
	})
	return m
}

func (m *Model) frameInterval() time.Duration {
	return time.Second / time.Duration(m.frameRate)
}

func (m *Model) Init() tea.Cmd {
	m.lastFrame = time.Now()
	return tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.sim.State() == engine.Running {
				m.sim.Pause()
			} else {
				m.sim.Play()
				m.lastFrame = time.Now()
			}
		case "r":
			m.sim.Reset()
			m.energyHistory = m.energyHistory[:0]
			m.warnings = nil
		case "n":
			m.sim.Step(1)
		case "N":
			m.sim.Step(10)
		case "+", "=":
			m.timeScale *= 1.25
		case "-", "_":
			m.timeScale /= 1.25
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		elapsed := now.Sub(m.lastFrame).Seconds()
		m.lastFrame = now
		if m.sim.State() == engine.Running {
			m.sim.Advance(elapsed * m.timeScale)
		}
		d := m.sim.Diagnostics()
		m.energyHistory = append(m.energyHistory, d.Kinetic+d.Elastic)
		if len(m.energyHistory) > historyCapacity {
			m.energyHistory = m.energyHistory[1:]
		}
		return m, tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) View() string {
	snap := m.sim.Snapshot()
	m.draw(snap)

	left := canvasStyle.Render(m.canvas.String())
	right := statsStyle.Render(m.stats(snap))
	out := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	if m.showHelp {
		out += helpStyle.Render("\nspace play/pause  n step  N step x10  r reset  +/- speed  q quit")
	}
	return out
}

// draw renders every object from the snapshot. The viewport frames the
// whole scene with a margin so nothing clips as objects move.
func (m *Model) draw(snap []engine.ObjectState) {
	m.canvas.Clear()

	min, max := geom.V(-5, -1), geom.V(5, 7)
	for _, st := range snap {
		ext := objectExtent(st)
		min = geom.V(minFloat(min.X, ext.Min.X), minFloat(min.Y, ext.Min.Y))
		max = geom.V(maxFloat(max.X, ext.Max.X), maxFloat(max.Y, ext.Max.Y))
	}
	margin := geom.V(1, 1)
	m.canvas.SetViewport(min.Sub(margin), max.Add(margin))

	cfg := m.sim.Config()
	if cfg.GroundEnabled {
		m.canvas.Line(geom.V(min.X-1, cfg.GroundY), geom.V(max.X+1, cfg.GroundY))
	}

	for _, st := range snap {
		switch st.Kind {
		case scene.KindBox:
			half := geom.V(st.HalfW, st.HalfH)
			corners := []geom.Vec{
				{X: -half.X, Y: -half.Y}, {X: half.X, Y: -half.Y},
				{X: half.X, Y: half.Y}, {X: -half.X, Y: half.Y},
			}
			pts := make([]geom.Vec, 4)
			for i, c := range corners {
				pts[i] = st.Pos.Add(c.Rotate(st.Angle))
			}
			m.canvas.Poly(pts...)
		case scene.KindBall:
			m.canvas.Circle(st.Pos, st.Radius)
		case scene.KindRamp:
			m.canvas.Line(st.A, st.B)
			// base and back of the wedge
			base := geom.V(st.B.X, st.A.Y)
			m.canvas.Line(st.A, base)
			m.canvas.Line(base, st.B)
		case scene.KindSpring:
			m.canvas.Zigzag(st.A, st.B, 8, 0.18)
		case scene.KindRope:
			if st.Taut {
				m.canvas.Line(st.A, st.B)
			} else {
				// sag a slack rope through a midpoint below the chord
				mid := st.A.Lerp(st.B, 0.5).Sub(geom.V(0, 0.3))
				m.canvas.Line(st.A, mid)
				m.canvas.Line(mid, st.B)
			}
		case scene.KindPinJoint:
			m.canvas.Line(st.A, st.Pos)
			m.canvas.Line(st.Pos, st.B)
			m.canvas.Circle(st.Pos, 0.08)
		}
	}
}

func (m *Model) stats(snap []engine.ObjectState) string {
	d := m.sim.Diagnostics()

	var b strings.Builder
	b.WriteString(headerStyle.Render("physlab / " + m.sceneName))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("state", stateStyle.Render(d.State.String()))
	row("time", fmt.Sprintf("%8.2f s", d.SimTime))
	row("steps", fmt.Sprintf("%8d", d.StepCount))
	row("objects", fmt.Sprintf("%8d", d.Objects))
	row("kinetic", fmt.Sprintf("%8.3f J", d.Kinetic))
	row("elastic", fmt.Sprintf("%8.3f J", d.Elastic))
	row("speed", fmt.Sprintf("%7.2fx", m.timeScale))

	if len(m.energyHistory) > 2 {
		graph := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6),
			asciigraph.Width(28),
			asciigraph.Caption("mechanical energy"))
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	for _, w := range m.warnings {
		b.WriteString(warningStyle.Render(fmt.Sprintf("! %s", w.Message)) + "\n")
	}
	return b.String()
}

func objectExtent(st engine.ObjectState) geom.AABB {
	switch st.Kind {
	case scene.KindBall:
		r := geom.V(st.Radius, st.Radius)
		return geom.AABB{Min: st.Pos.Sub(r), Max: st.Pos.Add(r)}
	case scene.KindBox:
		h := geom.V(st.HalfW+st.HalfH, st.HalfW+st.HalfH)
		return geom.AABB{Min: st.Pos.Sub(h), Max: st.Pos.Add(h)}
	default:
		bb := geom.AABB{Min: st.A, Max: st.A}
		return bb.Expand(st.B)
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Run starts the live view and blocks until the user quits.
func Run(sim *engine.Simulator, sceneName string, frameRate int, timeScale float64) error {
	p := tea.NewProgram(NewModel(sim, sceneName, frameRate, timeScale))
	_, err := p.Run()
	return err
}
