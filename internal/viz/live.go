package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/rcjetpilot/rotors-simulator/internal/bus"
	"github.com/rcjetpilot/rotors-simulator/internal/experiment"
	"github.com/rcjetpilot/rotors-simulator/internal/servo"
	"github.com/rcjetpilot/rotors-simulator/internal/world"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 600
	frameRate       = 60
	angleNudge      = 0.1
	torqueNudge     = 0.25
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	modeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model runs a servo rig in real time and renders it as a swinging arm.
// Arrow keys inject position and torque commands through the same bus an
// external client would publish on.
type Model struct {
	exp   *experiment.Experiment
	cfg   experiment.Config
	integ world.Integrator

	x       world.State
	t       float64
	running bool

	canvas     *Canvas
	trail      []struct{ x, y int }
	angleHist  []float64
	effortHist []float64

	stepsPerFrame int
	showHelp      bool
	err           error
}

func NewModel(cfg experiment.Config) (*Model, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, err
	}
	integ, err := experiment.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	steps := int(1.0 / (frameRate * cfg.Dt))
	if steps < 1 {
		steps = 1
	}

	return &Model{
		exp:           exp,
		cfg:           cfg,
		integ:         integ,
		x:             world.State{cfg.InitAngle, cfg.InitVelocity},
		running:       true,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		trail:         make([]struct{ x, y int }, 0, 100),
		angleHist:     make([]float64, 0, historyCapacity),
		effortHist:    make([]float64, 0, historyCapacity),
		stepsPerFrame: steps,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.exp.Close()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "left", "h":
			m.nudgePosition(-angleNudge)
		case "right", "l":
			m.nudgePosition(angleNudge)
		case "up", "k":
			m.nudgeTorque(torqueNudge)
		case "down", "j":
			m.nudgeTorque(-torqueNudge)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerFrame; i++ {
				m.step()
			}
			m.record()
		}
		return m, tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// nudgePosition publishes a position command offset from the current
// reference, or from the measured angle if the motor is still idle.
func (m *Model) nudgePosition(delta float64) {
	st := m.exp.Controller.Snapshot()
	ref := m.x[0]
	if st.Received && st.Mode == servo.ModePosition {
		ref = st.PositionRef
	}
	m.exp.Bus.Publish(m.cfg.Servo.PositionCommandTopic(), bus.CommandPosition{MotorAngle: ref + delta})
}

func (m *Model) nudgeTorque(delta float64) {
	st := m.exp.Controller.Snapshot()
	ref := 0.0
	if st.Received && st.Mode == servo.ModeTorque {
		ref = st.TorqueRef
	}
	m.exp.Bus.Publish(m.cfg.Servo.TorqueCommandTopic(), bus.CommandTorque{Torque: ref + delta})
}

func (m *Model) step() {
	u := m.exp.Cycle(m.x, m.t)
	m.x = m.integ.Step(m.exp.Joint, m.x, u, m.t, m.cfg.Dt)
	m.x = m.exp.Joint.Constrain(m.x)
	m.t += m.cfg.Dt
}

func (m *Model) record() {
	st := m.exp.Controller.Snapshot()
	m.angleHist = append(m.angleHist, m.x[0])
	m.effortHist = append(m.effortHist, st.Torque)
	if len(m.angleHist) > historyCapacity {
		m.angleHist = m.angleHist[1:]
	}
	if len(m.effortHist) > historyCapacity {
		m.effortHist = m.effortHist[1:]
	}
}

func (m *Model) reset() {
	exp, err := experiment.New(m.cfg)
	if err != nil {
		m.err = err
		return
	}
	m.exp.Close()
	m.exp = exp
	m.x = world.State{m.cfg.InitAngle, m.cfg.InitVelocity}
	m.t = 0
	m.trail = m.trail[:0]
	m.angleHist = m.angleHist[:0]
	m.effortHist = m.effortHist[:0]
}

// draw renders the arm on the braille canvas: pivot at center, bob at the
// arm tip, travel limits as short ticks, reference direction as a faint ray.
func (m *Model) draw() {
	m.canvas.Clear()
	cw, ch := canvasWidth*2, canvasHeight*4
	cx, cy := cw/2, ch/2
	armLen := float64(ch) * 0.42

	tip := func(theta, scale float64) (int, int) {
		return cx + int(armLen*scale*math.Sin(theta)), cy + int(armLen*scale*math.Cos(theta))
	}

	// Travel limit ticks.
	for _, lim := range []float64{m.cfg.Servo.MinAngle, m.cfg.Servo.MaxAngle} {
		x0, y0 := tip(lim, 1.05)
		x1, y1 := tip(lim, 1.15)
		m.canvas.Line(x0, y0, x1, y1)
	}

	st := m.exp.Controller.Snapshot()
	if st.Received && st.Mode == servo.ModePosition {
		rx, ry := tip(st.PositionRef, 1.0)
		m.canvas.Set(rx, ry)
		m.canvas.Set((cx+rx)/2, (cy+ry)/2)
	}

	bx, by := tip(m.x[0], 1.0)
	m.trail = append(m.trail, struct{ x, y int }{bx, by})
	if len(m.trail) > 100 {
		m.trail = m.trail[1:]
	}
	for _, pt := range m.trail {
		m.canvas.Set(pt.x, pt.y)
	}
	m.canvas.Set(cx, cy)
	m.canvas.Line(cx, cy, bx, by)
	m.canvas.Dot(bx, by)
}

func (m *Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	st := m.exp.Controller.Snapshot()
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	mode := "IDLE"
	if st.Received {
		mode = strings.ToUpper(st.Mode.String())
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.cfg.Servo.MotorModel)) + "\n")
	s.WriteString(status + "\n")
	if m.err != nil {
		s.WriteString(fmt.Sprintf("error: %v\n", m.err))
	}
	if len(m.angleHist) > 1 {
		chart := asciigraph.Plot(m.angleHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Angle"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.effortHist) > 1 {
		chart := asciigraph.Plot(m.effortHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Torque"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Mode") + modeStyle.Render(mode) + "\n")
	s.WriteString(labelStyle.Render("Angle") + valueStyle.Render(fmt.Sprintf("%.3f rad", m.x[0])) + "\n")
	s.WriteString(labelStyle.Render("Velocity") + valueStyle.Render(fmt.Sprintf("%.3f rad/s", m.x[1])) + "\n")
	if st.Received {
		switch st.Mode {
		case servo.ModePosition:
			s.WriteString(labelStyle.Render("Reference") + valueStyle.Render(fmt.Sprintf("%.3f rad", st.PositionRef)) + "\n")
			s.WriteString(labelStyle.Render("Integral") + valueStyle.Render(fmt.Sprintf("%.4f", st.Integral)) + "\n")
		case servo.ModeTorque:
			s.WriteString(labelStyle.Render("Reference") + valueStyle.Render(fmt.Sprintf("%.3f N·m", st.TorqueRef)) + "\n")
		}
	}
	s.WriteString(labelStyle.Render("Torque") + valueStyle.Render(fmt.Sprintf("%.3f N·m", st.Torque)) + "\n")
	s.WriteString(helpStyle.Render("\n─────────────────────\n←/→:Position ↑/↓:Torque\nSP:Pause R:Reset Q:Quit ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════════╗
║             KEYBOARD SHORTCUTS            ║
╠══════════════════════════════════════════╣
║  Left/H   - Position command -0.1 rad    ║
║  Right/L  - Position command +0.1 rad    ║
║  Up/K     - Torque command +0.25 N·m     ║
║  Down/J   - Torque command -0.25 N·m     ║
║  Space    - Pause/Resume simulation      ║
║  R        - Reset simulation             ║
║  Q        - Quit                         ║
║  ?        - Toggle this help             ║
╚══════════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
