package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/diffgen/internal/analysis"
	"github.com/san-kum/diffgen/internal/ic"
	"github.com/san-kum/diffgen/internal/pipeline"
	"github.com/san-kum/diffgen/internal/solver"
)

const (
	marginStep   = 0.05
	hotspotValue = 1
	historyLen   = 120
	headerRows   = 1
)

type Options struct {
	N     int
	Alpha float32
	Mu    []float32
	SRun  float32
	Seed  uint64

	// Variant fixes the initial-condition family; empty samples one per
	// reset.
	Variant string
	Theme   string
	Tick    time.Duration
}

// StepInfo describes the last macro step.
type StepInfo struct {
	K       int
	Tau     float32
	Elapsed time.Duration
}

type Model struct {
	s       *solver.Solver
	opts    Options
	fixed   *ic.Variant
	variant ic.Variant
	resets  int
	muIdx   int
	theme   int
	paused  bool
	steps   int
	last    StepInfo
	mass    []float64
	width   int
	height  int
}

type tickMsg time.Time

func NewModel(opts Options) (Model, error) {
	if len(opts.Mu) == 0 {
		return Model{}, fmt.Errorf("viz: empty mu set")
	}
	if opts.Tick <= 0 {
		opts.Tick = 33 * time.Millisecond
	}
	s, err := solver.New(opts.N)
	if err != nil {
		return Model{}, err
	}
	s.SetAlpha(opts.Alpha)
	s.SetSRun(opts.SRun)

	m := Model{s: s, opts: opts, theme: themeIndex(opts.Theme)}
	if opts.Variant != "" {
		v, err := ic.ParseVariant(opts.Variant)
		if err != nil {
			return Model{}, err
		}
		m.fixed = &v
	}
	m.muIdx = len(opts.Mu) / 2
	s.SetMu(opts.Mu[m.muIdx])
	m.reset()
	return m, nil
}

// Run opens the viewer on the alternate screen and blocks until quit.
func Run(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// reset loads a fresh initial condition. Every reset draws from its own
// trajectory seed so a session replays for a given base seed.
func (m *Model) reset() {
	r := pipeline.NewRand(pipeline.TrajectorySeed(m.opts.Seed, m.resets))
	m.resets++
	m.variant = ic.SampleVariant(r)
	if m.fixed != nil {
		m.variant = *m.fixed
	}
	field := ic.Generate(r, m.opts.N, m.variant)

	m.s.Clear()
	n := m.opts.N
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.s.SetCell(x, y, field[y*n+x])
		}
	}
	m.s.FinalizeIC()
	m.steps = 0
	m.last = StepInfo{}
	m.mass = append(m.mass[:0], analysis.Mass(m.s.Field()))
}

func (m *Model) step() {
	start := time.Now()
	k, tau := m.s.StepTauRun()
	m.last = StepInfo{K: k, Tau: tau, Elapsed: time.Since(start)}
	m.steps++
	m.mass = append(m.mass, analysis.Mass(m.s.Field()))
	if len(m.mass) > historyLen {
		m.mass = m.mass[len(m.mass)-historyLen:]
	}
}

func (m Model) Solver() *solver.Solver { return m.s }
func (m Model) Paused() bool           { return m.paused }
func (m Model) Steps() int             { return m.steps }
func (m Model) Last() StepInfo         { return m.last }
func (m Model) Variant() ic.Variant    { return m.variant }

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick(m.opts.Tick) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if x, y, ok := cellAt(msg.X, msg.Y-headerRows, m.opts.N); ok {
				// A half-block covers two grid rows; paint both.
				m.s.AddHotspot(x, y, hotspotValue)
				m.s.AddHotspot(x, y+1, hotspotValue)
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		if !m.paused {
			m.step()
		}
		return m, tick(m.opts.Tick)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
	case "n":
		m.muIdx = min(m.muIdx+1, len(m.opts.Mu)-1)
		m.s.SetMu(m.opts.Mu[m.muIdx])
	case "p":
		m.muIdx = max(m.muIdx-1, 0)
		m.s.SetMu(m.opts.Mu[m.muIdx])
	case "+", "=":
		m.s.SetSRun(m.s.SRun() + marginStep)
	case "-", "_":
		m.s.SetSRun(m.s.SRun() - marginStep)
	case "s":
		if m.paused {
			m.step()
		}
	case "r":
		m.reset()
	case "c":
		m.s.Clear()
		m.mass = append(m.mass[:0], 0)
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	}
	return m, nil
}

func (m Model) View() string {
	t := Themes[m.theme]
	title := lipgloss.NewStyle().Bold(true).Foreground(t.Text).
		Render(fmt.Sprintf("diffusion %dx%d  %s", m.opts.N, m.opts.N, m.variant))

	status := StatusRunning.Render("running")
	if m.paused {
		status = StatusPaused.Render("paused")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(Heatmap(m.s.Field(), m.opts.N, t))
	b.WriteByte('\n')

	metrics := []string{
		status,
		t.metric("step", fmt.Sprint(m.steps)),
		t.metric("mu", fmt.Sprintf("%g", m.s.Mu())),
		t.metric("alpha", fmt.Sprintf("%.3g", m.s.Alpha())),
		t.metric("s_run", fmt.Sprintf("%.2f", m.s.SRun())),
		t.metric("k", fmt.Sprint(m.last.K)),
		t.metric("tau", fmt.Sprintf("%.3g", m.last.Tau)),
		t.metric("compute", m.last.Elapsed.Round(time.Microsecond).String()),
	}
	b.WriteString(Panel.Render(strings.Join(metrics, "  ")))
	b.WriteByte('\n')
	b.WriteString(MetricLabel.Render("mass ") + Sparkline(m.mass, m.opts.N))
	b.WriteByte('\n')
	b.WriteString(KeyHint.Render("space pause · s step · n/p mu · +/- s_run · r reset · c clear · t theme · click hotspot · q quit"))
	return b.String()
}
