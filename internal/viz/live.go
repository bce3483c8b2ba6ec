package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/marblejar/internal/jar"
	"github.com/san-kum/marblejar/internal/marble"
	"github.com/san-kum/marblejar/internal/metrics"
)

const (
	defaultWidth  = 40
	defaultHeight = 24
	statsWidth    = 50
)

type TickMsg time.Time

// Model is the interactive jar. Each tick advances the session by one frame and
// schedules the next tick only while the session is mounted.
type Model struct {
	session       *jar.Session
	theme         Theme
	interval      time.Duration
	width, height int
	canvas        *Canvas
	status        string
	showHelp      bool
	quitting      bool

	// running figures, fed one record per drop
	week *metrics.MovingAverage
	ema  *metrics.ExponentialAverage
	// landing is the id of the last dropped marble until it comes to rest
	landing uint64
}

func NewModel(s *jar.Session, theme Theme) Model {
	fps := s.Config().Render.FPS
	if fps <= 0 {
		fps = 60
	}
	cfg := s.Config()
	m := Model{
		session:  s,
		theme:    theme,
		interval: time.Second / time.Duration(fps),
		width:    defaultWidth,
		height:   defaultHeight,
		canvas:   NewCanvas(defaultWidth, defaultHeight),
		week:     metrics.NewMovingAverage(cfg.Stats.Window),
		ema:      metrics.NewExponentialAverage(cfg.Stats.Alpha),
	}
	metrics.Collect(s.Records(), m.week, m.ema)
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	if !m.session.Mounted() {
		return nil
	}
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(10, msg.Width-statsWidth-4)
		m.height = max(6, msg.Height-2)
		m.canvas = NewCanvas(m.width, m.height)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "g":
			m.drop(marble.Green)
		case "r":
			m.drop(marble.Red)
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.quitting || !m.session.Mounted() {
			return m, nil
		}
		m.session.Advance()
		m.watchLanding()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) drop(c marble.Color) {
	if !m.session.CanDrop() {
		m.status = "next marble " + m.session.NextDrop().Format("Mon 15:04")
		return
	}
	dropped, err := m.session.Append(c)
	if err != nil {
		if errors.Is(err, jar.ErrNotMounted) {
			m.status = "jar is closed"
		} else {
			m.status = err.Error()
		}
		return
	}
	rec := dropped.Record()
	m.week.Observe(rec)
	m.ema.Observe(rec)
	m.landing = dropped.ID
	m.status = "dropped a " + c.String() + " marble"
}

func (m *Model) watchLanding() {
	if m.landing == 0 {
		return
	}
	mb, ok := m.session.Loop().Lookup(m.landing)
	if !ok || !mb.Visual.Ready || !mb.Resting() {
		return
	}
	m.status = fmt.Sprintf("marble #%d came to rest", mb.ID)
	m.landing = 0
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cfg := m.session.Config()
	m.canvas.Clear()
	proj := Fit(m.canvas.DotsWide(), m.canvas.DotsHigh(), cfg.Playfield.Width, cfg.Playfield.Height)
	DrawJar(m.canvas, proj, m.session.Marbles(), cfg.Marble.Size)
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme.CellStyle))

	stats := m.session.Stats()
	var s strings.Builder
	s.WriteString(headerStyle.Render("MARBLE JAR") + "\n")
	if m.session.CanDrop() {
		s.WriteString(StatusReady.Render("READY TO DROP") + "\n\n")
	} else {
		s.WriteString(StatusWaiting.Render("NEXT "+strings.ToUpper(m.session.NextDrop().Format("Mon 15:04"))) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Good") + valueStyle.Render(fmt.Sprintf("%d%%", stats.PercentGood)) + "\n")
	s.WriteString(ProgressBar(float64(stats.PercentGood)/100, 30, m.theme) + "\n\n")
	s.WriteString(labelStyle.Render("Marbles") + valueStyle.Render(fmt.Sprintf("%d (%d green)", stats.Total, stats.Good)) + "\n")
	if stats.Total > 0 {
		s.WriteString(labelStyle.Render("Last drop") + valueStyle.Render(stats.LastDrop.Format("2006-01-02 15:04")) + "\n")
		s.WriteString(labelStyle.Render("Week") + valueStyle.Render(fmt.Sprintf("%.0f%%", m.week.Value()*100)) + "\n")
		s.WriteString(labelStyle.Render("Trend") + valueStyle.Render(fmt.Sprintf("%.0f%%", m.ema.Value()*100)) + "\n")
	}
	if len(stats.EMA) > 1 {
		s.WriteString(graphStyle.Render(EMAChart(stats.EMA, 30, 4)) + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(30) + "\nG:Green R:Red T:Theme\n?:Help  Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  G        - Drop a green marble      ║
║  R        - Drop a red marble        ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// EMAChart plots the moving average of good days as a percentage.
func EMAChart(ema []float64, width, height int) string {
	pct := make([]float64, len(ema))
	for i, v := range ema {
		pct[i] = v * 100
	}
	return asciigraph.Plot(pct,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption("% good (EMA)"))
}

// Run starts the interactive jar on the alternate screen and blocks until it quits.
func Run(s *jar.Session, theme Theme) error {
	_, err := tea.NewProgram(NewModel(s, theme), tea.WithAltScreen()).Run()
	return err
}
