package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	tickRate = time.Second / 30
	maxSpeed = 64
)

type TickMsg time.Time

// Run is what Replay needs from a stored run.
type Run struct {
	ID     string
	Title  string
	Boxes  []string
	Times  []float64
	States [][]float64
}

// Replay steps through a stored trajectory, one sample per tick at speed 1.
type Replay struct {
	run      Run
	playHead int
	speed    int
	running  bool
	focus    int
	showHelp bool
}

func NewReplay(run Run) Replay {
	return Replay{run: run, speed: 1, running: true}
}

func (m Replay) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "[":
			m.running = false
			m.scrub(-1)
		case "]":
			m.running = false
			m.scrub(1)
		case "<", ",":
			m.speed = max(m.speed/2, 1)
		case ">", ".":
			m.speed = min(m.speed*2, maxSpeed)
		case "tab":
			if len(m.run.Boxes) > 0 {
				m.focus = (m.focus + 1) % len(m.run.Boxes)
			}
		case "r":
			m.playHead = 0
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.scrub(m.speed)
			if m.playHead == m.last() {
				m.running = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Replay) scrub(dir int) {
	m.playHead = max(0, min(m.playHead+dir, m.last()))
}

func (m Replay) last() int {
	return max(len(m.run.States)-1, 0)
}

// PlayHead is the index of the sample on screen.
func (m Replay) PlayHead() int { return m.playHead }

// Focus is the index of the charted box.
func (m Replay) Focus() int { return m.focus }

func (m Replay) Speed() int { return m.speed }

func (m Replay) View() string {
	if len(m.run.States) == 0 {
		return header().Render(m.run.Title) + "\nno samples\n"
	}

	var s strings.Builder
	s.WriteString(header().Render(strings.ToUpper(m.run.Title)) + "\n")

	status := "PLAYING"
	if !m.running {
		status = "PAUSED"
	}
	t := m.run.Times[m.playHead]
	s.WriteString(fmt.Sprintf("%s  x%d  t=%.2f  [%d/%d]\n", status, m.speed, t, m.playHead, m.last()))
	frac := 1.0
	if m.last() > 0 {
		frac = float64(m.playHead) / float64(m.last())
	}
	s.WriteString(ProgressBar(frac, 40) + "\n\n")

	series := m.column(m.focus)[:m.playHead+1]
	name := fmt.Sprintf("box %d", m.focus)
	if m.focus < len(m.run.Boxes) {
		name = m.run.Boxes[m.focus]
	}
	if len(series) > 1 {
		s.WriteString(Chart(series, 60, 8, name+" (GtC)") + "\n\n")
	}

	state, initial := m.run.States[m.playHead], m.run.States[0]
	var total float64
	for i, v := range state {
		total += v
		box := fmt.Sprintf("box %d", i)
		if i < len(m.run.Boxes) {
			box = m.run.Boxes[i]
		}
		delta := 0.0
		if i < len(initial) {
			delta = v - initial[i]
		}
		line := label().Render(box) + value().Render(fmt.Sprintf("%12.3f  %+10.3f", v, delta))
		if i == m.focus {
			line = selected().Render("> ") + line
		} else {
			line = "  " + line
		}
		s.WriteString(line + "\n")
	}
	s.WriteString("  " + label().Render("total") + value().Render(fmt.Sprintf("%12.3f", total)) + "\n\n")
	s.WriteString(Sparkline(m.column(0), 60) + "\n")

	s.WriteString(hint().Render("SP:Pause [ ]:Step < >:Speed TAB:Box R:Rewind T:Theme ?:Help Q:Quit"))

	view := panel().Render(s.String())
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, helpText, view)
	}
	return view
}

func (m Replay) column(idx int) []float64 {
	out := make([]float64, len(m.run.States))
	for i, s := range m.run.States {
		if idx < len(s) {
			out[i] = s[idx]
		}
	}
	return out
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  [        - Step back one sample     ║
║  ]        - Step forward one sample  ║
║  < >      - Halve/double speed       ║
║  Tab      - Chart the next box       ║
║  R        - Rewind                   ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

// RunReplay blocks until the user quits.
func RunReplay(run Run) error {
	_, err := tea.NewProgram(NewReplay(run), tea.WithAltScreen()).Run()
	return err
}
