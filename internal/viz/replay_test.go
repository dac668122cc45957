package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func sampleRun() Run {
	return Run{
		ID:     "4box_1",
		Title:  "4box table:A2",
		Boxes:  []string{"atmosphere", "surface_water"},
		Times:  []float64{0, 1, 2, 3},
		States: [][]float64{{10, 5}, {11, 5}, {12, 6}, {13, 6}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Replay, msgs ...tea.Msg) Replay {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Replay)
	}
	return m
}

func TestReplayTicksAdvance(t *testing.T) {
	m := send(NewReplay(sampleRun()), TickMsg{}, TickMsg{})
	if m.PlayHead() != 2 {
		t.Errorf("expected play head 2, got %d", m.PlayHead())
	}

	m = send(m, TickMsg{}, TickMsg{}, TickMsg{})
	if m.PlayHead() != 3 {
		t.Errorf("play head should stop at the last sample, got %d", m.PlayHead())
	}
}

func TestReplayScrub(t *testing.T) {
	m := send(NewReplay(sampleRun()), key("]"), key("]"), key("["))
	if m.PlayHead() != 1 {
		t.Errorf("expected play head 1, got %d", m.PlayHead())
	}

	// paused after scrubbing, ticks do not move
	m = send(m, TickMsg{})
	if m.PlayHead() != 1 {
		t.Errorf("expected paused replay, got play head %d", m.PlayHead())
	}

	m = send(m, key("["), key("["), key("["))
	if m.PlayHead() != 0 {
		t.Errorf("play head should clamp at 0, got %d", m.PlayHead())
	}
}

func TestReplaySpeedAndFocus(t *testing.T) {
	m := send(NewReplay(sampleRun()), key(">"), key(">"))
	if m.Speed() != 4 {
		t.Errorf("expected speed 4, got %d", m.Speed())
	}
	m = send(m, key("<"), key("<"), key("<"))
	if m.Speed() != 1 {
		t.Errorf("speed should not drop below 1, got %d", m.Speed())
	}

	m = send(m, key("tab"))
	if m.Focus() != 1 {
		t.Errorf("expected focus 1, got %d", m.Focus())
	}
	m = send(m, key("tab"))
	if m.Focus() != 0 {
		t.Errorf("focus should wrap, got %d", m.Focus())
	}
}

func TestReplayView(t *testing.T) {
	m := send(NewReplay(sampleRun()), key("]"), key("]"))
	view := m.View()
	for _, want := range []string{"atmosphere", "surface_water", "total", "PAUSED"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	empty := NewReplay(Run{Title: "empty"})
	if !strings.Contains(empty.View(), "no samples") {
		t.Error("expected empty run message")
	}
}

func TestReplayQuit(t *testing.T) {
	_, cmd := NewReplay(sampleRun()).Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestChart(t *testing.T) {
	if Chart(nil, 0, 0, "") != "" {
		t.Error("expected empty chart for no data")
	}
	out := Chart([]float64{1, 2, 3, 2, 1}, 20, 5, "atmosphere")
	if !strings.Contains(out, "atmosphere") {
		t.Error("chart missing caption")
	}
	if Overlay([][]float64{{1, 2}, {2, 1}}, 20, 5, "") == "" {
		t.Error("expected overlay output")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme("ocean")
	NextTheme()
	if CurrentTheme.Name != "forest" {
		t.Errorf("expected forest, got %s", CurrentTheme.Name)
	}
	SetTheme("nope")
	if CurrentTheme.Name != "ocean" {
		t.Errorf("unknown theme should fall back to ocean, got %s", CurrentTheme.Name)
	}
}
