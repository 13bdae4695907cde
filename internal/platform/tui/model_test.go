package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/solver"
)

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m PreviewModel, keys ...string) PreviewModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyPress(k))
		pm, ok := next.(PreviewModel)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
		m = pm
	}
	return m
}

// stackedBoard has one coin covering another and a third coin beside them.
func stackedBoard() *core.Board {
	return &core.Board{Tiles: []core.Tile{
		{ID: "tile-0", Type: "coin", X: 100, Y: 100, Layer: 2},
		{ID: "tile-1", Type: "coin", X: 100, Y: 100, Layer: 1},
		{ID: "tile-2", Type: "coin", X: 300, Y: 100, Layer: 1},
	}}
}

func TestPreviewPlaysClearingOrder(t *testing.T) {
	m := NewPreviewModel(stackedBoard(), 80, "test", solver.DefaultOptions())
	if len(m.order) != 3 {
		t.Fatalf("expected a clearing order, status %q", m.status)
	}

	m = press(t, m, "n", "n")
	if m.Cleared() {
		t.Fatal("cleared before the last tile")
	}
	if len(m.bar) != 2 {
		t.Errorf("bar holds %d tiles, want 2", len(m.bar))
	}

	m = press(t, m, "n")
	if !m.Cleared() || m.Lost() {
		t.Errorf("expected cleared board, bar %v lost %v", m.bar, m.Lost())
	}
	if !strings.Contains(m.View(), "board cleared") {
		t.Error("view does not report the cleared board")
	}

	// Stepping past the end is a no-op.
	m = press(t, m, "n")
	if m.step != 3 {
		t.Errorf("step = %d", m.step)
	}

	m = press(t, m, "r")
	if m.step != 0 || len(m.bar) != 0 || m.removed[0] {
		t.Error("reset did not restore the board")
	}
}

func TestPreviewLayerNavigation(t *testing.T) {
	m := NewPreviewModel(stackedBoard(), 80, "test", solver.DefaultOptions())
	if m.Layer() != 0 {
		t.Fatalf("initial layer = %d, want all", m.Layer())
	}

	m = press(t, m, "h")
	if m.Layer() != 2 {
		t.Errorf("layer down from all = %d, want top layer", m.Layer())
	}
	m = press(t, m, "h", "h")
	if m.Layer() != 1 {
		t.Errorf("layer clamps at 1, got %d", m.Layer())
	}
	m = press(t, m, "l", "l")
	if m.Layer() != 2 {
		t.Errorf("layer clamps at top, got %d", m.Layer())
	}
	m = press(t, m, "a")
	if m.Layer() != 0 {
		t.Errorf("all layers key gave %d", m.Layer())
	}
}

func TestPreviewReportsUnsolvableBoard(t *testing.T) {
	opts := solver.DefaultOptions()
	opts.Slots = 2
	m := NewPreviewModel(stackedBoard(), 80, "test", opts)
	if len(m.order) != 0 {
		t.Fatal("unexpected clearing order with two slots")
	}
	if !strings.Contains(m.status, "not solvable") {
		t.Errorf("status = %q", m.status)
	}
	m = press(t, m, "n")
	if m.step != 0 {
		t.Error("stepping without an order should do nothing")
	}
}

func TestPreviewAutoplayTicks(t *testing.T) {
	m := NewPreviewModel(stackedBoard(), 80, "test", solver.DefaultOptions())

	next, cmd := m.Update(keyPress(" "))
	m = next.(PreviewModel)
	if !m.autoplay || cmd == nil {
		t.Fatal("space should start autoplay")
	}

	for i := 0; i < 4; i++ {
		next, _ = m.Update(AutoplayMsg{})
		m = next.(PreviewModel)
	}
	if !m.Cleared() {
		t.Error("autoplay did not clear the board")
	}
	if m.autoplay {
		t.Error("autoplay should stop at the end of the order")
	}
}

func TestPreviewQuit(t *testing.T) {
	m := NewPreviewModel(stackedBoard(), 80, "test", solver.DefaultOptions())
	next, cmd := m.Update(keyPress("q"))
	if cmd == nil || next.(PreviewModel).View() != "" {
		t.Error("q should quit and blank the view")
	}
}
