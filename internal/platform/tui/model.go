// Package tui provides the terminal views of the generator: board
// rendering, the interactive board preview and the stored level browser.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/triple-tiles/internal/core"
	"github.com/vovakirdan/triple-tiles/internal/occlusion"
	"github.com/vovakirdan/triple-tiles/internal/solver"
)

// autoplayInterval is the delay between tiles played in autoplay.
const autoplayInterval = time.Second / 4

// AutoplayMsg advances autoplay by one tile.
type AutoplayMsg time.Time

func autoplayStep() tea.Cmd {
	return tea.Tick(autoplayInterval, func(t time.Time) tea.Msg {
		return AutoplayMsg(t)
	})
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// PreviewModel is the Bubble Tea model for browsing a board layer by layer
// and replaying a clearing order through a slot bar.
type PreviewModel struct {
	board    *core.Board
	tileSize float64
	title    string
	slots    int
	graph    *occlusion.Graph
	order    []int // clearing order, empty when none was found

	tracker *occlusion.Tracker
	removed []bool
	bar     []int
	step    int
	lost    bool

	layer    int
	maxLayer int
	stacked  bool
	showFree bool
	autoplay bool

	keys     PreviewKeyMap
	help     help.Model
	width    int
	height   int
	status   string
	quitting bool
}

// NewPreviewModel creates a preview. The clearing order comes from the
// reference solver under the given options.
func NewPreviewModel(b *core.Board, tileSize float64, title string, opts solver.Options) PreviewModel {
	g := occlusion.Build(b.Tiles, tileSize)

	m := PreviewModel{
		board:    b,
		tileSize: tileSize,
		title:    title,
		slots:    opts.Slots,
		graph:    g,
		maxLayer: b.MaxLayer(),
		stacked:  true,
		showFree: true,
		keys:     DefaultPreviewKeyMap(),
		help:     help.New(),
	}

	res, err := solver.Solve(b.Tiles, g, opts)
	switch {
	case err != nil:
		m.status = fmt.Sprintf("no clearing order: %v", err)
	case !res.Solved:
		m.status = "no clearing order: board is not solvable"
	default:
		m.order = res.Order
		m.status = fmt.Sprintf("clearing order found (%d nodes, peak %d/%d slots)", res.Nodes, res.Peak, opts.Slots)
	}

	m.reset()
	return m
}

func (m *PreviewModel) reset() {
	m.tracker = occlusion.NewTracker(m.graph)
	m.removed = make([]bool, m.board.Len())
	m.bar = m.bar[:0]
	m.step = 0
	m.lost = false
	m.autoplay = false
}

// Init initializes the model.
func (m PreviewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case AutoplayMsg:
		if !m.autoplay {
			return m, nil
		}
		if !m.playNext() {
			m.autoplay = false
			return m, nil
		}
		return m, autoplayStep()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m PreviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevLayer):
		if m.layer == 0 {
			m.layer = m.maxLayer
		} else if m.layer > 1 {
			m.layer--
		}

	case key.Matches(msg, m.keys.NextLayer):
		if m.layer > 0 && m.layer < m.maxLayer {
			m.layer++
		}

	case key.Matches(msg, m.keys.AllLayers):
		m.layer = 0

	case key.Matches(msg, m.keys.Stack):
		m.stacked = !m.stacked

	case key.Matches(msg, m.keys.Free):
		m.showFree = !m.showFree

	case key.Matches(msg, m.keys.Step):
		m.playNext()

	case key.Matches(msg, m.keys.Autoplay):
		m.autoplay = !m.autoplay
		if m.autoplay {
			return m, autoplayStep()
		}

	case key.Matches(msg, m.keys.Reset):
		m.reset()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// playNext clicks the next tile of the clearing order. It returns false
// when nothing was played.
func (m *PreviewModel) playNext() bool {
	if m.lost || m.step >= len(m.order) {
		return false
	}
	h := m.order[m.step]
	if !m.tracker.Free(h) {
		m.status = fmt.Sprintf("%s is still covered", m.board.Tiles[h].ID)
		m.lost = true
		return false
	}
	m.step++

	m.tracker.Resolve(h, nil)
	m.removed[h] = true
	m.bar = append(m.bar, h)

	typ := m.board.Tiles[h].Type
	same := 0
	for _, b := range m.bar {
		if m.board.Tiles[b].Type == typ {
			same++
		}
	}
	if same == 3 {
		kept := m.bar[:0]
		for _, b := range m.bar {
			if m.board.Tiles[b].Type != typ {
				kept = append(kept, b)
			}
		}
		m.bar = kept
		return true
	}

	if len(m.bar) >= m.slots {
		m.lost = true
		m.status = "slot bar is full"
	}
	return true
}

// Cleared reports whether every tile has been played and the bar is empty.
func (m PreviewModel) Cleared() bool {
	return m.board.Len() > 0 && m.step == m.board.Len() && len(m.bar) == 0
}

// Lost reports whether the replay jammed the slot bar.
func (m PreviewModel) Lost() bool {
	return m.lost
}

// Layer returns the displayed layer, 0 for all layers.
func (m PreviewModel) Layer() int {
	return m.layer
}

func (m PreviewModel) freeFlags() []bool {
	if !m.showFree {
		return nil
	}
	free := make([]bool, m.board.Len())
	for i := range free {
		free[i] = m.tracker.Free(i)
	}
	return free
}

// View renders the current state to a string for display.
func (m PreviewModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	layer := "all layers"
	if m.layer > 0 {
		layer = fmt.Sprintf("layer %d/%d", m.layer, m.maxLayer)
		if m.stacked {
			layer += " (stacked)"
		}
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %d tiles  %s", m.title, m.board.Len(), layer)))
	b.WriteString("\n")

	view := BoardView{
		Layer:   m.layer,
		Stacked: m.stacked,
		Free:    m.freeFlags(),
		Removed: m.removed,
	}
	b.WriteString(boardStyle.Render(RenderBoard(m.board, m.tileSize, view)))
	b.WriteString("\n")

	b.WriteString(m.renderBar())
	b.WriteString("\n")
	b.WriteString(RenderLegend(m.board))
	b.WriteString("\n")

	status := m.status
	switch {
	case m.Cleared():
		status = "board cleared"
	case len(m.order) > 0:
		status = fmt.Sprintf("%s  step %d/%d", status, m.step, len(m.order))
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderBar draws the slot bar with one cell per slot.
func (m PreviewModel) renderBar() string {
	colors := TypeColors(m.board)
	cells := make([]string, m.slots)
	for i := range cells {
		if i < len(m.bar) {
			t := m.board.Tiles[m.bar[i]]
			cells[i] = colorStyles[colors[t.Type]].Render(fmt.Sprintf("[%-4s]", trimType(t.Type)))
		} else {
			cells[i] = colorStyles[ColorDim].Render("[    ]")
		}
	}
	return strings.Join(cells, "")
}

func trimType(s string) string {
	r := []rune(s)
	if len(r) > 4 {
		r = r[:4]
	}
	return string(r)
}

// RunPreview starts the Bubble Tea program for a board.
func RunPreview(b *core.Board, tileSize float64, title string, opts solver.Options) error {
	model := NewPreviewModel(b, tileSize, title, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
