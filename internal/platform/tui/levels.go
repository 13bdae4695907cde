package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/triple-tiles/internal/storage"
)

// LevelStore is the part of the level store the browser needs.
type LevelStore interface {
	ListLevels(ctx context.Context, status storage.Status) ([]storage.LevelRecord, error)
	SetStatus(ctx context.Context, levelID string, status storage.Status) error
}

// statusFilters cycle with the filter key; "" shows every level.
var statusFilters = []storage.Status{"", storage.StatusDraft, storage.StatusPublished}

// LevelsKeyMap defines the key bindings for the level browser.
type LevelsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Publish key.Binding
	Filter  key.Binding
	Reload  key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k LevelsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Publish, k.Filter, k.Reload, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k LevelsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultLevelsKeyMap returns default key bindings.
func DefaultLevelsKeyMap() LevelsKeyMap {
	return LevelsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Publish: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p", "publish/unpublish"),
		),
		Filter: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "filter status"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// LevelsModel is the Bubble Tea model for browsing stored levels.
type LevelsModel struct {
	store    LevelStore
	levels   []storage.LevelRecord
	filter   int
	table    table.Model
	help     help.Model
	keys     LevelsKeyMap
	width    int
	height   int
	err      error
	quitting bool
}

// NewLevelsModel creates a level browser and loads the first page.
func NewLevelsModel(store LevelStore, width, height int) LevelsModel {
	m := LevelsModel{
		store:  store,
		keys:   DefaultLevelsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *LevelsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Level", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Pattern", Width: 12},
		{Title: "Tiles", Width: 6},
		{Title: "Digs", Width: 5},
		{Title: "Seed", Width: 20},
		{Title: "Updated", Width: 13},
	}

	height := m.height - 8 // Leave room for header, help, and margins
	if height < 5 {
		height = 5
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads the levels matching the current filter.
func (m *LevelsModel) load() {
	m.levels, m.err = m.store.ListLevels(context.Background(), statusFilters[m.filter])

	rows := make([]table.Row, len(m.levels))
	for i, lvl := range m.levels {
		rows[i] = table.Row{
			fmt.Sprintf("%d", lvl.Ordinal),
			lvl.LevelID,
			string(lvl.Status),
			lvl.Pattern,
			fmt.Sprintf("%d", lvl.TileCount),
			fmt.Sprintf("%d", lvl.DigCount),
			fmt.Sprintf("%d", lvl.Seed),
			lvl.UpdatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
}

// togglePublish flips the status of the selected level.
func (m *LevelsModel) togglePublish() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.levels) {
		return
	}
	lvl := m.levels[i]
	next := storage.StatusPublished
	if lvl.Status == storage.StatusPublished {
		next = storage.StatusDraft
	}
	if err := m.store.SetStatus(context.Background(), lvl.LevelID, next); err != nil {
		m.err = err
		return
	}
	m.load()
	if i < len(m.levels) {
		m.table.SetCursor(i)
	}
}

// Init initializes the level browser.
func (m LevelsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the level browser.
func (m LevelsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Publish):
			m.togglePublish()
			return m, nil

		case key.Matches(msg, m.keys.Filter):
			m.filter = (m.filter + 1) % len(statusFilters)
			m.load()
			m.table.GotoTop()
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.load()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Levels returns the rows currently listed.
func (m LevelsModel) Levels() []storage.LevelRecord {
	return m.levels
}

// View renders the level browser.
func (m LevelsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	filter := "all"
	if f := statusFilters[m.filter]; f != "" {
		filter = string(f)
	}
	b.WriteString(titleStyle.MarginBottom(1).Render(fmt.Sprintf("LEVELS - %s (%d)", filter, len(m.levels))))
	b.WriteString("\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.levels) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No levels stored yet.\nRun `tilegen seed` to generate the curve.")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// RunLevels runs the level browser.
func RunLevels(store LevelStore, width, height int) error {
	p := tea.NewProgram(
		NewLevelsModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
