package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// colorStyles maps Color to lipgloss styles.
var colorStyles = map[Color]lipgloss.Style{
	ColorDefault:       lipgloss.NewStyle(),
	ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	ColorDim:           lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			// Collect consecutive cells with same color
			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			// Apply style to the run
			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// BoardView selects what part of a board is drawn.
type BoardView struct {
	Layer   int    // 0 draws every layer
	Stacked bool   // with Layer > 0, also draw the layers below it
	Free    []bool // optional per-tile free flags; blocked tiles are dimmed
	Removed []bool // optional per-tile flags for tiles already taken
	CellW   int    // terminal columns per tile (default 6)
	CellH   int    // terminal rows per tile (default 3)
}

func (v BoardView) cellSize() (int, int) {
	w, h := v.CellW, v.CellH
	if w < 3 {
		w = 6
	}
	if h < 3 {
		h = 3
	}
	return w, h
}

func (v BoardView) shows(i int, t core.Tile) bool {
	if v.Removed != nil && i < len(v.Removed) && v.Removed[i] {
		return false
	}
	switch {
	case v.Layer <= 0:
		return true
	case v.Stacked:
		return t.Layer <= v.Layer
	default:
		return t.Layer == v.Layer
	}
}

// TypeColors assigns a display color to every tile type on the board.
// Types are ordered by name so the mapping is stable across layers.
func TypeColors(b *core.Board) map[string]Color {
	var types []string
	for t := range b.CountByType() {
		if t != "" {
			types = append(types, t)
		}
	}
	sort.Strings(types)

	colors := make(map[string]Color, len(types))
	for i, t := range types {
		colors[t] = paletteColors[i%len(paletteColors)]
	}
	return colors
}

// TileLabel is the short text drawn inside a tile.
func TileLabel(t core.Tile) string {
	name := []rune(t.Type)
	if len(name) == 0 {
		name = []rune("??")
	}
	if len(name) > 2 {
		name = name[:2]
	}
	return fmt.Sprintf("%s%d", string(name), t.Layer)
}

// Rasterize draws the board into a screen sized to its bounding box.
// Tiles are painted bottom layer first so upper tiles cover lower ones.
func Rasterize(b *core.Board, tileSize float64, v BoardView) *Screen {
	cw, ch := v.cellSize()
	bounds, ok := core.Bounds(b.Tiles)
	if !ok || tileSize <= 0 {
		return NewScreen(0, 0)
	}

	toCol := func(x float64) int { return int(math.Round((x - bounds.MinX) * float64(cw) / tileSize)) }
	toRow := func(y float64) int { return int(math.Round((y - bounds.MinY) * float64(ch) / tileSize)) }

	s := NewScreen(toCol(bounds.MaxX)+cw, toRow(bounds.MaxY)+ch)

	order := make([]int, len(b.Tiles))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, c int) bool {
		return b.Tiles[order[a]].Layer < b.Tiles[order[c]].Layer
	})

	colors := TypeColors(b)
	for _, i := range order {
		t := b.Tiles[i]
		if !v.shows(i, t) {
			continue
		}

		border := ColorGray
		label := colors[t.Type]
		if v.Free != nil && i < len(v.Free) {
			if v.Free[i] {
				border = ColorWhite
			} else {
				border, label = ColorDim, ColorDim
			}
		}

		x, y := toCol(t.X), toRow(t.Y)
		s.FillRect(x, y, cw, ch, ' ', ColorDefault)
		s.DrawBox(x, y, cw, ch, border)
		s.DrawText(x+1, y+ch/2, TileLabel(t), label)
	}
	return s
}

// RenderBoard rasterizes and styles a board for the terminal.
func RenderBoard(b *core.Board, tileSize float64, v BoardView) string {
	return RenderScreen(Rasterize(b, tileSize, v))
}

// RenderLegend lists the tile types with their colors and counts.
func RenderLegend(b *core.Board) string {
	colors := TypeColors(b)
	counts := b.CountByType()

	types := make([]string, 0, len(colors))
	for t := range colors {
		types = append(types, t)
	}
	sort.Strings(types)

	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, colorStyles[colors[t]].Render(fmt.Sprintf("%s×%d", t, counts[t])))
	}
	if n := counts[""]; n > 0 {
		parts = append(parts, colorStyles[ColorGray].Render(fmt.Sprintf("untyped×%d", n)))
	}
	return strings.Join(parts, "  ")
}
