package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vovakirdan/triple-tiles/internal/config"
	"github.com/vovakirdan/triple-tiles/internal/layout"
	"github.com/vovakirdan/triple-tiles/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Table renders rows as a bordered table for non-interactive output.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// CurveTable lists the difficulty curve with the dig probability each level
// is generated with.
func CurveTable(cfg config.Config) string {
	var rows [][]string
	for _, spec := range cfg.Curve.Sorted() {
		rows = append(rows, []string{
			fmt.Sprintf("%d", spec.Level),
			string(spec.Phase),
			fmt.Sprintf("%d", spec.Tiles),
			fmt.Sprintf("%d", spec.Layers),
			spec.Describe(),
			fmt.Sprintf("%.2f", cfg.EngineParams(spec).DigProbability),
		})
	}
	return Table([]string{"Level", "Phase", "Tiles", "Layers", "Pattern", "Dig p"}, rows)
}

// PatternsTable lists the layout pattern catalog.
func PatternsTable() string {
	var rows [][]string
	for _, info := range layout.Catalog() {
		rows = append(rows, []string{
			string(info.Kind),
			info.Title,
			strings.Join(info.Params, ", "),
			info.Description,
		})
	}
	return Table([]string{"Pattern", "Title", "Params", "Shape"}, rows)
}

// LevelsTable lists stored levels.
func LevelsTable(levels []storage.LevelRecord) string {
	rows := make([][]string, 0, len(levels))
	for _, lvl := range levels {
		rows = append(rows, []string{
			fmt.Sprintf("%d", lvl.Ordinal),
			lvl.LevelID,
			string(lvl.Status),
			lvl.Pattern,
			fmt.Sprintf("%d", lvl.TileCount),
			fmt.Sprintf("%d", lvl.DigCount),
			fmt.Sprintf("%d", lvl.Seed),
			lvl.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return Table([]string{"#", "Level", "Status", "Pattern", "Tiles", "Digs", "Seed", "Updated"}, rows)
}
