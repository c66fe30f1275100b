package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/KaramelBytes/statdeck/internal/dataset"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	badgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
	naStyle     = numStyle.Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Pretty renders tables for a terminal using lipgloss borders and colors.
// Styles degrade to plain text when the output is not a color terminal.
func Pretty(p Page) string {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString(titleStyle.Render(p.Title))
		b.WriteString("\n\n")
	}
	for i, t := range p.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(t.Title))
		b.WriteString(" ")
		b.WriteString(badgeStyle.Render(fmt.Sprintf("TOP %d", t.Limit)))
		b.WriteString("\n")
		if len(t.Rows) == 0 {
			b.WriteString(badgeStyle.Render(EmptyNotice))
			b.WriteString("\n")
			continue
		}
		b.WriteString(prettyTable(t))
		b.WriteString("\n")
	}
	return b.String()
}

func prettyTable(t dataset.Table) string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{r.Label, t.Display(r)})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("State", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1 && row >= 0 && row < len(t.Rows) && !t.Rows[row].Finite():
				return naStyle
			case col == 1:
				return numStyle
			default:
				return cellStyle
			}
		}).
		String()
}
