package render

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/statdeck/internal/dataset"
)

// EmptyNotice replaces a table that has no rows.
const EmptyNotice = "Data not available."

// Markdown renders one section per table.
func Markdown(p Page) string {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString("# ")
		b.WriteString(safeVal(p.Title))
		b.WriteString("\n\n")
	}
	for i, t := range p.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		writeMarkdownTable(&b, t)
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, t dataset.Table) {
	b.WriteString(fmt.Sprintf("## %s (Top %d)\n\n", safeVal(t.Title), t.Limit))
	if len(t.Rows) == 0 {
		b.WriteString(EmptyNotice)
		b.WriteString("\n")
		return
	}
	b.WriteString("| State | Value |\n")
	b.WriteString("| --- | ---: |\n")
	for _, r := range t.Rows {
		b.WriteString("| ")
		b.WriteString(safeVal(r.Label))
		b.WriteString(" | ")
		b.WriteString(t.Display(r))
		b.WriteString(" |\n")
	}
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
