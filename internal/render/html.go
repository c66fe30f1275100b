package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("page.html").ParseFS(templateFS, "templates/page.html"))

type htmlRow struct {
	Label   string
	Display string
}

type htmlTable struct {
	Key   string
	Title string
	Limit int
	Rows  []htmlRow
}

// HTML renders the page as a standalone HTML document.
func HTML(w io.Writer, p Page) error {
	data := struct {
		Title  string
		Empty  string
		Tables []htmlTable
	}{Title: p.Title, Empty: EmptyNotice}
	for _, t := range p.Tables {
		ht := htmlTable{Key: t.Key, Title: t.Title, Limit: t.Limit}
		for _, r := range t.Rows {
			ht.Rows = append(ht.Rows, htmlRow{Label: r.Label, Display: t.Display(r)})
		}
		data.Tables = append(data.Tables, ht)
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
