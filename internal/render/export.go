package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/statdeck/internal/dataset"
)

// Export is the machine-readable form of a page.
type Export struct {
	Title  string        `json:"title" yaml:"title"`
	Tables []ExportTable `json:"tables" yaml:"tables"`
}

// ExportTable is one projected source.
type ExportTable struct {
	Key   string      `json:"key" yaml:"key"`
	Title string      `json:"title" yaml:"title"`
	Kind  string      `json:"kind" yaml:"kind"`
	Limit int         `json:"limit" yaml:"limit"`
	Rows  []ExportRow `json:"rows" yaml:"rows"`
}

// ExportRow carries the display string alongside the number. Value is nil
// when the source value was not numeric.
type ExportRow struct {
	Label   string   `json:"label" yaml:"label"`
	Value   *float64 `json:"value" yaml:"value"`
	Display string   `json:"display" yaml:"display"`
}

// NewExportTable converts a projected table.
func NewExportTable(t dataset.Table) ExportTable {
	et := ExportTable{Key: t.Key, Title: t.Title, Kind: string(t.Kind), Limit: t.Limit, Rows: []ExportRow{}}
	for _, r := range t.Rows {
		row := ExportRow{Label: r.Label, Display: t.Display(r)}
		if r.Finite() {
			v := r.Value
			row.Value = &v
		}
		et.Rows = append(et.Rows, row)
	}
	return et
}

// NewExport converts a page.
func NewExport(p Page) Export {
	e := Export{Title: p.Title, Tables: make([]ExportTable, 0, len(p.Tables))}
	for _, t := range p.Tables {
		e.Tables = append(e.Tables, NewExportTable(t))
	}
	return e
}

// JSON writes the page export as indented JSON.
func JSON(w io.Writer, p Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewExport(p)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes the page export as YAML.
func YAML(w io.Writer, p Page) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewExport(p)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
