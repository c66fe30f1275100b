// Package dataset turns named delimited-text sources into bounded tables of
// (label, value) rows ready for display.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/KaramelBytes/statdeck/internal/parser"
	"github.com/KaramelBytes/statdeck/internal/source"
)

// DefaultLimit bounds the rows kept per source when a Spec leaves Limit unset.
const DefaultLimit = 10

// DefaultLabelField is the column most results files use for row labels.
const DefaultLabelField = "state_name"

// Spec describes how one named source is projected into display rows.
type Spec struct {
	Key        string
	Title      string
	Path       string
	LabelField string
	ValueField string
	Kind       Kind
	// Limit caps the rows kept, in source order. 0 means DefaultLimit.
	Limit int
}

// DisplayRow is one rendered line of a table.
type DisplayRow struct {
	Label string
	Value float64
}

// Finite reports whether Value holds a usable number.
func (r DisplayRow) Finite() bool {
	return !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0)
}

// Table is a projected source together with the spec that produced it.
type Table struct {
	Spec
	Rows []DisplayRow
}

// Display formats a row value with the table's formatter.
func (t Table) Display(r DisplayRow) string {
	return FormatterFor(t.Kind)(r.Value)
}

// Projector loads and projects configured sources. It is read-only after
// construction and safe for concurrent use.
type Projector struct {
	specs  []Spec
	byKey  map[string]int
	src    source.Acquirer
	logger *slog.Logger
}

// New validates specs and returns a Projector reading through src.
func New(specs []Spec, src source.Acquirer, logger *slog.Logger) (*Projector, error) {
	if src == nil {
		return nil, errors.New("dataset: nil source acquirer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Projector{
		specs:  make([]Spec, 0, len(specs)),
		byKey:  make(map[string]int, len(specs)),
		src:    src,
		logger: logger,
	}
	for i, s := range specs {
		s, err := normalize(s)
		if err != nil {
			return nil, fmt.Errorf("dataset: spec %d: %w", i, err)
		}
		if _, dup := p.byKey[s.Key]; dup {
			return nil, fmt.Errorf("dataset: duplicate source key %q", s.Key)
		}
		p.byKey[s.Key] = len(p.specs)
		p.specs = append(p.specs, s)
	}
	return p, nil
}

func normalize(s Spec) (Spec, error) {
	s.Key = strings.TrimSpace(s.Key)
	s.LabelField = strings.TrimSpace(s.LabelField)
	s.ValueField = strings.TrimSpace(s.ValueField)
	if s.Key == "" {
		return s, errors.New("empty source key")
	}
	if s.ValueField == "" {
		return s, fmt.Errorf("source %q: empty value field", s.Key)
	}
	if s.LabelField == "" {
		s.LabelField = DefaultLabelField
	}
	if s.Kind == "" {
		s.Kind = KindCurrency
	}
	if !s.Kind.Valid() {
		return s, fmt.Errorf("source %q: unknown kind %q", s.Key, s.Kind)
	}
	if s.Limit < 0 {
		return s, fmt.Errorf("source %q: negative limit %d", s.Key, s.Limit)
	}
	if s.Limit == 0 {
		s.Limit = DefaultLimit
	}
	if s.Title == "" {
		s.Title = s.Key
	}
	return s, nil
}

// WithLogger returns a copy of p that logs through l.
func (p *Projector) WithLogger(l *slog.Logger) *Projector {
	cp := *p
	if l != nil {
		cp.logger = l
	}
	return &cp
}

// Specs returns the normalized specs in configuration order.
func (p *Projector) Specs() []Spec {
	out := make([]Spec, len(p.specs))
	copy(out, p.specs)
	return out
}

// Spec looks up the normalized spec for key.
func (p *Projector) Spec(key string) (Spec, bool) {
	i, ok := p.byKey[key]
	if !ok {
		return Spec{}, false
	}
	return p.specs[i], true
}

// Load returns the display rows for the source named key. Missing or
// unreadable sources and unknown keys yield an empty result.
func (p *Projector) Load(key string) []DisplayRow {
	s, ok := p.Spec(key)
	if !ok {
		p.logger.Warn("unknown source", slog.String("source", key))
		return nil
	}
	return p.load(s)
}

// LoadTable is Load plus the source's spec.
func (p *Projector) LoadTable(key string) (Table, bool) {
	s, ok := p.Spec(key)
	if !ok {
		return Table{}, false
	}
	return Table{Spec: s, Rows: p.load(s)}, true
}

// LoadAll loads every configured source in configuration order.
func (p *Projector) LoadAll() []Table {
	out := make([]Table, 0, len(p.specs))
	for _, s := range p.specs {
		out = append(out, Table{Spec: s, Rows: p.load(s)})
	}
	return out
}

func (p *Projector) load(s Spec) []DisplayRow {
	var text string
	res := p.src.Acquire(s.Path)
	if res.OK() {
		text = res.Text()
	} else {
		p.logger.Warn("source unavailable",
			slog.String("source", s.Key),
			slog.String("path", s.Path),
			slog.String("error", res.Reason().Error()))
	}
	records := parser.ParseDelimited(text, parser.DelimiterFor(s.Path))
	if len(records) > 0 {
		p.checkFields(s, records[0])
	}
	rows := Project(records, s)
	p.logger.Debug("source loaded",
		slog.String("source", s.Key),
		slog.Int("records", len(records)),
		slog.Int("rows", len(rows)))
	return rows
}

func (p *Projector) checkFields(s Spec, r parser.Record) {
	var missing []string
	for _, f := range []string{s.LabelField, s.ValueField} {
		if _, ok := r.Get(f); !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		p.logger.Warn("fields missing from header",
			slog.String("source", s.Key),
			slog.String("fields", strings.Join(missing, ",")),
			slog.String("header", strings.Join(r.Fields(), ",")))
	}
}

// Project keeps the first s.Limit records and maps them to display rows,
// dropping rows without a label. Records are never reordered.
func Project(records []parser.Record, s Spec) []DisplayRow {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}
	labelField := s.LabelField
	if labelField == "" {
		labelField = DefaultLabelField
	}
	out := make([]DisplayRow, 0, len(records))
	for _, r := range records {
		label, _ := r.Get(labelField)
		if label == "" {
			continue
		}
		var v float64
		if raw, ok := r.Get(s.ValueField); ok && raw != "" {
			v = Coerce(raw)
		}
		out = append(out, DisplayRow{Label: label, Value: v})
	}
	return out
}
