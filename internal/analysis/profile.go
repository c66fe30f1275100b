// Package analysis profiles the columns of a parsed results file so that a
// misconfigured value or label field is easy to spot.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/statdeck/internal/dataset"
	"github.com/KaramelBytes/statdeck/internal/parser"
)

// Options controls profiling behavior.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// TopValues caps the categories listed per categorical column.
	TopValues int
	// OutlierThreshold is the robust |z| above which a value counts as an
	// outlier. 0 disables outlier detection.
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for results files.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 3, OutlierThreshold: 3.5}
}

// Report is a column-by-column profile of one source.
type Report struct {
	Name    string
	Rows    int
	Cols    []ColumnSummary
	Samples [][]string
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical|empty
	NonNull int
	Missing int
	Unique  int
	// Numeric counts values that coerce to a finite number.
	Numeric int
	Min     float64
	Max     float64
	Mean    float64
	Std     float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	TopValues        []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Profile summarizes records using the same numeric coercion as the projector.
func Profile(name string, records []parser.Record, opt Options) *Report {
	rep := &Report{Name: name, Rows: len(records)}
	if len(records) == 0 {
		return rep
	}
	fields := records[0].Fields()

	type colAcc struct {
		nonNil int
		miss   int
		// numeric stats via Welford
		n    int
		mean float64
		m2   float64
		min  float64
		max  float64
		vals []float64
		cats map[string]int
	}
	cols := make([]*colAcc, len(fields))
	for i := range fields {
		cols[i] = &colAcc{min: math.Inf(1), max: math.Inf(-1), cats: make(map[string]int)}
	}

	for ri, r := range records {
		row := make([]string, len(fields))
		for j, f := range fields {
			v, _ := r.Get(f)
			row[j] = v
			c := cols[j]
			if strings.TrimSpace(v) == "" {
				c.miss++
				continue
			}
			c.nonNil++
			c.cats[v]++
			x := dataset.Coerce(v)
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			c.n++
			if x < c.min {
				c.min = x
			}
			if x > c.max {
				c.max = x
			}
			delta := x - c.mean
			c.mean += delta / float64(c.n)
			c.m2 += delta * (x - c.mean)
			c.vals = append(c.vals, x)
		}
		if ri < opt.SampleRows {
			rep.Samples = append(rep.Samples, row)
		}
	}

	rep.Cols = make([]ColumnSummary, 0, len(fields))
	for j, c := range cols {
		s := ColumnSummary{Name: fields[j], NonNull: c.nonNil, Missing: c.miss, Unique: len(c.cats), Numeric: c.n}
		switch {
		case c.nonNil == 0:
			s.Kind = "empty"
		case c.n*2 > c.nonNil:
			// numeric when most present values coerce
			s.Kind = "numeric"
			s.Min, s.Max, s.Mean = c.min, c.max, c.mean
			if c.n > 1 {
				s.Std = math.Sqrt(c.m2 / float64(c.n-1))
			}
			if opt.OutlierThreshold > 0 {
				s.OutlierThreshold = opt.OutlierThreshold
				s.OutliersCount, s.OutliersMaxAbsZ = outliers(c.vals, opt.OutlierThreshold)
			}
		default:
			s.Kind = "categorical"
			s.TopValues = topValues(c.cats, opt.TopValues)
		}
		rep.Cols = append(rep.Cols, s)
	}
	return rep
}

// Column returns the summary for name.
func (r *Report) Column(name string) (ColumnSummary, bool) {
	for _, c := range r.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

func topValues(cats map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if n > 0 && len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

func outliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

// Markdown renders a compact report for the terminal or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[SOURCE PROFILE]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Cols)))
	if len(r.Cols) == 0 {
		return b.String()
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.Numeric < c.NonNull {
				b.WriteString(fmt.Sprintf("; non-numeric %d", c.NonNull-c.Numeric))
			}
			if c.OutliersCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.OutliersCount, c.OutlierThreshold, c.OutliersMaxAbsZ))
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n|")
		for range r.Cols {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
