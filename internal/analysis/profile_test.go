package analysis

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/statdeck/internal/parser"
)

var csvRows = []string{
	"state_name,score,region",
	"A,10,x",
	"B,11,x",
	"C,9.5,y",
	"D,10.5,x",
	"E,9.8,y",
	"F,10.2,x",
	"G,8.8,x",
	"H,9.7,y",
	"I,50,x",
	"J,four,",
}

func TestProfileAndMarkdown(t *testing.T) {
	recs := parser.Parse(strings.Join(csvRows, "\n"))
	rep := Profile("scores", recs, DefaultOptions())

	if rep.Rows != 10 || len(rep.Cols) != 3 {
		t.Fatalf("unexpected shape: rows=%d cols=%d", rep.Rows, len(rep.Cols))
	}
	if len(rep.Samples) != 5 || rep.Samples[0][0] != "A" {
		t.Fatalf("unexpected samples: %v", rep.Samples)
	}

	score, ok := rep.Column("score")
	if !ok {
		t.Fatalf("score column missing")
	}
	if score.Kind != "numeric" || score.NonNull != 10 || score.Numeric != 9 {
		t.Fatalf("unexpected score summary: %+v", score)
	}
	if score.Min != 8.8 || score.Max != 50 {
		t.Fatalf("unexpected range: min=%v max=%v", score.Min, score.Max)
	}
	if score.OutliersCount != 1 || score.OutliersMaxAbsZ < 50 {
		t.Fatalf("expected one outlier, got %d (max |z| %.2f)", score.OutliersCount, score.OutliersMaxAbsZ)
	}

	region, _ := rep.Column("region")
	if region.Kind != "categorical" || region.Missing != 1 || region.Unique != 2 {
		t.Fatalf("unexpected region summary: %+v", region)
	}
	if len(region.TopValues) != 2 || region.TopValues[0] != (CategoryCount{"x", 6}) {
		t.Fatalf("unexpected top values: %+v", region.TopValues)
	}

	state, _ := rep.Column("state_name")
	if len(state.TopValues) != 3 || state.TopValues[0].Value != "A" {
		t.Fatalf("ties should sort by value: %+v", state.TopValues)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"Source: scores",
		"Rows: 10",
		"- score: numeric (non-null 10, missing 0.0%)",
		"non-numeric 1",
		"outliers: 1 above |z|>3.5",
		"- region: categorical (non-null 9, missing 10.0%); top: x(6), y(3)",
		"- state_name: categorical",
		"unique=10",
		"| state_name | score | region |",
		"| E | 9.8 | y |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
	if strings.Contains(md, "| F | 10.2 | x |") {
		t.Fatalf("head should stop after five rows:\n%s", md)
	}
}

func TestProfileEmptyAndBlankColumns(t *testing.T) {
	rep := Profile("none", nil, DefaultOptions())
	if rep.Rows != 0 || len(rep.Cols) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
	if !strings.Contains(rep.Markdown(), "Columns: 0") {
		t.Fatalf("unexpected markdown: %s", rep.Markdown())
	}

	rep = Profile("blank", parser.Parse("a,b\n1,\n2,\n"), Options{})
	b, _ := rep.Column("b")
	if b.Kind != "empty" || b.Missing != 2 {
		t.Fatalf("unexpected blank column: %+v", b)
	}
	a, _ := rep.Column("a")
	if a.Kind != "numeric" || a.Mean != 1.5 || a.OutlierThreshold != 0 {
		t.Fatalf("unexpected numeric column: %+v", a)
	}
	if len(rep.Samples) != 0 {
		t.Fatalf("SampleRows 0 should keep no samples")
	}
}

func TestMedianMAD(t *testing.T) {
	med, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	if med != 3 || mad != 1 {
		t.Fatalf("median=%v mad=%v", med, mad)
	}
	if q := quantile([]float64{1, 3}, 0.5); q != 2 {
		t.Fatalf("quantile = %v", q)
	}
}
