package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/statdeck/internal/parser"
	"github.com/KaramelBytes/statdeck/internal/source"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func memSource(t *testing.T, files map[string]string) source.Acquirer {
	t.Helper()
	mem := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(mem, "/results/"+name, []byte(body), 0o644))
	}
	return source.NewFS(mem, "/results")
}

func TestLoadEndToEnd(t *testing.T) {
	src := memSource(t, map[string]string{
		"01_top_avg_home_value.csv": "state_name,avg_home_value\nTexas,412345\n,999999\nCalifornia,812345.6\n",
	})
	p, err := New([]Spec{{
		Key:        "topValues",
		Path:       "01_top_avg_home_value.csv",
		LabelField: "state_name",
		ValueField: "avg_home_value",
		Kind:       KindCurrency,
		Limit:      10,
	}}, src, nil)
	require.NoError(t, err)

	tbl, ok := p.LoadTable("topValues")
	require.True(t, ok)
	require.Equal(t, []DisplayRow{{"Texas", 412345}, {"California", 812345.6}}, tbl.Rows)
	assert.Equal(t, "$412,345", tbl.Display(tbl.Rows[0]))
	assert.Equal(t, "$812,346", tbl.Display(tbl.Rows[1]))
}

func TestLoadMissingSource(t *testing.T) {
	var buf bytes.Buffer
	p, err := New([]Spec{{Key: "topGrowth", Path: "02_growth_first_last.csv", ValueField: "growth_pct", Kind: KindPercent}},
		memSource(t, nil), testLogger(&buf))
	require.NoError(t, err)

	assert.Empty(t, p.Load("topGrowth"))
	assert.Contains(t, buf.String(), "source unavailable")
	assert.Contains(t, buf.String(), "source=topGrowth")
}

func TestLoadUnknownKey(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(nil, memSource(t, nil), testLogger(&buf))
	require.NoError(t, err)

	assert.Empty(t, p.Load("nope"))
	assert.Contains(t, buf.String(), "unknown source")
	_, ok := p.LoadTable("nope")
	assert.False(t, ok)
}

func TestLoadEmptyFile(t *testing.T) {
	p, err := New([]Spec{{Key: "k", Path: "empty.csv", ValueField: "v"}},
		memSource(t, map[string]string{"empty.csv": "  \n"}), nil)
	require.NoError(t, err)
	assert.Empty(t, p.Load("k"))
}

func TestLoadTruncatesToLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("state_name,volatility\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "S%02d,%d\n", i, 1000-i)
	}
	src := memSource(t, map[string]string{"03_volatility.csv": b.String()})

	p, err := New([]Spec{
		{Key: "default", Path: "03_volatility.csv", ValueField: "volatility"},
		{Key: "three", Path: "03_volatility.csv", ValueField: "volatility", Limit: 3},
	}, src, nil)
	require.NoError(t, err)

	rows := p.Load("default")
	require.Len(t, rows, DefaultLimit)
	assert.Equal(t, "S00", rows[0].Label)
	assert.Equal(t, "S09", rows[9].Label)

	rows = p.Load("three")
	assert.Equal(t, []DisplayRow{{"S00", 1000}, {"S01", 999}, {"S02", 998}}, rows)
}

func TestLoadTruncatesBeforeDroppingEmptyLabels(t *testing.T) {
	// the bound applies to records, so dropped rows are not backfilled
	src := memSource(t, map[string]string{"m.csv": "state_name,v\n,1\nA,2\nB,3\nC,4\n"})
	p, err := New([]Spec{{Key: "m", Path: "m.csv", ValueField: "v", Limit: 3}}, src, nil)
	require.NoError(t, err)
	assert.Equal(t, []DisplayRow{{"A", 2}, {"B", 3}}, p.Load("m"))
}

func TestLoadWhitespaceLineUsesLimitSlot(t *testing.T) {
	var b strings.Builder
	b.WriteString("state_name,volatility\n")
	for i := 0; i <= 10; i++ {
		fmt.Fprintf(&b, "S%02d,%d\n", i, 100-i)
		if i == 1 {
			b.WriteString("   \n")
		}
	}
	src := memSource(t, map[string]string{"03_volatility.csv": b.String()})
	p, err := New([]Spec{{Key: "volatility", Path: "03_volatility.csv", ValueField: "volatility", Limit: 10}}, src, nil)
	require.NoError(t, err)

	rows := p.Load("volatility")
	require.Len(t, rows, 9)
	assert.Equal(t, "S01", rows[1].Label)
	assert.Equal(t, "S02", rows[2].Label)
	assert.Equal(t, "S08", rows[8].Label)
}

func TestLoadTSV(t *testing.T) {
	src := memSource(t, map[string]string{"07_recent_momentum.tsv": "state_name\tlast_2q_growth_pct\nUtah\t3.5\n"})
	p, err := New([]Spec{{Key: "momentum", Path: "07_recent_momentum.tsv", ValueField: "last_2q_growth_pct", Kind: KindPercent}}, src, nil)
	require.NoError(t, err)

	tbl, _ := p.LoadTable("momentum")
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "3.50%", tbl.Display(tbl.Rows[0]))
}

func TestLoadMissingValueFieldWarns(t *testing.T) {
	var buf bytes.Buffer
	src := memSource(t, map[string]string{"g.csv": "state_name,other\nIdaho,7\n"})
	p, err := New([]Spec{{Key: "g", Path: "g.csv", ValueField: "growth_pct"}}, src, testLogger(&buf))
	require.NoError(t, err)

	assert.Equal(t, []DisplayRow{{"Idaho", 0}}, p.Load("g"))
	assert.Contains(t, buf.String(), "fields missing from header")
	assert.Contains(t, buf.String(), "growth_pct")
}

func TestLoadAllKeepsConfigOrder(t *testing.T) {
	src := memSource(t, map[string]string{
		"a.csv": "state_name,v\nA,1\n",
		"b.csv": "state_name,v\nB,2\n",
	})
	p, err := New([]Spec{
		{Key: "b", Path: "b.csv", ValueField: "v"},
		{Key: "missing", Path: "zzz.csv", ValueField: "v"},
		{Key: "a", Path: "a.csv", ValueField: "v", Kind: KindPercent},
	}, src, nil)
	require.NoError(t, err)

	tables := p.LoadAll()
	require.Len(t, tables, 3)
	assert.Equal(t, "b", tables[0].Key)
	assert.Empty(t, tables[1].Rows)
	assert.Equal(t, "a", tables[2].Key)
	assert.Equal(t, "1.00%", tables[2].Display(tables[2].Rows[0]))
}

func TestLoadUsesAcquirerDouble(t *testing.T) {
	calls := 0
	src := source.Func(func(path string) source.Result {
		calls++
		if path == "bad.csv" {
			return source.Unavailable(errors.New("permission denied"))
		}
		return source.Available("state_name,v\nX,5\n")
	})
	p, err := New([]Spec{
		{Key: "ok", Path: "ok.csv", ValueField: "v"},
		{Key: "bad", Path: "bad.csv", ValueField: "v"},
	}, src, nil)
	require.NoError(t, err)

	assert.Len(t, p.Load("ok"), 1)
	assert.Empty(t, p.Load("bad"))
	assert.Equal(t, 2, calls)
}

func TestProject(t *testing.T) {
	recs := parser.Parse("state_name,v\nA,four\nB,\nC\nD,2.5\n")
	rows := Project(recs, Spec{ValueField: "v"})
	require.Len(t, rows, 4)

	assert.Equal(t, "A", rows[0].Label)
	assert.True(t, math.IsNaN(rows[0].Value))
	assert.False(t, rows[0].Finite())
	assert.Equal(t, DisplayRow{"B", 0}, rows[1])
	assert.Equal(t, DisplayRow{"C", 0}, rows[2])
	assert.Equal(t, DisplayRow{"D", 2.5}, rows[3])
	assert.True(t, rows[3].Finite())
}

func TestProjectEmptyInput(t *testing.T) {
	assert.Empty(t, Project(nil, Spec{ValueField: "v"}))
}

func TestNewValidation(t *testing.T) {
	src := memSource(t, nil)
	cases := map[string][]Spec{
		"empty key":   {{ValueField: "v"}},
		"empty value": {{Key: "k"}},
		"bad kind":    {{Key: "k", ValueField: "v", Kind: "ratio"}},
		"neg limit":   {{Key: "k", ValueField: "v", Limit: -1}},
		"duplicate":   {{Key: "k", ValueField: "v"}, {Key: "k", ValueField: "w"}},
	}
	for name, specs := range cases {
		_, err := New(specs, src, nil)
		assert.Error(t, err, name)
	}
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	p, err := New([]Spec{{Key: " k ", ValueField: "v"}}, memSource(t, nil), nil)
	require.NoError(t, err)
	s, ok := p.Spec("k")
	require.True(t, ok)
	assert.Equal(t, DefaultLabelField, s.LabelField)
	assert.Equal(t, KindCurrency, s.Kind)
	assert.Equal(t, DefaultLimit, s.Limit)
	assert.Equal(t, "k", s.Title)
	assert.Len(t, p.Specs(), 1)
}

func TestWithLogger(t *testing.T) {
	var a, b bytes.Buffer
	p, err := New([]Spec{{Key: "k", Path: "x.csv", ValueField: "v"}}, memSource(t, nil), testLogger(&a))
	require.NoError(t, err)

	p.WithLogger(testLogger(&b)).Load("k")
	assert.Empty(t, a.String())
	assert.Contains(t, b.String(), "source unavailable")
}
