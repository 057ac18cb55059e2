package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source tells where a dataset came from.
type Source string

const (
	SourceUpload  Source = "upload"
	SourceExample Source = "example"
)

// Dataset is an immutable table of named columns. Cells are kept as the raw
// strings that were read, next to a typed gota frame where columns that are
// entirely numeric become float series.
type Dataset struct {
	// ID identifies the dataset for memoization, e.g. "sha256:<hex>".
	ID     string
	Name   string
	Source Source

	frame   dataframe.DataFrame
	cols    [][]string // column-major raw cells
	numeric []bool
	nf      NumberFormat
}

// FromRecords builds a dataset from a header and data rows. Every row must
// have exactly len(header) cells.
func FromRecords(name string, header []string, rows [][]string, nf NumberFormat) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrEmpty
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	ncol := len(header)
	names := uniqueNames(header)
	cols := make([][]string, ncol)
	for j := range cols {
		cols[j] = make([]string, len(rows))
	}
	for i, row := range rows {
		if len(row) != ncol {
			return nil, &ParseError{
				Name: name,
				Line: i + 2,
				Err:  fmt.Errorf("expected %d fields, got %d", ncol, len(row)),
			}
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}

	ds := &Dataset{Name: name, Source: SourceUpload, cols: cols, numeric: make([]bool, ncol), nf: nf}
	ss := make([]series.Series, ncol)
	for j := range cols {
		if vals, ok := numericColumn(cols[j], nf); ok {
			ds.numeric[j] = true
			ss[j] = series.New(vals, series.Float, names[j])
			continue
		}
		ss[j] = series.New(cols[j], series.String, names[j])
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return nil, fmt.Errorf("build frame: %w", df.Err)
	}
	ds.frame = df
	return ds, nil
}

// FromFloats builds a dataset from float columns of equal length.
func FromFloats(name string, names []string, values [][]float64) (*Dataset, error) {
	if len(names) == 0 || len(names) != len(values) {
		return nil, ErrEmpty
	}
	n := len(values[0])
	if n == 0 {
		return nil, ErrNoRows
	}
	ds := &Dataset{Name: name, cols: make([][]string, len(names)), numeric: make([]bool, len(names))}
	ss := make([]series.Series, len(names))
	for j, vals := range values {
		if len(vals) != n {
			return nil, fmt.Errorf("column %s has %d values, want %d", names[j], len(vals), n)
		}
		raw := make([]string, n)
		for i, v := range vals {
			raw[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		ds.cols[j] = raw
		ds.numeric[j] = true
		ss[j] = series.New(vals, series.Float, names[j])
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return nil, fmt.Errorf("build frame: %w", df.Err)
	}
	ds.frame = df
	return ds, nil
}

// Nrow returns the number of data rows.
func (d *Dataset) Nrow() int { return d.frame.Nrow() }

// Ncol returns the number of columns.
func (d *Dataset) Ncol() int { return d.frame.Ncol() }

// Names returns the column names in order.
func (d *Dataset) Names() []string { return d.frame.Names() }

// Numeric reports whether column j parsed entirely as numbers.
func (d *Dataset) Numeric(j int) bool { return d.numeric[j] }

// Column returns the raw cells of column j. Callers must not modify it.
func (d *Dataset) Column(j int) []string { return d.cols[j] }

// Floats returns column j as numbers, with NaN for missing or non-numeric cells.
func (d *Dataset) Floats(j int) []float64 {
	if d.numeric[j] {
		return d.frame.Col(d.frame.Names()[j]).Float()
	}
	out := make([]float64, len(d.cols[j]))
	for i, v := range d.cols[j] {
		if IsMissing(v) {
			out[i] = math.NaN()
			continue
		}
		if x, ok := ParseNumber(v, d.nf); ok {
			out[i] = x
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string {
	row := make([]string, len(d.cols))
	for j := range d.cols {
		row[j] = d.cols[j][i]
	}
	return row
}

// Rows returns copies of rows in [from, to), clamped to the table bounds.
func (d *Dataset) Rows(from, to int) [][]string {
	n := d.Nrow()
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return nil
	}
	out := make([][]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, d.Row(i))
	}
	return out
}

// Head returns copies of the first n rows, or every row when n <= 0 or
// exceeds the table.
func (d *Dataset) Head(n int) [][]string {
	if n <= 0 || n > d.Nrow() {
		n = d.Nrow()
	}
	return d.Rows(0, n)
}

// Records returns the header followed by every row, as encoding/csv expects.
func (d *Dataset) Records() [][]string {
	out := make([][]string, 0, d.Nrow()+1)
	out = append(out, d.Names())
	return append(out, d.Head(0)...)
}

// uniqueNames fills blank headers and disambiguates duplicates the way pandas
// does: "Unnamed: 3", "x", "x.1", "x.2".
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base := name
			for k := seen[base] + 1; ; k++ {
				cand := fmt.Sprintf("%s.%d", base, k)
				if _, taken := seen[cand]; !taken {
					seen[base] = k
					name = cand
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

// numericColumn parses a column when every non-missing cell is a number and
// at least one is present.
func numericColumn(cells []string, nf NumberFormat) ([]float64, bool) {
	out := make([]float64, len(cells))
	present := 0
	for i, v := range cells {
		if IsMissing(v) {
			out[i] = math.NaN()
			continue
		}
		x, ok := ParseNumber(v, nf)
		if !ok {
			return nil, false
		}
		out[i] = x
		present++
	}
	return out, present > 0
}
