package analysis

import (
	"math"
	"sort"
	"time"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindBoolean     Kind = "boolean"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindUnknown     Kind = "unknown"
)

// Report is the profile of one dataset. It is never modified after Profile
// returns it.
type Report struct {
	Name        string        `json:"name"`
	Source      string        `json:"source"`
	Explorative bool          `json:"explorative"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration_ns"`

	Rows      int             `json:"rows"`
	Processed int             `json:"processed"`
	Cols      []ColumnSummary `json:"variables"`

	MissingCells      int  `json:"missing_cells"`
	DuplicateRows     int  `json:"duplicate_rows"`
	DuplicatesChecked bool `json:"duplicates_checked"`

	Header []string   `json:"header"`
	Head   [][]string `json:"head"`
	Tail   [][]string `json:"tail,omitempty"`

	Warnings     []Warning   `json:"warnings"`
	Corr         *CorrMatrix `json:"pearson,omitempty"`
	Spearman     *CorrMatrix `json:"spearman,omitempty"`
	Interactions []PairCorr  `json:"interactions,omitempty"`
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Header  string `json:"header"`
	Name    string `json:"name"`
	Unit    string `json:"unit,omitempty"`
	Kind    Kind   `json:"kind"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"distinct"`

	// Numeric
	Min       float64   `json:"min,omitempty"`
	Max       float64   `json:"max,omitempty"`
	Mean      float64   `json:"mean,omitempty"`
	Std       float64   `json:"std,omitempty"`
	Sum       float64   `json:"sum,omitempty"`
	Zeros     int       `json:"zeros,omitempty"`
	Negatives int       `json:"negatives,omitempty"`
	Infinite  int       `json:"infinite,omitempty"`
	Quantiles Quantiles `json:"quantiles"`
	IQR       float64   `json:"iqr,omitempty"`
	Skewness  float64   `json:"skewness,omitempty"`
	Kurtosis  float64   `json:"kurtosis,omitempty"`
	Histogram []Bin     `json:"histogram,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`

	// Categorical, boolean and text
	TopValues    []CategoryCount `json:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty"`
	MinLength    int             `json:"min_length,omitempty"`
	MaxLength    int             `json:"max_length,omitempty"`
	MeanLength   float64         `json:"mean_length,omitempty"`

	// Datetime
	Earliest time.Time `json:"earliest,omitempty"`
	Latest   time.Time `json:"latest,omitempty"`
}

// Quantiles holds the usual percentiles of a numeric column.
type Quantiles struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CorrMatrix holds a symmetric correlation matrix across numeric columns.
type CorrMatrix struct {
	Method  string      `json:"method"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// WarningKind classifies data-quality alerts.
type WarningKind string

const (
	WarnMissing         WarningKind = "missing"
	WarnConstant        WarningKind = "constant"
	WarnUnique          WarningKind = "unique"
	WarnHighCardinality WarningKind = "high_cardinality"
	WarnHighCorrelation WarningKind = "high_correlation"
	WarnZeros           WarningKind = "zeros"
	WarnSkewed          WarningKind = "skewed"
	WarnDuplicates      WarningKind = "duplicates"
	WarnTruncated       WarningKind = "truncated"
)

// Warning is a data-quality alert, optionally tied to a column.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Column  string      `json:"column,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return w.Message }

// Variables returns the number of profiled columns.
func (r *Report) Variables() int { return len(r.Cols) }

// Cells returns the number of profiled cells.
func (r *Report) Cells() int { return r.Processed * len(r.Cols) }

// MissingPct is the share of missing cells across the profiled rows.
func (r *Report) MissingPct() float64 {
	if r.Cells() == 0 {
		return 0
	}
	return float64(r.MissingCells) * 100 / float64(r.Cells())
}

// DuplicatePct is the share of duplicate rows.
func (r *Report) DuplicatePct() float64 {
	if r.Processed == 0 {
		return 0
	}
	return float64(r.DuplicateRows) * 100 / float64(r.Processed)
}

// KindCounts tallies variables per inferred kind.
func (r *Report) KindCounts() map[Kind]int {
	out := make(map[Kind]int)
	for _, c := range r.Cols {
		out[c.Kind]++
	}
	return out
}

// Label is the display name including the unit, e.g. "Temp [°C]".
func (c ColumnSummary) Label() string {
	if c.Unit == "" {
		return safeName(c.Name)
	}
	return safeName(c.Name) + " [" + c.Unit + "]"
}

// MissingPct is the share of missing cells in this column.
func (c ColumnSummary) MissingPct() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100 / float64(total)
}

// Pairs lists the upper-triangle pairs ordered by |r|, strongest first.
func (m *CorrMatrix) Pairs() []PairCorr {
	if m == nil {
		return nil
	}
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	return pairs
}
