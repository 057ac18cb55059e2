package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Options controls profiling behavior.
type Options struct {
	// Explorative enables the deeper sections: Spearman correlations,
	// interactions, duplicate rows and text length statistics.
	Explorative bool
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many head and tail rows the report carries.
	SampleRows int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	HistogramBins    int
	// TopValues caps the categories listed per column.
	TopValues int

	// Alert thresholds.
	MissingWarnRatio   float64
	ZerosWarnRatio     float64
	SkewWarn           float64
	HighCorrelation    float64
	HighCardinality    int
	CategoricalMaxSize int
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		MaxRows:            100000,
		SampleRows:         10,
		Outliers:           true,
		OutlierThreshold:   3.5,
		HistogramBins:      10,
		TopValues:          10,
		MissingWarnRatio:   0.2,
		ZerosWarnRatio:     0.1,
		SkewWarn:           20,
		HighCorrelation:    0.9,
		HighCardinality:    50,
		CategoricalMaxSize: 50,
	}
}

// Profiler turns a dataset into a report.
type Profiler interface {
	Profile(ctx context.Context, ds *dataset.Dataset) (*Report, error)
}

// Engine is the built-in Profiler.
type Engine struct {
	opt Options
}

// NewEngine returns a profiler bound to opt.
func NewEngine(opt Options) *Engine { return &Engine{opt: opt} }

// Options returns the options the engine profiles with.
func (e *Engine) Options() Options { return e.opt }

func (e *Engine) Profile(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	return Profile(ctx, ds, e.opt)
}

// Profile computes a Report for ds. The context is checked between columns
// so that an abandoned request stops early.
func Profile(ctx context.Context, ds *dataset.Dataset, opt Options) (*Report, error) {
	if ds == nil {
		return nil, errors.New("profile: nil dataset")
	}
	start := time.Now()
	rows := ds.Nrow()
	processed := rows
	if opt.MaxRows > 0 && processed > opt.MaxRows {
		processed = opt.MaxRows
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	rep := &Report{
		Name:        ds.Name,
		Source:      string(ds.Source),
		Explorative: opt.Explorative,
		GeneratedAt: start,
		Rows:        rows,
		Processed:   processed,
		Header:      ds.Names(),
		Head:        ds.Rows(0, sampleRows),
	}
	if processed > sampleRows {
		rep.Tail = ds.Rows(max(processed-sampleRows, sampleRows), processed)
	}

	var numIdx []int
	numVals := map[int][]float64{}
	for j := 0; j < ds.Ncol(); j++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", ds.Name, err)
		}
		cs, vals := summarizeColumn(ds, j, processed, opt)
		rep.MissingCells += cs.Missing
		if cs.Kind == KindNumeric {
			numIdx = append(numIdx, j)
			numVals[j] = vals
		}
		rep.Cols = append(rep.Cols, cs)
	}

	if len(numIdx) >= 2 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", ds.Name, err)
		}
		rep.Corr = correlationMatrix("pearson", rep.Header, numIdx, numVals, pearson)
		if opt.Explorative {
			rep.Spearman = correlationMatrix("spearman", rep.Header, numIdx, numVals, spearman)
			pairs := rep.Corr.Pairs()
			if len(pairs) > 10 {
				pairs = pairs[:10]
			}
			rep.Interactions = pairs
		}
	}
	if opt.Explorative {
		rep.DuplicateRows = countDuplicates(ds, processed)
		rep.DuplicatesChecked = true
	}
	rep.Warnings = buildWarnings(rep, opt)
	rep.Duration = time.Since(start)
	return rep, nil
}

// summarizeColumn profiles column j over the first n rows and returns the
// numeric values (NaN for missing) when the column is numeric.
func summarizeColumn(ds *dataset.Dataset, j, n int, opt Options) (ColumnSummary, []float64) {
	header := ds.Names()[j]
	clean, unit := splitUnits(header)
	cs := ColumnSummary{Header: header, Name: clean, Unit: unit}

	raw := ds.Column(j)[:n]
	nums := ds.Floats(j)[:n]
	var numCnt, boolCnt, dtCnt, txtCnt int
	cats := make(map[string]int)
	var times []time.Time
	var texts []string
	for i, v := range raw {
		if dataset.IsMissing(v) {
			cs.Missing++
			continue
		}
		cs.NonNull++
		v = strings.TrimSpace(v)
		cats[v]++
		if !math.IsNaN(nums[i]) {
			numCnt++
			continue
		}
		if _, ok := dataset.ParseBool(v); ok {
			boolCnt++
			continue
		}
		if t, ok := dataset.ParseTime(v); ok {
			dtCnt++
			times = append(times, t)
			continue
		}
		txtCnt++
		texts = append(texts, v)
	}
	cs.Unique = len(cats)

	// Decide kind by predominant parsed type
	switch {
	case ds.Numeric(j) || (numCnt > 0 && numCnt >= dtCnt && numCnt >= txtCnt && numCnt >= boolCnt):
		cs.Kind = KindNumeric
		numericStats(&cs, nums, opt)
		return cs, nums
	case boolCnt > 0 && boolCnt >= dtCnt && boolCnt >= txtCnt:
		cs.Kind = KindBoolean
		cs.TopValues = topValues(cats, opt.TopValues)
	case dtCnt > 0 && dtCnt >= txtCnt:
		cs.Kind = KindDatetime
		sort.Slice(times, func(a, b int) bool { return times[a].Before(times[b]) })
		cs.Earliest, cs.Latest = times[0], times[len(times)-1]
	case txtCnt > 0:
		maxCats := opt.CategoricalMaxSize
		if maxCats <= 0 {
			maxCats = 50
		}
		if cs.Unique <= maxCats || cs.Unique*2 <= cs.NonNull {
			cs.Kind = KindCategorical
			cs.TopValues = topValues(cats, opt.TopValues)
		} else {
			cs.Kind = KindText
		}
		for _, t := range texts {
			if len(cs.ExampleTexts) == 3 {
				break
			}
			cs.ExampleTexts = append(cs.ExampleTexts, t)
		}
		if opt.Explorative {
			textLengths(&cs, texts)
		}
	default:
		cs.Kind = KindUnknown
	}
	return cs, nil
}

func numericStats(cs *ColumnSummary, col []float64, opt Options) {
	vals := make([]float64, 0, len(col))
	for _, x := range col {
		if math.IsNaN(x) {
			continue
		}
		if math.IsInf(x, 0) {
			cs.Infinite++
			continue
		}
		vals = append(vals, x)
		if x == 0 {
			cs.Zeros++
		} else if x < 0 {
			cs.Negatives++
		}
	}
	if len(vals) == 0 {
		return
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	cs.Min, cs.Max = sorted[0], sorted[len(sorted)-1]
	cs.Mean = stat.Mean(vals, nil)
	cs.Sum = floats.Sum(vals)
	if len(vals) > 1 {
		cs.Std = stat.StdDev(vals, nil)
	}
	cs.Quantiles = Quantiles{
		P5:  quantile(sorted, 0.05),
		P25: quantile(sorted, 0.25),
		P50: quantile(sorted, 0.5),
		P75: quantile(sorted, 0.75),
		P95: quantile(sorted, 0.95),
	}
	cs.IQR = cs.Quantiles.P75 - cs.Quantiles.P25
	if len(vals) > 2 && cs.Std > 0 {
		cs.Skewness = finite(stat.Skew(vals, nil))
		cs.Kurtosis = finite(stat.ExKurtosis(vals, nil))
	}
	cs.Unique = distinctSorted(sorted)
	cs.Histogram = histogram(sorted, opt.HistogramBins)

	if opt.Outliers && len(vals) >= 8 {
		median, mad := medianMAD(sorted)
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		var cnt int
		maxAbsZ := 0.0
		if mad > 0 {
			for _, v := range vals {
				az := math.Abs(0.6745 * (v - median) / mad)
				if az > thr {
					cnt++
				}
				if az > maxAbsZ {
					maxAbsZ = az
				}
			}
		}
		cs.OutliersCount = cnt
		cs.OutliersMaxAbsZ = maxAbsZ
		cs.OutlierThreshold = thr
	}
}

func textLengths(cs *ColumnSummary, texts []string) {
	if len(texts) == 0 {
		return
	}
	total := 0
	cs.MinLength = math.MaxInt
	for _, t := range texts {
		l := utf8.RuneCountInString(t)
		total += l
		cs.MinLength = min(cs.MinLength, l)
		cs.MaxLength = max(cs.MaxLength, l)
	}
	cs.MeanLength = float64(total) / float64(len(texts))
}

func topValues(cats map[string]int, limit int) []CategoryCount {
	if limit <= 0 {
		limit = 10
	}
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
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

func countDuplicates(ds *dataset.Dataset, n int) int {
	seen := make(map[string]struct{}, n)
	dups := 0
	for i := 0; i < n; i++ {
		key := strings.Join(ds.Row(i), "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func correlationMatrix(method string, header []string, idx []int, vals map[int][]float64, fn func(x, y []float64) float64) *CorrMatrix {
	n := len(idx)
	m := &CorrMatrix{Method: method, Columns: make([]string, n), Values: make([][]float64, n)}
	for a := range idx {
		m.Columns[a] = header[idx[a]]
		m.Values[a] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		m.Values[a][a] = 1
		for b := a + 1; b < n; b++ {
			x, y := pairwiseComplete(vals[idx[a]], vals[idx[b]])
			r := fn(x, y)
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

func buildWarnings(rep *Report, opt Options) []Warning {
	var out []Warning
	add := func(kind WarningKind, col, format string, args ...any) {
		out = append(out, Warning{Kind: kind, Column: col, Message: fmt.Sprintf(format, args...)})
	}
	for _, c := range rep.Cols {
		name := c.Header
		if c.Missing > 0 && c.MissingPct()/100 >= opt.MissingWarnRatio {
			add(WarnMissing, name, "%s has %d (%.1f%%) missing values", name, c.Missing, c.MissingPct())
		}
		if c.NonNull > 0 && c.Unique == 1 {
			add(WarnConstant, name, "%s has constant value", name)
		}
		switch c.Kind {
		case KindCategorical, KindText:
			if c.NonNull > 1 && c.Unique == c.NonNull {
				add(WarnUnique, name, "%s has unique values", name)
			}
			if c.Kind == KindCategorical && opt.HighCardinality > 0 && c.Unique > opt.HighCardinality {
				add(WarnHighCardinality, name, "%s has a high cardinality: %d distinct values", name, c.Unique)
			}
		case KindNumeric:
			if c.NonNull > 0 && c.Zeros > 0 && float64(c.Zeros)/float64(c.NonNull) >= opt.ZerosWarnRatio {
				add(WarnZeros, name, "%s has %d (%.1f%%) zeros", name, c.Zeros, float64(c.Zeros)*100/float64(c.NonNull))
			}
			if opt.SkewWarn > 0 && math.Abs(c.Skewness) > opt.SkewWarn {
				add(WarnSkewed, name, "%s is highly skewed (γ1 = %.2f)", name, c.Skewness)
			}
		}
	}
	if rep.Corr != nil && opt.HighCorrelation > 0 {
		for _, p := range rep.Corr.Pairs() {
			if math.Abs(p.R) < opt.HighCorrelation {
				break
			}
			add(WarnHighCorrelation, p.A, "%s is highly correlated with %s (ρ = %.3f)", p.A, p.B, p.R)
		}
	}
	if rep.DuplicateRows > 0 {
		add(WarnDuplicates, "", "Dataset has %d (%.1f%%) duplicate rows", rep.DuplicateRows, rep.DuplicatePct())
	}
	if rep.Processed < rep.Rows {
		add(WarnTruncated, "", "processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows)
	}
	return out
}
