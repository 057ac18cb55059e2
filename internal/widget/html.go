package widget

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
)

var printer = message.NewPrinter(language.English)

// Funcs are the template helpers shared by the report and the app page.
var Funcs = template.FuncMap{
	"num": func(v int) string { return printer.Sprintf("%d", v) },
	"f4":  formatFloat,
	"pct": func(v float64) string { return printer.Sprintf("%.1f%%", v) },
	"dur": func(d time.Duration) string { return d.Round(time.Millisecond).String() },
	"day": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"corrColor": corrColor,
	"barWidth":  barWidth,
	"maxCount":  maxCount,
	"add":       func(a, b int) int { return a + b },
	"sample":    func(header []string, rows [][]string) sampleRows { return sampleRows{header, rows} },
}

type sampleRows struct {
	Header []string
	Rows   [][]string
}

var reportTmpl = template.Must(template.New("report").Funcs(Funcs).Parse(reportHTML))

// HTML renders the report as an embeddable fragment.
type HTML struct{}

func (HTML) Render(rep *analysis.Report) (View, error) {
	if rep == nil {
		return View{}, errNilReport
	}
	var buf bytes.Buffer
	if err := reportTmpl.ExecuteTemplate(&buf, "report", rep); err != nil {
		return View{}, fmt.Errorf("render html: %w", err)
	}
	return View{ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
}

// Page renders the report as a standalone HTML document.
type Page struct{}

func (Page) Render(rep *analysis.Report) (View, error) {
	if rep == nil {
		return View{}, errNilReport
	}
	var buf bytes.Buffer
	if err := reportTmpl.ExecuteTemplate(&buf, "page", rep); err != nil {
		return View{}, fmt.Errorf("render page: %w", err)
	}
	return View{ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
}

func formatFloat(v float64) string {
	abs := math.Abs(v)
	switch {
	case v == 0:
		return "0"
	case abs >= 1e9 || abs < 1e-4:
		return fmt.Sprintf("%.4e", v)
	case abs >= 1000:
		return printer.Sprintf("%.2f", v)
	default:
		return printer.Sprintf("%.4f", v)
	}
}

// corrColor shades a coefficient: red for positive, blue for negative.
func corrColor(r float64) template.CSS {
	a := math.Min(1, math.Abs(r))
	if r >= 0 {
		return template.CSS(fmt.Sprintf("background-color: rgba(214, 39, 40, %.2f)", a))
	}
	return template.CSS(fmt.Sprintf("background-color: rgba(31, 119, 180, %.2f)", a))
}

func barWidth(count, max int) template.CSS {
	if max <= 0 {
		return template.CSS("width: 0%")
	}
	return template.CSS(fmt.Sprintf("width: %.1f%%", float64(count)*100/float64(max)))
}

func maxCount(bins []analysis.Bin) int {
	m := 0
	for _, b := range bins {
		m = max(m, b.Count)
	}
	return m
}
