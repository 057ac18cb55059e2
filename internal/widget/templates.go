package widget

const reportHTML = `{{define "style"}}<style>
.eda-report { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #262730; }
.eda-report h2 { border-bottom: 1px solid #e6e9ef; padding-bottom: .3em; margin-top: 1.6em; }
.eda-report table { border-collapse: collapse; font-size: .85em; }
.eda-report td, .eda-report th { border: 1px solid #e6e9ef; padding: 3px 8px; text-align: right; }
.eda-report th { background: #f0f2f6; }
.eda-report .grid { display: flex; flex-wrap: wrap; gap: 2em; }
.eda-report .var { border: 1px solid #e6e9ef; border-radius: 6px; padding: 1em; margin: 1em 0; }
.eda-report .kind { font-size: .8em; color: #6c757d; text-transform: uppercase; }
.eda-report .warn { color: #8a6d3b; }
.eda-report .bar { background: #4c78a8; height: 10px; }
.eda-report .hist td { border: none; padding: 1px 4px; }
.eda-report .hist .track { width: 160px; }
</style>{{end}}
{{define "report"}}{{template "style"}}
<div class="eda-report">
<h2 id="overview">Overview</h2>
<div class="grid">
<table>
<tr><th colspan="2">Dataset statistics</th></tr>
<tr><td>Number of variables</td><td>{{num .Variables}}</td></tr>
<tr><td>Number of observations</td><td>{{num .Rows}}</td></tr>
{{if lt .Processed .Rows}}<tr><td>Observations profiled</td><td>{{num .Processed}}</td></tr>{{end}}
<tr><td>Missing cells</td><td>{{num .MissingCells}}</td></tr>
<tr><td>Missing cells (%)</td><td>{{pct .MissingPct}}</td></tr>
{{if .DuplicatesChecked}}<tr><td>Duplicate rows</td><td>{{num .DuplicateRows}}</td></tr>
<tr><td>Duplicate rows (%)</td><td>{{pct .DuplicatePct}}</td></tr>{{end}}
</table>
<table>
<tr><th colspan="2">Variable types</th></tr>
{{range $kind, $n := .KindCounts}}<tr><td>{{$kind}}</td><td>{{num $n}}</td></tr>
{{end}}</table>
</div>
{{with .Warnings}}<h3>Alerts</h3>
<ul class="warn">{{range .}}<li data-kind="{{.Kind}}">{{.Message}}</li>
{{end}}</ul>{{end}}

<h2 id="variables">Variables</h2>
{{range .Cols}}<div class="var" id="var-{{.Header}}">
<h3>{{.Label}} <span class="kind">{{.Kind}}</span></h3>
<div class="grid">
<table>
<tr><td>Distinct</td><td>{{num .Unique}}</td></tr>
<tr><td>Missing</td><td>{{num .Missing}} ({{pct .MissingPct}})</td></tr>
{{if eq .Kind "numeric"}}<tr><td>Mean</td><td>{{f4 .Mean}}</td></tr>
<tr><td>Std</td><td>{{f4 .Std}}</td></tr>
<tr><td>Minimum</td><td>{{f4 .Min}}</td></tr>
<tr><td>Maximum</td><td>{{f4 .Max}}</td></tr>
<tr><td>Zeros</td><td>{{num .Zeros}}</td></tr>
<tr><td>Negative</td><td>{{num .Negatives}}</td></tr>
{{if .Infinite}}<tr><td>Infinite</td><td>{{num .Infinite}}</td></tr>{{end}}
{{end}}</table>
{{if eq .Kind "numeric"}}<table>
<tr><th colspan="2">Quantile statistics</th></tr>
<tr><td>5-th percentile</td><td>{{f4 .Quantiles.P5}}</td></tr>
<tr><td>Q1</td><td>{{f4 .Quantiles.P25}}</td></tr>
<tr><td>Median</td><td>{{f4 .Quantiles.P50}}</td></tr>
<tr><td>Q3</td><td>{{f4 .Quantiles.P75}}</td></tr>
<tr><td>95-th percentile</td><td>{{f4 .Quantiles.P95}}</td></tr>
<tr><td>IQR</td><td>{{f4 .IQR}}</td></tr>
</table>
<table>
<tr><th colspan="2">Descriptive statistics</th></tr>
<tr><td>Sum</td><td>{{f4 .Sum}}</td></tr>
<tr><td>Skewness</td><td>{{f4 .Skewness}}</td></tr>
<tr><td>Kurtosis</td><td>{{f4 .Kurtosis}}</td></tr>
{{if .OutlierThreshold}}<tr><td>Outliers (|z| &gt; {{f4 .OutlierThreshold}})</td><td>{{num .OutliersCount}}</td></tr>{{end}}
</table>
{{with .Histogram}}{{$max := maxCount .}}<table class="hist">
{{range .}}<tr><td>{{f4 .Lo}}</td><td class="track"><div class="bar" style="{{barWidth .Count $max}}"></div></td><td>{{num .Count}}</td></tr>
{{end}}</table>{{end}}
{{end}}
{{with .TopValues}}<table>
<tr><th>Value</th><th>Count</th></tr>
{{range .}}<tr><td>{{.Value}}</td><td>{{num .Count}}</td></tr>
{{end}}</table>{{end}}
{{if eq .Kind "datetime"}}<table>
<tr><td>Minimum</td><td>{{day .Earliest}}</td></tr>
<tr><td>Maximum</td><td>{{day .Latest}}</td></tr>
</table>{{end}}
{{if .MaxLength}}<table>
<tr><th colspan="2">Length</th></tr>
<tr><td>Min length</td><td>{{num .MinLength}}</td></tr>
<tr><td>Max length</td><td>{{num .MaxLength}}</td></tr>
<tr><td>Mean length</td><td>{{f4 .MeanLength}}</td></tr>
</table>{{end}}
{{with .ExampleTexts}}<p>e.g. {{range $i, $t := .}}{{if $i}} | {{end}}<code>{{$t}}</code>{{end}}</p>{{end}}
</div>
</div>
{{end}}

{{with .Interactions}}<h2 id="interactions">Interactions</h2>
<table>
<tr><th>Variable</th><th>Variable</th><th>r</th></tr>
{{range .}}<tr><td>{{.A}}</td><td>{{.B}}</td><td style="{{corrColor .R}}">{{f4 .R}}</td></tr>
{{end}}</table>{{end}}

{{if or .Corr .Spearman}}<h2 id="correlations">Correlations</h2>
<div class="grid">
{{with .Corr}}{{template "matrix" .}}{{end}}
{{with .Spearman}}{{template "matrix" .}}{{end}}
</div>{{end}}

<h2 id="sample">Sample</h2>
<h3>First rows</h3>
{{template "rows" (sample .Header .Head)}}
{{with .Tail}}<h3>Last rows</h3>
{{template "rows" (sample $.Header .)}}{{end}}

<p class="kind">Report generated {{day .GeneratedAt}} in {{dur .Duration}}{{if .Explorative}} (explorative){{end}}</p>
</div>
{{end}}

{{define "matrix"}}<table class="corr">
<tr><th>{{.Method}}</th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range $i, $row := .Values}}<tr><th>{{index $.Columns $i}}</th>{{range $row}}<td style="{{corrColor .}}">{{printf "%.2f" .}}</td>{{end}}</tr>
{{end}}</table>{{end}}

{{define "rows"}}<table>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Profiling Report: {{.Name}}</title>
</head>
<body>
<h1>Profiling Report: {{.Name}}</h1>
{{template "report" .}}
</body>
</html>
{{end}}`
