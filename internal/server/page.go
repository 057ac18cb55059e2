package server

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>The EDA App</title>
<style>
body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #262730; }
.layout { display: flex; min-height: 100vh; }
.sidebar { width: 300px; flex-shrink: 0; background: #f0f2f6; padding: 2em 1.2em; box-sizing: border-box; }
.main { flex: 1; padding: 2em 3em; min-width: 0; }
.info { background: #e8f0fe; color: #1c4587; padding: .8em 1em; border-radius: 6px; }
.error { background: #fdecea; color: #8c1d18; padding: .8em 1em; border-radius: 6px; margin-bottom: 1em; }
.frame { max-height: 420px; overflow: auto; border: 1px solid #e6e9ef; }
.frame table { border-collapse: collapse; font-size: .85em; }
.frame td, .frame th { border: 1px solid #e6e9ef; padding: 3px 8px; white-space: nowrap; }
.frame th { background: #f0f2f6; position: sticky; top: 0; }
.muted { color: #6c757d; font-size: .85em; }
button { background: #fff; border: 1px solid #d0d3da; border-radius: 6px; padding: .5em 1em; cursor: pointer; }
</style>
</head>
<body>
<div class="layout">
<aside class="sidebar">
<h3>1. Upload CSV data here</h3>
<form action="{{.Base}}/upload" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,.tsv,.xlsx">
<p class="muted">Limit {{.MaxUploadMB}} MB per file</p>
<button type="submit">Upload</button>
</form>
{{with .ExampleURL}}<p><a href="{{.}}">Example CSV input file</a></p>{{end}}
{{if not .Awaiting}}<form action="{{.Base}}/reset" method="post"><button type="submit">Start over</button></form>{{end}}
</aside>
<main class="main">
<h1>The EDA App</h1>
<p>This is the <b>EDA App</b>: upload a CSV file and get an automatically generated profiling report.</p>
<hr>
{{with .Flash}}<div class="error">{{.}}</div>{{end}}
{{with .Error}}<div class="error">{{.}}</div>{{end}}
{{if .Page}}{{with .Page}}
<h2>Input DataFrame</h2>
<p class="muted">{{.Dataset.Name}}: {{num .Table.TotalRows}} rows × {{num .Table.TotalCols}} columns{{if .Table.Truncated}}, showing the first {{num (len .Table.Rows)}}{{end}}</p>
<div class="frame"><table>
<tr><th></th>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range $i, $row := .Table.Rows}}<tr><th>{{$i}}</th>{{range $row}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table></div>
<hr>
<h2>Profiling Report</h2>
{{end}}{{.Report}}
{{else if .Awaiting}}
<div class="info">Awaiting for CSV file to be uploaded.</div>
<form action="{{.Base}}/example" method="post"><p><button type="submit">Press to use Example Dataset</button></p></form>
{{end}}
</main>
</div>
</body>
</html>
`
