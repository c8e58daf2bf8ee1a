package report

// PageTemplate is the HTML template for the dashboard page.
// Base styles are inline so an exported page renders on its own; the live
// page also loads /static/style.css and /static/app.js.
const PageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 1360px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.6rem; font-weight: 600; margin-bottom: 4px; }
  h2 { font-size: 1.1rem; font-weight: 600; margin: 20px 0 10px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .positive { color: var(--green); }
  .negative { color: var(--red); }

  .slider-box { background: var(--section-bg); padding: 12px; border-radius: 8px; margin: 12px 0; }
  .slider-box label { font-weight: 600; display: block; margin-bottom: 6px; }
  .slider-box input[type=range] { width: 100%; }
  .showing { margin: 8px 0 4px; }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: center; padding: 6px; font-weight: 600; }
  td { padding: 6px; border-bottom: 1px solid var(--border); text-align: center; }

  .charts { display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
  .chart-container { overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  .summary-grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(180px, 1fr));
    gap: 8px;
    margin: 10px 0 16px;
  }
  .summary-card { background: var(--section-bg); padding: 8px 12px; border-radius: 6px; }
  .summary-card .label { color: var(--muted); font-size: 0.75rem; text-transform: uppercase; }
  .summary-card .value { font-weight: 600; }

  .headlines li { list-style: none; padding: 6px 0; border-bottom: 1px solid var(--border); }
  .headlines a { color: var(--accent); text-decoration: none; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media (max-width: 900px) { .charts { grid-template-columns: 1fr; } }
  @media print { .slider-box { display: none; } }
</style>
{{if .Live}}<link rel="stylesheet" href="/static/style.css">{{end}}
</head>
<body data-index="{{.Index}}" data-rows="{{.Rows}}">

<h1>{{.Title}}</h1>
<p class="muted">Source: {{.Source}}{{if .FetchedAt}} · fetched {{.FetchedAt}}{{end}} · {{.Rows}} trading days from {{.Oldest}} to {{.Latest}}{{if .Dropped}} · {{.Dropped}} incomplete days skipped{{end}}</p>

{{if .Live}}
<form class="slider-box" method="get" action="/">
  <label for="date-slider">Adjust slider to explore previous yields ({{.WindowYears}} year history)</label>
  <input type="range" id="date-slider" name="slider" min="0" max="{{.SliderMax}}" value="{{.Slider}}" step="1">
  <noscript><button type="submit">Show</button></noscript>
</form>
{{end}}

<p class="showing" id="showing">Showing data for <strong>{{.DateLabel}}</strong></p>

<!-- ═══════ CURVE TABLE ═══════ -->
<table id="curve-table">
  <tr><th>Treasury Duration</th>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr>
  <tr><td>Yield</td>{{range .Table.Yields}}<td>{{.}}</td>{{end}}</tr>
</table>

<!-- ═══════ CHARTS ═══════ -->
<div class="charts">
  <div class="chart-container" id="curve-chart">{{.CurveChart}}</div>
  <div class="chart-container" id="matrix-chart">{{.Heatmap}}</div>
</div>

<!-- ═══════ SUMMARY ═══════ -->
<h2>Inversions</h2>
<div class="summary-grid" id="summary">
  <div class="summary-card"><div class="label">Inverted pairs</div><div class="value">{{.Summary.Inverted}} of {{.Summary.Pairs}}</div></div>
  <div class="summary-card"><div class="label">10y − 2y</div><div class="value {{.Summary.Class10Y2Y}}">{{.Summary.Spread10Y2Y}}</div></div>
  <div class="summary-card"><div class="label">10y − 3mo</div><div class="value {{.Summary.Class10Y3M}}">{{.Summary.Spread10Y3M}}</div></div>
  <div class="summary-card"><div class="label">Deepest inversion</div><div class="value">{{if .Summary.Deepest}}{{.Summary.Deepest}}{{else}}none{{end}}</div></div>
</div>
{{if .Summary.InvertedCurve}}<p class="negative">The 10-year yield is below the 3-month yield.</p>{{end}}

<!-- ═══════ HEADLINES ═══════ -->
{{if .Headlines}}
<h2>Federal Reserve</h2>
<ul class="headlines">
  {{range .Headlines}}<li><a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a> <span class="muted">{{.Source}} · {{.Published}}</span></li>
  {{end}}
</ul>
{{end}}

<div class="footer">Generated {{.GeneratedAt}}. Yields in percent; matrix cells are row minus column in percentage points.</div>

{{if .Live}}<script src="/static/app.js"></script>{{end}}
</body>
</html>
`
