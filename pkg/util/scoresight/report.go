package scoresight

import (
	"bytes"
	"fmt"
	"html/template"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var reportTemplate = template.Must(template.New("prediction").Funcs(template.FuncMap{
	"pct": func(p float64) string { return fmt.Sprintf("%.1f%%", p*100) },
	"raw": func(g float64) string { return fmt.Sprintf("%.2f", g) },
}).Parse(`<article>
<h2>{{.HomeTeam}} v {{.AwayTeam}}</h2>
<p><strong>{{.Date}}</strong> ({{.Season}})</p>
<h3>Prediction: {{.Outcome}} {{.HomeGoals}}-{{.AwayGoals}}</h3>
<table>
<thead><tr><th>Home Win</th><th>Draw</th><th>Away Win</th></tr></thead>
<tbody><tr><td>{{pct .Probabilities.Home}}</td><td>{{pct .Probabilities.Draw}}</td><td>{{pct .Probabilities.Away}}</td></tr></tbody>
</table>
<p>Confidence: <strong>{{.Confidence}}</strong> ({{.ConfidenceBand}})</p>
{{- if .ScoreAdjusted}}
<p><em>Score adjusted for presentation, model estimate {{raw .RawHomeGoals}}-{{raw .RawAwayGoals}}</em></p>
{{- end}}
<h3>Key factors</h3>
<ul>
{{- range .KeyFactors}}
<li>{{.}}</li>
{{- end}}
</ul>
<p><small>Model: {{.Model}}, features {{.FeatureVersion}}</small></p>
</article>`))

// RenderReportHTML renders a prediction as an HTML card
func RenderReportHTML(result *PredictionResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no prediction to render")
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, result); err != nil {
		return "", fmt.Errorf("failed to render prediction report: %w", err)
	}
	return buf.String(), nil
}

// RenderReportMarkdown renders a prediction as markdown for chat clients and the terminal
func RenderReportMarkdown(result *PredictionResult) (string, error) {
	html, err := RenderReportHTML(result)
	if err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert prediction report to markdown: %w", err)
	}
	return markdown, nil
}
