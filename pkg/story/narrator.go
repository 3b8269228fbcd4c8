package story

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Narrator writes a narrative from facts.
type Narrator interface {
	Name() string
	Narrate(ctx context.Context, facts *Facts) (string, error)
}

// Story is a generated narrative with the facts it was written from.
type Story struct {
	Narrator string `json:"narrator" yaml:"narrator"`
	Text     string `json:"text" yaml:"text"`
	Facts    *Facts `json:"facts" yaml:"facts"`
}

const storyTemplate = `{{- with .Flights -}}
Flights. {{ .Flights }} flights{{ if .Airline }} operated by {{ .Airline }}{{ end }} were analysed.
{{- if .MeanDelay }} On average they arrived {{ delay .MeanDelay }}{{ with .MedianDelay }} (median {{ num . }} min){{ end }}.{{ end }}
{{- with .LateShare }} {{ num . }}% landed more than 15 minutes behind schedule.{{ end }}
{{- if .WorstDay }} {{ .WorstDay }} was the worst day to fly{{ if .WorstAirline }} and {{ .WorstAirline }} the most delayed airline{{ end }}.{{ end }}
{{- if .WorstAirport }} Departures from {{ .WorstAirport }} suffered the longest delays.{{ end }}
{{- if .TopCause }} The largest share of delay minutes came from {{ cause .TopCause }}.{{ end }}
{{ end -}}
{{- with .Life -}}
Health. {{ if .Sample }}(sample data) {{ end }}Across {{ .Countries }} countries in {{ year .Year }}
{{- with .GlobalMean }} the average {{ label $.Life.Indicator }} was {{ num . }}{{ end }}.
{{- if and .Highest .Lowest }} {{ .Highest.Name }} ranked highest ({{ num .Highest.Value }}) and {{ .Lowest.Name }} lowest ({{ num .Lowest.Value }}).{{ end }}
{{- with .StrongestFactor }} {{ .Name }} is the factor most correlated with it (r = {{ printf "%.3f" .Value }}).{{ end }}
{{ end -}}
{{- with .Food -}}
Food. {{ .Records }} FAO records{{ if .Element }} of {{ .Element }}{{ end }} were summarised.
{{- with .TopArea }} {{ .Name }} moved the most, averaging {{ num .Value }} {{ $.Food.Unit }} a year.{{ end }}
{{ end -}}`

var funcs = template.FuncMap{
	"num": func(v any) string {
		switch x := v.(type) {
		case *float64:
			return fmt.Sprintf("%.2f", *x)
		case float64:
			return fmt.Sprintf("%.2f", x)
		}
		return fmt.Sprint(v)
	},
	"delay": func(v *float64) string {
		if *v < 0 {
			return fmt.Sprintf("%.2f minutes early", -*v)
		}
		return fmt.Sprintf("%.2f minutes late", *v)
	},
	"cause": func(c string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimSuffix(c, "_DELAY"), "_", " ")) + " delays"
	},
	"label": func(ind string) string {
		return strings.ReplaceAll(ind, "_", " ")
	},
	"year": func(y int) string {
		if y == 1999 {
			return "all years"
		}
		return fmt.Sprint(y)
	},
}

var tmpl = template.Must(template.New("story").Funcs(funcs).Parse(storyTemplate))

// TemplateNarrator writes a deterministic narrative without external calls.
type TemplateNarrator struct{}

// Name implements Narrator.
func (TemplateNarrator) Name() string {
	return "template"
}

// Narrate implements Narrator.
func (TemplateNarrator) Narrate(_ context.Context, facts *Facts) (string, error) {
	if facts == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, facts); err != nil {
		return "", fmt.Errorf("render story: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Tell runs n over facts and wraps the result in a Story.
func Tell(ctx context.Context, n Narrator, facts *Facts) (*Story, error) {
	text, err := n.Narrate(ctx, facts)
	if err != nil {
		return nil, err
	}
	return &Story{Narrator: n.Name(), Text: text, Facts: facts}, nil
}
