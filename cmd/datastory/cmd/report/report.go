package report

import (
	"fmt"
	"io"

	"github.com/agentstation/utc"
	md "github.com/nao1215/markdown"

	"github.com/agentstation/datastory/internal/cmd/table"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/flights"
	"github.com/agentstation/datastory/pkg/food"
	"github.com/agentstation/datastory/pkg/lifeexp"
	"github.com/agentstation/datastory/pkg/story"
)

// topAreas is how many FAO areas the report lists.
const topAreas = 10

// Report is a markdown data story over one snapshot.
type Report struct {
	Snapshot    *datasets.Snapshot
	Story       *story.Story
	Request     story.Request
	GeneratedAt utc.Time
	Version     string
}

// Write renders the report to w.
func (r *Report) Write(w io.Writer) error {
	doc := md.NewMarkdown(w)
	doc.H1("Data story").
		PlainTextf("%s %s from %s.",
			md.Italic("Generated"),
			r.GeneratedAt.Format("2006-01-02 15:04"),
			md.Code(r.Snapshot.Dir)).
		LF()

	doc.H2("Narrative")
	if r.Story != nil && r.Story.Text != "" {
		doc.PlainText(r.Story.Text).LF()
		doc.PlainText(md.Italic("Narrated by " + r.Story.Narrator + ".")).LF()
	} else {
		doc.PlainText("No narrative available.").LF()
	}

	r.flights(doc)
	r.life(doc)
	r.food(doc)

	doc.H2("Sources")
	sources := table.Sources(r.Snapshot.Sources, false)
	sources.Headers[0] = "Status"
	addTable(doc, sources)
	if len(r.Snapshot.Warnings) > 0 {
		doc.H3("Warnings")
		doc.BulletList(r.Snapshot.Warnings...)
	}

	if r.Version != "" {
		doc.HorizontalRule()
		doc.PlainText(md.Italic("datastory " + r.Version))
	}
	return doc.Build()
}

func (r *Report) flights(doc *md.Markdown) {
	if r.Snapshot.Flights == nil || len(r.Snapshot.Flights.Rows) == 0 {
		return
	}
	d := flights.Build(r.Snapshot.Flights, r.Request.Flights)

	doc.H2("Flights")
	if a := r.Request.Flights.Airline; a != "" {
		doc.PlainTextf("Flights operated by %s.", md.Bold(a)).LF()
	}
	addTable(doc, table.KPIs(d.KPIs))
	for _, id := range []string{flights.FigureAirlines, flights.FigureDays, flights.FigureCauses} {
		fig := d.Figure(id)
		if fig == nil || fig.Empty {
			continue
		}
		doc.H3(fig.Title)
		addTable(doc, table.Figure(fig, false))
		if fig.Caption != "" {
			doc.PlainText(md.Italic(fig.Caption)).LF()
		}
	}
}

func (r *Report) life(doc *md.Markdown) {
	life := r.Snapshot.Life
	if life == nil || len(life.Rows) == 0 {
		return
	}
	indicator := r.Request.Indicator
	if indicator == "" {
		indicator = datasets.ColumnLifeExpectancy
	}
	year := r.Request.Year
	if year == 0 {
		year = lifeexp.OptionsFor(life).DefaultYear
	}

	doc.H2("Life expectancy")
	if life.Fallback {
		doc.Blockquote("The WHO file was not found; these numbers come from built-in sample data.")
	}
	p := lifeexp.BuildProfile(life, lifeexp.World, year)
	doc.H3(p.Title)
	addTable(doc, table.Profile(p))

	if corrs, err := lifeexp.Correlations(life, indicator); err == nil && len(corrs) > 0 {
		doc.H3(fmt.Sprintf("Factors correlated with %s", indicator))
		addTable(doc, table.Correlations(corrs))
	}
}

func (r *Report) food(doc *md.Markdown) {
	if r.Snapshot.Food == nil || len(r.Snapshot.Food.Rows) == 0 {
		return
	}
	s := food.Summarize(r.Snapshot.Food, food.Filter{Element: r.Request.Element, Top: topAreas})

	doc.H2("Food")
	if s.Filter.Element != "" {
		doc.PlainTextf("Element: %s.", md.Bold(s.Filter.Element)).LF()
	}
	addTable(doc, table.FoodAreas(s))
}

func addTable(doc *md.Markdown, d table.Data) {
	if len(d.Rows) == 0 {
		doc.PlainText("No data.").LF()
		return
	}
	doc.Table(md.TableSet{Header: d.Headers, Rows: d.Rows}).LF()
}
