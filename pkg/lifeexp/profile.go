package lifeexp

import (
	"fmt"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/stats"
)

// Field is one "name: value" line of a profile.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Profile summarizes a country (or the World aggregate) for a year (or
// AllYears).
type Profile struct {
	Title   string  `json:"title" yaml:"title"`
	Fields  []Field `json:"fields" yaml:"fields"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// NoDataMessage is set when a country has no row for the requested year.
const NoDataMessage = "No data available."

// BuildProfile computes the profile. Aggregates average every numeric column
// except year; a single country-year shows that row, text columns included.
func BuildProfile(table *datasets.LifeTable, country string, year int) *Profile {
	p := &Profile{Fields: []Field{}}
	switch {
	case country == World && year == AllYears:
		p.Title = "Global Average (All Years)"
	case country == World:
		p.Title = fmt.Sprintf("Global Average (%d)", year)
	case year == AllYears:
		p.Title = fmt.Sprintf("%s Average (All Years)", country)
	default:
		p.Title = fmt.Sprintf("%s Profile (%d)", country, year)
	}

	rows := selectRows(table, country, year)

	if country != World && year != AllYears {
		if len(rows) == 0 {
			p.Message = NoDataMessage
			return p
		}
		row := rows[0]
		for _, c := range table.Columns {
			if c.Numeric {
				p.Fields = append(p.Fields, Field{Name: c.Name, Value: formatValue(row.Value(c.Name))})
			} else {
				v := row.Text[c.Name]
				if v == "" {
					v = "N/A"
				}
				p.Fields = append(p.Fields, Field{Name: c.Name, Value: v})
			}
		}
		return p
	}

	for _, c := range table.Columns {
		if !c.Numeric {
			continue
		}
		p.Fields = append(p.Fields, Field{Name: c.Name, Value: formatValue(stats.Mean(columnValues(rows, c.Name)))})
	}
	return p
}
