// Package filter parses API query parameters into the dashboard filters of
// the domain packages.
package filter

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/agentstation/datastory/pkg/constants"
	"github.com/agentstation/datastory/pkg/datasets"
	pkgerrors "github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/flights"
	"github.com/agentstation/datastory/pkg/food"
	"github.com/agentstation/datastory/pkg/lifeexp"
	"github.com/agentstation/datastory/pkg/story"
)

// ParseFlights reads airline, start_date, end_date and granularity. Dates
// are ISO 8601 (date or date-time) and are truncated to the UTC day.
func ParseFlights(r *http.Request) (flights.Filter, error) {
	return Flights(r.URL.Query())
}

// Flights is ParseFlights over query values.
func Flights(q url.Values) (flights.Filter, error) {
	f := flights.Filter{Airline: strings.TrimSpace(q.Get("airline"))}

	var err error
	if f.Start, err = parseDate(q, "start_date"); err != nil {
		return flights.Filter{}, err
	}
	if f.End, err = parseDate(q, "end_date"); err != nil {
		return flights.Filter{}, err
	}
	if f.Granularity, err = flights.ParseGranularity(q.Get("granularity")); err != nil {
		return flights.Filter{}, err
	}
	if err := f.Validate(); err != nil {
		return flights.Filter{}, err
	}
	return f, nil
}

// LifeQuery is the selection shared by the WHO endpoints.
type LifeQuery struct {
	Indicator string
	Country   string
	Year      int
}

// ParseLife reads indicator (default life expectancy), country (default
// World) and year (default all years).
func ParseLife(r *http.Request) (LifeQuery, error) {
	return Life(r.URL.Query())
}

// Life is ParseLife over query values.
func Life(q url.Values) (LifeQuery, error) {
	lq := LifeQuery{
		Indicator: strings.TrimSpace(q.Get("indicator")),
		Country:   strings.TrimSpace(q.Get("country")),
	}
	if lq.Indicator == "" {
		lq.Indicator = datasets.ColumnLifeExpectancy
	}
	if lq.Country == "" {
		lq.Country = lifeexp.World
	}
	year, err := lifeexp.ParseYear(strings.TrimSpace(q.Get("year")))
	if err != nil {
		return LifeQuery{}, err
	}
	lq.Year = year
	return lq, nil
}

// ParseTable reads the WHO data table query: country, year, sort, order
// (asc|desc), search, page and page_size.
func ParseTable(r *http.Request) (lifeexp.TableQuery, error) {
	q := r.URL.Query()
	lq, err := Life(q)
	if err != nil {
		return lifeexp.TableQuery{}, err
	}
	tq := lifeexp.TableQuery{
		Country: lq.Country,
		Year:    lq.Year,
		Sort:    strings.TrimSpace(q.Get("sort")),
		Search:  strings.TrimSpace(q.Get("search")),
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		tq.Desc = true
	default:
		return lifeexp.TableQuery{}, pkgerrors.NewValidationError("order", q.Get("order"), "must be asc or desc")
	}
	if tq.Page, err = parseInt(q, "page", 1, 1, 0); err != nil {
		return lifeexp.TableQuery{}, err
	}
	if tq.PageSize, err = parseInt(q, "page_size", constants.DefaultPageSize, 1, constants.MaxPageSize); err != nil {
		return lifeexp.TableQuery{}, err
	}
	return tq, nil
}

// ParseBins reads the histogram bin count of the analytics page.
func ParseBins(r *http.Request, def int) (int, error) {
	return parseInt(r.URL.Query(), "bins", def, 1, 200)
}

// ParseFood reads element, item and top.
func ParseFood(r *http.Request) (food.Filter, error) {
	return Food(r.URL.Query())
}

// Food is ParseFood over query values.
func Food(q url.Values) (food.Filter, error) {
	f := food.Filter{
		Element: strings.TrimSpace(q.Get("element")),
		Item:    strings.TrimSpace(q.Get("item")),
	}
	var err error
	if f.Top, err = parseInt(q, "top", food.DefaultTop, 1, constants.MaxPageSize); err != nil {
		return food.Filter{}, err
	}
	return f, nil
}

// ParseStory combines the flights filter, the WHO indicator and year and
// the FAO element into a story request. An absent year selects the latest
// year.
func ParseStory(r *http.Request) (story.Request, error) {
	return Story(r.URL.Query())
}

// Story is ParseStory over query values.
func Story(q url.Values) (story.Request, error) {
	ff, err := Flights(q)
	if err != nil {
		return story.Request{}, err
	}
	req := story.Request{
		Flights:   ff,
		Indicator: strings.TrimSpace(q.Get("indicator")),
		Element:   strings.TrimSpace(q.Get("element")),
	}
	if y := strings.TrimSpace(q.Get("year")); y != "" {
		if req.Year, err = lifeexp.ParseYear(y); err != nil {
			return story.Request{}, err
		}
	}
	return req, nil
}

func parseDate(q url.Values, key string) (*time.Time, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	t, err := iso8601.ParseString(s)
	if err != nil {
		return nil, pkgerrors.NewValidationError(key, s, "must be an ISO 8601 date")
	}
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}

// parseInt reads key with default def and bounds [lo, hi]; hi <= 0 means
// unbounded.
func parseInt(q url.Values, key string, def, lo, hi int) (int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, pkgerrors.NewValidationError(key, s, "must be an integer")
	}
	if n < lo || (hi > 0 && n > hi) {
		msg := "must be at least " + strconv.Itoa(lo)
		if hi > 0 {
			msg = "must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)
		}
		return 0, pkgerrors.NewValidationError(key, s, msg)
	}
	return n, nil
}
