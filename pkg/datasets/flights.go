package datasets

import (
	"context"
	"math"
	"time"
)

// Cause is one of the delay cause columns of the flights extract.
type Cause int

// Delay causes in column order.
const (
	CauseAirSystem Cause = iota
	CauseSecurity
	CauseAirline
	CauseLateAircraft
	CauseWeather
	numCauses
)

// Causes lists every delay cause.
var Causes = []Cause{CauseAirSystem, CauseSecurity, CauseAirline, CauseLateAircraft, CauseWeather}

var causeColumns = [numCauses]string{
	"AIR_SYSTEM_DELAY",
	"SECURITY_DELAY",
	"AIRLINE_DELAY",
	"LATE_AIRCRAFT_DELAY",
	"WEATHER_DELAY",
}

// Column returns the CSV column name of the cause.
func (c Cause) Column() string {
	if c < 0 || c >= numCauses {
		return ""
	}
	return causeColumns[c]
}

// String implements fmt.Stringer.
func (c Cause) String() string {
	return c.Column()
}

// Flight is one cleaned flight record.
type Flight struct {
	// Date is the flight date; zero when missing.
	Date time.Time
	// Airline is the carrier code and AirlineName its display name.
	Airline     string
	AirlineName string
	// Origin is the origin airport code and OriginName its display name.
	Origin      string
	OriginName  string
	Destination string
	// DayName is the English weekday name, or "" when unknown.
	DayName        string
	ArrivalDelay   float64
	DepartureDelay float64
	// Causes holds the per-cause delay minutes indexed by Cause.
	Causes [numCauses]float64
	// LateArrival is the IS_LATE_ARR flag (1, 0 or NaN).
	LateArrival float64
}

// Cause returns the delay minutes attributed to c.
func (f *Flight) Cause(c Cause) float64 {
	if c < 0 || c >= numCauses {
		return math.NaN()
	}
	return f.Causes[c]
}

// FlightTable is the cleaned flights dataset.
type FlightTable struct {
	Rows []Flight
	// HasLateFlag is true when the source carried an IS_LATE_ARR column.
	HasLateFlag bool
	// CausesPresent lists the cause columns found in the source.
	CausesPresent []Cause
}

// LoadFlights reads the flights extract and resolves airline and airport
// names through the given lookups (either may be nil).
func (l *Loader) LoadFlights(ctx context.Context, airlines, airports Lookup) (*FlightTable, SourceInfo, error) {
	path := l.path(l.files.Flights)
	info := SourceInfo{Dataset: DatasetFlights, Path: path, ModTime: l.modTime(path)}
	table := &FlightTable{}

	var (
		prepared  bool
		hasDate   bool
		hasParts  bool
		hasDay    bool
		hasName   bool
		hasOrigin bool
		causeIdx  [numCauses]int
	)

	err := scanCSV(l.fs, path, scanOptions{}, func(h header, line int, record []string) error {
		if line%50000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if !prepared {
			prepared = true
			hasDate = h.has("DATE")
			hasParts = h.has("YEAR") && h.has("MONTH") && h.has("DAY")
			hasDay = h.has("DAY_OF_WEEK")
			hasName = h.has("AIRLINE_NAME")
			hasOrigin = h.has("ORIGIN_NAME")
			table.HasLateFlag = h.has("IS_LATE_ARR")
			for _, c := range Causes {
				if i, ok := h.index[c.Column()]; ok {
					causeIdx[c] = i
					table.CausesPresent = append(table.CausesPresent, c)
				} else {
					causeIdx[c] = -1
				}
			}
		}

		f := Flight{
			Airline:        h.get(record, "AIRLINE"),
			Origin:         h.get(record, "ORIGIN_AIRPORT"),
			Destination:    h.get(record, "DESTINATION_AIRPORT"),
			ArrivalDelay:   parseNumber(h.get(record, "ARRIVAL_DELAY")),
			DepartureDelay: parseNumber(h.get(record, "DEPARTURE_DELAY")),
			LateArrival:    math.NaN(),
		}

		switch {
		case hasDate:
			f.Date = parseDate(h.get(record, "DATE"))
		case hasParts:
			f.Date = dateFromParts(h.get(record, "YEAR"), h.get(record, "MONTH"), h.get(record, "DAY"))
		}

		if hasDay {
			f.DayName = DayName(h.get(record, "DAY_OF_WEEK"))
		} else if !f.Date.IsZero() {
			f.DayName = weekdayName(f.Date)
		}

		f.AirlineName = h.get(record, "AIRLINE_NAME")
		if !hasName || f.AirlineName == "" {
			f.AirlineName = airlines.Name(f.Airline)
		}
		f.OriginName = h.get(record, "ORIGIN_NAME")
		if !hasOrigin || f.OriginName == "" {
			f.OriginName = airports.Name(f.Origin)
		}

		for c := range causeIdx {
			if causeIdx[c] < 0 {
				f.Causes[c] = math.NaN()
				continue
			}
			f.Causes[c] = parseNumber(h.at(record, causeIdx[c]))
		}
		if table.HasLateFlag {
			f.LateArrival = parseFlag(h.get(record, "IS_LATE_ARR"))
		}

		table.Rows = append(table.Rows, f)
		info.Rows++
		return nil
	})
	if err != nil {
		return nil, info, err
	}
	return table, info, nil
}

// AirlineNames returns the sorted distinct airline display names.
func (t *FlightTable) AirlineNames() []string {
	seen := make(map[string]struct{})
	for i := range t.Rows {
		if n := t.Rows[i].AirlineName; n != "" {
			seen[n] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// DateRange returns the earliest and latest flight dates. ok is false when
// no row carries a date.
func (t *FlightTable) DateRange() (lo, hi time.Time, ok bool) {
	for i := range t.Rows {
		d := t.Rows[i].Date
		if d.IsZero() {
			continue
		}
		if !ok || d.Before(lo) {
			lo = d
		}
		if !ok || d.After(hi) {
			hi = d
		}
		ok = true
	}
	return lo, hi, ok
}
