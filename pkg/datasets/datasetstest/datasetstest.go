// Package datasetstest provides small in-memory data folders for tests.
package datasetstest

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// Dir is the data folder used by NewFS.
const Dir = "/data"

// FlightsCSV is a cleaned flights extract covering two airlines, two weeks
// and every delay cause.
const FlightsCSV = `DATE,AIRLINE,AIRLINE_NAME,ORIGIN_AIRPORT,ORIGIN_NAME,DESTINATION_AIRPORT,DAY_OF_WEEK,DEPARTURE_DELAY,ARRIVAL_DELAY,AIR_SYSTEM_DELAY,SECURITY_DELAY,AIRLINE_DELAY,LATE_AIRCRAFT_DELAY,WEATHER_DELAY,IS_LATE_ARR
2015-01-05,AA,American Airlines Inc.,JFK,John F. Kennedy International Airport,LAX,Lundi,5,10,0,0,10,0,0,0
2015-01-05,DL,Delta Air Lines Inc.,ATL,Hartsfield-Jackson Atlanta International Airport,JFK,Lundi,25,30,5,0,20,5,0,1
2015-01-06,AA,American Airlines Inc.,JFK,John F. Kennedy International Airport,ORD,Mardi,-2,-5,,,,,,0
2015-01-07,DL,Delta Air Lines Inc.,ATL,Hartsfield-Jackson Atlanta International Airport,LAX,Mercredi,40,50,10,0,0,30,10,1
2015-01-12,AA,American Airlines Inc.,ORD,Chicago O'Hare International Airport,JFK,Lundi,0,20,0,0,20,0,0,1
2015-01-13,DL,Delta Air Lines Inc.,ATL,Hartsfield-Jackson Atlanta International Airport,ORD,Mardi,,,,,,,,
`

// AirlinesCSV is the airline lookup.
const AirlinesCSV = `IATA_CODE,AIRLINE
AA,American Airlines Inc.
DL,Delta Air Lines Inc.
`

// AirportsCSV is the airport lookup.
const AirportsCSV = `IATA_CODE,AIRPORT,CITY,STATE,COUNTRY
JFK,John F. Kennedy International Airport,New York,NY,USA
ATL,Hartsfield-Jackson Atlanta International Airport,Atlanta,GA,USA
ORD,Chicago O'Hare International Airport,Chicago,IL,USA
`

// LifeCSV is a WHO extract with three countries over two years and one text
// column.
const LifeCSV = `country,year,status,life_expectancy,IDH,GDP
France,2000,Developed,79.0,0.85,22000
France,2001,Developed,79.4,0.86,23000
Chad,2000,Developing,47.5,0.29,200
Chad,2001,Developing,48.1,0.30,220
Japan,2000,Developed,81.2,0.86,39000
Japan,2001,Developed,81.5,,38000
Nowhere,unknown,Developing,50,0.1,1
`

// FoodCSV is a FAO extract with two areas and two elements.
const FoodCSV = `Area Abbreviation,Area Code,Area,Item Code,Item,Element Code,Element,Unit,latitude,longitude,Y2011,Y2012,Y2013
AFG,2,Afghanistan,2511,Wheat and products,5142,Food,1000 tonnes,33.94,67.71,3000,3100,3200
AFG,2,Afghanistan,2513,Barley and products,5521,Feed,1000 tonnes,33.94,67.71,100,,120
ALB,3,Albania,2511,Wheat and products,5142,Food,1000 tonnes,41.15,20.17,400,410,420
`

// Files holds the contents written by NewFS, keyed by file name.
type Files map[string]string

// Default returns every fixture under its default file name.
func Default() Files {
	return Files{
		"dashboard_flights.csv":             FlightsCSV,
		"airlines.csv":                      AirlinesCSV,
		"airports.csv":                      AirportsCSV,
		"Life Expectancy Data with IDH.csv": LifeCSV,
		"FAO.csv":                           FoodCSV,
	}
}

// NewFS writes files into Dir on a fresh in-memory filesystem.
func NewFS(t testing.TB, files Files) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(Dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", Dir, err)
	}
	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.Join(Dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fs
}

// WriteDir writes files into a fresh temporary directory on the OS
// filesystem and returns its path.
func WriteDir(t testing.TB, files Files) string {
	t.Helper()
	dir := t.TempDir()
	fs := afero.NewOsFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
