package ctdf

import "time"

// EnrichmentRun tracks how far a single composition run got
type EnrichmentRun struct {
	Identifier string
	State      string

	Inputs []string

	Stations           int
	UnresolvedStations int
	WeatherRows        int
	Routes             int
	EstimatedRoutes    int
	SkippedLegs        int

	Error string

	CreationDateTime     time.Time
	ModificationDateTime time.Time
}
