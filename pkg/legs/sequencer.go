package legs

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/travigo/railenrich/pkg/util"
	"golang.org/x/exp/slices"
)

type GroupingMode string

const (
	// Journeys of a relation share a group only when they visit the same stations in the same order
	GroupingModeSequence GroupingMode = "sequence"
	// Journeys of a relation with the same number of distinct stations share a group
	GroupingModeStationCount GroupingMode = "station-count"
)

var GroupingModes = []GroupingMode{GroupingModeSequence, GroupingModeStationCount}

func ParseGroupingMode(name string) (GroupingMode, error) {
	mode := GroupingMode(strings.ToLower(strings.TrimSpace(name)))
	if mode == "" {
		return GroupingModeSequence, nil
	}

	if !slices.Contains(GroupingModes, mode) {
		return "", fmt.Errorf("unsupported grouping mode %q, supported: %v", name, GroupingModes)
	}

	return mode, nil
}

// UniqueStations lists every station name once in first-seen order
func UniqueStations(records []ctdf.DelayRecord) []string {
	stations := make([]string, 0, len(records))
	for _, record := range records {
		if record.Station == "" {
			continue
		}
		stations = append(stations, record.Station)
	}

	return util.Unique(stations)
}

type StationDate struct {
	Station string
	Date    ctdf.Date
}

// StationDates lists every distinct (station, date) pair in first-seen order
func StationDates(records []ctdf.DelayRecord) []StationDate {
	type pairKey struct {
		station string
		date    string
	}

	seen := map[pairKey]bool{}
	pairs := []StationDate{}

	for _, record := range records {
		if record.Station == "" {
			continue
		}

		key := pairKey{station: record.Station, date: record.Date.String()}
		if seen[key] {
			continue
		}
		seen[key] = true

		pairs = append(pairs, StationDate{Station: record.Station, Date: record.Date})
	}

	return pairs
}

// DeriveJourneyGroups collapses the journeys in the records into distinct groups, ordered by first appearance
func DeriveJourneyGroups(records []ctdf.DelayRecord, mode GroupingMode) []ctdf.JourneyGroup {
	type journeyKey struct {
		id       string
		relation string
	}

	var journeyOrder []journeyKey
	journeyStations := map[journeyKey][]string{}

	for _, record := range records {
		if record.Station == "" {
			continue
		}

		key := journeyKey{id: record.ID, relation: record.Relation}
		if _, exists := journeyStations[key]; !exists {
			journeyOrder = append(journeyOrder, key)
		}
		journeyStations[key] = append(journeyStations[key], record.Station)
	}

	var groups []ctdf.JourneyGroup
	seenGroups := map[string]bool{}

	for _, key := range journeyOrder {
		group := ctdf.JourneyGroup{
			Relation: key.relation,
			Stations: util.Unique(journeyStations[key]),
		}

		var groupingKey string
		switch mode {
		case GroupingModeStationCount:
			groupingKey = group.CountKey()
		default:
			groupingKey = group.Key()
		}

		if seenGroups[groupingKey] {
			continue
		}
		seenGroups[groupingKey] = true

		groups = append(groups, group)
	}

	log.Debug().Int("journeys", len(journeyOrder)).Int("groups", len(groups)).Str("mode", string(mode)).Msg("Derived journey groups")

	return groups
}

// DeriveLegs emits one leg per adjacent station pair of every group. Stations missing
// from the coordinates end up with a nil location on the leg.
func DeriveLegs(groups []ctdf.JourneyGroup, coordinates []ctdf.StationCoordinate) []ctdf.Leg {
	locations := map[string]*ctdf.Location{}
	for _, coordinate := range coordinates {
		if _, exists := locations[coordinate.Name]; exists {
			log.Warn().Str("station", coordinate.Name).Msg("Duplicate station coordinate, keeping the first")
			continue
		}
		locations[coordinate.Name] = coordinate.Location
	}

	var legs []ctdf.Leg

	for _, group := range groups {
		groupKey := group.Key()

		for i := 1; i < len(group.Stations); i++ {
			origin := group.Stations[i-1]
			destination := group.Stations[i]

			legs = append(legs, ctdf.Leg{
				GroupKey:    groupKey,
				Position:    i,
				Origin:      ctdf.StationCoordinate{Name: origin, Location: locations[origin]},
				Destination: ctdf.StationCoordinate{Name: destination, Location: locations[destination]},
			})
		}
	}

	return legs
}

// Partition splits legs into those with coordinates on both ends and those that have to be skipped
func Partition(legs []ctdf.Leg) ([]ctdf.Leg, []ctdf.SkippedLeg) {
	resolvable := []ctdf.Leg{}
	skipped := []ctdf.SkippedLeg{}

	for _, leg := range legs {
		if leg.Resolvable() {
			resolvable = append(resolvable, leg)
		} else {
			skipped = append(skipped, ctdf.SkippedLeg{Leg: leg, MissingStations: leg.MissingStations()})
		}
	}

	return resolvable, skipped
}
