package legs

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railenrich/pkg/ctdf"
)

func record(id string, relation string, station string, day int) ctdf.DelayRecord {
	return ctdf.DelayRecord{
		ID:       id,
		Relation: relation,
		Station:  station,
		Date:     ctdf.NewDate(2024, time.January, day),
	}
}

func TestUniqueStations(t *testing.T) {
	records := []ctdf.DelayRecord{
		record("1", "R1", "A", 1),
		record("1", "R1", "B", 1),
		record("2", "R1", "A", 1),
		record("2", "R1", "C", 1),
		record("2", "R1", "", 1),
		record("3", "R2", "B", 1),
	}

	assert.Equal(t, []string{"A", "B", "C"}, UniqueStations(records))
}

func TestStationDates(t *testing.T) {
	records := []ctdf.DelayRecord{
		record("1", "R1", "A", 1),
		record("1", "R1", "B", 1),
		record("2", "R1", "A", 1),
		record("3", "R1", "A", 2),
	}

	pairs := StationDates(records)

	require.Len(t, pairs, 3)
	assert.Equal(t, "A", pairs[0].Station)
	assert.Equal(t, "2024-01-01", pairs[0].Date.String())
	assert.Equal(t, "B", pairs[1].Station)
	assert.Equal(t, "A", pairs[2].Station)
	assert.Equal(t, "2024-01-02", pairs[2].Date.String())
}

func TestDeriveJourneyGroupsCollapsesRepeatedJourneys(t *testing.T) {
	records := []ctdf.DelayRecord{
		record("1", "R1", "X", 1),
		record("1", "R1", "Y", 1),
		record("1", "R1", "Z", 1),
		record("2", "R1", "X", 2),
		record("2", "R1", "Y", 2),
		record("2", "R1", "Z", 2),
	}

	for _, mode := range GroupingModes {
		t.Run(string(mode), func(t *testing.T) {
			groups := DeriveJourneyGroups(records, mode)

			require.Len(t, groups, 1)
			assert.Equal(t, "R1", groups[0].Relation)
			assert.Equal(t, []string{"X", "Y", "Z"}, groups[0].Stations)

			legs := DeriveLegs(groups, nil)
			require.Len(t, legs, 2)
			assert.Equal(t, [2]string{"X", "Y"}, [2]string{legs[0].Origin.Name, legs[0].Destination.Name})
			assert.Equal(t, [2]string{"Y", "Z"}, [2]string{legs[1].Origin.Name, legs[1].Destination.Name})
		})
	}
}

func TestDeriveJourneyGroupsDuplicateStationsWithinJourney(t *testing.T) {
	records := []ctdf.DelayRecord{
		record("1", "R1", "X", 1),
		record("1", "R1", "Y", 1),
		record("1", "R1", "X", 1),
		record("1", "R1", "Z", 1),
	}

	groups := DeriveJourneyGroups(records, GroupingModeSequence)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"X", "Y", "Z"}, groups[0].Stations)
}

func TestDeriveJourneyGroupsModes(t *testing.T) {
	// Same relation and station count, different stations
	records := []ctdf.DelayRecord{
		record("1", "R1", "X", 1),
		record("1", "R1", "Y", 1),
		record("2", "R1", "X", 1),
		record("2", "R1", "W", 1),
		record("3", "R2", "X", 1),
		record("3", "R2", "Y", 1),
		record("4", "R1", "X", 1),
		record("4", "R1", "Y", 1),
		record("4", "R1", "Z", 1),
	}

	bySequence := DeriveJourneyGroups(records, GroupingModeSequence)
	require.Len(t, bySequence, 4)
	assert.Equal(t, "R1||X>Y", bySequence[0].Key())
	assert.Equal(t, "R1||X>W", bySequence[1].Key())
	assert.Equal(t, "R2||X>Y", bySequence[2].Key())
	assert.Equal(t, "R1||X>Y>Z", bySequence[3].Key())

	byCount := DeriveJourneyGroups(records, GroupingModeStationCount)
	require.Len(t, byCount, 3)
	assert.Equal(t, "R1||X>Y", byCount[0].Key())
	assert.Equal(t, "R2||X>Y", byCount[1].Key())
	assert.Equal(t, "R1||X>Y>Z", byCount[2].Key())
}

func TestDeriveJourneyGroupsKeepsSequencesWithSeparatorsInNames(t *testing.T) {
	records := []ctdf.DelayRecord{
		record("1", "R1", "A>B", 1),
		record("1", "R1", "C", 1),
		record("2", "R1", "A", 1),
		record("2", "R1", "B>C", 1),
	}

	groups := DeriveJourneyGroups(records, GroupingModeSequence)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"A>B", "C"}, groups[0].Stations)
	assert.Equal(t, []string{"A", "B>C"}, groups[1].Stations)

	legs := DeriveLegs(groups, nil)
	require.Len(t, legs, 2)
	assert.NotEqual(t, legs[0].GroupKey, legs[1].GroupKey)
}

func TestDeriveJourneyGroupsSameIDDifferentRelation(t *testing.T) {
	records := []ctdf.DelayRecord{
		record("1", "R1", "X", 1),
		record("1", "R2", "Y", 1),
		record("1", "R1", "Y", 1),
		record("1", "R2", "Z", 1),
	}

	groups := DeriveJourneyGroups(records, GroupingModeSequence)

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"X", "Y"}, groups[0].Stations)
	assert.Equal(t, []string{"Y", "Z"}, groups[1].Stations)
}

func TestDeriveLegsCount(t *testing.T) {
	for n := 1; n <= 8; n++ {
		stations := make([]string, n)
		for i := range stations {
			stations[i] = fmt.Sprintf("S%d", i)
		}

		legs := DeriveLegs([]ctdf.JourneyGroup{{Relation: "R", Stations: stations}}, nil)

		require.Len(t, legs, n-1)
		for i, leg := range legs {
			assert.Equal(t, i+1, leg.Position)
			assert.Equal(t, stations[i], leg.Origin.Name)
			assert.Equal(t, stations[i+1], leg.Destination.Name)
		}
	}
}

func TestDeriveLegsJoinsCoordinates(t *testing.T) {
	groups := []ctdf.JourneyGroup{{Relation: "R1", Stations: []string{"X", "Q", "Z"}}}
	coordinates := []ctdf.StationCoordinate{
		{Name: "X", Location: &ctdf.Location{Latitude: 1, Longitude: 1}},
		{Name: "Q"},
		{Name: "Z", Location: &ctdf.Location{Latitude: 3, Longitude: 3}},
		{Name: "X", Location: &ctdf.Location{Latitude: 9, Longitude: 9}},
	}

	legs := DeriveLegs(groups, coordinates)

	require.Len(t, legs, 2)
	assert.Equal(t, "R1||X>Q>Z", legs[0].GroupKey)
	assert.Equal(t, 1.0, legs[0].Origin.Location.Latitude)
	assert.Nil(t, legs[0].Destination.Location)

	resolvable, skipped := Partition(legs)
	assert.Empty(t, resolvable)
	require.Len(t, skipped, 2)
	assert.Equal(t, []string{"Q"}, skipped[0].MissingStations)
	assert.Equal(t, []string{"Q"}, skipped[1].MissingStations)
}

func TestPartition(t *testing.T) {
	location := &ctdf.Location{Latitude: 1, Longitude: 1}
	legs := []ctdf.Leg{
		{Position: 1, Origin: ctdf.StationCoordinate{Name: "A", Location: location}, Destination: ctdf.StationCoordinate{Name: "B", Location: location}},
		{Position: 2, Origin: ctdf.StationCoordinate{Name: "B", Location: location}, Destination: ctdf.StationCoordinate{Name: "C"}},
		{Position: 3, Origin: ctdf.StationCoordinate{Name: "C"}, Destination: ctdf.StationCoordinate{Name: "D"}},
	}

	resolvable, skipped := Partition(legs)

	require.Len(t, resolvable, 1)
	assert.Equal(t, 1, resolvable[0].Position)
	require.Len(t, skipped, 2)
	assert.Equal(t, []string{"C"}, skipped[0].MissingStations)
	assert.Equal(t, []string{"C", "D"}, skipped[1].MissingStations)
}

func TestParseGroupingMode(t *testing.T) {
	mode, err := ParseGroupingMode("")
	require.NoError(t, err)
	assert.Equal(t, GroupingModeSequence, mode)

	mode, err = ParseGroupingMode("Station-Count")
	require.NoError(t, err)
	assert.Equal(t, GroupingModeStationCount, mode)

	_, err = ParseGroupingMode("relation")
	assert.Error(t, err)
}
