package ctdf

// Leg is a pair of adjacent stations within a journey group. Position starts at 1 for the first pair.
type Leg struct {
	GroupKey string
	Position int

	Origin      StationCoordinate
	Destination StationCoordinate
}

func (l Leg) Resolvable() bool {
	return l.Origin.Resolved() && l.Destination.Resolved()
}

func (l Leg) MissingStations() []string {
	var missing []string

	if !l.Origin.Resolved() {
		missing = append(missing, l.Origin.Name)
	}
	if !l.Destination.Resolved() {
		missing = append(missing, l.Destination.Name)
	}

	return missing
}

type SkippedLeg struct {
	Leg             Leg
	MissingStations []string
}
