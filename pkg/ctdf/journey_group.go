package ctdf

import (
	"fmt"
	"strings"
)

// JourneyGroup is one logical route pattern shared by one or more journeys of a relation
type JourneyGroup struct {
	Relation string
	Stations []string
}

const journeyGroupStationSeparator = ">"

// Separator characters inside names are backslash escaped so distinct groups never share a key
var keyPartEscaper = strings.NewReplacer(`\`, `\\`, `>`, `\>`, `|`, `\|`)

func (g JourneyGroup) Signature() string {
	stations := make([]string, 0, len(g.Stations))
	for _, station := range g.Stations {
		stations = append(stations, keyPartEscaper.Replace(station))
	}

	return strings.Join(stations, journeyGroupStationSeparator)
}

func (g JourneyGroup) Key() string {
	return fmt.Sprintf("%s||%s", keyPartEscaper.Replace(g.Relation), g.Signature())
}

// CountKey identifies the group by relation and number of stations only
func (g JourneyGroup) CountKey() string {
	return fmt.Sprintf("%s||%d", keyPartEscaper.Replace(g.Relation), len(g.Stations))
}
