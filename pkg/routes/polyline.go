package routes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/twpayne/go-polyline"
)

func decodePath(encoded string) ([]ctdf.Location, error) {
	coords, remaining, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, fmt.Errorf("%d trailing bytes in polyline", len(remaining))
	}
	if len(coords) == 0 {
		return nil, errors.New("empty polyline")
	}

	path := make([]ctdf.Location, 0, len(coords))
	for _, coord := range coords {
		path = append(path, ctdf.Location{Latitude: coord[0], Longitude: coord[1]})
	}

	return path, nil
}

func encodePath(path []ctdf.Location) string {
	coords := make([][]float64, 0, len(path))
	for _, location := range path {
		coords = append(coords, []float64{location.Latitude, location.Longitude})
	}

	return string(polyline.EncodeCoords(coords))
}

// parseDuration reads durations in the "<seconds>s" form used by the Routes API
func parseDuration(duration string) (float64, error) {
	if !strings.HasSuffix(duration, "s") {
		return 0, fmt.Errorf("unexpected duration %q", duration)
	}

	return strconv.ParseFloat(strings.TrimSuffix(duration, "s"), 64)
}
