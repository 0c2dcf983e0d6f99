package routes

import (
	"github.com/travigo/railenrich/pkg/ctdf"
)

// Both endpoints plus 25 evenly spaced intermediate points
const EstimatedPathPoints = 27

// Estimate builds a straight-line route: great-circle distance, unknown duration and a path interpolated in coordinate space
func Estimate(origin ctdf.Location, destination ctdf.Location) ctdf.RouteResult {
	path := make([]ctdf.Location, EstimatedPathPoints)

	for i := range path {
		fraction := float64(i) / float64(EstimatedPathPoints-1)
		path[i] = origin.Interpolate(destination, fraction)
	}
	path[0] = origin
	path[EstimatedPathPoints-1] = destination

	return ctdf.RouteResult{
		Origin:          origin,
		Destination:     destination,
		DistanceMeters:  origin.Distance(destination),
		DurationSeconds: nil,
		EncodedPolyline: encodePath(path),
		Path:            path,
		Provenance:      ctdf.ProvenanceEstimated,
	}
}
