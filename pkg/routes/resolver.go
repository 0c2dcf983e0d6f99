package routes

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railenrich/pkg/ctdf"
)

// Resolver turns legs into route results, falling back to an estimate whenever
// the directions service has nothing usable. Results accumulate in call order.
type Resolver struct {
	Directions Directions

	results []ctdf.RouteResult
}

func NewResolver(directions Directions) *Resolver {
	return &Resolver{
		Directions: directions,
		results:    []ctdf.RouteResult{},
	}
}

func (r *Resolver) Resolve(ctx context.Context, origin ctdf.Location, destination ctdf.Location) ctdf.RouteResult {
	result := r.resolve(ctx, origin, destination)
	r.results = append(r.results, result)

	return result
}

// ResolveLeg resolves a leg whose stations both have coordinates, tagging the result with the leg identity
func (r *Resolver) ResolveLeg(ctx context.Context, leg ctdf.Leg) (ctdf.RouteResult, error) {
	if !leg.Resolvable() {
		return ctdf.RouteResult{}, fmt.Errorf("leg %s -> %s has no coordinates for %v", leg.Origin.Name, leg.Destination.Name, leg.MissingStations())
	}

	result := r.resolve(ctx, *leg.Origin.Location, *leg.Destination.Location)
	result.GroupKey = leg.GroupKey
	result.Position = leg.Position
	result.OriginStation = leg.Origin.Name
	result.DestinationStation = leg.Destination.Name

	r.results = append(r.results, result)

	return result, nil
}

func (r *Resolver) Len() int {
	return len(r.results)
}

// Drain returns a copy of every accumulated result in the order they were resolved
func (r *Resolver) Drain() []ctdf.RouteResult {
	drained := []ctdf.RouteResult{}

	if err := copier.CopyWithOption(&drained, r.results, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy route results")
		drained = append(drained, r.results...)
	}

	return drained
}

func (r *Resolver) resolve(ctx context.Context, origin ctdf.Location, destination ctdf.Location) ctdf.RouteResult {
	route, err := r.Directions.ComputeRoute(ctx, origin, destination)
	if err != nil {
		log.Warn().Err(err).
			Str("origin", origin.String()).
			Str("destination", destination.String()).
			Msg("Directions unavailable, estimating route")
		return Estimate(origin, destination)
	}

	result, err := measured(origin, destination, route)
	if err != nil {
		log.Warn().Err(err).
			Str("origin", origin.String()).
			Str("destination", destination.String()).
			Msg("Malformed directions response, estimating route")
		return Estimate(origin, destination)
	}

	return result
}

func measured(origin ctdf.Location, destination ctdf.Location, route *Route) (ctdf.RouteResult, error) {
	duration, err := parseDuration(route.Duration)
	if err != nil {
		return ctdf.RouteResult{}, err
	}

	path, err := decodePath(route.EncodedPolyline)
	if err != nil {
		return ctdf.RouteResult{}, err
	}

	return ctdf.RouteResult{
		Origin:          origin,
		Destination:     destination,
		DistanceMeters:  float64(route.DistanceMeters),
		DurationSeconds: &duration,
		EncodedPolyline: route.EncodedPolyline,
		Path:            path,
		Provenance:      ctdf.ProvenanceMeasured,
	}, nil
}
