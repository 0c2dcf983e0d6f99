package ctdf

import (
	"fmt"
	"strings"
)

type Provenance string

const (
	ProvenanceMeasured  Provenance = "measured"
	ProvenanceEstimated Provenance = "estimated"
)

// RouteResult is the resolved geometry of one leg. Never modified once created.
type RouteResult struct {
	GroupKey           string
	Position           int
	OriginStation      string
	DestinationStation string

	Origin      Location
	Destination Location

	DistanceMeters  float64
	DurationSeconds *float64

	EncodedPolyline string
	Path            []Location

	Provenance Provenance
}

func (r RouteResult) ToRow() RouteRow {
	return RouteRow{
		GroupKey:           r.GroupKey,
		Position:           r.Position,
		OriginStation:      r.OriginStation,
		DestinationStation: r.DestinationStation,
		StartLatitude:      r.Origin.Latitude,
		StartLongitude:     r.Origin.Longitude,
		DestLatitude:       r.Destination.Latitude,
		DestLongitude:      r.Destination.Longitude,
		DistanceMeters:     r.DistanceMeters,
		DurationSeconds:    r.DurationSeconds,
		EncodedPolyline:    r.EncodedPolyline,
		Path:               LineStringWKT(r.Path),
		Provenance:         string(r.Provenance),
	}
}

type RouteRow struct {
	GroupKey           string   `csv:"group_key" parquet:"group_key" json:"group_key"`
	Position           int      `csv:"position" parquet:"position" json:"position"`
	OriginStation      string   `csv:"start_station" parquet:"start_station" json:"start_station"`
	DestinationStation string   `csv:"dest_station" parquet:"dest_station" json:"dest_station"`
	StartLatitude      float64  `csv:"start_lat" parquet:"start_lat" json:"start_lat"`
	StartLongitude     float64  `csv:"start_lon" parquet:"start_lon" json:"start_lon"`
	DestLatitude       float64  `csv:"dest_lat" parquet:"dest_lat" json:"dest_lat"`
	DestLongitude      float64  `csv:"dest_lon" parquet:"dest_lon" json:"dest_lon"`
	DistanceMeters     float64  `csv:"distance_m" parquet:"distance_m" json:"distance_m"`
	DurationSeconds    *float64 `csv:"duration" parquet:"duration" json:"duration"`
	EncodedPolyline    string   `csv:"encoded_polyline_str" parquet:"encoded_polyline_str" json:"encoded_polyline_str"`
	Path               string   `csv:"decoded_polyline" parquet:"decoded_polyline" json:"decoded_polyline"`
	Provenance         string   `csv:"provenance" parquet:"provenance" json:"provenance"`
}

// LineStringWKT renders the path as WKT, longitude first
func LineStringWKT(path []Location) string {
	if len(path) == 0 {
		return "LINESTRING EMPTY"
	}

	points := make([]string, 0, len(path))
	for _, point := range path {
		points = append(points, fmt.Sprintf("%v %v", point.Longitude, point.Latitude))
	}

	return fmt.Sprintf("LINESTRING (%s)", strings.Join(points, ", "))
}
