package ctdf

import (
	"fmt"
	"math"
)

// Mean earth radius (IUGG) in meters
const EarthRadiusMeters = 6371008.8

type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func NewLocation(latitude *float64, longitude *float64) *Location {
	if latitude == nil || longitude == nil {
		return nil
	}

	return &Location{Latitude: *latitude, Longitude: *longitude}
}

// Distance returns the great-circle distance in meters using the haversine formula
func (l Location) Distance(other Location) float64 {
	phi1 := l.Latitude * math.Pi / 180
	phi2 := other.Latitude * math.Pi / 180
	deltaPhi := (other.Latitude - l.Latitude) * math.Pi / 180
	deltaLambda := (other.Longitude - l.Longitude) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Interpolate moves linearly in coordinate space towards other, fraction 0 being l and 1 being other
func (l Location) Interpolate(other Location, fraction float64) Location {
	return Location{
		Latitude:  l.Latitude + (other.Latitude-l.Latitude)*fraction,
		Longitude: l.Longitude + (other.Longitude-l.Longitude)*fraction,
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%f,%f", l.Latitude, l.Longitude)
}
