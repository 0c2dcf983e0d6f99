package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"github.com/travigo/railenrich/pkg/ctdf"
)

var ErrMissingAPIKey = errors.New("google maps api key is missing, set TRAVIGO_GOOGLE_MAPS_API_KEY")
var ErrUnsupportedBackend = errors.New("unsupported geocoding backend")

// Geocoder resolves a station name to its location. A nil location means the station could not be resolved.
type Geocoder interface {
	Geocode(ctx context.Context, station string) *ctdf.Location
}

type Backend string

const (
	BackendGoogle Backend = "google"
)

var Backends = []Backend{BackendGoogle}

func ParseBackend(name string) (Backend, error) {
	backend := Backend(strings.ToLower(strings.TrimSpace(name)))

	for _, supported := range Backends {
		if backend == supported {
			return backend, nil
		}
	}

	return "", fmt.Errorf("%w %q, supported: %v", ErrUnsupportedBackend, name, Backends)
}

type Credentials struct {
	GoogleMapsAPIKey string
}

func New(backend Backend, credentials Credentials) (Geocoder, error) {
	switch backend {
	case BackendGoogle:
		return NewGoogleMapsGeocoder(credentials.GoogleMapsAPIKey)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedBackend, backend)
	}
}

// GeocodeAll resolves every station keeping the input order. Unresolved stations keep a nil location.
func GeocodeAll(ctx context.Context, geocoder Geocoder, stations []string, workers int) []ctdf.StationCoordinate {
	mapper := iter.Mapper[string, ctdf.StationCoordinate]{
		MaxGoroutines: max(workers, 1),
	}

	return mapper.Map(stations, func(station *string) ctdf.StationCoordinate {
		return ctdf.StationCoordinate{
			Name:     *station,
			Location: geocoder.Geocode(ctx, *station),
		}
	})
}
