package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/travigo/railenrich/pkg/util"
	"golang.org/x/time/rate"
)

const GoogleMapsGeocodingURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Appended to every station name so the geocoder prefers the station over the town
const stationQuerySuffix = ", railway station"

type GoogleMapsGeocoder struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	apiKey string
}

func NewGoogleMapsGeocoder(apiKey string) (*GoogleMapsGeocoder, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &GoogleMapsGeocoder{
		BaseURL: GoogleMapsGeocodingURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey: apiKey,
	}, nil
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, station string) *ctdf.Location {
	result, err := g.fetchGeocode(ctx, station+stationQuerySuffix)
	if err != nil {
		log.Warn().Err(err).Str("station", station).Msg("Failed to geocode station")
		return nil
	}

	return &ctdf.Location{
		Latitude:  result.Geometry.Location.Lat,
		Longitude: result.Geometry.Location.Lng,
	}
}

func (g *GoogleMapsGeocoder) fetchGeocode(ctx context.Context, address string) (*geocodeResult, error) {
	if err := util.WaitForLimiter(ctx, g.Limiter); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("address", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", g.BaseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response geocodeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}

	if response.Status != "OK" || len(response.Results) == 0 {
		return nil, fmt.Errorf("no results found, status %s", response.Status)
	}

	log.Debug().Str("address", address).Str("formatted", response.Results[0].FormattedAddress).Msg("Geocoded")

	return &response.Results[0], nil
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	FormattedAddress string          `json:"formatted_address"`
	PlaceID          string          `json:"place_id"`
	Types            []string        `json:"types"`
	Geometry         geocodeGeometry `json:"geometry"`
}

type geocodeGeometry struct {
	Location     geocodeLatLng `json:"location"`
	LocationType string        `json:"location_type"`
}

type geocodeLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
