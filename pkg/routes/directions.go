package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/travigo/railenrich/pkg/ctdf"
	"github.com/travigo/railenrich/pkg/util"
	"golang.org/x/time/rate"
)

const GoogleRoutesURL = "https://routes.googleapis.com/directions/v2:computeRoutes"

const googleRoutesFieldMask = "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline"

var ErrMissingAPIKey = errors.New("google maps api key is missing, set TRAVIGO_GOOGLE_MAPS_API_KEY")
var ErrNoRoute = errors.New("no routes found")

// Route is the raw directions answer for one origin/destination pair
type Route struct {
	DistanceMeters  int
	Duration        string
	EncodedPolyline string
}

type Directions interface {
	ComputeRoute(ctx context.Context, origin ctdf.Location, destination ctdf.Location) (*Route, error)
}

// GoogleRoutesClient asks the Google Routes API for rail-only transit routes
type GoogleRoutesClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	apiKey string
}

func NewGoogleRoutesClient(apiKey string) (*GoogleRoutesClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &GoogleRoutesClient{
		BaseURL: GoogleRoutesURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey: apiKey,
	}, nil
}

func (c *GoogleRoutesClient) ComputeRoute(ctx context.Context, origin ctdf.Location, destination ctdf.Location) (*Route, error) {
	if err := util.WaitForLimiter(ctx, c.Limiter); err != nil {
		return nil, err
	}

	requestBody, err := json.Marshal(computeRoutesRequest{
		Origin:      newWaypoint(origin),
		Destination: newWaypoint(destination),
		TravelMode:  "TRANSIT",
		TransitPreferences: transitPreferences{
			AllowedTravelModes: []string{"TRAIN", "RAIL"},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-FieldMask", googleRoutesFieldMask)
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.HTTPClient.Do(req)
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

	var response computeRoutesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}

	if len(response.Routes) == 0 {
		return nil, ErrNoRoute
	}

	route := response.Routes[0]

	return &Route{
		DistanceMeters:  route.DistanceMeters,
		Duration:        route.Duration,
		EncodedPolyline: route.Polyline.EncodedPolyline,
	}, nil
}

type computeRoutesRequest struct {
	Origin             waypoint           `json:"origin"`
	Destination        waypoint           `json:"destination"`
	TravelMode         string             `json:"travelMode"`
	TransitPreferences transitPreferences `json:"transitPreferences"`
}

type waypoint struct {
	Location struct {
		LatLng latLng `json:"latLng"`
	} `json:"location"`
}

func newWaypoint(location ctdf.Location) waypoint {
	var w waypoint
	w.Location.LatLng = latLng{Latitude: location.Latitude, Longitude: location.Longitude}

	return w
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type transitPreferences struct {
	AllowedTravelModes []string `json:"allowedTravelModes"`
}

type computeRoutesResponse struct {
	Routes []struct {
		DistanceMeters int    `json:"distanceMeters"`
		Duration       string `json:"duration"`
		Polyline       struct {
			EncodedPolyline string `json:"encodedPolyline"`
		} `json:"polyline"`
	} `json:"routes"`
}
