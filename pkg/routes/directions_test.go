package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoutesClient(t *testing.T, handler http.HandlerFunc) *GoogleRoutesClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGoogleRoutesClient("routes-key")
	require.NoError(t, err)
	client.BaseURL = server.URL

	return client
}

func TestNewGoogleRoutesClientRequiresKey(t *testing.T) {
	_, err := NewGoogleRoutesClient("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestComputeRoute(t *testing.T) {
	client := newTestRoutesClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "routes-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, googleRoutesFieldMask, r.Header.Get("X-Goog-FieldMask"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var request computeRoutesRequest
		require.NoError(t, json.Unmarshal(body, &request))
		assert.Equal(t, "TRANSIT", request.TravelMode)
		assert.Equal(t, []string{"TRAIN", "RAIL"}, request.TransitPreferences.AllowedTravelModes)
		assert.Equal(t, warsaw.Latitude, request.Origin.Location.LatLng.Latitude)
		assert.Equal(t, krakow.Longitude, request.Destination.Location.LatLng.Longitude)

		_, _ = w.Write([]byte(`{"routes": [{"distanceMeters": 294000, "duration": "8640s", "polyline": {"encodedPolyline": "` + samplePolyline + `"}}]}`))
	})

	route, err := client.ComputeRoute(context.Background(), warsaw, krakow)
	require.NoError(t, err)
	assert.Equal(t, &Route{DistanceMeters: 294000, Duration: "8640s", EncodedPolyline: samplePolyline}, route)
}

func TestComputeRouteFailures(t *testing.T) {
	t.Run("non success status", func(t *testing.T) {
		client := newTestRoutesClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.ComputeRoute(context.Background(), warsaw, krakow)
		assert.Error(t, err)
	})

	t.Run("empty result", func(t *testing.T) {
		client := newTestRoutesClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.ComputeRoute(context.Background(), warsaw, krakow)
		assert.ErrorIs(t, err, ErrNoRoute)
	})

	t.Run("malformed payload", func(t *testing.T) {
		client := newTestRoutesClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"routes": [{"distanceMeters": "far"}]}`))
		})

		_, err := client.ComputeRoute(context.Background(), warsaw, krakow)
		assert.Error(t, err)
	})
}

func TestResolverWithFailingService(t *testing.T) {
	client := newTestRoutesClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	resolver := NewResolver(client)

	result := resolver.Resolve(context.Background(), warsaw, krakow)

	assert.Equal(t, "estimated", string(result.Provenance))
	assert.Len(t, result.Path, EstimatedPathPoints)
}
