package weather

import (
	"context"
	"encoding/json"
	"errors"
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

const VisualCrossingTimelineURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

var ErrMissingAPIKey = errors.New("weather api key is missing, set TRAVIGO_WEATHER_API_KEY")

type Fetcher struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	apiKey string
}

func NewFetcher(apiKey string) (*Fetcher, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &Fetcher{
		BaseURL: VisualCrossingTimelineURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey: apiKey,
	}, nil
}

// Fetch returns the hourly observations for the station on the date.
// Failures are logged and give an empty, non-nil slice.
func (f *Fetcher) Fetch(ctx context.Context, station string, location ctdf.Location, date ctdf.Date) []ctdf.WeatherRow {
	response, err := f.fetchTimeline(ctx, location, date)
	if err != nil {
		log.Warn().Err(err).
			Str("station", station).
			Float64("lat", location.Latitude).
			Float64("lon", location.Longitude).
			Str("date", date.String()).
			Msg("Failed to fetch weather")
		return []ctdf.WeatherRow{}
	}

	rows := []ctdf.WeatherRow{}
	if len(response.Days) == 0 {
		return rows
	}

	for _, hour := range response.Days[0].Hours {
		rows = append(rows, ctdf.WeatherRow{
			Station:        station,
			Date:           date.String(),
			Datetime:       hour.Datetime,
			DatetimeEpoch:  hour.DatetimeEpoch,
			Temp:           hour.Temp,
			FeelsLike:      hour.FeelsLike,
			Humidity:       hour.Humidity,
			Dew:            hour.Dew,
			Precip:         hour.Precip,
			PrecipProb:     hour.PrecipProb,
			Snow:           hour.Snow,
			SnowDepth:      hour.SnowDepth,
			WindGust:       hour.WindGust,
			WindSpeed:      hour.WindSpeed,
			WindDir:        hour.WindDir,
			Pressure:       hour.Pressure,
			Visibility:     hour.Visibility,
			CloudCover:     hour.CloudCover,
			SolarRadiation: hour.SolarRadiation,
			UVIndex:        hour.UVIndex,
			Conditions:     hour.Conditions,
			Icon:           hour.Icon,
			Latitude:       location.Latitude,
			Longitude:      location.Longitude,
		})
	}

	return rows
}

func (f *Fetcher) fetchTimeline(ctx context.Context, location ctdf.Location, date ctdf.Date) (*timelineResponse, error) {
	if err := util.WaitForLimiter(ctx, f.Limiter); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("unitGroup", "metric")
	params.Set("include", "hours")
	params.Set("key", f.apiKey)

	requestURL := fmt.Sprintf("%s/%v,%v/%s/%s?%s", f.BaseURL, location.Latitude, location.Longitude, date, date, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.HTTPClient.Do(req)
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

	var response timelineResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}

	return &response, nil
}

type timelineResponse struct {
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	ResolvedAddress string        `json:"resolvedAddress"`
	Timezone        string        `json:"timezone"`
	Days            []timelineDay `json:"days"`
}

type timelineDay struct {
	Datetime string         `json:"datetime"`
	Hours    []timelineHour `json:"hours"`
}

type timelineHour struct {
	Datetime       string   `json:"datetime"`
	DatetimeEpoch  int64    `json:"datetimeEpoch"`
	Temp           *float64 `json:"temp"`
	FeelsLike      *float64 `json:"feelslike"`
	Humidity       *float64 `json:"humidity"`
	Dew            *float64 `json:"dew"`
	Precip         *float64 `json:"precip"`
	PrecipProb     *float64 `json:"precipprob"`
	Snow           *float64 `json:"snow"`
	SnowDepth      *float64 `json:"snowdepth"`
	WindGust       *float64 `json:"windgust"`
	WindSpeed      *float64 `json:"windspeed"`
	WindDir        *float64 `json:"winddir"`
	Pressure       *float64 `json:"pressure"`
	Visibility     *float64 `json:"visibility"`
	CloudCover     *float64 `json:"cloudcover"`
	SolarRadiation *float64 `json:"solarradiation"`
	UVIndex        *float64 `json:"uvindex"`
	Conditions     string   `json:"conditions"`
	Icon           string   `json:"icon"`
}
