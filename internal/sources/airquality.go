package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"cloudpico-kiosk/internal/forecast"
	"cloudpico-kiosk/internal/netclient"
)

const airNowSource = "airnow"

type airNowForecast struct {
	AQI *int `json:"AQI"`
}

type AirQualitySource struct {
	client  JSONGetter
	baseURL string
	zipCode string
	apiKey  string
}

func NewAirQualitySource(client JSONGetter, baseURL, zipCode, apiKey string) *AirQualitySource {
	return &AirQualitySource{client: client, baseURL: baseURL, zipCode: zipCode, apiKey: apiKey}
}

// FetchAQI returns the forecast AQI for date (YYYY-MM-DD) and its category.
// An empty forecast list is a ParseError: AirNow has no forecast for some zip/date pairs.
func (s *AirQualitySource) FetchAQI(ctx context.Context, date string) (int, forecast.AirQuality, error) {
	u, err := s.queryURL(date)
	if err != nil {
		return 0, 0, err
	}

	var resp []airNowForecast
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return 0, 0, fmt.Errorf("fetch aqi: %w", err)
	}
	if len(resp) == 0 {
		return 0, 0, &netclient.ParseError{Source: airNowSource, Field: "[0]", Err: fmt.Errorf("no forecast for zip %s on %s", s.zipCode, date)}
	}
	if resp[0].AQI == nil {
		return 0, 0, &netclient.ParseError{Source: airNowSource, Field: "[0].AQI", Err: errors.New("missing")}
	}

	aqi := *resp[0].AQI
	return aqi, forecast.CategorizeAQI(aqi), nil
}

func (s *AirQualitySource) queryURL(date string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", &netclient.NetworkError{URL: s.baseURL, Err: fmt.Errorf("build request: %w", err)}
	}
	q := u.Query()
	q.Set("format", "application/json")
	q.Set("zipCode", s.zipCode)
	q.Set("date", date)
	q.Set("distance", "1")
	q.Set("API_KEY", s.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
