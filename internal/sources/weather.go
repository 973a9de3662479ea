package sources

import (
	"context"
	"errors"
	"fmt"

	"cloudpico-kiosk/internal/forecast"
	"cloudpico-kiosk/internal/netclient"
)

const weatherSource = "weather"

// gridForecast is the subset of an api.weather.gov gridpoint forecast the kiosk reads.
type gridForecast struct {
	Properties *gridProperties `json:"properties"`
}

type gridProperties struct {
	Periods []gridPeriod `json:"periods"`
}

type gridPeriod struct {
	Temperature   *int          `json:"temperature"`
	Precipitation *quantitative `json:"probabilityOfPrecipitation"`
	WindSpeed     *string       `json:"windSpeed"`
	WindDirection *string       `json:"windDirection"`
}

type quantitative struct {
	Value *int `json:"value"`
}

type WeatherSource struct {
	client  JSONGetter
	gridURL string
}

func NewWeatherSource(client JSONGetter, gridURL string) *WeatherSource {
	return &WeatherSource{client: client, gridURL: gridURL}
}

// FetchForecast returns the first forecast period for the configured grid cell.
func (s *WeatherSource) FetchForecast(ctx context.Context) (forecast.WeatherReading, error) {
	var resp gridForecast
	if err := s.client.GetJSON(ctx, s.gridURL, &resp); err != nil {
		return forecast.WeatherReading{}, fmt.Errorf("fetch forecast: %w", err)
	}

	if resp.Properties == nil {
		return forecast.WeatherReading{}, &netclient.ParseError{Source: weatherSource, Field: "properties", Err: errors.New("missing")}
	}
	if len(resp.Properties.Periods) == 0 {
		return forecast.WeatherReading{}, &netclient.ParseError{Source: weatherSource, Field: "properties.periods", Err: errors.New("empty")}
	}

	period := resp.Properties.Periods[0]
	if period.Temperature == nil {
		return forecast.WeatherReading{}, &netclient.ParseError{Source: weatherSource, Field: "periods[0].temperature", Err: errors.New("missing")}
	}

	if period.WindSpeed == nil {
		return forecast.WeatherReading{}, &netclient.ParseError{Source: weatherSource, Field: "periods[0].windSpeed", Err: errors.New("missing")}
	}
	if period.WindDirection == nil {
		return forecast.WeatherReading{}, &netclient.ParseError{Source: weatherSource, Field: "periods[0].windDirection", Err: errors.New("missing")}
	}

	reading := forecast.WeatherReading{
		TemperatureF:  *period.Temperature,
		WindSpeed:     *period.WindSpeed,
		WindDirection: *period.WindDirection,
	}
	if period.Precipitation != nil && period.Precipitation.Value != nil {
		p := *period.Precipitation.Value
		reading.PrecipitationChance = &p
	}
	return reading, nil
}
