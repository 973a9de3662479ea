package sources

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/relvacode/iso8601"

	"cloudpico-kiosk/internal/forecast"
	"cloudpico-kiosk/internal/netclient"
)

const timeSource = "time"

type timeResponse struct {
	Datetime *string `json:"datetime"`
}

type TimeSource struct {
	client JSONGetter
	url    string
}

func NewTimeSource(client JSONGetter, url string) *TimeSource {
	return &TimeSource{client: client, url: url}
}

// FetchCurrentTime returns the local hour and date from the time service's datetime field,
// e.g. "2024-03-01T10:15:42.123456-05:00" gives hour 10 and date 2024-03-01.
func (s *TimeSource) FetchCurrentTime(ctx context.Context) (forecast.TimeReading, error) {
	var resp timeResponse
	if err := s.client.GetJSON(ctx, s.url, &resp); err != nil {
		return forecast.TimeReading{}, fmt.Errorf("fetch time: %w", err)
	}
	if resp.Datetime == nil {
		return forecast.TimeReading{}, &netclient.ParseError{Source: timeSource, Field: "datetime", Err: errors.New("missing")}
	}
	reading, err := ParseDatetime(*resp.Datetime)
	if err != nil {
		return forecast.TimeReading{}, &netclient.ParseError{Source: timeSource, Field: "datetime", Err: err}
	}
	return reading, nil
}

// ParseDatetime reads the hour from characters 11-13 and the date from characters 0-10,
// after checking that the whole value is an ISO-8601 timestamp that agrees with them.
func ParseDatetime(s string) (forecast.TimeReading, error) {
	if len(s) < 13 {
		return forecast.TimeReading{}, fmt.Errorf("value %q too short", s)
	}
	ts, err := iso8601.ParseString(s)
	if err != nil {
		return forecast.TimeReading{}, fmt.Errorf("value %q: %w", s, err)
	}

	date := s[0:10]
	hour, err := strconv.Atoi(s[11:13])
	if err != nil {
		return forecast.TimeReading{}, fmt.Errorf("hour in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 {
		return forecast.TimeReading{}, fmt.Errorf("hour %d out of range", hour)
	}
	if ts.Hour() != hour || ts.Format("2006-01-02") != date {
		return forecast.TimeReading{}, fmt.Errorf("value %q is not in YYYY-MM-DDTHH form", s)
	}

	return forecast.TimeReading{Hour: hour, Date: date}, nil
}
