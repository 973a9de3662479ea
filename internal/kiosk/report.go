package kiosk

import (
	"context"
	"errors"
	"time"

	"cloudpico-kiosk/internal/forecast"
	"cloudpico-kiosk/internal/hw"
	"cloudpico-kiosk/internal/netclient"
	"cloudpico-kiosk/internal/types"
)

const (
	KindNetwork  = "network"
	KindParse    = "parse"
	KindHardware = "hardware"
	KindShutdown = "shutdown"
	KindOther    = "other"
)

// ErrorKind buckets a cycle failure for logs and metrics.
func ErrorKind(err error) string {
	var (
		netErr   *netclient.NetworkError
		parseErr *netclient.ParseError
		faultErr *hw.FaultError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return KindShutdown
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &faultErr):
		return KindHardware
	case errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	default:
		return KindOther
	}
}

func buildReport(kioskID string, c *forecast.CycleContext, outcome types.Outcome, finished time.Time) types.CycleReport {
	r := types.CycleReport{
		CycleID:    c.ID,
		KioskID:    kioskID,
		StartedAt:  c.StartedAt,
		FinishedAt: finished,
		Outcome:    outcome,
	}
	if c.Time != nil {
		hour := c.Time.Hour
		r.Hour = &hour
		r.Date = c.Time.Date
	}
	if c.Weather != nil {
		temp := c.Weather.TemperatureF
		precip := c.Weather.Precipitation()
		r.TemperatureF = &temp
		r.PrecipitationPct = &precip
		r.WindSpeed = c.Weather.WindSpeed
		r.WindDirection = c.Weather.WindDirection
	}
	if c.Clip != nil {
		r.Clip = c.Clip.Name()
	}
	if c.AQI != nil {
		aqi := *c.AQI
		r.AQI = &aqi
	}
	if c.AirQuality != nil {
		r.AQICategory = c.AirQuality.String()
	}
	return r
}
