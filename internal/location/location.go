// Package location feeds position fixes from an external provider to a handler.
package location

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/automute/internal/logger"
	"github.com/julianstephens/automute/internal/models"
)

// Handler receives each accepted sample.
type Handler func(ctx context.Context, s models.LocationSample) error

// Source delivers samples until ctx is done or its input ends.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// Parse decodes one {"lat":..,"lon":..} object. Both fields are required.
func Parse(data []byte) (models.LocationSample, error) {
	var raw struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return models.LocationSample{}, fmt.Errorf("failed to decode sample: %w", err)
	}
	if raw.Lat == nil || raw.Lon == nil {
		return models.LocationSample{}, errors.New("sample needs both lat and lon")
	}
	s := models.LocationSample{Latitude: *raw.Lat, Longitude: *raw.Lon}
	if err := s.Validate(); err != nil {
		return models.LocationSample{}, err
	}
	return s, nil
}

// newLimiter allows one sample per interval; zero or less disables throttling.
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// deliver parses, throttles and hands a raw sample to h.
// Only context errors are returned; everything else is logged.
func deliver(ctx context.Context, limiter *rate.Limiter, data []byte, h Handler) error {
	s, err := Parse(data)
	if err != nil {
		logger.Warn("Dropping malformed location sample", "error", err)
		return nil
	}
	if !limiter.Allow() {
		logger.Debug("Location sample throttled", "lat", s.Latitude, "lon", s.Longitude)
		return nil
	}
	if err := h(ctx, s); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		logger.Warn("Location sample not applied", "error", err)
	}
	return nil
}
