package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SavedLocation is a circular geofence. Locations are immutable once saved.
type SavedLocation struct {
	Name             string     `json:"name" validate:"required"`
	Latitude         float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Radius           float64    `json:"radius" validate:"gt=0"`
	TargetRingerMode RingerMode `json:"targetRingerMode" validate:"oneof=VIBRATE SILENT"`
}

// Validate checks that the location is usable as a geofence
func (l *SavedLocation) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("location name cannot be empty")
	}
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid location %q: %w", l.Name, err)
	}
	return nil
}

// LocationSample is one position fix from the location provider.
type LocationSample struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Validate rejects samples outside the coordinate ranges
func (s *LocationSample) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid location sample: %w", err)
	}
	return nil
}
