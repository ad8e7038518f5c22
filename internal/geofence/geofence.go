// Package geofence decides zone membership for a location sample.
package geofence

import (
	"math"

	"github.com/julianstephens/automute/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distance.
const EarthRadiusMeters = 6371008.8

// Distance returns the haversine distance in meters between two coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Membership returns the first location, in storage order, whose circle strictly contains the sample.
func Membership(sample models.LocationSample, locations []models.SavedLocation) (models.SavedLocation, bool) {
	for _, loc := range locations {
		if Distance(sample.Latitude, sample.Longitude, loc.Latitude, loc.Longitude) < loc.Radius {
			return loc, true
		}
	}
	return models.SavedLocation{}, false
}

// Overlaps reports whether two geofences intersect, which makes the later one partly unreachable.
func Overlaps(a, b models.SavedLocation) bool {
	return Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude) < a.Radius+b.Radius
}
