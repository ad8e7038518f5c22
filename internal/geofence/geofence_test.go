package geofence

import (
	"math"
	"testing"

	"github.com/julianstephens/automute/internal/models"
)

// metersNorth moves a point due north; one degree of latitude is R*pi/180 meters.
func metersNorth(lat, meters float64) float64 {
	return lat + meters/(EarthRadiusMeters*math.Pi/180)
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{name: "same point", lat1: 40, lon1: -73, lat2: 40, lon2: -73, want: 0, tolerance: 1e-9},
		{name: "50m north", lat1: 40, lon1: -73, lat2: metersNorth(40, 50), lon2: -73, want: 50, tolerance: 1e-6},
		{name: "500m north", lat1: 40, lon1: -73, lat2: metersNorth(40, 500), lon2: -73, want: 500, tolerance: 1e-6},
		{name: "one degree longitude at equator", lat1: 0, lon1: 0, lat2: 0, lon2: 1, want: EarthRadiusMeters * math.Pi / 180, tolerance: 1e-6},
		{name: "antipodal", lat1: 0, lon1: 0, lat2: 0, lon2: 180, want: EarthRadiusMeters * math.Pi, tolerance: 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMembership(t *testing.T) {
	work := models.SavedLocation{Name: "Work", Latitude: 40, Longitude: -73, Radius: 100, TargetRingerMode: models.RingerSilent}
	cafe := models.SavedLocation{Name: "Cafe", Latitude: metersNorth(40, 60), Longitude: -73, Radius: 100, TargetRingerMode: models.RingerVibrate}

	tests := []struct {
		name      string
		sample    models.LocationSample
		locations []models.SavedLocation
		wantName  string
		wantOK    bool
	}{
		{name: "no locations", sample: models.LocationSample{Latitude: 40, Longitude: -73}},
		{name: "inside", sample: models.LocationSample{Latitude: metersNorth(40, 50), Longitude: -73}, locations: []models.SavedLocation{work}, wantName: "Work", wantOK: true},
		{name: "outside", sample: models.LocationSample{Latitude: metersNorth(40, 500), Longitude: -73}, locations: []models.SavedLocation{work}},
		{name: "first match wins", sample: models.LocationSample{Latitude: metersNorth(40, 30), Longitude: -73}, locations: []models.SavedLocation{work, cafe}, wantName: "Work", wantOK: true},
		{name: "storage order decides", sample: models.LocationSample{Latitude: metersNorth(40, 30), Longitude: -73}, locations: []models.SavedLocation{cafe, work}, wantName: "Cafe", wantOK: true},
		{name: "second zone when outside first", sample: models.LocationSample{Latitude: metersNorth(40, 150), Longitude: -73}, locations: []models.SavedLocation{work, cafe}, wantName: "Cafe", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Membership(tt.sample, tt.locations)
			if ok != tt.wantOK {
				t.Fatalf("Membership() ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Name != tt.wantName {
				t.Errorf("expected %q, got %q", tt.wantName, got.Name)
			}
		})
	}
}

func TestMembershipBoundaryIsExclusive(t *testing.T) {
	// A point exactly on the circle is outside
	zone := models.SavedLocation{Name: "Edge", Radius: Distance(0, 0, 0.01, 0)}
	if _, ok := Membership(models.LocationSample{Latitude: 0.01}, []models.SavedLocation{zone}); ok {
		t.Error("sample on the boundary must not match")
	}
}

func TestOverlaps(t *testing.T) {
	a := models.SavedLocation{Latitude: 40, Longitude: -73, Radius: 100}
	b := models.SavedLocation{Latitude: metersNorth(40, 150), Longitude: -73, Radius: 100}
	c := models.SavedLocation{Latitude: metersNorth(40, 250), Longitude: -73, Radius: 10}
	if !Overlaps(a, b) {
		t.Error("expected a and b to overlap")
	}
	if Overlaps(a, c) {
		t.Error("expected a and c to be disjoint")
	}
}
