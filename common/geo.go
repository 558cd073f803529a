package common

import (
	"fmt"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DistanceFunc returns the distance in meters between two [lng, lat] points.
// The stay detector and the point reducer must share one DistanceFunc so that
// stay radii and movement thresholds are measured in the same space.
type DistanceFunc func(a, b orb.Point) float64

// Metric names a distance function.
type Metric string

const (
	// MetricHaversine is great-circle distance via the haversine formula
	// on a sphere of radius orb.EarthRadius. It is the default.
	MetricHaversine Metric = "haversine"

	// MetricEquirectangular is the planar approximation on an
	// equirectangular projection centered on the mean latitude.
	// It is cheaper and accurate to well under a meter at stay scales,
	// but degrades for long movement legs and near the poles.
	MetricEquirectangular Metric = "equirectangular"

	// MetricS2 is the spherical angle between unit vectors, as computed
	// by the S2 library, scaled by orb.EarthRadius.
	MetricS2 Metric = "s2"
)

// DistanceHaversine is the default metric.
func DistanceHaversine(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// DistanceEquirectangular trades precision for speed.
func DistanceEquirectangular(a, b orb.Point) float64 {
	return geo.Distance(a, b)
}

// DistanceS2 uses s2.LatLng angular distance.
func DistanceS2(a, b orb.Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	lb := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return la.Distance(lb).Radians() * orb.EarthRadius
}

// DistanceFor returns the DistanceFunc for the named metric.
// An empty metric selects MetricHaversine.
func DistanceFor(m Metric) (DistanceFunc, error) {
	switch m {
	case "", MetricHaversine:
		return DistanceHaversine, nil
	case MetricEquirectangular:
		return DistanceEquirectangular, nil
	case MetricS2:
		return DistanceS2, nil
	}
	return nil, fmt.Errorf("unknown distance metric %q", m)
}

// ValidLatLng reports whether lat and lng are finite and in range.
func ValidLatLng(lat, lng float64) bool {
	// NaN fails every comparison.
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
