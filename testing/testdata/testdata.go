// Package testdata provides fixtures and synthetic track generators for tests.
package testdata

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"os"
	"path/filepath"
	"time"
)

// Epoch is the default start time of generated tracks.
var Epoch = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// Origin is a default generator origin, near the campus zone.
var Origin = orb.Point{116.3580, 39.9600}

// Stationary returns n fixes at interval spacing, alternating between center
// and points jitter meters east and north of it. Every fix is within jitter of
// center and within jitter*sqrt(2) of every other fix.
func Stationary(start time.Time, center orb.Point, n int, interval time.Duration, jitter float64) []trackpoint.TrackPoint {
	out := make([]trackpoint.TrackPoint, 0, n)
	for i := 0; i < n; i++ {
		p := center
		switch i % 3 {
		case 1:
			p = geo.PointAtBearingAndDistance(center, 90, jitter)
		case 2:
			p = geo.PointAtBearingAndDistance(center, 0, jitter)
		}
		out = append(out, trackpoint.TrackPoint{
			Time: start.Add(time.Duration(i) * interval),
			Lat:  p.Lat(),
			Lng:  p.Lon(),
		})
	}
	return out
}

// Line returns n fixes spaced meters apart along bearing (degrees), starting at from.
func Line(start time.Time, from orb.Point, bearing float64, n int, spacing float64, interval time.Duration) []trackpoint.TrackPoint {
	out := make([]trackpoint.TrackPoint, 0, n)
	p := from
	for i := 0; i < n; i++ {
		out = append(out, trackpoint.TrackPoint{
			Time: start.Add(time.Duration(i) * interval),
			Lat:  p.Lat(),
			Lng:  p.Lon(),
		})
		p = geo.PointAtBearingAndDistance(p, bearing, spacing)
	}
	return out
}

// Concat joins generated pieces into one track.
func Concat(pieces ...[]trackpoint.TrackPoint) []trackpoint.TrackPoint {
	out := make([]trackpoint.TrackPoint, 0)
	for _, p := range pieces {
		out = append(out, p...)
	}
	return out
}

// Last returns the time of the last fix in points, for chaining generators.
func Last(points []trackpoint.TrackPoint) time.Time {
	return points[len(points)-1].Time
}

// End returns the location of the last fix in points.
func End(points []trackpoint.TrackPoint) orb.Point {
	return points[len(points)-1].Point()
}

// TempDir creates a directory for a test, removed by the returned teardown.
func TempDir(pattern string) (dir string, teardown func() error) {
	dir, err := os.MkdirTemp(os.TempDir(), pattern)
	if err != nil {
		panic(err)
	}
	return dir, func() error {
		return os.RemoveAll(dir)
	}
}

// WriteFile writes data to name under dir and returns the path.
func WriteFile(dir, name, data string) string {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, []byte(data), 0660); err != nil {
		panic(err)
	}
	return path
}
