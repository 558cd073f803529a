package trackpoint

import (
	"encoding/json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/gpxnap/common"
	"math"
	"time"
)

// TrackPoint is one timestamped GPS fix.
// Optional fields are nil when the source did not record them;
// a nil Elevation is not the same thing as sea level.
type TrackPoint struct {
	Time      time.Time `json:"time"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"long"`
	Elevation *float64  `json:"elevation,omitempty"` // in meters
	Speed     *float64  `json:"speed,omitempty"`     // in m/s
	Accuracy  *float64  `json:"accuracy,omitempty"`  // horizontal, in meters
}

// Float returns a pointer to v, for filling optional fields.
func Float(v float64) *float64 {
	return &v
}

// Point returns the [lng, lat] orb.Point of the fix.
func (tp TrackPoint) Point() orb.Point {
	return orb.Point{tp.Lng, tp.Lat}
}

// Equal compares every field, dereferencing optional ones.
func (tp TrackPoint) Equal(other TrackPoint) bool {
	return tp.Time.Equal(other.Time) &&
		tp.Lat == other.Lat && tp.Lng == other.Lng &&
		equalOpt(tp.Elevation, other.Elevation) &&
		equalOpt(tp.Speed, other.Speed) &&
		equalOpt(tp.Accuracy, other.Accuracy)
}

func equalOpt(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Feature converts the fix to a GeoJSON point feature.
// Absent optional fields are absent properties.
func (tp TrackPoint) Feature() *geojson.Feature {
	f := geojson.NewFeature(tp.Point())
	f.Properties["Time"] = tp.Time.UTC().Format(time.RFC3339Nano)
	f.Properties["UnixTime"] = tp.Time.Unix()
	if tp.Elevation != nil {
		f.Properties["Elevation"] = *tp.Elevation
	}
	if tp.Speed != nil {
		f.Properties["Speed"] = *tp.Speed
	}
	if tp.Accuracy != nil {
		f.Properties["Accuracy"] = *tp.Accuracy
	}
	return f
}

// UnmarshalJSON is a custom unmarshaler for TrackPoint.
// It asserts that the time field is a valid RFC3339 time.
func (tp *TrackPoint) UnmarshalJSON(data []byte) error {
	type Alias TrackPoint
	aux := &struct {
		Time string `json:"time"`
		*Alias
	}{
		Alias: (*Alias)(tp),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	tp.Time, err = time.Parse(time.RFC3339, aux.Time)
	if err != nil {
		return err
	}
	return nil
}

type TrackPoints []TrackPoint

// Validate checks the sequence invariants the simplifier depends on:
// it is non-empty, every coordinate is finite and in range, and
// timestamps never decrease. The returned error is a *common.IndexError
// wrapping common.ErrInvalidInput.
func Validate(points []TrackPoint) error {
	if len(points) == 0 {
		return common.InvalidInputf(-1, "", "empty track")
	}
	for i, p := range points {
		if !common.ValidLatLng(p.Lat, 0) {
			return common.InvalidInputf(i, "lat", "latitude %v out of range", p.Lat)
		}
		if !common.ValidLatLng(0, p.Lng) {
			return common.InvalidInputf(i, "lng", "longitude %v out of range", p.Lng)
		}
		if p.Time.IsZero() {
			return common.InvalidInputf(i, "time", "missing timestamp")
		}
		for _, opt := range []struct {
			name string
			v    *float64
		}{{"elevation", p.Elevation}, {"speed", p.Speed}, {"accuracy", p.Accuracy}} {
			if opt.v != nil && (math.IsNaN(*opt.v) || math.IsInf(*opt.v, 0)) {
				return common.InvalidInputf(i, opt.name, "non-finite value")
			}
		}
		if i > 0 && p.Time.Before(points[i-1].Time) {
			return common.InvalidInputf(i, "time", "timestamp %s precedes previous %s",
				p.Time.Format(time.RFC3339), points[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Span returns the time between the first and last point.
func Span(points []TrackPoint) time.Duration {
	if len(points) < 2 {
		return 0
	}
	return points[len(points)-1].Time.Sub(points[0].Time)
}
