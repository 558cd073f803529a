// Package ndgeojson reads and writes newline-delimited GeoJSON point
// features, one fix per line, as phone tracker apps post them.
package ndgeojson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/gpxnap/catz"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"github.com/tidwall/gjson"
	"io"
	"sort"
	"time"
)

const maxLineBytes = 4 * 1024 * 1024

// ParseFeature converts one feature line to a track point.
// Time comes from properties.Time, falling back to properties.UnixTime.
// Trackers write -1 or 0 for unknown speed and accuracy; those are absent.
func ParseFeature(line []byte) (trackpoint.TrackPoint, error) {
	var tp trackpoint.TrackPoint
	f, err := geojson.UnmarshalFeature(line)
	if err != nil {
		return tp, err
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return tp, fmt.Errorf("geometry is %T, not a point", f.Geometry)
	}
	tp.Lng, tp.Lat = pt.Lon(), pt.Lat()

	props := gjson.GetBytes(line, "properties")
	if ts := props.Get("Time"); ts.Exists() && ts.String() != "" {
		if tp.Time, err = time.Parse(time.RFC3339Nano, ts.String()); err != nil {
			return tp, fmt.Errorf("properties.Time: %w", err)
		}
	} else if ut := props.Get("UnixTime"); ut.Exists() {
		tp.Time = time.Unix(ut.Int(), 0).UTC()
	} else {
		return tp, fmt.Errorf("no Time or UnixTime property")
	}

	if v := props.Get("Elevation"); v.Type == gjson.Number {
		tp.Elevation = trackpoint.Float(v.Float())
	}
	if v := props.Get("Speed"); v.Type == gjson.Number && v.Float() > 0 {
		tp.Speed = trackpoint.Float(v.Float())
	}
	if v := props.Get("Accuracy"); v.Type == gjson.Number && v.Float() > 0 {
		tp.Accuracy = trackpoint.Float(v.Float())
	}
	return tp, nil
}

// Read reads every feature line of r, skipping blank lines, and stable-sorts
// the points by time. A malformed line fails with common.ErrInvalidInput at
// its zero-based line index.
func Read(r io.Reader) ([]trackpoint.TrackPoint, error) {
	out := make([]trackpoint.TrackPoint, 0)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for i := 0; sc.Scan(); i++ {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		tp, err := ParseFeature(line)
		if err != nil {
			return nil, common.InvalidInputf(i, "", "%v", err)
		}
		out = append(out, tp)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}

// ReadFile reads an NDJSON file, gzipped or not.
func ReadFile(path string) ([]trackpoint.TrackPoint, error) {
	rc, err := catz.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	pts, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}

// WriteFeatures writes one feature per line.
func WriteFeatures(w io.Writer, features []*geojson.Feature) error {
	enc := json.NewEncoder(w)
	for _, f := range features {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// Write writes points as feature lines.
func Write(w io.Writer, points []trackpoint.TrackPoint) error {
	features := make([]*geojson.Feature, 0, len(points))
	for _, p := range points {
		features = append(features, p.Feature())
	}
	return WriteFeatures(w, features)
}

// WriteFile writes features to path atomically, gzipping when path ends in .gz.
func WriteFile(path string, features []*geojson.Feature) error {
	a, err := catz.CreateAtomic(path, nil)
	if err != nil {
		return err
	}
	if err := WriteFeatures(a, features); err != nil {
		a.Abort()
		return err
	}
	return a.Commit()
}
