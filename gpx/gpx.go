// Package gpx reads and writes the GPX track files simplified tracks come
// from and go to.
package gpx

import (
	"encoding/xml"
	"fmt"
	"github.com/rotblauer/gpxnap/catz"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"github.com/shopspring/decimal"
	"io"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order. Zoneless times are UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// ParseTime parses a GPX point time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func Read(r io.Reader) (*File, error) {
	var f File
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}
	return &f, nil
}

// ReadFile reads a GPX file, gzipped or not.
func ReadFile(path string) (*File, error) {
	rc, err := catz.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	f, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Len is the number of trkpt elements across every track and segment.
func (f *File) Len() int {
	n := 0
	for _, trk := range f.Tracks {
		for _, seg := range trk.Segments {
			n += len(seg.Points)
		}
	}
	return n
}

// Points flattens every trkpt of every track and segment in document order.
// Errors wrap common.ErrInvalidInput and carry the flattened index.
func (f *File) Points() ([]trackpoint.TrackPoint, error) {
	out := make([]trackpoint.TrackPoint, 0, f.Len())
	for _, trk := range f.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				tp, err := p.trackPoint(len(out))
				if err != nil {
					return nil, err
				}
				out = append(out, tp)
			}
		}
	}
	return out, nil
}

func (p Point) trackPoint(index int) (trackpoint.TrackPoint, error) {
	var tp trackpoint.TrackPoint
	var err error
	if tp.Lat, err = strconv.ParseFloat(strings.TrimSpace(p.Lat), 64); err != nil {
		return tp, common.InvalidInputf(index, "lat", "%q", p.Lat)
	}
	if tp.Lng, err = strconv.ParseFloat(strings.TrimSpace(p.Lon), 64); err != nil {
		return tp, common.InvalidInputf(index, "lon", "%q", p.Lon)
	}
	if tp.Time, err = ParseTime(p.Time); err != nil {
		return tp, common.InvalidInputf(index, "time", "%v", err)
	}
	speed, hdop := p.Speed, p.HDOP
	if p.Extensions != nil {
		if speed == nil {
			speed = p.Extensions.Speed
		}
		if hdop == nil {
			hdop = p.Extensions.HDOP
		}
	}
	for _, opt := range []struct {
		field string
		raw   *string
		dst   **float64
	}{
		{"ele", p.Ele, &tp.Elevation},
		{"speed", speed, &tp.Speed},
		{"hdop", hdop, &tp.Accuracy},
	} {
		if opt.raw == nil || strings.TrimSpace(*opt.raw) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(*opt.raw), 64)
		if err != nil {
			return tp, common.InvalidInputf(index, opt.field, "%q", *opt.raw)
		}
		*opt.dst = trackpoint.Float(v)
	}
	return tp, nil
}

func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// formatOpt formats an optional field; nil is omitted.
func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// Write encodes points as a GPX 1.1 document with one track and one segment.
// Optional fields are written only where the point has them.
func Write(w io.Writer, name string, points []trackpoint.TrackPoint) error {
	if name == "" {
		name = params.DefaultTrackName
	}
	doc := outFile{
		Version:   "1.1",
		Creator:   params.Creator,
		XMLNS:     Namespace,
		XMLNSXSI:  XSINamespace,
		SchemaLoc: SchemaLocation,
		Metadata:  outMetadata{Name: name},
		Track: outTrack{
			Name:    name,
			Segment: outSegment{Points: make([]outPoint, 0, len(points))},
		},
	}
	if len(points) > 0 {
		doc.Metadata.Time = points[0].Time.UTC().Format(time.RFC3339)
	}
	for _, p := range points {
		op := outPoint{
			Lat:  formatFloat(p.Lat),
			Lon:  formatFloat(p.Lng),
			Ele:  formatOpt(p.Elevation),
			Time: p.Time.UTC().Format(time.RFC3339Nano),
		}
		if p.Speed != nil || p.Accuracy != nil {
			op.Extensions = &outExtensions{
				Speed: formatOpt(p.Speed),
				HDOP:  formatOpt(p.Accuracy),
			}
		}
		doc.Track.Segment.Points = append(doc.Track.Segment.Points, op)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode gpx: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes points to path atomically, gzipping when path ends in .gz.
func WriteFile(path, name string, points []trackpoint.TrackPoint) error {
	a, err := catz.CreateAtomic(path, nil)
	if err != nil {
		return err
	}
	if err := Write(a, name, points); err != nil {
		a.Abort()
		return err
	}
	return a.Commit()
}

// ReadPoints reads the flattened points of a GPX file.
func ReadPoints(path string) ([]trackpoint.TrackPoint, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	pts, err := f.Points()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}
