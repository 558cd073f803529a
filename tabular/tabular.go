// Package tabular converts between track points and CSV rows: the phone
// backup export format on the way in, and a Latitude,Longitude,Time
// listing on the way out.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"github.com/rotblauer/gpxnap/catz"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"github.com/shopspring/decimal"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	ColTime      = "dataTime"
	ColLongitude = "longitude"
	ColLatitude  = "latitude"
	ColAltitude  = "altitude"
	ColSpeed     = "speed"
	ColAccuracy  = "accuracy"
)

// aliases maps lower-cased header names to canonical columns,
// so WriteCSV output reads back in.
var aliases = map[string]string{
	"datatime":  ColTime,
	"time":      ColTime,
	"longitude": ColLongitude,
	"lon":       ColLongitude,
	"lng":       ColLongitude,
	"latitude":  ColLatitude,
	"lat":       ColLatitude,
	"altitude":  ColAltitude,
	"elevation": ColAltitude,
	"ele":       ColAltitude,
	"speed":     ColSpeed,
	"accuracy":  ColAccuracy,
	"hdop":      ColAccuracy,
}

var required = []string{ColTime, ColLongitude, ColLatitude}

// maxUnixSeconds is 9999-12-31T23:59:59Z. Larger epoch values are milliseconds.
const maxUnixSeconds = 253402300799

// ParseTime parses a dataTime cell: epoch seconds, epoch milliseconds, or RFC3339.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > maxUnixSeconds || n < -maxUnixSeconds {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := decimal.NewFromFloat(f)
		if f > maxUnixSeconds {
			sec = sec.Div(decimal.NewFromInt(1000))
		}
		return time.UnixMicro(sec.Shift(6).Round(0).IntPart()).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05Z07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Read parses CSV rows into points, stable-sorted by time.
// A header lacking a required column, or a row with an empty or unparsable
// required cell, fails with common.ErrMissingRequiredField; the index is the
// zero-based data row, or -1 for the header.
func Read(r io.Reader) ([]trackpoint.TrackPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, common.MissingFieldf(-1, ColTime, "no header")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if c, ok := aliases[h]; ok {
			if _, dup := cols[c]; !dup {
				cols[c] = i
			}
		}
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, common.MissingFieldf(-1, c, "header %v", header)
		}
	}

	out := make([]trackpoint.TrackPoint, 0)
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		tp, err := parseRow(row, rec, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}

func cell(rec []string, cols map[string]int, col string) string {
	i, ok := cols[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseRow(row int, rec []string, cols map[string]int) (trackpoint.TrackPoint, error) {
	var tp trackpoint.TrackPoint
	for _, c := range required {
		if cell(rec, cols, c) == "" {
			return tp, common.MissingFieldf(row, c, "empty")
		}
	}
	var err error
	if tp.Time, err = ParseTime(cell(rec, cols, ColTime)); err != nil {
		return tp, common.MissingFieldf(row, ColTime, "%v", err)
	}
	if tp.Lng, err = strconv.ParseFloat(cell(rec, cols, ColLongitude), 64); err != nil {
		return tp, common.MissingFieldf(row, ColLongitude, "%q", cell(rec, cols, ColLongitude))
	}
	if tp.Lat, err = strconv.ParseFloat(cell(rec, cols, ColLatitude), 64); err != nil {
		return tp, common.MissingFieldf(row, ColLatitude, "%q", cell(rec, cols, ColLatitude))
	}
	// Unparsable optional cells are dropped, not fatal.
	if v, err := strconv.ParseFloat(cell(rec, cols, ColAltitude), 64); err == nil {
		tp.Elevation = trackpoint.Float(v)
	}
	// Phones report 0 or -1 for unknown speed and accuracy.
	if v, err := strconv.ParseFloat(cell(rec, cols, ColSpeed), 64); err == nil && v > 0 {
		tp.Speed = trackpoint.Float(v)
	}
	if v, err := strconv.ParseFloat(cell(rec, cols, ColAccuracy), 64); err == nil && v > 0 {
		tp.Accuracy = trackpoint.Float(v)
	}
	return tp, nil
}

// ReadFile reads a CSV file, gzipped or not.
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

// WriteCSV writes Latitude,Longitude,Time rows, one per point.
func WriteCSV(w io.Writer, points []trackpoint.TrackPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Latitude", "Longitude", "Time"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{
			decimal.NewFromFloat(p.Lat).String(),
			decimal.NewFromFloat(p.Lng).String(),
			p.Time.UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes points to path atomically, gzipping when path ends in .gz.
func WriteFile(path string, points []trackpoint.TrackPoint) error {
	a, err := catz.CreateAtomic(path, nil)
	if err != nil {
		return err
	}
	if err := WriteCSV(a, points); err != nil {
		a.Abort()
		return err
	}
	return a.Commit()
}
