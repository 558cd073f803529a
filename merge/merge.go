// Package merge combines several source tracks into one.
package merge

import (
	"context"
	"fmt"
	"github.com/golang/groupcache/lru"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/rotblauer/gpxnap/catz"
	"github.com/rotblauer/gpxnap/gpx"
	"github.com/rotblauer/gpxnap/ndgeojson"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/stream"
	"github.com/rotblauer/gpxnap/tabular"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Options struct {
	// Dedupe drops fixes identical in every field to one seen within
	// the last DedupeWindow fixes.
	Dedupe       bool
	DedupeWindow int

	// Sort stable-sorts the merged track by time.
	Sort bool
}

func OptionsFrom(cfg *params.MergeConfig) Options {
	return Options{Dedupe: cfg.Dedupe, DedupeWindow: cfg.DedupeWindow, Sort: cfg.Sort}
}

// dedupeKey flattens time to an integer; hashstructure skips the
// unexported fields of time.Time.
type dedupeKey struct {
	UnixNano  int64
	Lat, Lng  float64
	Elevation *float64
	Speed     *float64
	Accuracy  *float64
}

// NewDedupeLRUFunc returns a predicate reporting whether a fix is new.
func NewDedupeLRUFunc(size int) func(trackpoint.TrackPoint) bool {
	if size <= 0 {
		size = params.DefaultMergeConfig.DedupeWindow
	}
	cache := lru.New(size)
	return func(tp trackpoint.TrackPoint) bool {
		hash, err := hashstructure.Hash(dedupeKey{
			UnixNano:  tp.Time.UnixNano(),
			Lat:       tp.Lat,
			Lng:       tp.Lng,
			Elevation: tp.Elevation,
			Speed:     tp.Speed,
			Accuracy:  tp.Accuracy,
		}, hashstructure.FormatV2, nil)
		if err != nil {
			return true
		}
		if _, ok := cache.Get(hash); ok {
			return false
		}
		cache.Add(hash, struct{}{})
		return true
	}
}

// Tracks concatenates sources in order, then applies opts.
func Tracks(ctx context.Context, sources [][]trackpoint.TrackPoint, opts Options) []trackpoint.TrackPoint {
	n := 0
	for _, s := range sources {
		n += len(s)
	}
	out := make([]trackpoint.TrackPoint, 0, n)
	for _, s := range sources {
		out = append(out, s...)
	}
	if opts.Dedupe {
		out = stream.Collect(ctx, stream.Filter(ctx, NewDedupeLRUFunc(opts.DedupeWindow), stream.Slice(ctx, out)))
	}
	if opts.Sort {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Time.Before(out[j].Time)
		})
	}
	return out
}

// Format names a supported track file encoding.
type Format string

const (
	FormatGPX     Format = "gpx"
	FormatCSV     Format = "csv"
	FormatGeoJSON Format = "ndjson"
)

// FormatOf guesses a file's format from its extension, ignoring .gz.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(catz.TrimGZ(path))) {
	case ".gpx":
		return FormatGPX, true
	case ".csv":
		return FormatCSV, true
	case ".ndjson", ".geojson", ".json":
		return FormatGeoJSON, true
	}
	return "", false
}

// ReadFile reads one source track, choosing the reader by extension.
func ReadFile(path string) ([]trackpoint.TrackPoint, error) {
	f, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported file type", path)
	}
	switch f {
	case FormatCSV:
		return tabular.ReadFile(path)
	case FormatGeoJSON:
		return ndgeojson.ReadFile(path)
	}
	return gpx.ReadPoints(path)
}

// Files reads each path as a source track, in the given order.
func Files(paths []string) ([][]trackpoint.TrackPoint, error) {
	out := make([][]trackpoint.TrackPoint, 0, len(paths))
	for _, p := range paths {
		pts, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		slog.Debug("Read source track", "pkg", "merge", "path", p, "points", len(pts))
		out = append(out, pts)
	}
	return out, nil
}

// Dir lists the supported track files directly under dir, sorted by name.
// Hidden files are skipped.
func Dir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ok := FormatOf(e.Name()); ok {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
