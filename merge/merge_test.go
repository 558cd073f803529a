package merge

import (
	"context"
	"github.com/rotblauer/gpxnap/gpx"
	"github.com/rotblauer/gpxnap/testing/testdata"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTracks_Concat(t *testing.T) {
	a := testdata.Line(testdata.Epoch, testdata.Origin, 90, 3, 100, time.Minute)
	b := testdata.Line(testdata.Last(a).Add(time.Minute), testdata.End(a), 90, 2, 100, time.Minute)
	out := Tracks(context.Background(), [][]trackpoint.TrackPoint{a, b}, Options{})
	if len(out) != 5 {
		t.Fatalf("want 5 points, got %d", len(out))
	}
	if !out[3].Equal(b[0]) {
		t.Error("sources not concatenated in order")
	}
}

func TestTracks_DedupeAndSort(t *testing.T) {
	a := testdata.Line(testdata.Epoch, testdata.Origin, 90, 4, 100, time.Minute)
	overlap := append([]trackpoint.TrackPoint(nil), a[2:]...)
	earlier := testdata.Line(testdata.Epoch.Add(-time.Hour), testdata.Origin, 0, 2, 100, time.Minute)
	sources := [][]trackpoint.TrackPoint{a, overlap, earlier}

	out := Tracks(context.Background(), sources, Options{Dedupe: true, Sort: true})
	if len(out) != 6 {
		t.Fatalf("want 6 points after dedupe, got %d", len(out))
	}
	if !out[0].Equal(earlier[0]) || !out[len(out)-1].Equal(a[3]) {
		t.Error("merged track not sorted")
	}
	if err := trackpoint.Validate(out); err != nil {
		t.Errorf("merged track invalid: %v", err)
	}

	// Same position and time but a different optional field is not a duplicate.
	twin := a[0]
	twin.Accuracy = trackpoint.Float(3)
	out = Tracks(context.Background(), [][]trackpoint.TrackPoint{a[:1], {twin}}, Options{Dedupe: true})
	if len(out) != 2 {
		t.Errorf("want 2 distinct points, got %d", len(out))
	}
}

func TestDedupeWindow(t *testing.T) {
	pts := testdata.Line(testdata.Epoch, testdata.Origin, 90, 3, 100, time.Minute)
	isNew := NewDedupeLRUFunc(2)
	for _, p := range pts {
		if !isNew(p) {
			t.Fatal("first sighting reported as duplicate")
		}
	}
	if isNew(pts[2]) {
		t.Error("recent point should be a duplicate")
	}
	if !isNew(pts[0]) {
		t.Error("evicted point should read as new")
	}
}

func TestFilesAndDir(t *testing.T) {
	dir, teardown := testdata.TempDir("merge")
	defer teardown()
	testdata.WriteFile(dir, "b.csv", testdata.SampleCSV)
	testdata.WriteFile(dir, "README.txt", "not a track")
	testdata.WriteFile(dir, ".hidden.gpx", testdata.SampleGPX)
	gpxPts, err := gpx.Read(strings.NewReader(testdata.SampleGPX))
	if err != nil {
		t.Fatal(err)
	}
	pts, _ := gpxPts.Points()
	if err := gpx.WriteFile(filepath.Join(dir, "a.gpx.gz"), "", pts); err != nil {
		t.Fatal(err)
	}
	testdata.WriteFile(dir, "c.ndjson", testdata.FeatureIOSStationary+"\n")

	paths, err := Dir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.gpx.gz", "b.csv", "c.ndjson"}
	if len(paths) != len(want) {
		t.Fatalf("want %v, got %v", want, paths)
	}
	for i, w := range want {
		if filepath.Base(paths[i]) != w {
			t.Errorf("path %d: want %s, got %s", i, w, paths[i])
		}
	}

	sources, err := Files(paths)
	if err != nil {
		t.Fatal(err)
	}
	counts := []int{3, 3, 1}
	for i, c := range counts {
		if len(sources[i]) != c {
			t.Errorf("source %d: want %d points, got %d", i, c, len(sources[i]))
		}
	}

	if _, err := ReadFile(filepath.Join(dir, "README.txt")); err == nil {
		t.Error("want error for unsupported file")
	}
}
