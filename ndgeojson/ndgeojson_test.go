package ndgeojson

import (
	"bytes"
	"errors"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/testing/testdata"
	"strings"
	"testing"
	"time"
)

func TestParseFeature(t *testing.T) {
	ios, err := ParseFeature([]byte(testdata.FeatureIOSStationary))
	if err != nil {
		t.Fatal(err)
	}
	if ios.Speed != nil {
		t.Errorf("speed -1 should be absent, got %v", *ios.Speed)
	}
	if ios.Accuracy == nil || *ios.Accuracy != 23.13 || ios.Elevation == nil || *ios.Elevation != 328.43 {
		t.Errorf("ios optional fields: %+v", ios)
	}
	if ios.Lng != -93.2554931640625 || ios.Lat != 44.98896789550781 {
		t.Errorf("ios coordinates: %v %v", ios.Lat, ios.Lng)
	}
	want := time.Date(2024, 12, 23, 15, 31, 56, 728_000_000, time.UTC)
	if !ios.Time.Equal(want) {
		t.Errorf("ios time: got %v want %v", ios.Time, want)
	}

	android, err := ParseFeature([]byte(testdata.FeatureAndroidStationary))
	if err != nil {
		t.Fatal(err)
	}
	if android.Speed == nil || *android.Speed != 0.06 {
		t.Errorf("android speed: %+v", android.Speed)
	}

	noUnix, err := ParseFeature([]byte(testdata.FeatureNoUnixTime))
	if err != nil {
		t.Fatal(err)
	}
	if noUnix.Time.IsZero() {
		t.Error("time should come from the Time property")
	}
}

func TestParseFeature_UnixTimeOnly(t *testing.T) {
	line := `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"UnixTime":1714550400}}`
	tp, err := ParseFeature([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if !tp.Time.Equal(testdata.Epoch) {
		t.Errorf("got %v", tp.Time)
	}
}

func TestRead(t *testing.T) {
	in := strings.Join([]string{
		testdata.FeatureIOSStationary,
		"",
		testdata.FeatureAndroidStationary,
		testdata.FeatureNoUnixTime,
	}, "\n")
	pts, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 3 {
		t.Fatalf("want 3 points, got %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Time.Before(pts[i-1].Time) {
			t.Errorf("points not sorted at %d", i)
		}
	}
}

func TestRead_Errors(t *testing.T) {
	in := testdata.FeatureIOSStationary + "\n" +
		`{"type":"Feature","geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]},"properties":{"Time":"2024-01-01T00:00:00Z"}}` + "\n"
	_, err := Read(strings.NewReader(in))
	var ie *common.IndexError
	if !errors.Is(err, common.ErrInvalidInput) || !errors.As(err, &ie) || ie.Index != 1 {
		t.Fatalf("want invalid input at line 1, got %v", err)
	}

	_, err = Read(strings.NewReader(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`))
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("want invalid input for missing time, got %v", err)
	}
}

func TestWrite_ReadsBack(t *testing.T) {
	pts, err := Read(strings.NewReader(testdata.FeatureIOSStationary + "\n" + testdata.FeatureAndroidStationary))
	if err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	if err := Write(buf, pts); err != nil {
		t.Fatal(err)
	}
	back, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range pts {
		if !back[i].Equal(pts[i]) {
			t.Errorf("point %d: %+v != %+v", i, back[i], pts[i])
		}
	}
}
