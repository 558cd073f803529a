package trackpoint

import (
	"errors"
	"github.com/rotblauer/gpxnap/common"
	"math"
	"testing"
	"time"
)

var trackpointJSONValid = `{
  "speed": 1.1056904792785645,
  "long": -93.259307861328125,
  "time": "2024-11-15T22:57:43.999Z",
  "elevation": 246.0128173828125,
  "lat": 44.985164642333984,
  "accuracy": 4.2884750366210938
}`

func TestTrackPoint_UnmarshalJSON(t *testing.T) {
	tp := &TrackPoint{}
	err := tp.UnmarshalJSON([]byte(trackpointJSONValid))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tp.Time.String() != "2024-11-15 22:57:43.999 +0000 UTC" {
		t.Errorf("expected Time to be '2024-11-15 22:57:43.999 +0000 UTC', got %v", tp.Time)
	}
	if tp.Speed == nil || *tp.Speed != 1.1056904792785645 {
		t.Errorf("expected Speed to be 1.1056904792785645, got %v", tp.Speed)
	}
	if tp.Elevation == nil || *tp.Elevation != 246.0128173828125 {
		t.Errorf("expected Elevation to be 246.0128173828125, got %v", tp.Elevation)
	}
	if tp.Lng != -93.259307861328125 {
		t.Errorf("expected Long to be -93.259307861328125, got %v", tp.Lng)
	}
	if tp.Lat != 44.985164642333984 {
		t.Errorf("expected Lat to be 44.985164642333984, got %v", tp.Lat)
	}
	if tp.Accuracy == nil || *tp.Accuracy != 4.2884750366210938 {
		t.Errorf("expected Accuracy to be 4.2884750366210938, got %v", tp.Accuracy)
	}
}

func TestTrackPoint_UnmarshalJSON_AbsentFields(t *testing.T) {
	tp := &TrackPoint{}
	err := tp.UnmarshalJSON([]byte(`{"lat": 1, "long": 2, "time": "2024-11-15T22:57:43Z"}`))
	if err != nil {
		t.Fatal(err)
	}
	if tp.Elevation != nil || tp.Speed != nil || tp.Accuracy != nil {
		t.Errorf("absent fields must stay nil, got %+v", tp)
	}
}

func TestTrackPoint_UnmarshalJSON_BadTime(t *testing.T) {
	tp := &TrackPoint{}
	if err := tp.UnmarshalJSON([]byte(`{"lat": 1, "long": 2, "time": "yesterday"}`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestTrackPoint_Feature(t *testing.T) {
	tp := TrackPoint{Time: time.Unix(1700000000, 0), Lat: 45, Lng: -93, Speed: Float(2)}
	f := tp.Feature()
	if _, ok := f.Properties["Elevation"]; ok {
		t.Error("absent elevation must not be a property")
	}
	if f.Properties.MustFloat64("Speed") != 2 {
		t.Errorf("speed: got %v", f.Properties["Speed"])
	}
	if f.Properties["UnixTime"] != int64(1700000000) {
		t.Errorf("unix time: got %v", f.Properties["UnixTime"])
	}
}

func TestValidate(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ok := TrackPoint{Time: t0, Lat: 45, Lng: -93}
	cases := []struct {
		name      string
		points    []TrackPoint
		wantIndex int
		wantField string
	}{
		{"empty", nil, -1, ""},
		{"lat high", []TrackPoint{ok, {Time: t0, Lat: 91, Lng: 0}}, 1, "lat"},
		{"lng low", []TrackPoint{{Time: t0, Lat: 0, Lng: -181}}, 0, "lng"},
		{"lat nan", []TrackPoint{{Time: t0, Lat: math.NaN(), Lng: 0}}, 0, "lat"},
		{"no time", []TrackPoint{ok, {Lat: 1, Lng: 1}}, 1, "time"},
		{"backwards", []TrackPoint{ok, {Time: t0.Add(time.Second), Lat: 1, Lng: 1}, {Time: t0, Lat: 1, Lng: 1}}, 2, "time"},
		{"inf speed", []TrackPoint{{Time: t0, Lat: 0, Lng: 0, Speed: Float(math.Inf(1))}}, 0, "speed"},
	}
	for _, c := range cases {
		err := Validate(c.points)
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("%s: want ErrInvalidInput, got %v", c.name, err)
			continue
		}
		var ie *common.IndexError
		if !errors.As(err, &ie) {
			t.Fatalf("%s: want *common.IndexError, got %T", c.name, err)
		}
		if ie.Index != c.wantIndex || ie.Field != c.wantField {
			t.Errorf("%s: got index=%d field=%q, want index=%d field=%q", c.name, ie.Index, ie.Field, c.wantIndex, c.wantField)
		}
	}

	equalTimes := []TrackPoint{ok, ok, {Time: t0.Add(time.Minute), Lat: -90, Lng: 180}}
	if err := Validate(equalTimes); err != nil {
		t.Errorf("equal timestamps and edge coordinates are valid: %v", err)
	}
}
