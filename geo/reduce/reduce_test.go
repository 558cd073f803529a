package reduce

import (
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/testing/testdata"
	"github.com/rotblauer/gpxnap/types/run"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"testing"
	"time"
)

func assertSelected(t *testing.T, got, from []trackpoint.TrackPoint, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("want %d points %v, got %d", len(want), want, len(got))
	}
	for i, idx := range want {
		if !got[i].Equal(from[idx]) {
			t.Errorf("position %d: want input index %d, got %+v", i, idx, got[i])
		}
	}
}

func TestReduce_StayStride(t *testing.T) {
	pts := testdata.Stationary(testdata.Epoch, testdata.Origin, 10, 135*time.Second, 3)
	stay := run.NewStay(pts)
	rd := NewReducer(nil)

	cases := []struct {
		limit int
		want  []int
	}{
		{2, []int{0, 9}},
		{3, []int{0, 4, 9}},
		{4, []int{0, 3, 6, 9}},
		{10, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{20, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}
	for _, c := range cases {
		got := rd.Reduce(stay, params.RetentionProfile{MaxRetainedPoints: c.limit}, Position{})
		assertSelected(t, got, pts, c.want)
	}
}

func TestReduce_StayDoesNotAlias(t *testing.T) {
	pts := testdata.Stationary(testdata.Epoch, testdata.Origin, 3, time.Minute, 3)
	got := NewReducer(nil).Reduce(run.NewStay(pts), params.RetentionProfile{MaxRetainedPoints: 5}, Position{})
	got[0].Lat = 0
	if pts[0].Lat == 0 {
		t.Fatal("reduced stay shares storage with its input")
	}
}

func TestReduce_StaySinglePoint(t *testing.T) {
	pts := testdata.Stationary(testdata.Epoch, testdata.Origin, 3, 5*time.Minute, 4)
	stay := run.NewStay(pts)
	rd := NewReducer(nil)
	profile := params.RetentionProfile{MaxRetainedPoints: 1}

	cases := []struct {
		name string
		pos  Position
		want []int
	}{
		{"interior", Position{}, []int{0}},
		{"track first", Position{First: true}, []int{0}},
		{"track last", Position{Last: true}, []int{2}},
		{"whole track", Position{First: true, Last: true}, []int{0, 2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assertSelected(t, rd.Reduce(stay, profile, c.pos), pts, c.want)
		})
	}
}

func TestReduce_MovementSpacing(t *testing.T) {
	pts := testdata.Line(testdata.Epoch, testdata.Origin, 90, 10, 50, 10*time.Second)
	mv := run.NewMovement(pts)
	rd := NewReducer(nil)

	all := rd.Reduce(mv, params.RetentionProfile{MinMoveDistance: 30}, Position{})
	assertSelected(t, all, pts, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	sparse := rd.Reduce(mv, params.RetentionProfile{MinMoveDistance: 60}, Position{})
	assertSelected(t, sparse, pts, []int{0, 2, 4, 6, 8, 9})
}

func TestReduce_MovementForcesLast(t *testing.T) {
	pts := testdata.Line(testdata.Epoch, testdata.Origin, 0, 4, 10, 10*time.Second)
	got := NewReducer(nil).Reduce(run.NewMovement(pts), params.RetentionProfile{MinMoveDistance: 1000}, Position{})
	assertSelected(t, got, pts, []int{0, 3})

	one := NewReducer(nil).Reduce(run.NewMovement(pts[:1]), params.RetentionProfile{MinMoveDistance: 1000}, Position{})
	assertSelected(t, one, pts, []int{0})
}

func TestReduce_Nil(t *testing.T) {
	if got := NewReducer(nil).Reduce(nil, params.RetentionProfile{}, Position{}); got != nil {
		t.Errorf("want nil, got %v", got)
	}
}
