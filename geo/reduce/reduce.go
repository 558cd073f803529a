// Package reduce thins each run of a partitioned track according to its
// retention profile.
package reduce

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/types/run"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"math"
)

// Position tells the reducer where a run sits in its track.
// The first point of the first run and the last point of the last run
// are retained regardless of profile.
type Position struct {
	First bool
	Last  bool
}

type Reducer struct {
	Distance common.DistanceFunc
}

// NewReducer returns a reducer measuring movement spacing with dist.
// A nil dist selects common.DistanceHaversine.
func NewReducer(dist common.DistanceFunc) *Reducer {
	if dist == nil {
		dist = common.DistanceHaversine
	}
	return &Reducer{Distance: dist}
}

// Reduce returns the retained points of r, in order, in a new slice.
// The result is non-empty for a non-empty run.
func (rd *Reducer) Reduce(r run.Run, profile params.RetentionProfile, pos Position) []trackpoint.TrackPoint {
	if r == nil || r.Len() == 0 {
		return nil
	}
	switch r.Kind() {
	case run.KindStay:
		return rd.stay(r.Points(), profile.MaxRetainedPoints, pos)
	default:
		return rd.movement(r.Points(), profile.MinMoveDistance)
	}
}

func (rd *Reducer) stay(points []trackpoint.TrackPoint, limit int, pos Position) []trackpoint.TrackPoint {
	n := len(points)
	if limit >= n {
		return append([]trackpoint.TrackPoint(nil), points...)
	}
	if limit <= 1 {
		switch {
		case pos.First && pos.Last:
			return []trackpoint.TrackPoint{points[0], points[n-1]}
		case pos.First:
			return []trackpoint.TrackPoint{points[0]}
		case pos.Last:
			return []trackpoint.TrackPoint{points[n-1]}
		}
		return []trackpoint.TrackPoint{points[rd.nearestCentroid(points)]}
	}
	out := make([]trackpoint.TrackPoint, 0, limit)
	for k := 0; k < limit; k++ {
		out = append(out, points[k*(n-1)/(limit-1)])
	}
	return out
}

// nearestCentroid returns the index of the member nearest the members' centroid.
// Ties go to the earliest.
func (rd *Reducer) nearestCentroid(points []trackpoint.TrackPoint) int {
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, p.Point())
	}
	centroid, _ := planar.CentroidArea(mp)
	best, bestDist := 0, math.Inf(1)
	for i, p := range mp {
		if d := rd.Distance(centroid, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (rd *Reducer) movement(points []trackpoint.TrackPoint, minMove float64) []trackpoint.TrackPoint {
	out := make([]trackpoint.TrackPoint, 0, len(points))
	out = append(out, points[0])
	last := points[0].Point()
	for i := 1; i < len(points); i++ {
		p := points[i].Point()
		if rd.Distance(last, p) > minMove || i == len(points)-1 {
			out = append(out, points[i])
			last = p
		}
	}
	return out
}
