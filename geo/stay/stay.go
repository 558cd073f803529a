// Package stay partitions a track into stay regions and the movement
// segments between them.
//
// A stay candidate is anchored at a point and grows while subsequent points
// lie within the stay radius of the anchor. A candidate spanning at least the
// minimum stay duration becomes a stay. A candidate that falls short gives up
// only its anchor to the surrounding movement segment, and the next point is
// tried as an anchor, so no qualifying stay is ever swallowed by movement.
package stay

import (
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/types/run"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"log/slog"
	"time"
)

// State is the position of the detector in its per-point state machine.
type State int

const (
	SeekingAnchor State = iota
	AccumulatingCandidate
	EmitStay
	EmitMove
	Done
)

func (s State) String() string {
	switch s {
	case SeekingAnchor:
		return "seeking_anchor"
	case AccumulatingCandidate:
		return "accumulating_candidate"
	case EmitStay:
		return "emit_stay"
	case EmitMove:
		return "emit_move"
	case Done:
		return "done"
	}
	return "unknown"
}

type Detector struct {
	StayRadius      float64
	MinStayDuration time.Duration
	Distance        common.DistanceFunc

	logger *slog.Logger
}

// NewDetector returns a detector using dist for every radius test.
// A nil dist selects common.DistanceHaversine.
func NewDetector(stayRadius float64, minStayDuration time.Duration, dist common.DistanceFunc) *Detector {
	if dist == nil {
		dist = common.DistanceHaversine
	}
	return &Detector{
		StayRadius:      stayRadius,
		MinStayDuration: minStayDuration,
		Distance:        dist,
		logger:          slog.With("pkg", "stay"),
	}
}

// Qualifies reports whether candidate, assumed to lie within the radius of its
// first point, is a stay. Single points never are, even with a zero minimum.
func (d *Detector) Qualifies(candidate []trackpoint.TrackPoint) bool {
	return len(candidate) >= 2 && trackpoint.Span(candidate) >= d.MinStayDuration
}

// Detect partitions points into runs. Stays and movements alternate, except
// that two stays may be adjacent when one ends where the next begins.
// Member slices share the backing array of points and are capacity-capped,
// so appending to one never clobbers its neighbor.
//
// Cost is O(n*w), w being the longest run of fixes within the radius of one
// anchor: a candidate that is too short restarts from the fix after its
// anchor. Tracks without dense non-qualifying bursts detect in near O(n).
//
// The error, if any, wraps common.ErrInvalidInput.
func (d *Detector) Detect(points []trackpoint.TrackPoint) ([]run.Run, error) {
	if err := trackpoint.Validate(points); err != nil {
		return nil, err
	}

	var (
		runs        = make([]run.Run, 0)
		state       = SeekingAnchor
		anchor      int // index of the candidate anchor
		next        int // index of the first point not in the candidate
		moveStart   = -1
		n           = len(points)
		flushMoving = func(end int) {
			if moveStart < 0 {
				return
			}
			runs = append(runs, run.NewMovement(points[moveStart:end:end]))
			moveStart = -1
		}
	)

	for state != Done {
		switch state {
		case SeekingAnchor:
			if anchor >= n {
				flushMoving(n)
				state = Done
				continue
			}
			next = anchor + 1
			state = AccumulatingCandidate

		case AccumulatingCandidate:
			if next < n && d.Distance(points[anchor].Point(), points[next].Point()) <= d.StayRadius {
				next++
				continue
			}
			if d.Qualifies(points[anchor:next]) {
				state = EmitStay
			} else {
				state = EmitMove
			}

		case EmitStay:
			flushMoving(anchor)
			stay := run.NewStay(points[anchor:next:next])
			runs = append(runs, stay)
			d.logger.Debug("Stay detected",
				"start", stay.Start(), "duration", stay.Duration(), "points", stay.Len())
			anchor = next
			state = SeekingAnchor

		case EmitMove:
			if moveStart < 0 {
				moveStart = anchor
			}
			anchor++
			state = SeekingAnchor
		}
	}
	return runs, nil
}
