// Package run holds the pieces a track is partitioned into:
// stay regions, where the subject remained within a radius for a while,
// and the movement segments between them.
package run

import (
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"time"
)

// Kind discriminates run types.
type Kind int

const (
	KindMovement Kind = iota
	KindStay
)

func (k Kind) String() string {
	switch k {
	case KindStay:
		return "stay"
	case KindMovement:
		return "movement"
	}
	return "unknown"
}

// Run is a maximal run of consecutive track points.
// The runs of a track partition it: concatenating their points,
// in order, reproduces the track.
type Run interface {
	Kind() Kind
	// Points returns the member points in track order.
	Points() []trackpoint.TrackPoint
	// Anchor is the point zone policies are selected by.
	Anchor() trackpoint.TrackPoint
	Len() int
	Start() time.Time
	End() time.Time
}

// Stay is a run whose points all lie within the stay radius of its anchor
// and span at least the minimum stay duration.
type Stay struct {
	anchor trackpoint.TrackPoint
	points []trackpoint.TrackPoint
}

// NewStay returns nil for fewer than 2 points; a single fix spans no time.
// The anchor is the first point.
func NewStay(points []trackpoint.TrackPoint) *Stay {
	if len(points) < 2 {
		return nil
	}
	return &Stay{anchor: points[0], points: points}
}

func (s *Stay) Kind() Kind                      { return KindStay }
func (s *Stay) Points() []trackpoint.TrackPoint { return s.points }
func (s *Stay) Anchor() trackpoint.TrackPoint   { return s.anchor }
func (s *Stay) Len() int                        { return len(s.points) }
func (s *Stay) Start() time.Time                { return s.points[0].Time }
func (s *Stay) End() time.Time                  { return s.points[len(s.points)-1].Time }

// Duration is the span between arrival and departure.
func (s *Stay) Duration() time.Duration {
	return s.End().Sub(s.Start())
}

// Movement is a run that does not qualify as a stay.
type Movement struct {
	points []trackpoint.TrackPoint
}

// NewMovement returns nil for no points.
func NewMovement(points []trackpoint.TrackPoint) *Movement {
	if len(points) == 0 {
		return nil
	}
	return &Movement{points: points}
}

func (m *Movement) Kind() Kind                      { return KindMovement }
func (m *Movement) Points() []trackpoint.TrackPoint { return m.points }
func (m *Movement) Anchor() trackpoint.TrackPoint   { return m.points[0] }
func (m *Movement) Len() int                        { return len(m.points) }
func (m *Movement) Start() time.Time                { return m.points[0].Time }
func (m *Movement) End() time.Time                  { return m.points[len(m.points)-1].Time }

// Flatten concatenates the points of runs in order.
func Flatten(runs []Run) []trackpoint.TrackPoint {
	n := 0
	for _, r := range runs {
		n += r.Len()
	}
	out := make([]trackpoint.TrackPoint, 0, n)
	for _, r := range runs {
		out = append(out, r.Points()...)
	}
	return out
}

// CountStays returns the number of stays in runs.
func CountStays(runs []Run) int {
	n := 0
	for _, r := range runs {
		if r.Kind() == KindStay {
			n++
		}
	}
	return n
}
