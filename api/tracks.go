package api

import (
	"context"
	"fmt"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/stream"
	"github.com/rotblauer/gpxnap/types/trackpoint"
)

// SimplifyTracks simplifies several source tracks into one result.
//
// MergePerTrack simplifies each track on its own, up to workers at a time,
// and concatenates the results in source order; a stay straddling two
// sources is seen as two. MergeGlobal concatenates the sources first and
// simplifies once, so the sources must already be chronological.
func SimplifyTracks(ctx context.Context, s *Simplifier, tracks [][]trackpoint.TrackPoint, mode params.MergeMode, workers int) (*Result, error) {
	if mode == "" {
		mode = params.MergePerTrack
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if mode == params.MergeGlobal {
		n := 0
		for _, t := range tracks {
			n += len(t)
		}
		all := make([]trackpoint.TrackPoint, 0, n)
		for _, t := range tracks {
			all = append(all, t...)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return s.Simplify(all)
	}

	results, err := stream.Ordered(ctx, workers, tracks, func(ctx context.Context, i int, track []trackpoint.TrackPoint) (*Result, error) {
		res, err := s.Simplify(track)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	out := &Result{}
	for _, r := range results {
		out.Append(r)
	}
	return out, nil
}
