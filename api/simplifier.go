package api

import (
	"fmt"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/geo/reduce"
	"github.com/rotblauer/gpxnap/geo/stay"
	"github.com/rotblauer/gpxnap/geo/zone"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/types/run"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"log/slog"
	"time"
)

// Simplifier runs the detect, select, reduce pipeline over whole tracks.
// It holds no per-track state and is safe for concurrent use.
type Simplifier struct {
	Config *params.SimplifyConfig

	detector *stay.Detector
	selector *zone.Selector
	reducer  *reduce.Reducer
	logger   *slog.Logger
}

// RunReport describes one run of a simplified track.
type RunReport struct {
	Kind        string    `json:"kind"`
	Zone        string    `json:"zone"`
	InputCount  int       `json:"input_count"`
	OutputCount int       `json:"output_count"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type Result struct {
	Points           []trackpoint.TrackPoint `json:"-"`
	Runs             []RunReport             `json:"runs"`
	InputPointCount  int                     `json:"input_point_count"`
	OutputPointCount int                     `json:"output_point_count"`
	StayRegionCount  int                     `json:"stay_region_count"`
	Stays            []run.Summary           `json:"stays"`
}

// Ratio is the share of input points retained.
func (r *Result) Ratio() float64 {
	if r.InputPointCount == 0 {
		return 0
	}
	return float64(r.OutputPointCount) / float64(r.InputPointCount)
}

// NewSimplifier validates cfg and returns a simplifier bound to a copy of it.
// Configuration errors wrap common.ErrInvalidConfig.
func NewSimplifier(cfg *params.SimplifyConfig) (*Simplifier, error) {
	if cfg == nil {
		cfg = params.DefaultSimplifyConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Copy()
	dist, err := common.DistanceFor(cfg.Metric)
	if err != nil {
		return nil, err
	}
	return &Simplifier{
		Config:   cfg,
		detector: stay.NewDetector(cfg.StayRadius, cfg.MinStayDuration, dist),
		selector: zone.NewSelector(cfg),
		reducer:  reduce.NewReducer(dist),
		logger:   slog.With("pkg", "api"),
	}, nil
}

// Simplify returns the reduced track. The input is validated before any
// work is done; on error no Result is returned.
func (s *Simplifier) Simplify(points []trackpoint.TrackPoint) (*Result, error) {
	runs, err := s.detector.Detect(points)
	if err != nil {
		return nil, fmt.Errorf("simplify: %w", err)
	}

	res := &Result{
		Points:          make([]trackpoint.TrackPoint, 0, len(points)/2+1),
		Runs:            make([]RunReport, 0, len(runs)),
		Stays:           make([]run.Summary, 0),
		InputPointCount: len(points),
	}
	for i, r := range runs {
		profile, zoneName := s.selector.SelectPoint(r.Anchor())
		reduced := s.reducer.Reduce(r, profile, reduce.Position{
			First: i == 0,
			Last:  i == len(runs)-1,
		})
		res.Points = append(res.Points, reduced...)
		res.Runs = append(res.Runs, RunReport{
			Kind:        r.Kind().String(),
			Zone:        zoneName,
			InputCount:  r.Len(),
			OutputCount: len(reduced),
			Start:       r.Start(),
			End:         r.End(),
		})
		if st, ok := r.(*run.Stay); ok {
			sum := st.Summarize()
			sum.Zone = zoneName
			res.Stays = append(res.Stays, sum)
			res.StayRegionCount++
		}
	}
	res.OutputPointCount = len(res.Points)

	s.logger.Debug("Simplified track",
		"in", res.InputPointCount, "out", res.OutputPointCount,
		"stays", res.StayRegionCount, "runs", len(res.Runs))
	return res, nil
}

// Append folds next into r, as when simplified tracks are concatenated.
func (r *Result) Append(next *Result) {
	r.Points = append(r.Points, next.Points...)
	r.Runs = append(r.Runs, next.Runs...)
	r.Stays = append(r.Stays, next.Stays...)
	r.InputPointCount += next.InputPointCount
	r.OutputPointCount += next.OutputPointCount
	r.StayRegionCount += next.StayRegionCount
}
