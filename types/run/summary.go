package run

import (
	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/shopspring/decimal"
	"time"
)

// Summary describes a stay region for reporting.
// Stats fields are nil when no member point recorded the value.
type Summary struct {
	Centroid      orb.Point     `json:"centroid"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Duration      time.Duration `json:"duration"`
	RawPointCount int           `json:"raw_point_count"`
	Area          float64       `json:"area"` // square meters of the bounding box
	Zone          string        `json:"zone,omitempty"`
	Accuracy      *Stats        `json:"accuracy,omitempty"`
	Elevation     *Stats        `json:"elevation,omitempty"`
}

type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func toFixed(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func newStats(data []float64, places int32) *Stats {
	if len(data) == 0 {
		return nil
	}
	d := stats.Float64Data(data)
	mustFloat := func(fn func() (float64, error)) float64 {
		out, _ := fn()
		return toFixed(out, places)
	}
	return &Stats{
		Mean:   mustFloat(d.Mean),
		Median: mustFloat(d.Median),
		Min:    mustFloat(d.Min),
		Max:    mustFloat(d.Max),
	}
}

// Summarize computes the summary of a stay.
func (s *Stay) Summarize() Summary {
	accuracies := make([]float64, 0, len(s.points))
	elevations := make([]float64, 0, len(s.points))
	multipoint := make(orb.MultiPoint, 0, len(s.points))
	for _, p := range s.points {
		multipoint = append(multipoint, p.Point())
		if p.Accuracy != nil {
			accuracies = append(accuracies, *p.Accuracy)
		}
		if p.Elevation != nil {
			elevations = append(elevations, *p.Elevation)
		}
	}
	centroid, _ := planar.CentroidArea(multipoint)
	return Summary{
		Centroid:      centroid,
		Start:         s.Start(),
		End:           s.End(),
		Duration:      s.Duration(),
		RawPointCount: len(s.points),
		Area:          toFixed(geo.Area(multipoint.Bound()), 0),
		Accuracy:      newStats(accuracies, 1),
		Elevation:     newStats(elevations, 1),
	}
}

// Feature renders the summary as a GeoJSON point at the centroid.
func (sum Summary) Feature() *geojson.Feature {
	f := geojson.NewFeature(sum.Centroid)
	f.Properties["RawPointCount"] = sum.RawPointCount
	f.Properties["Time_Start_Unix"] = sum.Start.Unix()
	f.Properties["Time_Start_RFC339"] = sum.Start.Format(time.RFC3339)
	f.Properties["Time_End_Unix"] = sum.End.Unix()
	f.Properties["Time_End_RFC339"] = sum.End.Format(time.RFC3339)
	f.Properties["Duration"] = sum.Duration.Round(time.Second).Seconds()
	f.Properties["Area"] = sum.Area
	if sum.Zone != "" {
		f.Properties["Zone"] = sum.Zone
	}
	install := func(key string, st *Stats) {
		if st == nil {
			return
		}
		f.Properties[key+"_Mean"] = st.Mean
		f.Properties[key+"_Median"] = st.Median
		f.Properties[key+"_Min"] = st.Min
		f.Properties[key+"_Max"] = st.Max
	}
	install("Accuracy", sum.Accuracy)
	install("Elevation", sum.Elevation)
	return f
}
