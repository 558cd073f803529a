package params

import (
	"fmt"
	"github.com/paulmach/orb"
	"github.com/rotblauer/gpxnap/common"
	"math"
	"time"
)

// RetentionProfile is the pair of thresholds governing how aggressively a run is thinned.
type RetentionProfile struct {
	// MaxRetainedPoints caps the number of points kept for a stay region.
	// The first and last points of the stay count toward the cap.
	MaxRetainedPoints int `mapstructure:"max_retained_points" json:"max_retained_points"`

	// MinMoveDistance is the distance, in meters, a movement point must exceed
	// from the last retained point to be retained itself.
	MinMoveDistance float64 `mapstructure:"min_move_distance" json:"min_move_distance"`
}

// Zone is an inclusive axis-aligned rectangle in decimal degrees.
type Zone struct {
	MinLat float64 `mapstructure:"min_lat" json:"min_lat"`
	MaxLat float64 `mapstructure:"max_lat" json:"max_lat"`
	MinLng float64 `mapstructure:"min_lng" json:"min_lng"`
	MaxLng float64 `mapstructure:"max_lng" json:"max_lng"`
}

// Bound returns the zone as an orb.Bound.
func (z Zone) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{z.MinLng, z.MinLat},
		Max: orb.Point{z.MaxLng, z.MaxLat},
	}
}

// Contains reports whether lat/lng lie inside the zone, edges included.
func (z Zone) Contains(lat, lng float64) bool {
	return z.Bound().Contains(orb.Point{lng, lat})
}

// ZonePolicy binds a named zone to its own retention profile.
type ZonePolicy struct {
	Name    string           `mapstructure:"name" json:"name"`
	Zone    Zone             `mapstructure:"zone" json:"zone"`
	Profile RetentionProfile `mapstructure:"profile" json:"profile"`
}

// FrequentZoneName is the policy name reported for runs matched
// by SimplifyConfig.FrequentZone.
const FrequentZoneName = "frequent"

// DefaultProfileName is the policy name reported for runs matching no zone.
const DefaultProfileName = "default"

// SimplifyConfig holds every tunable of the simplifier.
// It is a construction-time value; the simplifier never mutates it.
type SimplifyConfig struct {
	// StayRadius is the distance, in meters, within which consecutive points
	// must lie of a run's anchor for the run to be a stay candidate.
	StayRadius float64 `mapstructure:"stay_radius" json:"stay_radius"`

	// MinStayDuration is the minimum span between the first and last point
	// of a stay candidate for it to qualify as a stay region.
	MinStayDuration time.Duration `mapstructure:"min_stay_duration" json:"min_stay_duration"`

	DefaultProfile RetentionProfile `mapstructure:"default_profile" json:"default_profile"`
	ZoneProfile    RetentionProfile `mapstructure:"zone_profile" json:"zone_profile"`

	// FrequentZone is optional. Nil disables the zone profile.
	FrequentZone *Zone `mapstructure:"frequent_zone" json:"frequent_zone,omitempty"`

	// Zones are evaluated in order after FrequentZone; first match wins.
	Zones []ZonePolicy `mapstructure:"zones" json:"zones,omitempty"`

	// Metric selects the distance function shared by detection and reduction.
	Metric common.Metric `mapstructure:"metric" json:"metric"`
}

// DefaultSimplifyConfig mirrors the settings the Original/ -> Simplified/
// batch job has always been run with.
var DefaultSimplifyConfig = &SimplifyConfig{
	StayRadius:      50,
	MinStayDuration: 5 * time.Minute,
	DefaultProfile: RetentionProfile{
		MaxRetainedPoints: 3,
		MinMoveDistance:   200,
	},
	ZoneProfile: RetentionProfile{
		MaxRetainedPoints: 2,
		MinMoveDistance:   200,
	},
	Metric: common.MetricHaversine,
}

// CampusZone is the frequent zone the batch job was tuned for.
// It is not enabled by default.
var CampusZone = Zone{
	MinLat: 39.95822855,
	MaxLat: 39.96502929,
	MinLng: 116.35502636,
	MaxLng: 116.36105597,
}

// Copy returns a deep copy of the config.
func (c *SimplifyConfig) Copy() *SimplifyConfig {
	cp := *c
	if c.FrequentZone != nil {
		z := *c.FrequentZone
		cp.FrequentZone = &z
	}
	if c.Zones != nil {
		cp.Zones = append([]ZonePolicy(nil), c.Zones...)
	}
	return &cp
}

// Validate returns a *common.ConfigError for the first out-of-range value.
func (c *SimplifyConfig) Validate() error {
	if !(c.StayRadius > 0) || math.IsInf(c.StayRadius, 0) {
		return &common.ConfigError{Field: "stay_radius", Value: c.StayRadius, Msg: "must be positive"}
	}
	if c.MinStayDuration < 0 {
		return &common.ConfigError{Field: "min_stay_duration", Value: c.MinStayDuration, Msg: "must not be negative"}
	}
	if err := validateProfile("default_profile", c.DefaultProfile, 2); err != nil {
		return err
	}
	if c.FrequentZone != nil {
		if err := validateProfile("zone_profile", c.ZoneProfile, 1); err != nil {
			return err
		}
		if err := validateZone("frequent_zone", *c.FrequentZone); err != nil {
			return err
		}
	}
	for i, zp := range c.Zones {
		field := fmt.Sprintf("zones[%d]", i)
		if err := validateProfile(field+".profile", zp.Profile, 1); err != nil {
			return err
		}
		if err := validateZone(field+".zone", zp.Zone); err != nil {
			return err
		}
	}
	if _, err := common.DistanceFor(c.Metric); err != nil {
		return &common.ConfigError{Field: "metric", Value: c.Metric, Msg: err.Error()}
	}
	return nil
}

// validateProfile checks a retention profile. Zone profiles may keep a single
// point per stay; the default profile must keep arrival and departure.
func validateProfile(field string, p RetentionProfile, minRetained int) error {
	if p.MaxRetainedPoints < minRetained {
		return &common.ConfigError{
			Field: field + ".max_retained_points",
			Value: p.MaxRetainedPoints,
			Msg:   fmt.Sprintf("must be at least %d", minRetained),
		}
	}
	if p.MinMoveDistance < 0 || math.IsNaN(p.MinMoveDistance) {
		return &common.ConfigError{Field: field + ".min_move_distance", Value: p.MinMoveDistance, Msg: "must not be negative"}
	}
	return nil
}

func validateZone(field string, z Zone) error {
	if !common.ValidLatLng(z.MinLat, z.MinLng) || !common.ValidLatLng(z.MaxLat, z.MaxLng) {
		return &common.ConfigError{Field: field, Value: z, Msg: "coordinates out of range"}
	}
	if z.MinLat > z.MaxLat || z.MinLng > z.MaxLng {
		return &common.ConfigError{Field: field, Value: z, Msg: "min exceeds max"}
	}
	return nil
}
