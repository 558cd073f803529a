// Package zone selects the retention profile governing each run by where
// the run is anchored.
package zone

import (
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/types/run"
	"github.com/rotblauer/gpxnap/types/trackpoint"
)

type Selector struct {
	policies []params.ZonePolicy
	fallback params.RetentionProfile
}

// NewSelector flattens the config's zones into one ordered policy list.
// The legacy FrequentZone, when set, is evaluated before the named zones.
func NewSelector(cfg *params.SimplifyConfig) *Selector {
	s := &Selector{fallback: cfg.DefaultProfile}
	if cfg.FrequentZone != nil {
		s.policies = append(s.policies, params.ZonePolicy{
			Name:    params.FrequentZoneName,
			Zone:    *cfg.FrequentZone,
			Profile: cfg.ZoneProfile,
		})
	}
	s.policies = append(s.policies, cfg.Zones...)
	return s
}

// Select returns the profile for the run's anchor.
func (s *Selector) Select(r run.Run) params.RetentionProfile {
	p, _ := s.SelectPoint(r.Anchor())
	return p
}

// SelectPoint returns the profile of the first zone containing p, and that
// zone's name. Points in no zone get the default profile.
func (s *Selector) SelectPoint(p trackpoint.TrackPoint) (params.RetentionProfile, string) {
	for _, zp := range s.policies {
		if zp.Zone.Contains(p.Lat, p.Lng) {
			return zp.Profile, zp.Name
		}
	}
	return s.fallback, params.DefaultProfileName
}

// Len is the number of zone policies consulted before the default.
func (s *Selector) Len() int {
	return len(s.policies)
}
