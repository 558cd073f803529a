package params

import "github.com/rotblauer/gpxnap/common"

// MergeMode decides where stay detection runs when several tracks are combined.
type MergeMode string

const (
	// MergePerTrack simplifies each source track on its own and concatenates
	// the reduced outputs. A stay straddling two sources is seen as two stays,
	// or none if neither half is long enough. This is the default, and matches
	// running the simplify and merge commands as separate stages.
	MergePerTrack MergeMode = "per-track"

	// MergeGlobal concatenates all sources first and simplifies once, so stays
	// that straddle a source boundary are detected whole. Sources must then be
	// chronological across boundaries, or be sorted first.
	MergeGlobal MergeMode = "global"
)

func (m MergeMode) Validate() error {
	switch m {
	case MergePerTrack, MergeGlobal:
		return nil
	}
	return &common.ConfigError{Field: "mode", Value: m, Msg: "unknown merge mode"}
}

// MergeConfig configures the merge command.
type MergeConfig struct {
	Mode MergeMode `mapstructure:"mode"`

	// Dedupe drops exact duplicate fixes seen across sources.
	Dedupe bool `mapstructure:"dedupe"`

	// DedupeWindow is the LRU size used for deduplication.
	DedupeWindow int `mapstructure:"dedupe_window"`

	// Sort stable-sorts the merged sequence by time.
	Sort bool `mapstructure:"sort"`
}

var DefaultMergeConfig = &MergeConfig{
	Mode:         MergePerTrack,
	DedupeWindow: 10_000,
}
