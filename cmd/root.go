/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/mitchellh/go-homedir"
	"github.com/rotblauer/gpxnap/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"log/slog"
	"os"
	"strings"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gpxnap",
	Short: "Simplify GPS tracks by collapsing stay regions",
	Long: `gpxnap reduces GPS tracks by detecting places where the device stayed put
and keeping only a few representative fixes for each, while thinning the
movement between them.

Configuration is read from flags, GPXNAP_ environment variables
(e.g. GPXNAP_STAY_RADIUS=30) and an optional YAML file ($HOME/.gpxnap.yaml).
Keys mirror the flag names with underscores:

  stay_radius: 50
  min_stay_duration: 5m
  default_profile:
    max_retained_points: 3
    min_move_distance: 200
  zone_profile:
    max_retained_points: 2
    min_move_distance: 200
  frequent_zone: {min_lat: 39.958, max_lat: 39.965, min_lng: 116.355, max_lng: 116.361}
  metric: haversine
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := params.DefaultSimplifyConfig

	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gpxnap.yaml)")
	pFlags.String("log-level", "info", "Log level: debug, info, warn, error")
	pFlags.String("log-format", "text", "Log format: text or json")

	pFlags.Float64("stay-radius", defaults.StayRadius, "Stay region radius in meters")
	pFlags.Duration("min-stay-duration", defaults.MinStayDuration, "Minimum time spent within the radius to count as a stay")
	pFlags.Int("max-stay-points", defaults.DefaultProfile.MaxRetainedPoints, "Points kept per stay region")
	pFlags.Float64("min-move-distance", defaults.DefaultProfile.MinMoveDistance, "Meters a movement point must be from the last kept point")
	pFlags.Int("zone-max-stay-points", defaults.ZoneProfile.MaxRetainedPoints, "Points kept per stay region inside the frequent zone")
	pFlags.Float64("zone-min-move-distance", defaults.ZoneProfile.MinMoveDistance, "Movement threshold inside the frequent zone")
	pFlags.Bool("campus-zone", false, "Use the campus preset as the frequent zone")
	pFlags.String("metric", string(defaults.Metric), "Distance metric: haversine, equirectangular, s2")

	bindFlags(pFlags, map[string]string{
		"log_level":                           "log-level",
		"log_format":                          "log-format",
		"stay_radius":                         "stay-radius",
		"min_stay_duration":                   "min-stay-duration",
		"default_profile.max_retained_points": "max-stay-points",
		"default_profile.min_move_distance":   "min-move-distance",
		"zone_profile.max_retained_points":    "zone-max-stay-points",
		"zone_profile.min_move_distance":      "zone-min-move-distance",
		"campus_zone":                         "campus-zone",
		"metric":                              "metric",
	})
}

// bindFlags binds each viper key to the named flag of fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		cobra.CheckErr(viper.BindPFlag(key, fs.Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".gpxnap" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gpxnap")
	}

	viper.SetEnvPrefix("GPXNAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaultSlog installs the default slog handler per --log-level and --log-format.
func setDefaultSlog(cmd *cobra.Command, args []string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch viper.GetString("log_format") {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler).With("cmd", cmd.Name()))
}

// loadSimplifyConfig decodes the simplify settings from viper over the defaults
// and validates them.
func loadSimplifyConfig(v *viper.Viper) (*params.SimplifyConfig, error) {
	cfg := params.DefaultSimplifyConfig.Copy()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.FrequentZone == nil && v.GetBool("campus_zone") {
		z := params.CampusZone
		cfg.FrequentZone = &z
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadMergeConfig reads the merge settings under the merge key.
// Keys are read one by one; UnmarshalKey misses values bound only to flags.
func loadMergeConfig(v *viper.Viper) (*params.MergeConfig, error) {
	cfg := *params.DefaultMergeConfig
	if v.IsSet("merge.mode") {
		cfg.Mode = params.MergeMode(v.GetString("merge.mode"))
	}
	if v.IsSet("merge.dedupe") {
		cfg.Dedupe = v.GetBool("merge.dedupe")
	}
	if v.IsSet("merge.dedupe_window") {
		cfg.DedupeWindow = v.GetInt("merge.dedupe_window")
	}
	if v.IsSet("merge.sort") {
		cfg.Sort = v.GetBool("merge.sort")
	}
	if cfg.Mode == "" {
		cfg.Mode = params.MergePerTrack
	}
	if err := cfg.Mode.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
