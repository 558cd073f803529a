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
	"context"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/rotblauer/gpxnap/api"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/gpx"
	"github.com/rotblauer/gpxnap/merge"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

var optMergeOutput string
var optMergeSimplify bool
var optMergeStrict bool

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge [dir]",
	Short: "Merge a directory of tracks into one GPX file",
	Long: `Merge concatenates the points of every track file in dir (default ./Simplified),
in file name order, into a single track written to <dir>/all/allData.gpx.

Files that fail to parse are logged and left out, unless --strict.

With --simplify the merged tracks are simplified too. --mode per-track
simplifies each file before concatenating them, so a stay split across two files
stays split; --mode global concatenates first and simplifies once.

Examples:

  gpxnap merge
  gpxnap merge Original --simplify --mode global --sort --dedupe
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		ctx, stop := common.InterruptedContext(context.Background())
		defer stop()

		dir := "Simplified"
		if len(args) > 0 {
			dir = args[0]
		}
		output := optMergeOutput
		if output == "" {
			output = filepath.Join(dir, "all", params.MergedFileName)
		}

		mergeConfig, err := loadMergeConfig(viper.GetViper())
		if err != nil {
			log.Fatalln(err)
		}
		var simplifier *api.Simplifier
		if optMergeSimplify {
			cfg, err := loadSimplifyConfig(viper.GetViper())
			if err != nil {
				log.Fatalln(err)
			}
			if simplifier, err = api.NewSimplifier(cfg); err != nil {
				log.Fatalln(err)
			}
		}

		paths, err := merge.Dir(dir)
		if err != nil {
			log.Fatalln(err)
		}
		if len(paths) == 0 {
			slog.Warn("No track files found", "dir", dir)
			return
		}
		sources, err := readSources(paths, optMergeStrict)
		if err != nil {
			log.Fatalln(err)
		}

		points, err := mergeSources(ctx, sources, mergeConfig, simplifier)
		if err != nil {
			log.Fatalln(err)
		}
		if err := os.MkdirAll(filepath.Dir(output), 0770); err != nil {
			log.Fatalln(err)
		}
		if err := gpx.WriteFile(output, "Merged Track (All Files)", points); err != nil {
			log.Fatalln(err)
		}
		slog.Info("Merged tracks", "files", len(sources), "points", humanize.Comma(int64(len(points))), "output", output)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	defaults := params.DefaultMergeConfig

	flags := mergeCmd.Flags()
	flags.StringVarP(&optMergeOutput, "output", "o", "", "Output file (default <dir>/all/allData.gpx)")
	flags.BoolVar(&optMergeSimplify, "simplify", false, "Simplify the merged tracks")
	flags.BoolVar(&optMergeStrict, "strict", false, "Fail on the first unreadable file")
	flags.String("mode", string(defaults.Mode), "Simplify per-track or global")
	flags.Bool("dedupe", defaults.Dedupe, "Drop duplicate fixes")
	flags.Int("dedupe-window", defaults.DedupeWindow, "Number of recent fixes remembered by --dedupe")
	flags.Bool("sort", defaults.Sort, "Stable-sort each track by time")

	bindFlags(flags, map[string]string{
		"merge.mode":          "mode",
		"merge.dedupe":        "dedupe",
		"merge.dedupe_window": "dedupe-window",
		"merge.sort":          "sort",
	})
}

// readSources reads each path as a source track. Unless strict,
// unreadable files are logged and left out.
func readSources(paths []string, strict bool) ([][]trackpoint.TrackPoint, error) {
	if strict {
		return merge.Files(paths)
	}
	out := make([][]trackpoint.TrackPoint, 0, len(paths))
	for _, p := range paths {
		pts, err := merge.ReadFile(p)
		if err != nil {
			slog.Error("Skipping unreadable file", "path", p, "error", err)
			continue
		}
		slog.Info("Read file", "path", p, "points", humanize.Comma(int64(len(pts))))
		out = append(out, pts)
	}
	return out, nil
}

// mergeSources merges sources under cfg, simplifying when s is not nil.
// Dedupe and sort apply to the unit being simplified: each source in
// per-track mode, the concatenation in global mode.
func mergeSources(ctx context.Context, sources [][]trackpoint.TrackPoint, cfg *params.MergeConfig, s *api.Simplifier) ([]trackpoint.TrackPoint, error) {
	opts := merge.OptionsFrom(cfg)
	if s == nil {
		return merge.Tracks(ctx, sources, opts), nil
	}
	if opts.Dedupe || opts.Sort {
		if cfg.Mode == params.MergeGlobal {
			sources = [][]trackpoint.TrackPoint{merge.Tracks(ctx, sources, opts)}
		} else {
			cleaned := make([][]trackpoint.TrackPoint, len(sources))
			for i := range sources {
				cleaned[i] = merge.Tracks(ctx, sources[i:i+1], opts)
			}
			sources = cleaned
		}
	}
	res, err := api.SimplifyTracks(ctx, s, sources, cfg.Mode, params.DefaultWorkers)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	slog.Info("Simplified merged tracks", "mode", cfg.Mode,
		"points.in", humanize.Comma(int64(res.InputPointCount)),
		"points.out", humanize.Comma(int64(res.OutputPointCount)),
		"stays", res.StayRegionCount)
	return res.Points, nil
}
