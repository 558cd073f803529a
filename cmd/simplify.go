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
	"errors"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/gpxnap/api"
	"github.com/rotblauer/gpxnap/catdb/ledger"
	"github.com/rotblauer/gpxnap/catz"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/gpx"
	"github.com/rotblauer/gpxnap/merge"
	"github.com/rotblauer/gpxnap/ndgeojson"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/stream"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var optSimplifyInputDir string
var optSimplifyOutputDir string
var optSimplifyDatadir string
var optSimplifyGZ bool
var optSimplifyStays bool
var optForce bool
var optWorkersN int

// simplifyCmd represents the simplify command
var simplifyCmd = &cobra.Command{
	Use:   "simplify [files...]",
	Short: "Simplify a directory of track files",
	Long: `Simplify reads every GPX, CSV and NDJSON track in --input (default ./Original),
or the files given as arguments, and writes <name>_simplified.gpx to --output
(default ./Simplified).

Each file is simplified independently; a file that fails is logged and skipped,
and the command exits non-zero once the rest are done.

Processed inputs are recorded in a ledger under --datadir. An input whose size,
modification time and simplify configuration are unchanged since it was last
processed, and whose output (at the same path, with the same --gz and --stays)
still exists, is skipped unless --force is given.

Examples:

  gpxnap simplify --workers 8
  gpxnap simplify --stay-radius 30 --campus-zone Original/2024-05-01.gpx
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		failed, err := runSimplify(args)
		if err != nil {
			log.Fatalln(err)
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

// runSimplify returns the number of files that failed. Deferred cleanup
// runs here so that the caller may exit the process afterwards.
func runSimplify(args []string) (failed int, err error) {
	ctx, stop := common.InterruptedContext(context.Background())
	defer stop()

	cfg, err := loadSimplifyConfig(viper.GetViper())
	if err != nil {
		return 0, err
	}
	job, err := newSimplifyJob(cfg, optSimplifyOutputDir, optSimplifyDatadir)
	if err != nil {
		return 0, err
	}
	defer job.close()
	job.force = optForce
	job.gz = optSimplifyGZ
	job.stays = optSimplifyStays

	paths := args
	if len(paths) == 0 {
		paths, err = merge.Dir(optSimplifyInputDir)
		if err != nil {
			return 0, err
		}
	}
	if len(paths) == 0 {
		slog.Warn("No track files found", "dir", optSimplifyInputDir)
		return 0, nil
	}

	start := time.Now()
	reports, err := job.run(ctx, optWorkersN, paths)
	if err != nil {
		return 0, err
	}
	return summarize(reports, time.Since(start)), nil
}

func init() {
	rootCmd.AddCommand(simplifyCmd)

	flags := simplifyCmd.Flags()
	flags.StringVar(&optSimplifyInputDir, "input", "Original", "Directory of track files to simplify")
	flags.StringVar(&optSimplifyOutputDir, "output", "Simplified", "Directory to write simplified tracks to")
	flags.StringVar(&optSimplifyDatadir, "datadir", params.DefaultDatadirRoot, "Directory holding the processed-file ledger")
	flags.BoolVar(&optSimplifyGZ, "gz", false, "Gzip the simplified tracks")
	flags.BoolVar(&optSimplifyStays, "stays", false, "Also write each file's stay regions as <name>_stays.ndjson")
	flags.BoolVar(&optForce, "force", false, "Reprocess inputs the ledger says are current")
	flags.IntVar(&optWorkersN, "workers", params.DefaultWorkers, "Number of files to simplify in parallel")
}

// simplifyJob simplifies files into an output directory, keeping the ledger.
type simplifyJob struct {
	simplifier *api.Simplifier
	config     *params.SimplifyConfig
	ledger     *ledger.Ledger
	outputDir  string
	force      bool
	gz         bool
	stays      bool
}

func newSimplifyJob(cfg *params.SimplifyConfig, outputDir, datadir string) (*simplifyJob, error) {
	s, err := api.NewSimplifier(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0770); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(datadir, 0770); err != nil {
		return nil, err
	}
	l, err := ledger.Open(filepath.Join(datadir, params.LedgerDBName), false)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &simplifyJob{simplifier: s, config: cfg.Copy(), ledger: l, outputDir: outputDir}, nil
}

func (j *simplifyJob) close() {
	if err := j.ledger.Close(); err != nil {
		slog.Error("Failed to close ledger", "error", err)
	}
}

// jobFingerprint is what the ledger hashes: anything that changes
// what a run writes for an input.
type jobFingerprint struct {
	Simplify *params.SimplifyConfig
	GZ       bool
	Stays    bool
}

func (j *simplifyJob) fingerprint() (uint64, error) {
	return ledger.ConfigHash(jobFingerprint{Simplify: j.config, GZ: j.gz, Stays: j.stays})
}

// fileReport is the outcome of simplifying one input.
type fileReport struct {
	Input   string
	Output  string
	Skipped bool
	Result  *api.Result
	Err     error
}

// outputPath is <output>/<base>_simplified.gpx[.gz] for input.
func (j *simplifyJob) outputPath(input string) string {
	base := filepath.Base(catz.TrimGZ(input))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := base + params.SimplifiedSuffix + ".gpx"
	if j.gz {
		name += ".gz"
	}
	return filepath.Join(j.outputDir, name)
}

func (j *simplifyJob) staysPath(output string) string {
	base := strings.TrimSuffix(filepath.Base(catz.TrimGZ(output)), params.SimplifiedSuffix+".gpx")
	return filepath.Join(j.outputDir, base+"_stays.ndjson")
}

// run simplifies paths with a bounded pool. Per-file failures are
// reported, not returned; only cancellation stops the run.
func (j *simplifyJob) run(ctx context.Context, workers int, paths []string) ([]fileReport, error) {
	hash, err := j.fingerprint()
	if err != nil {
		return nil, err
	}
	return stream.Ordered(ctx, workers, paths, func(ctx context.Context, i int, input string) (fileReport, error) {
		rep := j.file(input, hash)
		switch {
		case rep.Err != nil:
			slog.Error("Failed to simplify file", "input", input, "error", rep.Err)
		case rep.Skipped:
			slog.Info("Skipping current file", "input", input, "output", rep.Output)
		default:
			slog.Info("Simplified file",
				"file", fmt.Sprintf("%d/%d", i+1, len(paths)),
				"input", input, "output", rep.Output,
				"points", fmt.Sprintf("%s -> %s", humanize.Comma(int64(rep.Result.InputPointCount)), humanize.Comma(int64(rep.Result.OutputPointCount))),
				"stays", rep.Result.StayRegionCount,
				"ratio", fmt.Sprintf("%.3f", rep.Result.Ratio()))
		}
		return rep, nil
	})
}

func (j *simplifyJob) file(input string, hash uint64) fileReport {
	rep := fileReport{Input: input, Output: j.outputPath(input)}
	if !j.force {
		fresh, err := j.ledger.Fresh(input, hash, rep.Output)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			rep.Err = err
			return rep
		}
		if fresh {
			rep.Skipped = true
			return rep
		}
	}
	points, err := merge.ReadFile(input)
	if err != nil {
		rep.Err = err
		return rep
	}
	res, err := j.simplifier.Simplify(points)
	if err != nil {
		rep.Err = fmt.Errorf("%s: %w", input, err)
		return rep
	}
	if err := gpx.WriteFile(rep.Output, params.DefaultTrackName, res.Points); err != nil {
		rep.Err = err
		return rep
	}
	if j.stays {
		features := make([]*geojson.Feature, 0, len(res.Stays))
		for _, st := range res.Stays {
			features = append(features, st.Feature())
		}
		if err := ndgeojson.WriteFile(j.staysPath(rep.Output), features); err != nil {
			rep.Err = err
			return rep
		}
	}
	rep.Result = res
	rep.Err = j.ledger.Record(input, hash, ledger.Entry{
		InputPoints:  res.InputPointCount,
		OutputPoints: res.OutputPointCount,
		Stays:        res.StayRegionCount,
		Output:       rep.Output,
	})
	return rep
}

// summarize logs totals and returns the number of failed files.
func summarize(reports []fileReport, took time.Duration) (failed int) {
	var skipped int
	total := &api.Result{}
	for _, rep := range reports {
		switch {
		case rep.Err != nil:
			failed++
		case rep.Skipped:
			skipped++
		default:
			total.InputPointCount += rep.Result.InputPointCount
			total.OutputPointCount += rep.Result.OutputPointCount
			total.StayRegionCount += rep.Result.StayRegionCount
		}
	}
	slog.Info("Simplify done",
		"files", len(reports), "skipped", skipped, "failed", failed,
		"points.in", humanize.Comma(int64(total.InputPointCount)),
		"points.out", humanize.Comma(int64(total.OutputPointCount)),
		"stays", total.StayRegionCount,
		"ratio", fmt.Sprintf("%.3f", total.Ratio()),
		"took", took.Round(time.Millisecond))
	return failed
}
