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
	"github.com/rotblauer/gpxnap/catz"
	"github.com/rotblauer/gpxnap/gpx"
	"github.com/rotblauer/gpxnap/tabular"
	"github.com/spf13/cobra"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// gpx2csvCmd represents the gpx2csv command
var gpx2csvCmd = &cobra.Command{
	Use:   "gpx2csv [root]",
	Short: "Convert GPX files to Latitude,Longitude,Time CSV",
	Long: `gpx2csv walks root (default .) and writes a CSV for every GPX file found,
mirroring the directory layout under <root>/csv. The csv directory itself
is not walked. A single GPX file may be given instead of a directory, in
which case the CSV is written next to it.
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		fi, err := os.Stat(root)
		if err != nil {
			log.Fatalln(err)
		}
		if !fi.IsDir() {
			if err := gpxToCSV(root, replaceExt(root, ".csv")); err != nil {
				log.Fatalln(err)
			}
			return
		}
		n, failed, err := gpxTreeToCSV(root)
		if err != nil {
			log.Fatalln(err)
		}
		slog.Info("Converted GPX files", "converted", n, "failed", failed)
		if failed > 0 {
			os.Exit(1)
		}
	},
}

// csv2gpxCmd represents the csv2gpx command
var csv2gpxCmd = &cobra.Command{
	Use:   "csv2gpx <input.csv> [output.gpx]",
	Short: "Convert a CSV backup export to GPX",
	Long: `csv2gpx reads rows with dataTime, longitude and latitude columns (and optional
altitude, speed and accuracy), sorts them by time and writes one GPX track.
The output defaults to the input path with a .gpx extension.
`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		input := args[0]
		output := replaceExt(input, ".gpx")
		if len(args) > 1 {
			output = args[1]
		}
		points, err := tabular.ReadFile(input)
		if err != nil {
			log.Fatalln(err)
		}
		if err := gpx.WriteFile(output, "GPS Track", points); err != nil {
			log.Fatalln(err)
		}
		slog.Info("Converted CSV", "input", input, "output", output, "points", len(points))
	},
}

func init() {
	rootCmd.AddCommand(gpx2csvCmd)
	rootCmd.AddCommand(csv2gpxCmd)
}

// replaceExt swaps the extension of path, ignoring a trailing .gz.
func replaceExt(path, ext string) string {
	p := catz.TrimGZ(path)
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}

func gpxToCSV(input, output string) error {
	points, err := gpx.ReadPoints(input)
	if err != nil {
		return err
	}
	if err := tabular.WriteFile(output, points); err != nil {
		return err
	}
	slog.Info("Converted GPX", "input", input, "output", output, "points", len(points))
	return nil
}

// gpxTreeToCSV converts every GPX file under root into <root>/csv/<rel>.csv.
// Per-file failures are logged and counted.
func gpxTreeToCSV(root string) (converted, failed int, err error) {
	csvRoot := filepath.Join(root, "csv")
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == csvRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(catz.TrimGZ(d.Name())), ".gpx") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		output := replaceExt(filepath.Join(csvRoot, rel), ".csv")
		if err := os.MkdirAll(filepath.Dir(output), 0770); err != nil {
			return err
		}
		if err := gpxToCSV(path, output); err != nil {
			slog.Error("Failed to convert file", "path", path, "error", err)
			failed++
			return nil
		}
		converted++
		return nil
	})
	return converted, failed, err
}
