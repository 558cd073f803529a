package params

import (
	"compress/gzip"
	"os"
	"path/filepath"
)

const (
	// LedgerDBName is the bbolt file recording processed inputs.
	LedgerDBName = "ledger.db"

	// SimplifiedSuffix is appended to the base name of batch outputs.
	SimplifiedSuffix = "_simplified"

	// MergedFileName is the output of the merge command, relative to its output dir.
	MergedFileName = "allData.gpx"

	// DefaultTrackName names the single trk element written to GPX files.
	DefaultTrackName = "Simplified Track"

	// Creator is written to the creator attribute of GPX files.
	Creator = "gpxnap"
)

var LedgerBucket = []byte("simplified")

var DefaultWorkers = 4

var DefaultGZipCompressionLevel = gzip.BestCompression

// DefaultDatadirRoot holds the ledger.
var DefaultDatadirRoot = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".gpxnap")
	}
	return filepath.Join(home, ".gpxnap")
}()
