package ledger

import (
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/testing/testdata"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, params.LedgerDBName), false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, dir
}

func TestLedger_Fresh(t *testing.T) {
	l, dir := openTestLedger(t)
	input := testdata.WriteFile(dir, "Original/a.gpx", testdata.SampleGPX)
	output := testdata.WriteFile(dir, "Simplified/a_simplified.gpx", testdata.SampleGPX)

	hash, err := ConfigHash(params.DefaultSimplifyConfig)
	if err != nil {
		t.Fatal(err)
	}
	if fresh, err := l.Fresh(input, hash, output); err != nil || fresh {
		t.Fatalf("unrecorded input should not be fresh: %v %v", fresh, err)
	}
	if err := l.Record(input, hash, Entry{InputPoints: 3, OutputPoints: 3, Output: output}); err != nil {
		t.Fatal(err)
	}
	if fresh, err := l.Fresh(input, hash, output); err != nil || !fresh {
		t.Fatalf("recorded input should be fresh: %v %v", fresh, err)
	}

	e, err := l.Get(input)
	if err != nil || e == nil {
		t.Fatalf("get: %v %v", e, err)
	}
	if e.InputPoints != 3 || e.Output != output || e.Processed.IsZero() {
		t.Errorf("unexpected entry %+v", e)
	}

	// Another output location.
	if fresh, _ := l.Fresh(input, hash, filepath.Join(dir, "Elsewhere", "a_simplified.gpx")); fresh {
		t.Error("a different output path should not be fresh")
	}

	// Another config.
	cfg := params.DefaultSimplifyConfig.Copy()
	cfg.StayRadius = 25
	other, _ := ConfigHash(cfg)
	if other == hash {
		t.Fatal("config hash ignores stay radius")
	}
	if fresh, _ := l.Fresh(input, other, output); fresh {
		t.Error("changed config should not be fresh")
	}

	// Touched input.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(input, later, later); err != nil {
		t.Fatal(err)
	}
	if fresh, _ := l.Fresh(input, hash, output); fresh {
		t.Error("modified input should not be fresh")
	}
	if err := l.Record(input, hash, Entry{Output: output}); err != nil {
		t.Fatal(err)
	}

	// Deleted output.
	if err := os.Remove(output); err != nil {
		t.Fatal(err)
	}
	if fresh, _ := l.Fresh(input, hash, output); fresh {
		t.Error("missing output should not be fresh")
	}
}

func TestLedger_ForgetAndLen(t *testing.T) {
	l, dir := openTestLedger(t)
	a := testdata.WriteFile(dir, "a.csv", testdata.SampleCSV)
	b := testdata.WriteFile(dir, "b.csv", testdata.SampleCSV)
	for _, p := range []string{a, b} {
		if err := l.Record(p, 1, Entry{Output: p}); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := l.Len(); n != 2 {
		t.Errorf("want 2 entries, got %d", n)
	}
	if err := l.Forget(a); err != nil {
		t.Fatal(err)
	}
	if e, _ := l.Get(a); e != nil {
		t.Error("forgotten entry still present")
	}
	if n, _ := l.Len(); n != 1 {
		t.Errorf("want 1 entry, got %d", n)
	}
}

func TestLedger_RelativeKey(t *testing.T) {
	l, dir := openTestLedger(t)
	p := testdata.WriteFile(dir, "rel.gpx", testdata.SampleGPX)
	wd, _ := os.Getwd()
	rel, err := filepath.Rel(wd, p)
	if err != nil {
		t.Skip(err)
	}
	if err := l.Record(rel, 7, Entry{Output: p}); err != nil {
		t.Fatal(err)
	}
	if e, _ := l.Get(p); e == nil || e.ConfigHash != 7 {
		t.Errorf("relative and absolute paths should share an entry, got %+v", e)
	}
}
