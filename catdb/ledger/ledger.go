// Package ledger records which input files have been simplified, under
// which configuration, so batch runs can skip work that is already done.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/rotblauer/gpxnap/params"
	"go.etcd.io/bbolt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Entry is the ledger record of one processed input.
type Entry struct {
	ConfigHash   uint64    `json:"config_hash"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mod_time"`
	InputPoints  int       `json:"input_points"`
	OutputPoints int       `json:"output_points"`
	Stays        int       `json:"stays"`
	Output       string    `json:"output"`
	Processed    time.Time `json:"processed"`
}

type Ledger struct {
	DB     *bbolt.DB
	logger *slog.Logger
}

// Open opens or creates the ledger database at path.
// A writable ledger holds an exclusive file lock; Open waits up to a second for it.
func Open(path string, readOnly bool) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		ReadOnly: readOnly,
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if !readOnly {
		err = db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(params.LedgerBucket)
			return err
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Ledger{DB: db, logger: slog.With("pkg", "ledger")}, nil
}

func (l *Ledger) Close() error {
	return l.DB.Close()
}

// ConfigHash fingerprints a configuration value.
func ConfigHash(cfg any) (uint64, error) {
	return hashstructure.Hash(cfg, hashstructure.FormatV2, nil)
}

func key(input string) ([]byte, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	return []byte(abs), nil
}

// Get returns the entry for input, or nil if there is none.
func (l *Ledger) Get(input string) (*Entry, error) {
	k, err := key(input)
	if err != nil {
		return nil, err
	}
	var e *Entry
	err = l.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.LedgerBucket)
		if b == nil {
			return nil
		}
		data := b.Get(k)
		if data == nil {
			return nil
		}
		e = &Entry{}
		return json.Unmarshal(data, e)
	})
	return e, err
}

func (l *Ledger) Put(input string, e *Entry) error {
	if e == nil {
		return errors.New("ledger: nil entry")
	}
	k, err := key(input)
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return l.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(params.LedgerBucket)
		if err != nil {
			return err
		}
		return b.Put(k, data)
	})
}

func (l *Ledger) Forget(input string) error {
	k, err := key(input)
	if err != nil {
		return err
	}
	return l.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.LedgerBucket)
		if b == nil {
			return nil
		}
		return b.Delete(k)
	})
}

// Fresh reports whether input was last processed under configHash into output,
// has not changed size or modification time since, and its output still exists.
func (l *Ledger) Fresh(input string, configHash uint64, output string) (bool, error) {
	e, err := l.Get(input)
	if err != nil || e == nil {
		return false, err
	}
	fi, err := os.Stat(input)
	if err != nil {
		return false, err
	}
	if e.ConfigHash != configHash || e.Size != fi.Size() || !e.ModTime.Equal(fi.ModTime()) {
		return false, nil
	}
	if e.Output != output {
		l.logger.Debug("Ledger output moved", "input", input, "was", e.Output, "now", output)
		return false, nil
	}
	if _, err := os.Stat(e.Output); err != nil {
		l.logger.Debug("Ledger output missing", "input", input, "output", e.Output)
		return false, nil
	}
	return true, nil
}

// Record stats input and stores an entry for it.
func (l *Ledger) Record(input string, configHash uint64, e Entry) error {
	fi, err := os.Stat(input)
	if err != nil {
		return err
	}
	e.ConfigHash = configHash
	e.Size = fi.Size()
	e.ModTime = fi.ModTime()
	if e.Processed.IsZero() {
		e.Processed = time.Now().UTC()
	}
	return l.Put(input, &e)
}

// Len is the number of recorded inputs.
func (l *Ledger) Len() (int, error) {
	n := 0
	err := l.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.LedgerBucket)
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}
