// Package catz opens and creates track files, gzipped or not, by name.
package catz

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"github.com/rotblauer/gpxnap/params"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsGZ reports whether path names a gzipped file by extension.
func IsGZ(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

// TrimGZ strips a trailing .gz, so "a.gpx.gz" yields "a.gpx".
func TrimGZ(path string) string {
	if IsGZ(path) {
		return path[:len(path)-len(filepath.Ext(path))]
	}
	return path
}

// Open opens path for reading, decompressing it if it is gzipped.
// Gzip is detected by content, so a misnamed file still reads.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	head, _ := br.Peek(len(gzipMagic))
	if !bytes.Equal(head, gzipMagic) {
		return &plainFile{Reader: br, f: f}, nil
	}
	gzr, err := gzip.NewReader(br)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &gzFile{Reader: gzr, f: f}, nil
}

type plainFile struct {
	io.Reader
	f *os.File
}

func (p *plainFile) Close() error { return p.f.Close() }

type gzFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

type GZFileWriterConfig struct {
	CompressionLevel int
	FilePerm         os.FileMode
	DirPerm          os.FileMode
}

func DefaultGZFileWriterConfig() *GZFileWriterConfig {
	return &GZFileWriterConfig{
		CompressionLevel: params.DefaultGZipCompressionLevel,
		FilePerm:         0660,
		DirPerm:          0770,
	}
}

// AtomicFile writes to a temporary sibling of its target and renames it
// into place on Commit, so readers never see a partial file.
// Targets ending in .gz are gzipped.
type AtomicFile struct {
	target string
	f      *os.File
	gzw    *gzip.Writer
	w      io.Writer
	done   bool
}

func CreateAtomic(target string, config *GZFileWriterConfig) (*AtomicFile, error) {
	if config == nil {
		config = DefaultGZFileWriterConfig()
	}
	if err := os.MkdirAll(filepath.Dir(target), config.DirPerm); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, err
	}
	if err := f.Chmod(config.FilePerm); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	// Exclusive for the life of the descriptor.
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
	a := &AtomicFile{target: target, f: f, w: f}
	if IsGZ(target) {
		gzw, err := gzip.NewWriterLevel(f, config.CompressionLevel)
		if err != nil {
			a.Abort()
			return nil, err
		}
		a.gzw = gzw
		a.w = gzw
	}
	return a, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.w.Write(p)
}

func (a *AtomicFile) Path() string {
	return a.target
}

// Commit flushes and renames the temporary file over the target.
func (a *AtomicFile) Commit() error {
	if a.done {
		return os.ErrClosed
	}
	a.done = true
	if a.gzw != nil {
		if err := a.gzw.Close(); err != nil {
			a.cleanup()
			return err
		}
	}
	if err := a.f.Sync(); err != nil {
		a.cleanup()
		return err
	}
	if err := a.f.Close(); err != nil {
		_ = os.Remove(a.f.Name())
		return err
	}
	if err := os.Rename(a.f.Name(), a.target); err != nil {
		_ = os.Remove(a.f.Name())
		return err
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	a.cleanup()
}

func (a *AtomicFile) cleanup() {
	_ = a.f.Close()
	_ = os.Remove(a.f.Name())
}
