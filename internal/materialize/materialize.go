// Package materialize writes stored content to uniquely named temporary files
// that an external computation can read, and guarantees their removal.
package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/observability"
)

// Materializer creates temp files under dir named <prefix>_<key>_<uuid>.csv
type Materializer struct {
	dir    string
	prefix string
}

// New creates a Materializer. An empty dir means os.TempDir().
func New(dir, prefix string) *Materializer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Materializer{dir: dir, prefix: prefix}
}

// File is a materialized resource. Release is safe to call more than once.
type File struct {
	Path string
	once sync.Once
}

// Release removes the file
func (f *File) Release() {
	f.once.Do(func() {
		_ = os.Remove(f.Path)
		observability.ActiveMaterializations.Dec()
	})
}

// Materialize writes content for key. Callers must defer Release.
func (m *Materializer) Materialize(key string, content string) (*File, error) {
	return m.MaterializeFrom(key, strings.NewReader(content))
}

// MaterializeFrom streams r into a new temp file for key
func (m *Materializer) MaterializeFrom(key string, r io.Reader) (*File, error) {
	name := fmt.Sprintf("%s_%s_%s.csv", m.prefix, key, uuid.NewString())
	path := filepath.Join(m.dir, name)

	fh, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, contracts.StorageError("failed to materialize signal file", err)
	}
	observability.ActiveMaterializations.Inc()
	f := &File{Path: path}

	if _, err := io.Copy(fh, r); err != nil {
		fh.Close()
		f.Release()
		return nil, contracts.StorageError("failed to materialize signal file", err)
	}
	if err := fh.Close(); err != nil {
		f.Release()
		return nil, contracts.StorageError("failed to materialize signal file", err)
	}

	return f, nil
}

// Sweep removes files with this materializer's prefix older than maxAge.
// maxAge must exceed the computation timeout (config enforces it), so only
// leftovers from a crashed process match.
func (m *Materializer) Sweep(maxAge time.Duration) (int, error) {
	matches, err := filepath.Glob(filepath.Join(m.dir, m.prefix+"_*.csv"))
	if err != nil {
		return 0, fmt.Errorf("glob temp files: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	observability.TempFilesSweptTotal.Add(float64(removed))
	return removed, nil
}

// Dir returns the directory files are written to
func (m *Materializer) Dir() string {
	return m.dir
}
