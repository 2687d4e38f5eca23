package exporter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Entry is one line of the export log: what was written where, how big it
// was, and its content checksum.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Artifact  string    `json:"artifact"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	Rows      int       `json:"rows,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	SHA256    string    `json:"checksum_sha256"`
}

// Manifest is the full export log for one run.
type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"exports"`
}

// writeAtomic writes an artifact through a temp file in the destination
// directory and renames it into place, so a failed write never leaves a
// truncated artifact behind. Returns the byte count and SHA-256 checksum
// of the finalized file.
func writeAtomic(path string, write func(io.Writer) error) (int64, string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return 0, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	hasher := sha256.New()
	counter := &countingWriter{}
	out := io.MultiWriter(tmp, hasher, counter)

	if err := write(out); err != nil {
		cleanup()
		return 0, "", err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return 0, "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, "", fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	return counter.n, hex.EncodeToString(hasher.Sum(nil)), nil
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
