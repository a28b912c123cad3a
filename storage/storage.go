// Package storage persists generated documents under unique names and expires them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultDirPermissions is used when creating the output directory
const DefaultDirPermissions = 0755

const tempPattern = ".tmp-*"

// ErrNotFound is returned for names that do not exist or are not valid output names.
var ErrNotFound = errors.New("output not found")

// Store writes outputs into a single directory.
type Store struct {
	dir       string
	retention time.Duration
	now       func() time.Time
}

// New creates dir if needed. Outputs older than retention are removed by Sweep; zero keeps them forever.
func New(dir string, retention time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Store{dir: dir, retention: retention, now: time.Now}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string { return s.dir }

// Save writes data under a new unique name with the given prefix and returns the name.
func (s *Store) Save(prefix string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s.pdf", sanitizePrefix(prefix), uuid.NewString())
	path := filepath.Join(s.dir, name)

	// Write to a temp file first so readers never see a partial document
	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store output file: %w", err)
	}
	return name, nil
}

// Path resolves a stored name to its file path. Names containing path elements are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Sweep removes outputs older than the retention period and returns how many were removed.
// Only files named the way Save names them are considered.
func (s *Store) Sweep() (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list output directory: %w", err)
	}
	cutoff := s.now().Add(-s.retention)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isOutputName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			logrus.WithFields(logrus.Fields{"file": e.Name(), "error": err}).Warn("failed to remove expired output")
			continue
		}
		removed++
	}
	return removed, nil
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.retention <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep()
			if err != nil {
				logrus.WithError(err).Warn("output sweep failed")
				continue
			}
			if n > 0 {
				logrus.WithField("removed", n).Info("expired outputs removed")
			}
		}
	}
}

// isOutputName reports whether name is a "<prefix>_<uuid>.pdf" output or a leftover Save temp file.
func isOutputName(name string) bool {
	if strings.HasPrefix(name, strings.TrimSuffix(tempPattern, "*")) {
		return true
	}
	base, ok := strings.CutSuffix(name, ".pdf")
	if !ok {
		return false
	}
	i := strings.LastIndexByte(base, '_')
	if i <= 0 || sanitizePrefix(base[:i]) != base[:i] {
		return false
	}
	id, err := uuid.Parse(base[i+1:])
	return err == nil && id.String() == base[i+1:]
}

// sanitizePrefix keeps letters, digits, dashes and underscores.
func sanitizePrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "output"
	}
	return b.String()
}
