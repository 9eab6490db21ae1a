// Package scratch manages the temp files exchanged with the host during a
// generation. Files are overwritten in place on every attempt.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Well-known scratch file names.
const (
	ImageFile  = "temp_img.png"
	MaskFile   = "temp_mask.png"
	ResultFile = "result.png"

	lockFile = ".generation.lock"
)

// ErrLocked is returned by Lock when another generation holds the directory.
var ErrLocked = errors.New("scratch: directory is locked by another generation")

// Storage is a directory of overwrite-in-place scratch files.
type Storage struct {
	dir    string
	logger *slog.Logger
}

// DefaultDir is used when no scratch directory is configured.
func DefaultDir() string { return filepath.Join(os.TempDir(), "spice") }

// New creates dir if needed and returns storage rooted at it.
func New(dir string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

// Dir returns the scratch directory.
func (s *Storage) Dir() string { return s.dir }

// Path returns the absolute location of a scratch file.
func (s *Storage) Path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Create creates or truncates a scratch file for writing.
func (s *Storage) Create(name string) (io.WriteCloser, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	return f, nil
}

// Write replaces the content of a scratch file.
func (s *Storage) Write(name string, data []byte) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scratch file: %w", err)
	}
	return nil
}

// Read returns the content of a scratch file.
func (s *Storage) Read(name string) ([]byte, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch file: %w", err)
	}
	return data, nil
}

// Lock takes an exclusive, non-blocking lock on the directory so two
// generations never share the scratch files. The returned func releases it.
func (s *Storage) Lock() (func(), error) {
	fileLock := flock.New(filepath.Join(s.dir, lockFile))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scratch lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("failed to release scratch lock", "error", err)
		}
	}, nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("scratch: invalid file name %q", name)
	}
	return nil
}
