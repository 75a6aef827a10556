package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrStorage marks image store I/O failures. Callers treat it as fatal to
// the request; there are no retries.
var ErrStorage = errors.New("asset storage failure")

// Store keeps product images on local disk under a single directory.
// Writes are not coordinated with database commits; the small windows where
// file and record disagree are accepted.
type Store struct {
	dir    string
	logger zerolog.Logger
}

func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrStorage, dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save writes data under a fresh random name derived from the uploaded
// filename and returns that name. Random prefixes make collisions with
// existing assets negligible.
func (s *Store) Save(originalName string, data []byte) (string, error) {
	name := uuid.NewString() + "_" + filepath.Base(originalName)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("file", name).Msg("Error writing image asset")
		return "", fmt.Errorf("%w: writing %s: %v", ErrStorage, name, err)
	}

	return name, nil
}

// Delete removes a stored asset. A missing file is not an error; callers
// delete old images best-effort and a reference may already be stale.
func (s *Store) Delete(name string) error {
	if name == "" {
		return nil
	}

	// Names never contain separators; reject anything that escapes the dir.
	if filepath.Base(name) != name {
		return fmt.Errorf("%w: invalid asset name %q", ErrStorage, name)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		s.logger.Error().Err(err).Str("file", name).Msg("Error deleting image asset")
		return fmt.Errorf("%w: deleting %s: %v", ErrStorage, name, err)
	}

	return nil
}

// Dir returns the directory assets are stored under, for static serving.
func (s *Store) Dir() string {
	return s.dir
}
