package tablib

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store reads and writes managed unit files under a single directory.
// All access goes through an afero filesystem so tests run against a
// memory-backed store.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a store over dir. Production callers pass
// afero.NewOsFs() and the per-user unit directory.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// Ensure creates the unit directory if it does not exist yet.
func (s *Store) Ensure() error {
	return s.fs.MkdirAll(s.dir, 0o755)
}

// CheckWritable verifies the unit directory exists, is a directory and
// accepts writes, by creating and removing a probe file. Returns one of
// the ErrDir sentinels wrapped with the offending path.
func (s *Store) CheckWritable() error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDirNotFound, s.dir)
		}
		return fmt.Errorf("%w: %v", ErrDirNotFound, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, s.dir)
	}
	probe := filepath.Join(s.dir, fmt.Sprintf(".systemdtab_write_test_%d", os.Getpid()))
	f, err := s.fs.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDirNotWritable, s.dir)
	}
	f.Close()
	s.fs.Remove(probe)
	return nil
}

// ServicePath returns the full path of a managed service file.
func (s *Store) ServicePath(name string) string {
	return filepath.Join(s.dir, ServiceFile(name))
}

// TimerPath returns the full path of a managed timer file.
func (s *Store) TimerPath(name string) string {
	return filepath.Join(s.dir, TimerFile(name))
}

// Exists reports whether a managed unit of this name is installed. The
// service file is the identity anchor; a stray timer alone does not
// count.
func (s *Store) Exists(name string) (bool, error) {
	return afero.Exists(s.fs, s.ServicePath(name))
}

// HasTimerFile reports whether the unit currently has a trigger file on
// disk.
func (s *Store) HasTimerFile(name string) (bool, error) {
	return afero.Exists(s.fs, s.TimerPath(name))
}

// WriteUnit installs the rendered files for a unit. Each file is written
// to a temporary sibling and renamed into place, so a crash mid-write
// never leaves a half-written unit for the scanner to trip over. When
// the unit has no trigger a stale timer file from a previous kind is
// removed.
func (s *Store) WriteUnit(name string, files *UnitFiles) error {
	if files.Timer != nil {
		if err := s.writeAtomic(s.TimerPath(name), files.Timer); err != nil {
			return err
		}
	} else {
		if err := s.fs.Remove(s.TimerPath(name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return s.writeAtomic(s.ServicePath(name), files.Service)
}

// RemoveUnit deletes both files of a managed unit. Missing files are
// not an error so removal is idempotent.
func (s *Store) RemoveUnit(name string) error {
	if err := s.fs.Remove(s.TimerPath(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := s.fs.Remove(s.ServicePath(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadService returns the raw service file bytes for a managed unit.
func (s *Store) ReadService(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.ServicePath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, name)
	}
	return data, err
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return err
	}
	return nil
}
