package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	timerout "cadence/internal/modules/timer/port/out"
)

const slotExt = ".json"

var slotKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// FileStateStore keeps one JSON file per key under dir. Writes go through
// a temporary file and a rename so readers in other processes never see
// a partial value.
type FileStateStore struct {
	dir string
}

func NewFileStateStore(dir string) *FileStateStore {
	return &FileStateStore{dir: dir}
}

var _ timerout.StateStore = (*FileStateStore)(nil)

func (s *FileStateStore) Dir() string {
	return s.dir
}

func (s *FileStateStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.pathOf(key)
	if err != nil {
		return nil, false, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read state %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *FileStateStore) Set(_ context.Context, key string, value []byte) error {
	path, err := s.pathOf(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state %s: %w", key, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write state %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace state %s: %w", key, err)
	}
	return nil
}

func (s *FileStateStore) Remove(_ context.Context, key string) error {
	path, err := s.pathOf(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear state %s: %w", key, err)
	}
	return nil
}

// KeyOf maps a file name inside the store directory back to its key.
func KeyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if filepath.Ext(base) != slotExt {
		return "", false
	}
	key := base[:len(base)-len(slotExt)]
	if !slotKeyPattern.MatchString(key) {
		return "", false
	}
	return key, true
}

func (s *FileStateStore) pathOf(key string) (string, error) {
	if !slotKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid state key %q", key)
	}
	return filepath.Join(s.dir, key+slotExt), nil
}
