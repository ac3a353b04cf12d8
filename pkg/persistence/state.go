package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ranconf/enodebd-go/pkg/snapshot"
)

// FileStore keeps snapshots as JSON files laid out as
// <dir>/<serial>/<kind>.json.
type FileStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) LoadDesired(ctx context.Context, serial string) (*snapshot.Snapshot, error) {
	return s.load(serial, KindDesired)
}

func (s *FileStore) SaveDesired(ctx context.Context, serial string, snap *snapshot.Snapshot) error {
	return s.save(serial, KindDesired, snap)
}

func (s *FileStore) LoadActual(ctx context.Context, serial string) (*snapshot.Snapshot, error) {
	return s.load(serial, KindActual)
}

func (s *FileStore) SaveActual(ctx context.Context, serial string, snap *snapshot.Snapshot) error {
	return s.save(serial, KindActual, snap)
}

// Devices lists the subdirectories holding at least one snapshot file.
func (s *FileStore) Devices(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var serials []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, k := range []Kind{KindDesired, KindActual} {
			if _, err := os.Stat(s.path(e.Name(), k)); err == nil {
				serials = append(serials, e.Name())
				break
			}
		}
	}
	sort.Strings(serials)
	return serials, nil
}

// Clear removes every stored snapshot of a device.
func (s *FileStore) Clear(serial string) error {
	if err := ValidSerial(serial); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.RemoveAll(filepath.Join(s.dir, serial))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(serial string, kind Kind) string {
	return filepath.Join(s.dir, serial, kind.String()+".json")
}

func (s *FileStore) save(serial string, kind Kind, snap *snapshot.Snapshot) error {
	if err := ValidSerial(serial); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(serial, kind)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	rec := Record{
		Version:  FormatVersion,
		Serial:   serial,
		Kind:     kind.String(),
		SavedAt:  s.now().UTC(),
		Snapshot: snap,
	}
	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s snapshot for %s: %w", kind, serial, err)
	}

	// Readers see either the old or the new file, never a partial one.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) load(serial string, kind Kind) (*snapshot.Snapshot, error) {
	if err := ValidSerial(serial); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(serial, kind))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, serial)
	}
	if err != nil {
		return nil, err
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s snapshot for %s: %w", kind, serial, err)
	}
	if err := rec.check(); err != nil {
		return nil, err
	}
	return rec.Snapshot, nil
}
