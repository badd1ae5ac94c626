package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/metrics"
)

const snapshotExt = ".json"

// FileStore keeps one JSON document per match in a directory. Writes go to
// a temporary file that is renamed over the previous version.
type FileStore struct {
	dir  string
	mode uint32
	mu   sync.Mutex
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{dir: dir, mode: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return s, nil
}

func (s *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", ErrInvalidID
	}
	return filepath.Join(s.dir, id+snapshotExt), nil
}

func (s *FileStore) Save(ctx context.Context, snap model.Snapshot) error {
	p, err := s.path(snap.ID)
	if err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordPersistLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, err := s.read(p); err == nil && cur.Version > snap.Version {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
	}
	tmp, err := os.CreateTemp(s.dir, snap.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
	}
	if err := tmp.Chmod(fs.FileMode(s.mode)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod snapshot %s: %w", snap.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot %s: %w", snap.ID, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, id string) (model.Snapshot, error) {
	p, err := s.path(id)
	if err != nil {
		return model.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(p)
}

func (s *FileStore) read(p string) (model.Snapshot, error) {
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, filepath.Base(p), err)
	}
	return snap, nil
}

// List skips unreadable files and reports them in the returned error
// alongside the snapshots that could be read.
func (s *FileStore) List(ctx context.Context) ([]model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var (
		out  []model.Snapshot
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != snapshotExt {
			continue
		}
		snap, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			metrics.RecordErrorByComponent("store", "corrupt")
			errs = append(errs, err)
			continue
		}
		out = append(out, snap)
	}
	sortSnapshots(out)
	return out, errors.Join(errs...)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) Count(ctx context.Context) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == snapshotExt {
			n++
		}
	}
	return n
}
