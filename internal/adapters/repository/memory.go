package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// listing is an immutable, ordered view of the stored matches.
type listing []model.Snapshot

// MemoryStore keeps snapshots in memory. Writes publish a new listing so
// that List never blocks on writers.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]model.Snapshot

	published atomic.Pointer[listing]

	metricsUpdateInterval time.Duration
	stopCh                chan struct{}
	stopOnce              sync.Once
}

// NewMemoryStore creates an in-memory store. The metrics updater runs until
// ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		matches:               make(map[string]model.Snapshot),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopCh:                make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publish()
	s.startMetricsUpdater(ctx)
	return s
}

func (s *MemoryStore) Save(ctx context.Context, snap model.Snapshot) error {
	if snap.ID == "" {
		return ErrInvalidID
	}
	start := time.Now()
	defer func() {
		metrics.RecordPersistLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.matches[snap.ID]; ok && cur.Version > snap.Version {
		return nil
	}
	s.matches[snap.ID] = snap
	s.publishLocked()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.matches[id]
	if !ok {
		return model.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]model.Snapshot, error) {
	l := s.published.Load()
	return slices.Clone(*l), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return nil
	}
	delete(s.matches, id)
	s.publishLocked()
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) int {
	return len(*s.published.Load())
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return nil
}

func (s *MemoryStore) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked()
}

func (s *MemoryStore) publishLocked() {
	l := make(listing, 0, len(s.matches))
	for _, snap := range s.matches {
		l = append(l, snap)
	}
	sortSnapshots(l)
	s.published.Store(&l)
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics() {
	metrics.UpdateStoredMatches(len(*s.published.Load()))
}

// sortSnapshots orders by creation time, then id.
func sortSnapshots(snaps []model.Snapshot) {
	slices.SortFunc(snaps, func(a, b model.Snapshot) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
