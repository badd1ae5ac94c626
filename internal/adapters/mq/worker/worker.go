// Package worker persists match snapshots in the background.
package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/courtside/internal/adapters/mq/queue"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultDebounce     = 250 * time.Millisecond
	poolShutdownTimeout = 30 * time.Second
	workerInbox         = 256
)

// Saver writes snapshots to durable storage.
type Saver interface {
	Save(ctx context.Context, snap model.Snapshot) error
	Delete(ctx context.Context, id string) error
}

// Queue defines how the pool receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker persists jobs until its input is closed.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the input closes.
	Run(ctx context.Context)

	// Shutdown waits for the worker to flush and stop.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker coalesces jobs per match and writes only the newest
// snapshot once the debounce window has passed.
type InMemoryWorker struct {
	in       chan queue.Job
	saver    Saver
	name     string
	debounce time.Duration

	pending map[string]queue.Job

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		in:       make(chan queue.Job, workerInbox),
		saver:    saver,
		name:     "worker",
		debounce: defaultDebounce,
		pending:  make(map[string]queue.Job),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Submit hands a job to the worker. It blocks while the inbox is full and
// drops the job once the worker has stopped.
func (w *InMemoryWorker) Submit(j queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	select {
	case w.in <- j:
	case <-w.done:
		metrics.RecordErrorByComponent("worker", "stopped")
	}
}

// close stops accepting jobs; pending ones are flushed by Run.
func (w *InMemoryWorker) close() { close(w.in) }

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			// Write what we have with a fresh context; the caller's is gone.
			w.flush(context.WithoutCancel(ctx))
			return
		case j, ok := <-w.in:
			if !ok {
				w.flush(ctx)
				return
			}
			w.add(j)
			if w.debounce == 0 {
				w.flush(ctx)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			}
		case <-timerC:
			timer, timerC = nil, nil
			w.flush(ctx)
		}
	}
}

// add keeps the newest job per match.
func (w *InMemoryWorker) add(j queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	id := j.MatchID()
	if cur, ok := w.pending[id]; ok {
		metrics.RecordPersistCoalesced()
		if !j.Delete && !cur.Delete && cur.Snapshot.Version > j.Snapshot.Version {
			return
		}
	}
	w.pending[id] = j
}

func (w *InMemoryWorker) flush(ctx context.Context) {
	for id, j := range w.pending {
		delete(w.pending, id)
		if err := w.persist(ctx, j); err != nil {
			w.logger.Error(ctx, "persisting snapshot failed",
				logger.String("match", id),
				logger.Error(err),
			)
		}
	}
}

func (w *InMemoryWorker) persist(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	var err error
	if j.Delete {
		err = w.saver.Delete(ctx, j.MatchID())
	} else {
		err = w.saver.Save(ctx, j.Snapshot)
	}
	latency := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("worker", "persist_error")
		metrics.RecordErrorByType("persist_error", "high")
		metrics.RecordErrorLatency("worker", "persist_error", latency)
		return fmt.Errorf("persist match %s: %w", j.MatchID(), err)
	}
	metrics.RecordPersistWrite()
	w.logger.Debug(ctx, "snapshot persisted",
		logger.String("match", j.MatchID()),
		logger.Int64("version", int64(j.Snapshot.Version)),
		logger.Bool("delete", j.Delete),
		logger.Duration("queued", time.Since(j.Enqueued)),
	)
	return nil
}

// Shutdown waits for the worker to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool routes jobs to workers by match id so that the snapshots of one
// match are always written by the same worker, in order.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	saver    Saver
	debounce time.Duration

	dispatched chan struct{}
	stopOnce   sync.Once

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, saver Saver, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:    make([]*InMemoryWorker, workerCount),
		queue:      q,
		saver:      saver,
		debounce:   defaultDebounce,
		dispatched: make(chan struct{}),
		logger:     logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(pool)
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			saver,
			WithName("worker-"+strconv.Itoa(i)),
			WithDebounce(pool.debounce),
		)
	}

	metrics.UpdatePersistWorkers(workerCount)

	return pool
}

// Start starts all workers and the dispatcher.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	go p.dispatch(ctx)
}

func (p *Pool) dispatch(ctx context.Context) {
	defer close(p.dispatched)
	defer func() {
		for _, w := range p.workers {
			w.close()
		}
	}()

	for j := range p.queue.Dequeue(ctx) {
		p.workers[p.shard(j.MatchID())].Submit(j)
	}
}

func (p *Pool) shard(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(p.workers)))
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()
	_ = p.Shutdown(ctx)
}

// Shutdown closes the queue, lets the workers drain and flush what they hold
// and waits for them up to the context deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(err))
			}
		}
	})

	select {
	case <-p.dispatched:
	case <-ctx.Done():
		p.logger.Warn(ctx, "dispatcher shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}

	for i, worker := range p.workers {
		if err := worker.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return err
		}
	}
	return nil
}
