package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursehub/marketplace/internal/api/metrics"
	"github.com/coursehub/marketplace/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	deleteTimeout  = 10 * time.Second
)

// Dispatcher deletes orphaned course images in the background. Jobs are
// routed to a fixed set of workers by hashing the public ID.
type Dispatcher struct {
	workers []chan string
	store   ports.ImageStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ports.ImageStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue schedules publicID for deletion. It never blocks: when the shard is
// full the job is dropped and logged.
func (d *Dispatcher) Enqueue(publicID string) {
	idx := d.shardIndex(publicID)
	select {
	case d.workers[idx] <- publicID:
		metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.ImageCleanupTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("public_id", publicID).Int("worker_id", idx).Msg("image cleanup queue full, job dropped")
	}
}

// shardIndex maps a public ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(publicID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(publicID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	depth := metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case publicID := <-ch:
			depth.Dec()
			d.delete(ctx, id, publicID)
		}
	}
}

func (d *Dispatcher) delete(ctx context.Context, workerID int, publicID string) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	err := d.store.Delete(ctx, publicID)
	metrics.ImageCleanupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImageCleanupTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("public_id", publicID).
			Int("worker_id", workerID).
			Msg("image cleanup failed")
		return
	}
	metrics.ImageCleanupTotal.WithLabelValues("deleted").Inc()
}
