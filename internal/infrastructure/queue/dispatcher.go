package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Processor handles one status change.
type Processor func(ctx context.Context, change domain.StatusChange) error

// Dispatcher fans service request status changes out to a fixed set of
// workers. Changes are sharded by request ID, so the changes of one request
// are processed in the order they were enqueued.
type Dispatcher struct {
	workers []chan domain.StatusChange
	process Processor
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, process Processor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.StatusChange, numWorkers),
		process: process,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StatusChange, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close once their queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a change to the worker responsible for its request.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(change domain.StatusChange) {
	d.workers[d.shardIndex(change.RequestID)] <- change
}

// Close stops accepting changes and waits for the workers to drain.
// Enqueue must not be called after Close.
func (d *Dispatcher) Close() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// shardIndex maps a request ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(requestID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(requestID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.StatusChange) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			if err := d.process(ctx, change); err != nil {
				d.log.Error().Err(err).
					Str("request_id", change.RequestID).
					Str("status", string(change.To)).
					Int("worker_id", id).
					Msg("status change processing failed")
			}
		}
	}
}
