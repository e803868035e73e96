package concurrent

import (
	"context"
	"sync"
	"time"

	"twitterapi/pkg/logger"
)

// Processor handles one job. A returned error is counted and logged; it
// does not stop the pool.
type Processor[T any] func(ctx context.Context, job T) error

type WorkerPool[T any] struct {
	name           string
	numWorkers     int
	jobQueue       chan T
	processor      Processor[T]
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
	logger         logger.Logger
	started        bool
	mutex          sync.Mutex
	statsCollector *StatsCollector
}

func NewWorkerPool[T any](ctx context.Context, name string, numWorkers, queueSize int, processor Processor[T], logger logger.Logger) *WorkerPool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool[T]{
		name:           name,
		numWorkers:     numWorkers,
		jobQueue:       make(chan T, queueSize),
		processor:      processor,
		ctx:            ctx,
		cancel:         cancel,
		logger:         logger,
		statsCollector: NewStatsCollector(),
	}
}

func (wp *WorkerPool[T]) Start() {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if wp.started {
		return
	}

	wp.logger.Debug("Starting worker pool", map[string]interface{}{
		"pool":        wp.name,
		"num_workers": wp.numWorkers,
		"queue_size":  cap(wp.jobQueue),
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		workerID := i
		go func() {
			defer wp.wg.Done()
			wp.worker(workerID)
		}()
	}

	wp.started = true
}

// Wait closes the queue and blocks until every submitted job is processed.
func (wp *WorkerPool[T]) Wait() {
	wp.mutex.Lock()
	if !wp.started {
		wp.mutex.Unlock()
		return
	}
	wp.started = false
	wp.mutex.Unlock()

	close(wp.jobQueue)
	wp.wg.Wait()
	wp.cancel()
}

// Stop abandons queued jobs and waits for running ones to return.
func (wp *WorkerPool[T]) Stop() {
	wp.cancel()
	wp.Wait()
}

// Submit queues job, blocking while the queue is full. It reports false
// when the pool is not running or its context is done.
func (wp *WorkerPool[T]) Submit(job T) bool {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if !wp.started {
		return false
	}

	select {
	case wp.jobQueue <- job:
		wp.statsCollector.IncrementSubmitted()
		return true
	case <-wp.ctx.Done():
		wp.statsCollector.IncrementRejected()
		return false
	}
}

func (wp *WorkerPool[T]) worker(id int) {
	for {
		if wp.ctx.Err() != nil {
			return
		}

		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			startTime := time.Now()
			err := wp.processor(wp.ctx, job)
			processingTime := time.Since(startTime)

			if err != nil {
				wp.statsCollector.IncrementFailed()
				wp.logger.Debug("Job failed", map[string]interface{}{
					"pool":            wp.name,
					"worker_id":       id,
					"error":           err.Error(),
					"processing_time": processingTime.String(),
				})
				continue
			}

			wp.statsCollector.IncrementCompleted()
			wp.statsCollector.RecordProcessingTime(processingTime)
		}
	}
}

func (wp *WorkerPool[T]) GetStats() Stats {
	return wp.statsCollector.GetStats()
}

func (wp *WorkerPool[T]) QueueLength() int {
	return len(wp.jobQueue)
}
