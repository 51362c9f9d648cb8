package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docforge/internal/chunker"
	"github.com/dgallion1/docforge/internal/config"
	"github.com/dgallion1/docforge/internal/parser"
)

// ErrStopped is returned by Submit once the orchestrator has shut down.
var ErrStopped = errors.New("import queue is stopped")

// Orchestrator runs asynchronous imports on a fixed pool of workers.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	opts     parser.Options
	log      *slog.Logger
	cfg      config.Config
	chunkCfg chunker.Config

	// OnFinish, when set before Start, is called once per job that reaches
	// a terminal status.
	OnFinish func(job JobSnapshot, elapsed time.Duration)

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch the workers.
func NewOrchestrator(cfg config.Config, opts parser.Options, log *slog.Logger) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = log
	}
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		opts:  opts,
		log:   log,
		cfg:   cfg,
		chunkCfg: chunker.Config{
			ChunkSize:    cfg.DefaultChunkSize,
			ChunkOverlap: cfg.DefaultChunkOverlap,
			MinChunk:     cfg.DefaultMinChunk,
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	workers := max(o.cfg.WorkerCount, 1)
	for range workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.opts, o.chunkCfg, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					if w.Process(workerCtx, job) {
						o.jobs.Remember(job)
						job.SetStatus(StatusCompleted, "done")
					}
					o.finish(job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing. An upload identical to one
// that already completed is answered from that job without reparsing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	if prev := o.jobs.FindDuplicate(job); prev != nil && prev.Result() != nil {
		job.MarkDuplicate(prev)
		o.log.Info("duplicate upload", "job_id", job.ID, "duplicate_of", prev.ID)
		o.finish(job)
		return nil
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

func (o *Orchestrator) finish(job *Job) {
	if o.OnFinish != nil {
		o.OnFinish(job.Snapshot(), time.Since(job.CreatedAt))
	}
}
