package gui

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ClipKind says what a clip job synthesizes.
type ClipKind int

const (
	// ClipARPAbet synthesizes an ARPAbet sequence.
	ClipARPAbet ClipKind = iota
	// ClipText synthesizes plain text.
	ClipText
)

// ClipJob represents a single TTS request
type ClipJob struct {
	ID          int
	Kind        ClipKind
	Input       string
	AudioFile   string
	Status      JobStatus
	Error       error
	StartedAt   time.Time
	CompletedAt time.Time
}

// JobStatus represents the current state of a job
type JobStatus int

const (
	StatusQueued JobStatus = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
)

func (s JobStatus) String() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusProcessing:
		return "Processing"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ClipFunc performs a job and returns the playable audio reference.
type ClipFunc func(ctx context.Context, job *ClipJob) (string, error)

// ClipQueue runs TTS jobs one at a time. Remote synthesis polls for up to a
// minute, so requests are serialized rather than fired concurrently.
type ClipQueue struct {
	jobs    chan *ClipJob
	results map[int]*ClipJob
	run     ClipFunc

	nextID int
	mu     sync.RWMutex

	// Callbacks for UI updates; called from the worker goroutine
	onStatusUpdate func(job *ClipJob)
	onJobComplete  func(job *ClipJob)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewClipQueue creates a queue and starts its worker.
func NewClipQueue(ctx context.Context, run ClipFunc) *ClipQueue {
	queueCtx, cancel := context.WithCancel(ctx)

	q := &ClipQueue{
		jobs:    make(chan *ClipJob, 100),
		results: make(map[int]*ClipJob),
		run:     run,
		nextID:  1,
		ctx:     queueCtx,
		cancel:  cancel,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// SetCallbacks sets the callback functions for UI updates
func (q *ClipQueue) SetCallbacks(onStatusUpdate func(*ClipJob), onJobComplete func(*ClipJob)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onStatusUpdate = onStatusUpdate
	q.onJobComplete = onJobComplete
}

// Add queues a job. A full queue or a stopped queue fails the job at once.
func (q *ClipQueue) Add(kind ClipKind, input string) *ClipJob {
	q.mu.Lock()
	job := &ClipJob{
		ID:     q.nextID,
		Kind:   kind,
		Input:  input,
		Status: StatusQueued,
	}
	q.nextID++
	q.results[job.ID] = job
	q.mu.Unlock()

	if q.ctx.Err() != nil {
		q.finish(job, "", fmt.Errorf("queue is shutting down"))
		return job
	}

	select {
	case q.jobs <- job:
		q.notify(job, q.statusCallback())
	default:
		q.finish(job, "", fmt.Errorf("too many pending previews"))
	}
	return job
}

// GetJob returns a copy of the job with the given id
func (q *ClipQueue) GetJob(id int) (ClipJob, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.results[id]
	if !ok {
		return ClipJob{}, false
	}
	return *job, true
}

// GetQueueStatus returns the current queue statistics
func (q *ClipQueue) GetQueueStatus() (queued, processing, completed, failed int) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, job := range q.results {
		switch job.Status {
		case StatusQueued:
			queued++
		case StatusProcessing:
			processing++
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}

	return
}

// Stop cancels the running job and waits for the worker to exit.
func (q *ClipQueue) Stop() {
	q.once.Do(func() {
		q.cancel()
		q.wg.Wait()
		q.drain()
	})
}

func (q *ClipQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case job := <-q.jobs:
			q.mu.Lock()
			job.Status = StatusProcessing
			job.StartedAt = time.Now()
			q.mu.Unlock()
			q.notify(job, q.statusCallback())

			ref, err := q.run(q.ctx, job)
			q.finish(job, ref, err)
		}
	}
}

// drain fails jobs still waiting when the queue stops.
func (q *ClipQueue) drain() {
	for {
		select {
		case job := <-q.jobs:
			q.finish(job, "", q.ctx.Err())
		default:
			return
		}
	}
}

func (q *ClipQueue) finish(job *ClipJob, ref string, err error) {
	q.mu.Lock()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err
	} else {
		job.Status = StatusCompleted
		job.AudioFile = ref
	}
	job.CompletedAt = time.Now()
	callback := q.onJobComplete
	q.mu.Unlock()

	q.notify(job, callback)
}

func (q *ClipQueue) statusCallback() func(*ClipJob) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.onStatusUpdate
}

func (q *ClipQueue) notify(job *ClipJob, callback func(*ClipJob)) {
	if callback == nil {
		return
	}
	q.mu.RLock()
	snapshot := *job
	q.mu.RUnlock()
	callback(&snapshot)
}
