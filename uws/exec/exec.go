// Package exec implements the UWS execution manager: a bounded-concurrency
// FIFO admission queue that runs jobs to completion, cooperatively
// cancelling on abort or execution-duration timeout. The worker-loop shape
// is grounded on the outbox worker's context-cancellable polling loop,
// generalized from one goroutine to N concurrent workers draining one
// shared queue instead of one goroutine polling a database table.
package exec

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"adqltap/errs"
	"adqltap/uws"
)

// Task is the unit of work the execution manager runs: translate-and-
// execute against a backend, reporting results back onto the job itself.
// Run must check ctx.Done() at every I/O round trip and return promptly
// when it fires, per spec §5's cooperative-cancellation contract.
type Task func(ctx context.Context, job *uws.Job) error

// Manager runs at most MaxRunning jobs concurrently per JobList, queueing
// the rest in FIFO order and dispatching the queue head whenever a slot
// frees up.
type Manager struct {
	List       *uws.JobList
	MaxRunning int // 0 = unlimited
	Task       Task
	Log        zerolog.Logger

	mu       sync.Mutex
	queue    *list.List // of *pendingJob, FIFO
	running  map[string]context.CancelFunc
	enqueued map[string]*list.Element
}

type pendingJob struct {
	job          *uws.Job
	executionDur time.Duration
	enqueuedAt   time.Time
}

// NewManager creates a Manager bound to list, running at most maxRunning
// jobs concurrently (0 = unlimited) by invoking task for each admitted job.
func NewManager(list *uws.JobList, maxRunning int, task Task, log zerolog.Logger) *Manager {
	return &Manager{
		List:       list,
		MaxRunning: maxRunning,
		Task:       task,
		Log:        log,
		queue:      list.New(),
		running:    make(map[string]context.CancelFunc),
		enqueued:   make(map[string]*list.Element),
	}
}

// Submit admits job for execution: if a slot is free it starts running
// immediately, otherwise it is queued (and the job's phase set to QUEUED)
// until a slot releases. Admission order is FIFO by enqueue time (spec
// §4.7).
func (m *Manager) Submit(job *uws.Job, executionDur time.Duration) error {
	m.mu.Lock()
	if m.MaxRunning > 0 && len(m.running) >= m.MaxRunning {
		if err := m.List.SetPhase(job.ID, uws.PhaseQueued); err != nil {
			m.mu.Unlock()
			return err
		}
		el := m.queue.PushBack(&pendingJob{job: job, executionDur: executionDur, enqueuedAt: time.Now()})
		m.enqueued[job.ID] = el
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()
	return m.dispatch(job, executionDur)
}

// dispatch starts job running in its own goroutine with a cancellable,
// optionally duration-bounded context.
func (m *Manager) dispatch(job *uws.Job, executionDur time.Duration) error {
	if err := m.List.SetPhase(job.ID, uws.PhaseExecuting); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if executionDur > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, executionDur)
		orig := cancel
		cancel = func() { timeoutCancel(); orig() }
	}

	m.mu.Lock()
	m.running[job.ID] = cancel
	m.mu.Unlock()

	go m.run(ctx, cancel, job, executionDur)
	return nil
}

func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, job *uws.Job, executionDur time.Duration) {
	defer cancel()
	err := m.Task(ctx, job)
	m.finish(job, executionDur, err, ctx.Err())
}

func (m *Manager) finish(job *uws.Job, executionDur time.Duration, taskErr, ctxErr error) {
	m.mu.Lock()
	delete(m.running, job.ID)
	m.mu.Unlock()

	switch {
	case ctxErr == context.DeadlineExceeded:
		job.Error = &uws.ErrorSummary{Kind: uws.ErrorTransient, Message: "execution duration exceeded"}
		if err := m.List.SetPhase(job.ID, uws.PhaseError); err != nil {
			m.Log.Error().Err(err).Str("job_id", job.ID).Msg("failed to set ERROR phase after timeout")
		}
	case ctxErr == context.Canceled:
		if err := m.List.SetPhase(job.ID, uws.PhaseAborted); err != nil {
			m.Log.Error().Err(err).Str("job_id", job.ID).Msg("failed to set ABORTED phase after cancellation")
		}
	case taskErr != nil:
		job.Error = &uws.ErrorSummary{Kind: uws.ErrorFatal, Message: taskErr.Error()}
		if err := m.List.SetPhase(job.ID, uws.PhaseError); err != nil {
			m.Log.Error().Err(err).Str("job_id", job.ID).Msg("failed to set ERROR phase after task failure")
		}
	default:
		if err := m.List.SetPhase(job.ID, uws.PhaseCompleted); err != nil {
			m.Log.Error().Err(err).Str("job_id", job.ID).Msg("failed to set COMPLETED phase")
		}
	}

	m.admitNext()
}

// admitNext dispatches the queue head, if any slot and any queued job
// exist.
func (m *Manager) admitNext() {
	m.mu.Lock()
	if m.MaxRunning > 0 && len(m.running) >= m.MaxRunning {
		m.mu.Unlock()
		return
	}
	front := m.queue.Front()
	if front == nil {
		m.mu.Unlock()
		return
	}
	m.queue.Remove(front)
	pj := front.Value.(*pendingJob)
	delete(m.enqueued, pj.job.ID)
	m.mu.Unlock()

	if err := m.dispatch(pj.job, pj.executionDur); err != nil {
		m.Log.Error().Err(err).Str("job_id", pj.job.ID).Msg("failed to dispatch queued job")
	}
}

// Abort cancels job id, whether it is running or still queued. A queued
// job is removed from the queue without ever entering EXECUTING (spec
// §4.7).
func (m *Manager) Abort(id string) error {
	m.mu.Lock()
	if el, queued := m.enqueued[id]; queued {
		m.queue.Remove(el)
		delete(m.enqueued, id)
		m.mu.Unlock()
		return m.List.SetPhase(id, uws.PhaseAborted)
	}
	cancel, running := m.running[id]
	m.mu.Unlock()
	if !running {
		return errs.New(errs.JobNotFound, "job %s is not running or queued", id)
	}
	cancel()
	return nil
}

// QueueLen reports how many jobs are currently queued, for tests and
// diagnostics.
func (m *Manager) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// RunningCount reports how many jobs are currently executing.
func (m *Manager) RunningCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.running)
}
