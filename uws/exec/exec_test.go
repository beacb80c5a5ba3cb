package exec

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"adqltap/uws"
)

func TestManagerRunsSubmittedJobToCompletion(t *testing.T) {
	list := uws.NewJobList("async")
	var ran int32
	var wg sync.WaitGroup
	wg.Add(1)
	m := NewManager(list, 1, func(ctx context.Context, job *uws.Job) error {
		defer wg.Done()
		atomic.AddInt32(&ran, 1)
		return nil
	}, zerolog.Nop())

	j := uws.NewJob("async", "", nil)
	list.Create(j)
	if err := m.Submit(j, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wg.Wait()
	time.Sleep(10 * time.Millisecond)

	got, _ := list.Get(j.ID, "")
	if got.Phase != uws.PhaseCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Phase)
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatalf("expected task to run once")
	}
}

func TestManagerQueuesBeyondMaxRunning(t *testing.T) {
	list := uws.NewJobList("async")
	release := make(chan struct{})
	m := NewManager(list, 1, func(ctx context.Context, job *uws.Job) error {
		<-release
		return nil
	}, zerolog.Nop())

	j1 := uws.NewJob("async", "", nil)
	j2 := uws.NewJob("async", "", nil)
	list.Create(j1)
	list.Create(j2)
	m.Submit(j1, 0)
	m.Submit(j2, 0)

	time.Sleep(10 * time.Millisecond)
	if m.QueueLen() != 1 {
		t.Fatalf("expected 1 queued job, got %d", m.QueueLen())
	}
	got2, _ := list.Get(j2.ID, "")
	if got2.Phase != uws.PhaseQueued {
		t.Fatalf("expected j2 QUEUED, got %s", got2.Phase)
	}

	close(release)
	time.Sleep(20 * time.Millisecond)
	got1, _ := list.Get(j1.ID, "")
	if got1.Phase != uws.PhaseCompleted {
		t.Fatalf("expected j1 COMPLETED, got %s", got1.Phase)
	}
}

func TestManagerTimeoutSetsErrorTransient(t *testing.T) {
	list := uws.NewJobList("async")
	m := NewManager(list, 0, func(ctx context.Context, job *uws.Job) error {
		<-ctx.Done()
		return ctx.Err()
	}, zerolog.Nop())

	j := uws.NewJob("async", "", nil)
	list.Create(j)
	m.Submit(j, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	got, _ := list.Get(j.ID, "")
	if got.Phase != uws.PhaseError {
		t.Fatalf("expected ERROR after timeout, got %s", got.Phase)
	}
	if got.Error == nil || got.Error.Kind != uws.ErrorTransient {
		t.Fatalf("expected transient error summary, got %+v", got.Error)
	}
}

func TestManagerAbortRunningJob(t *testing.T) {
	list := uws.NewJobList("async")
	started := make(chan struct{})
	m := NewManager(list, 0, func(ctx context.Context, job *uws.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, zerolog.Nop())

	j := uws.NewJob("async", "", nil)
	list.Create(j)
	m.Submit(j, 0)
	<-started
	if err := m.Abort(j.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	got, _ := list.Get(j.ID, "")
	if got.Phase != uws.PhaseAborted {
		t.Fatalf("expected ABORTED, got %s", got.Phase)
	}
}

func TestManagerAbortQueuedJobNeverRuns(t *testing.T) {
	list := uws.NewJobList("async")
	release := make(chan struct{})
	var j2Ran int32
	m := NewManager(list, 1, func(ctx context.Context, job *uws.Job) error {
		if job.Parameters["which"] == "first" {
			<-release
			return nil
		}
		atomic.AddInt32(&j2Ran, 1)
		return nil
	}, zerolog.Nop())

	j1 := uws.NewJob("async", "", map[string]any{"which": "first"})
	j2 := uws.NewJob("async", "", map[string]any{"which": "second"})
	list.Create(j1)
	list.Create(j2)
	m.Submit(j1, 0)
	m.Submit(j2, 0)
	time.Sleep(10 * time.Millisecond)

	if err := m.Abort(j2.ID); err != nil {
		t.Fatalf("unexpected error aborting queued job: %v", err)
	}
	close(release)
	time.Sleep(20 * time.Millisecond)

	if atomic.LoadInt32(&j2Ran) != 0 {
		t.Fatalf("expected aborted queued job to never run")
	}
	got2, _ := list.Get(j2.ID, "")
	if got2.Phase != uws.PhaseAborted {
		t.Fatalf("expected ABORTED, got %s", got2.Phase)
	}
}
