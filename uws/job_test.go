package uws

import (
	"testing"

	"adqltap/errs"
)

func TestNewJobStartsPending(t *testing.T) {
	j := NewJob("async", "alice", nil)
	if j.Phase != PhasePending {
		t.Fatalf("expected PENDING, got %s", j.Phase)
	}
	if j.ID == "" {
		t.Fatalf("expected a generated id")
	}
}

func TestJobListCreateRejectsDuplicateID(t *testing.T) {
	l := NewJobList("async")
	j := NewJob("async", "", nil)
	if err := l.Create(j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Create(j); !errs.Is(err, errs.ParamRejected) {
		t.Fatalf("expected ParamRejected, got %v", err)
	}
}

func TestJobListGetFiltersByOwner(t *testing.T) {
	l := NewJobList("async")
	j := NewJob("async", "alice", nil)
	l.Create(j)
	if _, err := l.Get(j.ID, "bob"); !errs.Is(err, errs.JobNotFound) {
		t.Fatalf("expected JobNotFound for wrong owner, got %v", err)
	}
	if got, err := l.Get(j.ID, "alice"); err != nil || got.ID != j.ID {
		t.Fatalf("expected to find job for correct owner, got %v/%v", got, err)
	}
}

func TestSetPhaseEnforcesStateMachine(t *testing.T) {
	l := NewJobList("async")
	j := NewJob("async", "", nil)
	l.Create(j)

	if err := l.SetPhase(j.ID, PhaseExecuting); err != nil {
		t.Fatalf("PENDING->EXECUTING should be legal: %v", err)
	}
	if err := l.SetPhase(j.ID, PhaseCompleted); err != nil {
		t.Fatalf("EXECUTING->COMPLETED should be legal: %v", err)
	}
	if err := l.SetPhase(j.ID, PhaseExecuting); !errs.Is(err, errs.PhaseInvalid) {
		t.Fatalf("expected PhaseInvalid leaving a terminal phase, got %v", err)
	}
}

func TestSetPhaseNoBackwardFromTerminal(t *testing.T) {
	l := NewJobList("async")
	j := NewJob("async", "", nil)
	l.Create(j)
	l.SetPhase(j.ID, PhaseAborted)
	if err := l.SetPhase(j.ID, PhasePending); !errs.Is(err, errs.PhaseInvalid) {
		t.Fatalf("expected PhaseInvalid, got %v", err)
	}
	if err := l.SetPhase(j.ID, PhaseArchived); err != nil {
		t.Fatalf("ABORTED->ARCHIVED should be legal: %v", err)
	}
}

func TestUpdateParameterRejectedWhenTerminal(t *testing.T) {
	l := NewJobList("async")
	j := NewJob("async", "", nil)
	l.Create(j)
	l.SetPhase(j.ID, PhaseExecuting)
	l.SetPhase(j.ID, PhaseCompleted)
	if err := l.UpdateParameter(j.ID, "foo", "bar"); !errs.Is(err, errs.PhaseInvalid) {
		t.Fatalf("expected PhaseInvalid, got %v", err)
	}
}

func TestDestroyFiresObserver(t *testing.T) {
	l := NewJobList("async")
	var destroyed *Job
	l.Observer = func(j *Job) { destroyed = j }
	j := NewJob("async", "", nil)
	l.Create(j)
	if err := l.Destroy(j.ID, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if destroyed == nil || destroyed.ID != j.ID {
		t.Fatalf("expected observer to fire with destroyed job")
	}
	if _, err := l.Get(j.ID, ""); !errs.Is(err, errs.JobNotFound) {
		t.Fatalf("expected job to be gone")
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	l := NewJobList("async")
	j := NewJob("async", "", nil)
	l.Create(j)

	l2 := NewJobList("async")
	for _, job := range l.Snapshot() {
		l2.Restore(job)
	}
	if got, err := l2.Get(j.ID, ""); err != nil || got.ID != j.ID {
		t.Fatalf("expected restored job to be retrievable, got %v/%v", got, err)
	}
}
