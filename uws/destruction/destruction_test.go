package destruction

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"adqltap/uws"
)

type fakeFileManager struct {
	deleted []string
}

func (f *fakeFileManager) DeleteJobFiles(jobID string) {
	f.deleted = append(f.deleted, jobID)
}

func TestSweepDestroysDueJobs(t *testing.T) {
	list := uws.NewJobList("async")
	j1 := uws.NewJob("async", "", nil)
	j2 := uws.NewJob("async", "", nil)
	list.Create(j1)
	list.Create(j2)

	fm := &fakeFileManager{}
	m := NewManager(map[string]*uws.JobList{"async": list}, fm, zerolog.Nop())

	now := time.Now()
	m.Track(j1.ID, now.Add(-time.Second))
	m.Track(j2.ID, now.Add(time.Hour))

	n := m.Sweep(now)
	if n != 1 {
		t.Fatalf("expected 1 job destroyed, got %d", n)
	}
	if _, err := list.Get(j1.ID, ""); err == nil {
		t.Fatalf("expected j1 to be destroyed")
	}
	if _, err := list.Get(j2.ID, ""); err != nil {
		t.Fatalf("expected j2 to survive, got %v", err)
	}
	if len(fm.deleted) != 1 || fm.deleted[0] != j1.ID {
		t.Fatalf("expected file manager to release j1's files, got %v", fm.deleted)
	}
}

func TestTrackReKeysExistingEntry(t *testing.T) {
	list := uws.NewJobList("async")
	j := uws.NewJob("async", "", nil)
	list.Create(j)

	m := NewManager(map[string]*uws.JobList{"async": list}, &fakeFileManager{}, zerolog.Nop())
	now := time.Now()
	m.Track(j.ID, now.Add(time.Hour))
	m.Track(j.ID, now.Add(-time.Second))

	if n := m.Sweep(now); n != 1 {
		t.Fatalf("expected re-keyed deadline to be due, destroyed %d", n)
	}
}

func TestUntrackPreventsDestruction(t *testing.T) {
	list := uws.NewJobList("async")
	j := uws.NewJob("async", "", nil)
	list.Create(j)

	m := NewManager(map[string]*uws.JobList{"async": list}, &fakeFileManager{}, zerolog.Nop())
	now := time.Now()
	m.Track(j.ID, now.Add(-time.Second))
	m.Untrack(j.ID)

	if n := m.Sweep(now); n != 0 {
		t.Fatalf("expected untracked job to survive the sweep, destroyed %d", n)
	}
}
