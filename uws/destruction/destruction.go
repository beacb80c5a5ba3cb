// Package destruction implements the UWS destruction manager: a min-heap
// keyed by destruction time, drained by Sweep on a periodic tick scheduled
// through robfig/cron. Nothing in this package runs a sweep on user
// actions.
package destruction

import (
	"container/heap"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"adqltap/uws"
)

// FileManager releases a destroyed job's result files; the concrete
// implementation lives outside this package (spec §6).
type FileManager interface {
	DeleteJobFiles(jobID string)
}

// entry is one heap element: a job id due for destruction at deadline.
// index is maintained by heap.Interface's Swap for O(log n) re-keying.
type entry struct {
	jobID    string
	deadline time.Time
	index    int
}

type entryHeap []*entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Manager tracks every job's destruction deadline across every JobList it
// watches and destroys jobs whose deadline has passed.
type Manager struct {
	Lists       map[string]*uws.JobList
	FileManager FileManager
	Log         zerolog.Logger

	mu      sync.Mutex
	h       entryHeap
	byJobID map[string]*entry

	cron    *cron.Cron
	cronID  cron.EntryID
}

// NewManager creates a destruction Manager watching lists.
func NewManager(lists map[string]*uws.JobList, fm FileManager, log zerolog.Logger) *Manager {
	return &Manager{
		Lists:       lists,
		FileManager: fm,
		Log:         log,
		byJobID:     make(map[string]*entry),
	}
}

// Track registers or re-keys jobID's destruction deadline.
func (m *Manager) Track(jobID string, deadline time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.byJobID[jobID]; ok {
		e.deadline = deadline
		heap.Fix(&m.h, e.index)
		return
	}
	e := &entry{jobID: jobID, deadline: deadline}
	heap.Push(&m.h, e)
	m.byJobID[jobID] = e
}

// Untrack removes jobID from the heap without destroying it, used when a
// job is destroyed through another path (explicit user destroy_job).
func (m *Manager) Untrack(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.untrackLocked(jobID)
}

func (m *Manager) untrackLocked(jobID string) {
	e, ok := m.byJobID[jobID]
	if !ok {
		return
	}
	heap.Remove(&m.h, e.index)
	delete(m.byJobID, jobID)
}

// Sweep pops and destroys every entry whose deadline is <= now, returning
// the number of jobs destroyed. The periodic tick calls it; no user-action
// hook in this package does.
func (m *Manager) Sweep(now time.Time) int {
	var due []string
	m.mu.Lock()
	for m.h.Len() > 0 && !m.h[0].deadline.After(now) {
		e := heap.Pop(&m.h).(*entry)
		delete(m.byJobID, e.jobID)
		due = append(due, e.jobID)
	}
	m.mu.Unlock()

	for _, jobID := range due {
		m.destroy(jobID)
	}
	return len(due)
}

func (m *Manager) destroy(jobID string) {
	for _, list := range m.Lists {
		job, err := list.Get(jobID, "")
		if err != nil {
			continue
		}
		if err := list.Destroy(jobID, ""); err != nil {
			m.Log.Error().Err(err).Str("job_id", jobID).Msg("destruction sweep failed to remove job")
			return
		}
		if m.FileManager != nil {
			m.FileManager.DeleteJobFiles(jobID)
		}
		m.Log.Info().Str("job_id", jobID).Str("list", job.ListName).Msg("jobDestroyed")
		return
	}
}

// StartPeriodicTick schedules Sweep to run on every cron expression match
// until Stop is called.
func (m *Manager) StartPeriodicTick(expr string) error {
	c := cron.New()
	id, err := c.AddFunc(expr, func() { m.Sweep(time.Now()) })
	if err != nil {
		return err
	}
	m.cron = c
	m.cronID = id
	c.Start()
	return nil
}

// Stop halts the periodic tick, if one was started.
func (m *Manager) Stop() {
	if m.cron != nil {
		m.cron.Stop()
	}
}
