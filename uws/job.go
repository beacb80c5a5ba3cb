// Package uws implements the Universal Worker Service job core: named job
// lists, the job phase state machine, and the parameters/results/error
// state each job carries. Execution, destruction, and backup are split
// into their own subpackages (uws/exec, uws/destruction, uws/backup) so
// this package stays a pure data-and-locking model with no goroutine
// lifecycle of its own.
package uws

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"adqltap/errs"
)

// Phase is one state in the UWS job state machine (spec §3.3).
type Phase int

const (
	PhaseUnknown Phase = iota
	PhasePending
	PhaseQueued
	PhaseExecuting
	PhaseCompleted
	PhaseError
	PhaseAborted
	PhaseArchived
	PhaseHeld
	PhaseSuspended
)

var phaseNames = [...]string{
	PhaseUnknown:   "UNKNOWN",
	PhasePending:   "PENDING",
	PhaseQueued:    "QUEUED",
	PhaseExecuting: "EXECUTING",
	PhaseCompleted: "COMPLETED",
	PhaseError:     "ERROR",
	PhaseAborted:   "ABORTED",
	PhaseArchived:  "ARCHIVED",
	PhaseHeld:      "HELD",
	PhaseSuspended: "SUSPENDED",
}

func (p Phase) String() string {
	if int(p) >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "UNKNOWN"
}

// Terminal reports whether p is one of the phases from which a job may
// only have its destruction time updated.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseCompleted, PhaseError, PhaseAborted, PhaseArchived:
		return true
	}
	return false
}

// allowedTransitions encodes the state machine's legal edges; a transition
// not listed here is rejected with PhaseInvalid, except that setting a job
// to the phase it is already in is always accepted (see canTransition).
var allowedTransitions = map[Phase][]Phase{
	PhasePending:   {PhaseQueued, PhaseExecuting, PhaseAborted, PhaseHeld},
	PhaseQueued:    {PhaseExecuting, PhaseAborted},
	PhaseExecuting: {PhaseCompleted, PhaseError, PhaseAborted, PhaseSuspended},
	PhaseSuspended: {PhaseExecuting, PhaseAborted},
	PhaseHeld:      {PhasePending, PhaseAborted},
	PhaseCompleted: {PhaseArchived},
	PhaseError:     {PhaseArchived},
	PhaseAborted:   {PhaseArchived},
}

// canTransition reports whether from -> to is a legal edge.
func canTransition(from, to Phase) bool {
	if from == to {
		return true
	}
	for _, p := range allowedTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// ErrorKind classifies a job's terminal ErrorSummary.
type ErrorKind int

const (
	ErrorFatal ErrorKind = iota
	ErrorTransient
)

func (k ErrorKind) String() string {
	if k == ErrorTransient {
		return "TRANSIENT"
	}
	return "FATAL"
}

// ErrorSummary is the terminal error state attached to a job whose phase
// is ERROR.
type ErrorSummary struct {
	Kind        ErrorKind
	Message     string
	DetailsHref string
	HTTPStatus  int
}

// Result is a small descriptor for one job result; the bulk bytes live in
// an external FileManager, never in the Job itself.
type Result struct {
	ID         string
	MimeType   string
	Href       string
	Size       int64
	IsRedirect bool
}

// UploadFile is a reference to one user-supplied upload table (spec §3.4).
type UploadFile struct {
	ParamName   string
	FileName    string
	LocationURI string
	MimeType    string
	Length      int64
}

// Job is one UWS job (spec §3.3). All mutable fields are guarded by the
// owning JobList's mutex; Job itself holds no lock.
type Job struct {
	ID         string
	ListName   string
	Owner      string // "" when the service has no user identification
	Phase      Phase
	RunID      string
	Quote      *time.Duration

	CreationTime    time.Time
	StartTime       *time.Time
	EndTime         *time.Time
	ExecutionDur    time.Duration // 0 means unbounded, per spec §3.3/§3.4
	DestructionTime time.Time

	Parameters map[string]any
	Uploads    []*UploadFile
	Results    []*Result
	Error      *ErrorSummary
	JobInfo    []byte // opaque, base64-encoded on the wire
}

// NewJob creates a PENDING job with a fresh id.
func NewJob(listName, owner string, params map[string]any) *Job {
	if params == nil {
		params = make(map[string]any)
	}
	return &Job{
		ID:           uuid.NewString(),
		ListName:     listName,
		Owner:        owner,
		Phase:        PhasePending,
		CreationTime: nowFunc(),
		Parameters:   params,
	}
}

// nowFunc is indirected so tests can pin job creation time; production
// code always uses time.Now.
var nowFunc = time.Now

// transitionTo moves j to phase, enforcing the state machine; callers must
// hold the owning JobList's lock.
func (j *Job) transitionTo(phase Phase) error {
	if !canTransition(j.Phase, phase) {
		return errs.New(errs.PhaseInvalid, "cannot transition job %s from %s to %s", j.ID, j.Phase, phase)
	}
	j.Phase = phase
	now := nowFunc()
	switch phase {
	case PhaseExecuting:
		if j.StartTime == nil {
			j.StartTime = &now
		}
	case PhaseCompleted, PhaseError, PhaseAborted:
		if j.EndTime == nil {
			j.EndTime = &now
		}
	}
	return nil
}

// JobList owns a named collection of jobs and serializes every mutation
// through one mutex, per spec §5's "parameter updates, phase transitions,
// and list mutations are performed under a per-JobList lock".
type JobList struct {
	Name string

	mu   sync.RWMutex
	jobs map[string]*Job

	// Observer is invoked (outside the lock) whenever a job is destroyed.
	Observer func(job *Job)
}

// NewJobList creates an empty, named JobList.
func NewJobList(name string) *JobList {
	return &JobList{Name: name, jobs: make(map[string]*Job)}
}

// Create validates nothing itself (parameter validation is uws/params'
// job) and admits job into the list, rejecting a duplicate id.
func (l *JobList) Create(job *Job) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.jobs[job.ID]; exists {
		return errs.New(errs.ParamRejected, "job id %s already exists in list %s", job.ID, l.Name)
	}
	l.jobs[job.ID] = job
	return nil
}

// Get returns the job with id, filtered by owner when owner != "".
func (l *JobList) Get(id, owner string) (*Job, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	j, ok := l.jobs[id]
	if !ok || (owner != "" && j.Owner != owner) {
		return nil, errs.New(errs.JobNotFound, "job %s not found in list %s", id, l.Name)
	}
	return j, nil
}

// List returns every job visible to owner (all jobs when owner == ""), in
// no particular order; callers that need creation order should sort.
func (l *JobList) List(owner string) []*Job {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Job, 0, len(l.jobs))
	for _, j := range l.jobs {
		if owner == "" || j.Owner == owner {
			out = append(out, j)
		}
	}
	return out
}

// Destroy removes job id from the list and fires Observer, if set.
func (l *JobList) Destroy(id, owner string) error {
	l.mu.Lock()
	j, ok := l.jobs[id]
	if !ok || (owner != "" && j.Owner != owner) {
		l.mu.Unlock()
		return errs.New(errs.JobNotFound, "job %s not found in list %s", id, l.Name)
	}
	delete(l.jobs, id)
	l.mu.Unlock()
	if l.Observer != nil {
		l.Observer(j)
	}
	return nil
}

// SetPhase transitions job id through the state machine, enforcing the
// per-list lock required by spec §5.
func (l *JobList) SetPhase(id string, phase Phase) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	j, ok := l.jobs[id]
	if !ok {
		return errs.New(errs.JobNotFound, "job %s not found in list %s", id, l.Name)
	}
	return j.transitionTo(phase)
}

// UpdateParameter sets name=value on job id, rejecting the update unless
// the job is PENDING or HELD (spec §4.6).
func (l *JobList) UpdateParameter(id, name string, value any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	j, ok := l.jobs[id]
	if !ok {
		return errs.New(errs.JobNotFound, "job %s not found in list %s", id, l.Name)
	}
	if j.Phase != PhasePending && j.Phase != PhaseHeld {
		return errs.New(errs.PhaseInvalid, "cannot update parameters on job %s in phase %s", id, j.Phase)
	}
	j.Parameters[name] = value
	return nil
}

// Snapshot returns every job in the list without filtering, for the
// backup manager's read-lock-and-iterate pass (spec §5's backup-must-not-
// block-admission-longer-than-one-job's-metadata-serialization note is
// honored by taking the lock only to copy the slice, not while encoding).
func (l *JobList) Snapshot() []*Job {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Job, 0, len(l.jobs))
	for _, j := range l.jobs {
		out = append(out, j)
	}
	return out
}

// Restore inserts job directly into the list, bypassing Create's
// duplicate check, for use by uws/backup during startup restore.
func (l *JobList) Restore(job *Job) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs[job.ID] = job
}
