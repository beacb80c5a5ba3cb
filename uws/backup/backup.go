// Package backup serializes UWS job lists to the JSON wire format spec §6
// defines and restores them on startup, per spec §4.9's restore semantics
// (running/queued phases coerced back to PENDING, unknown owners/list
// names skipped with a warning).
package backup

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"adqltap/errs"
	"adqltap/uws"
)

// Frequency selects when the backup manager re-saves its document(s).
type Frequency int

const (
	Manual Frequency = iota
	AtUserAction
	Interval
)

// AtomicWriter is an external collaborator (spec §6's FileManager.
// open_backup) that guarantees a partial write never clobbers a prior good
// document: Write stages content and Commit performs the tempfile+rename.
type AtomicWriter interface {
	Write(p []byte) (int, error)
	Commit() error
	Abort() error
}

// FileManager is the subset of spec §6's FileManager this package needs.
type FileManager interface {
	OpenBackup(scope string) (AtomicWriter, error)
}

// document is the top-level JSON shape (spec §6).
type document struct {
	Date  string     `json:"date"`
	Users []userDoc  `json:"users,omitempty"`
	Jobs  []jobDoc   `json:"jobs"`
}

type userDoc struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

type resultDoc struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	Href        string `json:"href"`
	MimeType    string `json:"mime-type,omitempty"`
	Redirection bool   `json:"redirection,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

type uploadDoc struct {
	ParamName string `json:"paramName"`
	FileName  string `json:"fileName"`
	Location  string `json:"location"`
	Mime      string `json:"mime,omitempty"`
	Length    int64  `json:"length,omitempty"`
}

type errorSummaryDoc struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	DetailsRef string `json:"detailsRef,omitempty"`
}

type jobDoc struct {
	JobListName      string            `json:"jobListName"`
	JobID            string            `json:"jobId"`
	Phase            string            `json:"phase,omitempty"`
	Owner            string            `json:"owner,omitempty"`
	RunID            string            `json:"runId,omitempty"`
	Quote            *int64            `json:"quote,omitempty"`
	CreationTime     string            `json:"creationTime"`
	ExecutionDur     int64             `json:"executionDuration"`
	DestructionTime  string            `json:"destructionTime"`
	StartTime        string            `json:"startTime,omitempty"`
	EndTime          string            `json:"endTime,omitempty"`
	Parameters       map[string]any    `json:"parameters"`
	Uploads          []uploadDoc       `json:"uwsUploads,omitempty"`
	Results          []resultDoc       `json:"results,omitempty"`
	ErrorSummary     *errorSummaryDoc  `json:"errorSummary,omitempty"`
	JobInfo          string            `json:"jobInfo,omitempty"`
}

// RestoreStats is the (jobs_restored, jobs_seen, users_restored,
// users_seen) tuple spec §4.9 requires restore to report.
type RestoreStats struct {
	JobsRestored  int
	JobsSeen      int
	UsersRestored int
	UsersSeen     int
}

// Manager backs up and restores a set of named job lists.
type Manager struct {
	Lists       map[string]*uws.JobList
	FileManager FileManager
	Log         zerolog.Logger
	PerUser     bool

	cron *cron.Cron
}

// NewManager creates a backup Manager over lists.
func NewManager(lists map[string]*uws.JobList, fm FileManager, log zerolog.Logger, perUser bool) *Manager {
	return &Manager{Lists: lists, FileManager: fm, Log: log, PerUser: perUser}
}

// BackupAll writes one service-wide document containing every job across
// every watched list, taking only a snapshot read lock per list (spec §5).
func (m *Manager) BackupAll() error {
	doc := document{Date: time.Now().UTC().Format(time.RFC3339)}
	userSeen := make(map[string]bool)
	for _, list := range m.Lists {
		for _, job := range list.Snapshot() {
			doc.Jobs = append(doc.Jobs, toJobDoc(job))
			if job.Owner != "" && !userSeen[job.Owner] {
				userSeen[job.Owner] = true
				doc.Users = append(doc.Users, userDoc{ID: job.Owner})
			}
		}
	}
	return m.writeDocument("service", doc)
}

// BackupUser writes a single-user document containing only owner's jobs,
// for AT_USER_ACTION mode.
func (m *Manager) BackupUser(owner string) error {
	doc := document{Date: time.Now().UTC().Format(time.RFC3339), Users: []userDoc{{ID: owner}}}
	for _, list := range m.Lists {
		for _, job := range list.Snapshot() {
			if job.Owner == owner {
				doc.Jobs = append(doc.Jobs, toJobDoc(job))
			}
		}
	}
	return m.writeDocument(owner, doc)
}

func (m *Manager) writeDocument(scope string, doc document) error {
	w, err := m.FileManager.OpenBackup(scope)
	if err != nil {
		return errs.Wrap(errs.BackupIOError, err, "opening backup writer for scope %q", scope)
	}
	enc, err := json.Marshal(doc)
	if err != nil {
		w.Abort()
		return errs.Wrap(errs.BackupFormatError, err, "encoding backup document for scope %q", scope)
	}
	if _, err := w.Write(enc); err != nil {
		w.Abort()
		return errs.Wrap(errs.BackupIOError, err, "writing backup document for scope %q", scope)
	}
	if err := w.Commit(); err != nil {
		return errs.Wrap(errs.BackupIOError, err, "committing backup document for scope %q", scope)
	}
	return nil
}

func toJobDoc(j *uws.Job) jobDoc {
	jd := jobDoc{
		JobListName:     j.ListName,
		JobID:           j.ID,
		Phase:           j.Phase.String(),
		Owner:           j.Owner,
		RunID:           j.RunID,
		CreationTime:    j.CreationTime.UTC().Format(time.RFC3339),
		ExecutionDur:    int64(j.ExecutionDur.Seconds()),
		DestructionTime: j.DestructionTime.UTC().Format(time.RFC3339),
		Parameters:      j.Parameters,
	}
	if j.Quote != nil {
		q := int64(j.Quote.Seconds())
		jd.Quote = &q
	}
	if j.StartTime != nil {
		jd.StartTime = j.StartTime.UTC().Format(time.RFC3339)
	}
	if j.EndTime != nil {
		jd.EndTime = j.EndTime.UTC().Format(time.RFC3339)
	}
	for _, u := range j.Uploads {
		jd.Uploads = append(jd.Uploads, uploadDoc{ParamName: u.ParamName, FileName: u.FileName, Location: u.LocationURI, Mime: u.MimeType, Length: u.Length})
	}
	for _, r := range j.Results {
		jd.Results = append(jd.Results, resultDoc{ID: r.ID, Href: r.Href, MimeType: r.MimeType, Redirection: r.IsRedirect, Size: r.Size})
	}
	if j.Error != nil {
		jd.ErrorSummary = &errorSummaryDoc{Type: j.Error.Kind.String(), Message: j.Error.Message, DetailsRef: j.Error.DetailsHref}
	}
	if len(j.JobInfo) > 0 {
		jd.JobInfo = base64.StdEncoding.EncodeToString(j.JobInfo)
	}
	return jd
}

// Restore parses raw (one document) and inserts every well-formed job into
// its named list (which must already be present in m.Lists), coercing
// running/queued phases back to PENDING. Jobs referring to unknown owners
// or unconfigured list names are skipped with a logged warning rather than
// aborting the whole restore; a malformed document header is fatal.
func (m *Manager) Restore(raw []byte, knownOwners map[string]bool) (RestoreStats, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return RestoreStats{}, errs.Wrap(errs.BackupFormatError, err, "malformed backup document header")
	}

	var stats RestoreStats
	stats.UsersSeen = len(doc.Users)
	for _, u := range doc.Users {
		if knownOwners == nil || knownOwners[u.ID] {
			stats.UsersRestored++
		}
	}

	for _, jd := range doc.Jobs {
		stats.JobsSeen++
		if jd.JobListName == "" || jd.JobID == "" {
			m.Log.Warn().Str("job_id", jd.JobID).Msg("skipping backup job with missing required keys")
			continue
		}
		list, ok := m.Lists[jd.JobListName]
		if !ok {
			m.Log.Warn().Str("job_id", jd.JobID).Str("list", jd.JobListName).Msg("skipping backup job: unconfigured jobListName")
			continue
		}
		if jd.Owner != "" && knownOwners != nil && !knownOwners[jd.Owner] {
			m.Log.Warn().Str("job_id", jd.JobID).Str("owner", jd.Owner).Msg("skipping backup job: unknown owner")
			continue
		}
		job, err := fromJobDoc(jd)
		if err != nil {
			m.Log.Warn().Err(err).Str("job_id", jd.JobID).Msg("skipping malformed backup job record")
			continue
		}
		list.Restore(job)
		stats.JobsRestored++
	}
	return stats, nil
}

func fromJobDoc(jd jobDoc) (*uws.Job, error) {
	j := &uws.Job{
		ID:         jd.JobID,
		ListName:   jd.JobListName,
		Owner:      jd.Owner,
		RunID:      jd.RunID,
		Phase:      coercePhase(jd.Phase),
		Parameters: jd.Parameters,
	}
	if j.Parameters == nil {
		j.Parameters = make(map[string]any)
	}
	var err error
	if j.CreationTime, err = parseTimeOrZero(jd.CreationTime); err != nil {
		return nil, fmt.Errorf("creationTime: %w", err)
	}
	if j.DestructionTime, err = parseTimeOrZero(jd.DestructionTime); err != nil {
		return nil, fmt.Errorf("destructionTime: %w", err)
	}
	j.ExecutionDur = time.Duration(jd.ExecutionDur) * time.Second
	if jd.Quote != nil {
		q := time.Duration(*jd.Quote) * time.Second
		j.Quote = &q
	}
	if jd.StartTime != "" {
		t, err := time.Parse(time.RFC3339, jd.StartTime)
		if err != nil {
			return nil, fmt.Errorf("startTime: %w", err)
		}
		j.StartTime = &t
	}
	if jd.EndTime != "" {
		t, err := time.Parse(time.RFC3339, jd.EndTime)
		if err != nil {
			return nil, fmt.Errorf("endTime: %w", err)
		}
		j.EndTime = &t
	}
	for _, u := range jd.Uploads {
		j.Uploads = append(j.Uploads, &uws.UploadFile{ParamName: u.ParamName, FileName: u.FileName, LocationURI: u.Location, MimeType: u.Mime, Length: u.Length})
	}
	for _, r := range jd.Results {
		j.Results = append(j.Results, &uws.Result{ID: r.ID, Href: r.Href, MimeType: r.MimeType, IsRedirect: r.Redirection, Size: r.Size})
	}
	if jd.ErrorSummary != nil {
		kind := uws.ErrorFatal
		if jd.ErrorSummary.Type == "TRANSIENT" {
			kind = uws.ErrorTransient
		}
		j.Error = &uws.ErrorSummary{Kind: kind, Message: jd.ErrorSummary.Message, DetailsHref: jd.ErrorSummary.DetailsRef}
	}
	if jd.JobInfo != "" {
		decoded, err := base64.StdEncoding.DecodeString(jd.JobInfo)
		if err != nil {
			return nil, fmt.Errorf("jobInfo: %w", err)
		}
		j.JobInfo = decoded
	}
	return j, nil
}

func parseTimeOrZero(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// coercePhase implements spec §4.9's restore rule: running/queued phases
// are never rehydrated verbatim, since the executor must decide afresh.
func coercePhase(raw string) uws.Phase {
	switch raw {
	case "QUEUED", "EXECUTING", "PENDING", "HELD", "SUSPENDED":
		return uws.PhasePending
	case "COMPLETED":
		return uws.PhaseCompleted
	case "ERROR":
		return uws.PhaseError
	case "ABORTED":
		return uws.PhaseAborted
	case "ARCHIVED":
		return uws.PhaseArchived
	}
	return uws.PhasePending
}

// StartInterval schedules BackupAll to run every interval via robfig/cron,
// used for Interval-frequency service-wide backups.
func (m *Manager) StartInterval(cronExpr string) error {
	c := cron.New()
	if _, err := c.AddFunc(cronExpr, func() {
		if err := m.BackupAll(); err != nil {
			m.Log.Error().Err(err).Msg("scheduled backup failed")
		}
	}); err != nil {
		return err
	}
	m.cron = c
	c.Start()
	return nil
}

// Stop halts the interval schedule, if one was started.
func (m *Manager) Stop() {
	if m.cron != nil {
		m.cron.Stop()
	}
}
