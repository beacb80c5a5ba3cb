// Package uwstest provides in-memory fakes of the external collaborators
// uws/exec, uws/destruction, and uws/backup depend on (a result-file store
// and an atomic backup writer), for exercising those managers without a
// real backend.
package uwstest

import (
	"bytes"
	"fmt"
	"sync"

	"adqltap/uws/backup"
)

// FileStore is an in-memory stand-in for the result/upload file backend
// referenced by uws/destruction.FileManager and a job's Results/Uploads.
type FileStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

// NewFileStore creates an empty FileStore.
func NewFileStore() *FileStore {
	return &FileStore{files: make(map[string][]byte)}
}

// Put stores content under name, overwriting any previous content.
func (s *FileStore) Put(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = content
}

// Get returns name's content, if present.
func (s *FileStore) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	return b, ok
}

// DeleteJobFiles implements uws/destruction.FileManager: it removes every
// stored file whose name is prefixed "<jobID>/" and records jobID as
// deleted, for assertions in tests.
func (s *FileStore) DeleteJobFiles(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := jobID + "/"
	for name := range s.files {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			delete(s.files, name)
		}
	}
	s.deleted = append(s.deleted, jobID)
}

// Deleted reports every job id DeleteJobFiles has been called with, in
// call order.
func (s *FileStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.deleted))
	copy(out, s.deleted)
	return out
}

// memBackupWriter implements uws/backup.AtomicWriter over an in-memory
// buffer, committing into the owning BackupStore's map under scope.
type memBackupWriter struct {
	buf     bytes.Buffer
	store   *BackupStore
	scope   string
	aborted bool
}

func (w *memBackupWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memBackupWriter) Commit() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.docs[w.scope] = append([]byte(nil), w.buf.Bytes()...)
	return nil
}

func (w *memBackupWriter) Abort() error {
	w.aborted = true
	return nil
}

// BackupStore is an in-memory stand-in for the durable backup destination
// uws/backup.FileManager writes through; it implements
// uws/backup.FileManager directly (OpenBackup), so it can be passed to
// backup.NewManager without adapting.
type BackupStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewBackupStore creates an empty BackupStore.
func NewBackupStore() *BackupStore {
	return &BackupStore{docs: make(map[string][]byte)}
}

// OpenBackup implements uws/backup.FileManager.
func (s *BackupStore) OpenBackup(scope string) (backup.AtomicWriter, error) {
	return &memBackupWriter{store: s, scope: scope}, nil
}

// Document returns the last-committed document for scope, if any.
func (s *BackupStore) Document(scope string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[scope]
	return b, ok
}

// Scopes returns every scope with a committed document, for diagnostics.
func (s *BackupStore) Scopes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.docs))
	for k := range s.docs {
		out = append(out, k)
	}
	return out
}

// String renders a BackupStore's scope/size inventory, handy in test
// failure messages.
func (s *BackupStore) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("uwstest.BackupStore{scopes=%d}", len(s.docs))
}
