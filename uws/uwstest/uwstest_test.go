package uwstest

import (
	"testing"

	"github.com/rs/zerolog"

	"adqltap/uws"
	"adqltap/uws/backup"
	"adqltap/uws/destruction"
)

func TestFileStoreDeleteJobFilesRemovesPrefixedEntries(t *testing.T) {
	fs := NewFileStore()
	fs.Put("job-1/result.csv", []byte("a,b,c"))
	fs.Put("job-1/result.votable", []byte("<VOTABLE/>"))
	fs.Put("job-2/result.csv", []byte("x,y,z"))

	fs.DeleteJobFiles("job-1")

	if _, ok := fs.Get("job-1/result.csv"); ok {
		t.Fatalf("expected job-1's files to be gone")
	}
	if _, ok := fs.Get("job-2/result.csv"); !ok {
		t.Fatalf("expected job-2's files to survive")
	}
	if deleted := fs.Deleted(); len(deleted) != 1 || deleted[0] != "job-1" {
		t.Fatalf("unexpected deleted record: %v", deleted)
	}
}

func TestFileStoreSatisfiesDestructionFileManager(t *testing.T) {
	var _ destruction.FileManager = NewFileStore()
}

func TestBackupStoreRoundTripsThroughBackupManager(t *testing.T) {
	list := uws.NewJobList("async")
	j := uws.NewJob("async", "alice", nil)
	list.Create(j)

	store := NewBackupStore()
	m := backup.NewManager(map[string]*uws.JobList{"async": list}, store, zerolog.Nop(), false)
	if err := m.BackupAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, ok := store.Document("service")
	if !ok || len(doc) == 0 {
		t.Fatalf("expected a committed service document")
	}

	list2 := uws.NewJobList("async")
	m2 := backup.NewManager(map[string]*uws.JobList{"async": list2}, store, zerolog.Nop(), false)
	stats, err := m2.Restore(doc, map[string]bool{"alice": true})
	if err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	if stats.JobsRestored != 1 {
		t.Fatalf("expected 1 job restored, got %+v", stats)
	}
}
