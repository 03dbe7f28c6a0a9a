package docstore

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestReadMissingCollection(t *testing.T) {
	s := newTestStore(t)

	records := s.Read("students")
	if records == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []Record{
		map[string]any{"id": "1", "name": "Ana"},
		map[string]any{"id": "2", "name": "Bruno"},
		map[string]any{"id": "3", "name": "Carla"},
	}
	if _, err := s.Write("students", in); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := s.Read("students")
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", out, in)
	}
}

func TestWriteNilSliceStoresEmptyArray(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Write("students", nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(s.primaryPath("students"))
	if err != nil {
		t.Fatalf("failed to read primary: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestWritePreservesNonASCII(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Write("students", []Record{map[string]any{"name": "João Conceição"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(s.primaryPath("students"))
	if err != nil {
		t.Fatalf("failed to read primary: %v", err)
	}
	if !bytes.Contains(data, []byte("João Conceição")) {
		t.Errorf("expected literal UTF-8 in file, got %q", data)
	}
}

func TestBackupFreshness(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 1, 12, 20, 30, 45, 0, time.UTC) }

	r1 := []Record{map[string]any{"id": "1"}}
	r2 := []Record{map[string]any{"id": "1"}, map[string]any{"id": "2"}}

	if _, err := s.Write("students", r1); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := s.Write("students", r2); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	bak, err := os.ReadFile(s.backupPath("students"))
	if err != nil {
		t.Fatalf("rolling backup missing: %v", err)
	}
	got, err := decodeRecords(bak)
	if err != nil {
		t.Fatalf("rolling backup unreadable: %v", err)
	}
	if !reflect.DeepEqual(got, r1) {
		t.Errorf("rolling backup = %v, want prior state %v", got, r1)
	}

	snap, err := os.ReadFile(s.snapshotPath("students", s.now()))
	if err != nil {
		t.Fatalf("timestamped backup missing: %v", err)
	}
	got, err = decodeRecords(snap)
	if err != nil {
		t.Fatalf("timestamped backup unreadable: %v", err)
	}
	if !reflect.DeepEqual(got, r1) {
		t.Errorf("timestamped backup = %v, want prior state %v", got, r1)
	}
}

// Mirrors the canonical two-write scenario: the final read holds the new
// state, the rolling backup holds the prior one, and exactly one timestamped
// snapshot exists for that second.
func TestSequentialWritesScenario(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	if _, err := s.Write("items", []Record{"a", "b"}); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := s.Write("items", []Record{"a", "b", "c"}); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	if got, want := s.Read("items"), []Record{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("read = %v, want %v", got, want)
	}

	bak, err := os.ReadFile(s.backupPath("items"))
	if err != nil {
		t.Fatalf("rolling backup missing: %v", err)
	}
	got, err := decodeRecords(bak)
	if err != nil {
		t.Fatalf("rolling backup unreadable: %v", err)
	}
	if want := []Record{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rolling backup = %v, want %v", got, want)
	}

	snapshots, err := filepath.Glob(filepath.Join(s.backupsDir, "items.json.*.bak"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected exactly one timestamped backup, got %d: %v", len(snapshots), snapshots)
	}
	snap, err := os.ReadFile(snapshots[0])
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	got, err = decodeRecords(snap)
	if err != nil {
		t.Fatalf("snapshot unreadable: %v", err)
	}
	if want := []Record{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot = %v, want %v", got, want)
	}
}

func TestCorruptionSelfHeal(t *testing.T) {
	s := newTestStore(t)

	backup := []Record{map[string]any{"id": "1", "name": "Ana"}}
	if _, err := s.Write("students", backup); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// Stash the good state as the rolling backup, then corrupt the primary.
	good, err := os.ReadFile(s.primaryPath("students"))
	if err != nil {
		t.Fatalf("failed to read primary: %v", err)
	}
	if err := os.WriteFile(s.backupPath("students"), good, 0o644); err != nil {
		t.Fatalf("failed to plant backup: %v", err)
	}
	if err := os.WriteFile(s.primaryPath("students"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to corrupt primary: %v", err)
	}

	got := s.Read("students")
	if !reflect.DeepEqual(got, backup) {
		t.Errorf("read = %v, want restored backup %v", got, backup)
	}

	// The primary file must have been rewritten with the backup's content.
	healed, err := os.ReadFile(s.primaryPath("students"))
	if err != nil {
		t.Fatalf("failed to read healed primary: %v", err)
	}
	records, err := decodeRecords(healed)
	if err != nil {
		t.Fatalf("healed primary unreadable: %v", err)
	}
	if !reflect.DeepEqual(records, backup) {
		t.Errorf("healed primary = %v, want %v", records, backup)
	}
}

func TestCorruptionWithoutBackupResetsToEmpty(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.primaryPath("students"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to plant corrupt primary: %v", err)
	}

	records := s.Read("students")
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty collection, got %v", records)
	}
}

func TestNonArrayPrimaryIsCorruption(t *testing.T) {
	s := newTestStore(t)

	for _, content := range []string{`{"id": "1"}`, `"just a string"`, `null`, `42`} {
		if err := os.WriteFile(s.primaryPath("students"), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to plant primary: %v", err)
		}
		records := s.Read("students")
		if records == nil || len(records) != 0 {
			t.Errorf("content %q: expected empty collection, got %v", content, records)
		}
	}
}

func TestHealIgnoresNonArrayBackup(t *testing.T) {
	s := newTestStore(t)

	corrupt := []byte("{not json")
	if err := os.WriteFile(s.primaryPath("students"), corrupt, 0o644); err != nil {
		t.Fatalf("failed to plant corrupt primary: %v", err)
	}
	if err := os.WriteFile(s.backupPath("students"), []byte(`{"id": "1"}`), 0o644); err != nil {
		t.Fatalf("failed to plant backup: %v", err)
	}

	records := s.Read("students")
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty collection, got %v", records)
	}
	// A non-array backup must not be promoted over the primary.
	after, err := os.ReadFile(s.primaryPath("students"))
	if err != nil {
		t.Fatalf("failed to read primary: %v", err)
	}
	if !bytes.Equal(after, corrupt) {
		t.Errorf("primary rewritten to %q", after)
	}
}

func TestWriteReportsDegradedRollingBackup(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Write("students", []Record{"a"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// A directory at the .bak path makes the rolling backup unwritable.
	if err := os.Mkdir(s.backupPath("students"), 0o755); err != nil {
		t.Fatalf("failed to block backup path: %v", err)
	}

	res, err := s.Write("students", []Record{"a", "b"})
	if err != nil {
		t.Fatalf("degraded write failed: %v", err)
	}
	if res.BackupErr == nil {
		t.Error("BackupErr not recorded")
	}
	if res.SnapshotErr != nil {
		t.Errorf("SnapshotErr = %v, want nil", res.SnapshotErr)
	}
	if !res.Degraded() {
		t.Error("Degraded() = false")
	}
	got := s.Read("students")
	if !reflect.DeepEqual(got, []Record{"a", "b"}) {
		t.Errorf("read after degraded write = %v", got)
	}
}

func TestWriteReportsDegradedSnapshot(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Write("students", []Record{"a"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// Replace the backups directory with a plain file so snapshots cannot
	// be created inside it.
	if err := os.RemoveAll(s.backupsDir); err != nil {
		t.Fatalf("failed to remove backups dir: %v", err)
	}
	if err := os.WriteFile(s.backupsDir, []byte{}, 0o644); err != nil {
		t.Fatalf("failed to block backups dir: %v", err)
	}

	res, err := s.Write("students", []Record{"a", "b"})
	if err != nil {
		t.Fatalf("degraded write failed: %v", err)
	}
	if res.SnapshotErr == nil {
		t.Error("SnapshotErr not recorded")
	}
	if res.BackupErr != nil {
		t.Errorf("BackupErr = %v, want nil", res.BackupErr)
	}
	if !res.Degraded() {
		t.Error("Degraded() = false")
	}
	// The rolling backup still holds the prior state.
	data, err := os.ReadFile(s.backupPath("students"))
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	records, err := decodeRecords(data)
	if err != nil || !reflect.DeepEqual(records, []Record{"a"}) {
		t.Errorf("backup = %v (%v), want prior state", records, err)
	}
}

func TestWriteReportsUnreadablePriorState(t *testing.T) {
	s := newTestStore(t)

	// A directory at the primary path reads as an error that is not
	// IsNotExist, so neither backup can reflect the prior state.
	if err := os.Mkdir(s.primaryPath("students"), 0o755); err != nil {
		t.Fatalf("failed to block primary path: %v", err)
	}

	res, err := s.Write("students", []Record{"a"})
	if err == nil {
		t.Error("write over a directory succeeded")
	}
	if res.BackupErr == nil || res.SnapshotErr == nil {
		t.Errorf("prior-state read failure not recorded: %+v", res)
	}
}

func TestStaleTempFileIsNeverObserved(t *testing.T) {
	s := newTestStore(t)

	r1 := []Record{map[string]any{"id": "1"}}
	if _, err := s.Write("students", r1); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// Simulate a crash after staging but before rename: a half-written temp
	// file sits next to the primary.
	if err := os.WriteFile(s.tempPath("students"), []byte(`[{"id": "1"}, {"id":`), 0o644); err != nil {
		t.Fatalf("failed to plant temp file: %v", err)
	}

	if got := s.Read("students"); !reflect.DeepEqual(got, r1) {
		t.Errorf("read = %v, want pre-crash state %v", got, r1)
	}
}

func TestFailedWriteLeavesPrimaryIntact(t *testing.T) {
	s := newTestStore(t)

	r1 := []Record{map[string]any{"id": "1"}}
	if _, err := s.Write("students", r1); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// Channels are not JSON-serializable, so encoding fails after the backup
	// step but before any staging.
	if _, err := s.Write("students", []Record{make(chan int)}); err == nil {
		t.Fatal("expected write to fail")
	}

	if got := s.Read("students"); !reflect.DeepEqual(got, r1) {
		t.Errorf("read = %v, want unchanged state %v", got, r1)
	}
	if _, err := os.Stat(s.tempPath("students")); !os.IsNotExist(err) {
		t.Errorf("expected no staging file left behind, stat err = %v", err)
	}
}

func TestRestore(t *testing.T) {
	s := newTestStore(t)

	backup := []Record{map[string]any{"id": "1"}}
	if _, err := s.Write("students", backup); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := s.Write("students", []Record{map[string]any{"id": "2"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if !s.Restore("students") {
		t.Fatal("expected restore to succeed")
	}
	if got := s.Read("students"); !reflect.DeepEqual(got, backup) {
		t.Errorf("read after restore = %v, want %v", got, backup)
	}
}

func TestRestoreFailures(t *testing.T) {
	s := newTestStore(t)

	// No backup at all.
	if s.Restore("students") {
		t.Error("expected restore to fail without a backup")
	}

	// Unparseable backup must leave the primary untouched.
	r1 := []Record{map[string]any{"id": "1"}}
	if _, err := s.Write("students", r1); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(s.backupPath("students"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("failed to plant backup: %v", err)
	}
	if s.Restore("students") {
		t.Error("expected restore to fail with corrupt backup")
	}
	if got := s.Read("students"); !reflect.DeepEqual(got, r1) {
		t.Errorf("read = %v, want unchanged state %v", got, r1)
	}
}

func TestEnsureExists(t *testing.T) {
	s := newTestStore(t)

	if err := s.EnsureExists("students"); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	data, err := os.ReadFile(s.primaryPath("students"))
	if err != nil {
		t.Fatalf("primary missing after ensure: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}

	// Must not clobber existing data.
	r1 := []Record{map[string]any{"id": "1"}}
	if _, err := s.Write("students", r1); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := s.EnsureExists("students"); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if got := s.Read("students"); !reflect.DeepEqual(got, r1) {
		t.Errorf("read = %v, want %v", got, r1)
	}
}

func TestLockIdentity(t *testing.T) {
	s := newTestStore(t)

	const workers = 32
	locks := make([]*sync.Mutex, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks[i] = s.lockFor("students")
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if locks[i] != locks[0] {
			t.Fatalf("worker %d got a different lock instance", i)
		}
	}

	// The shared lock must serialize critical sections: a plain counter
	// incremented under it never loses updates.
	const increments = 1000
	counter := 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range increments {
				mu := s.lockFor("students")
				mu.Lock()
				counter++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if counter != workers*increments {
		t.Errorf("counter = %d, want %d", counter, workers*increments)
	}
}

func TestCrossCollectionIndependence(t *testing.T) {
	s := newTestStore(t)

	// Hold collection A's lock and verify an operation on B still completes.
	muA := s.lockFor("attendance")
	muA.Lock()
	defer muA.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := s.Write("finance", []Record{map[string]any{"amount": 10.5}})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("write on independent collection failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("write on collection B blocked by lock on collection A")
	}
}

func TestConcurrentWritesStayWellFormed(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Write("students", []Record{map[string]any{"writer": float64(i)}})
			if err != nil {
				t.Errorf("concurrent write failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// Whatever write won, the file must parse as a single-record array.
	records := s.Read("students")
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
}
