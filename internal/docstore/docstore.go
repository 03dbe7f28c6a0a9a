// Package docstore implements a collection-oriented document store backed by
// flat JSON files.
//
// A collection is a named, ordered list of records persisted as a single
// pretty-printed JSON array. Every mutation replaces the whole collection.
// All operations against one collection are serialized by a dedicated mutex;
// operations against different collections proceed independently.
//
// Writes are made durable with a backup-then-atomic-replace sequence: the
// current file is copied to a rolling .bak plus a timestamped snapshot, the
// new content is staged to a sibling .tmp file and renamed over the primary.
// Reads never fail: a corrupt primary is replaced with the rolling backup's
// content when possible, and degrades to an empty collection otherwise.
package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is a single collection entry. The store does not interpret record
// shape; any JSON-serializable value is stored as-is.
type Record = any

// Store is a document store rooted at a single data directory. It owns the
// lock registry for its collections, so independent stores (one per test,
// typically) never share state.
type Store struct {
	dir        string
	backupsDir string

	regMu sync.Mutex
	locks map[string]*sync.Mutex

	// now is the clock used to name timestamped backups. Overridden in tests.
	now func() time.Time
}

// New creates a Store rooted at dir, creating dir and its backups
// subdirectory as needed.
func New(dir string) (*Store, error) {
	backupsDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backups directory %s: %w", backupsDir, err)
	}
	return &Store{
		dir:        dir,
		backupsDir: backupsDir,
		locks:      make(map[string]*sync.Mutex),
		now:        time.Now,
	}, nil
}

// lockFor returns the mutex guarding a collection, creating it on first use.
// The same mutex is returned for the same name for the life of the store.
// The registry mutex is held only for the map access, never across I/O.
func (s *Store) lockFor(name string) *sync.Mutex {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	mu, ok := s.locks[name]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[name] = mu
	}
	return mu
}

func (s *Store) primaryPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) backupPath(name string) string {
	return s.primaryPath(name) + ".bak"
}

func (s *Store) tempPath(name string) string {
	return s.primaryPath(name) + ".tmp"
}

// snapshotPath names a timestamped backup with second resolution. Two writes
// within the same second overwrite each other's snapshot; that loss is
// accepted.
func (s *Store) snapshotPath(name string, t time.Time) string {
	return filepath.Join(s.backupsDir, fmt.Sprintf("%s.json.%s.bak", name, t.Format("20060102_150405")))
}

// Read returns the records of a collection. It never fails: a missing primary
// file yields an empty collection, and a corrupt or non-array one is replaced
// with the rolling backup's content when that parses, or treated as an empty
// collection otherwise.
func (s *Store) Read(name string) []Record {
	mu := s.lockFor(name)
	mu.Lock()
	defer mu.Unlock()

	data, err := os.ReadFile(s.primaryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			// Expected state for a brand-new collection.
			return []Record{}
		}
		return s.healLocked(name, err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return s.healLocked(name, err)
	}
	return records
}

// healLocked handles a corrupt primary file: when the rolling backup parses
// as a JSON array, its records become the new primary content and are
// returned. When the backup is absent or unreadable too, the collection is
// considered reset and an empty list is returned. The caller must hold the
// collection lock.
//
// Only an array-shaped backup is promoted to the primary. A backup holding
// other valid JSON reads as empty either way, and copying it over would leave
// a primary that every later read treats as corrupt again; the explicit
// Restore path is the one that accepts any valid JSON.
func (s *Store) healLocked(name string, cause error) []Record {
	slog.Warn("Collection unreadable, trying rolling backup", "collection", name, "err", cause)

	data, err := os.ReadFile(s.backupPath(name))
	if err != nil {
		slog.Warn("No usable backup, collection resets to empty", "collection", name, "err", err)
		return []Record{}
	}
	records, err := decodeRecords(data)
	if err != nil {
		slog.Warn("No usable backup, collection resets to empty", "collection", name, "err", err)
		return []Record{}
	}

	encoded, err := encodeJSON(records)
	if err == nil {
		err = os.WriteFile(s.primaryPath(name), encoded, 0o644)
	}
	if err != nil {
		// The restored data is still served; only the self-heal is lost.
		slog.Warn("Failed to rewrite primary from backup", "collection", name, "err", err)
	} else {
		slog.Info("Collection restored from rolling backup", "collection", name, "records", len(records))
	}
	return records
}

// WriteResult reports the outcome of a successful Write. A failed rolling
// backup or timestamped snapshot never fails the write itself; the error is
// recorded here so callers and tests can observe degraded outcomes.
type WriteResult struct {
	BackupErr   error
	SnapshotErr error
}

// Degraded reports whether any best-effort backup step failed.
func (r WriteResult) Degraded() bool {
	return r.BackupErr != nil || r.SnapshotErr != nil
}

// Write replaces the collection's content with records. On success the
// primary file holds exactly the serialized records and the backups hold the
// prior state. On failure the primary file is untouched and no staging file
// is left behind. A nil slice is stored as an empty array.
func (s *Store) Write(name string, records []Record) (WriteResult, error) {
	mu := s.lockFor(name)
	mu.Lock()
	defer mu.Unlock()
	return s.writeLocked(name, records)
}

func (s *Store) writeLocked(name string, records []Record) (WriteResult, error) {
	var res WriteResult
	if records == nil {
		records = []Record{}
	}

	primary := s.primaryPath(name)
	if current, err := os.ReadFile(primary); err == nil {
		if err := os.WriteFile(s.backupPath(name), current, 0o644); err != nil {
			res.BackupErr = err
			slog.Warn("Failed to write rolling backup", "collection", name, "err", err)
		}
		if err := os.WriteFile(s.snapshotPath(name, s.now()), current, 0o644); err != nil {
			res.SnapshotErr = err
			slog.Warn("Failed to write timestamped backup", "collection", name, "err", err)
		}
	} else if !os.IsNotExist(err) {
		// The prior state exists but could not be read, so neither backup
		// reflects it. Record that on both slots.
		res.BackupErr = err
		res.SnapshotErr = err
		slog.Warn("Failed to read prior state for backups", "collection", name, "err", err)
	}

	data, err := encodeJSON(records)
	if err != nil {
		return res, fmt.Errorf("failed to encode collection %s: %w", name, err)
	}

	// Stage in the same directory so the final step is a rename, never a
	// cross-device copy.
	tmp := s.tempPath(name)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return res, fmt.Errorf("failed to stage collection %s: %w", name, err)
	}
	if err := os.Rename(tmp, primary); err != nil {
		_ = os.Remove(tmp)
		return res, fmt.Errorf("failed to replace collection %s: %w", name, err)
	}
	return res, nil
}

// Restore overwrites the primary file with the rolling backup's content.
// This is the explicit, caller-invoked recovery path, distinct from the
// automatic self-heal in Read. It returns false, leaving the primary
// untouched, when the backup is missing, unreadable, or not valid JSON.
func (s *Store) Restore(name string) bool {
	mu := s.lockFor(name)
	mu.Lock()
	defer mu.Unlock()

	data, err := os.ReadFile(s.backupPath(name))
	if err != nil {
		return false
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return false
	}
	encoded, err := encodeJSON(parsed)
	if err != nil {
		return false
	}
	return os.WriteFile(s.primaryPath(name), encoded, 0o644) == nil
}

// EnsureExists bootstraps a collection to a well-defined empty state when its
// primary file is absent. This is the only operation that creates a file
// without prior content to back up; it is exercised once per known collection
// at process startup.
func (s *Store) EnsureExists(name string) error {
	mu := s.lockFor(name)
	mu.Lock()
	defer mu.Unlock()

	if _, err := os.Stat(s.primaryPath(name)); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat collection %s: %w", name, err)
	}
	_, err := s.writeLocked(name, []Record{})
	return err
}

// decodeRecords parses data as a JSON array. Any well-formed array passes
// through, including one holding non-mapping elements; there are no
// per-record schema checks. Anything else is corruption.
func decodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		// JSON null decodes to a nil slice; only a real array counts.
		return nil, fmt.Errorf("content is not a JSON array")
	}
	return records, nil
}

// encodeJSON serializes v pretty-printed with literal non-ASCII characters,
// keeping the files human-inspectable.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
