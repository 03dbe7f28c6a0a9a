// Package storage implements the domain services layered on the document
// store. Each service owns one collection and marshals its typed rows through
// the store's opaque record contract; referential checks between collections
// live here, never in the store.
package storage

import (
	"encoding/json"
	"errors"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/maruel/ksid"
)

// Collection names, one JSON file each under the store's data directory.
const (
	ColStudents    = "students"
	ColClasses     = "classes"
	ColEnrollments = "enrollments"
	ColAttendance  = "attendance"
	ColEvaluations = "evaluations"
	ColFinance     = "finance"
	ColUsers       = "users"
)

// Collections lists every known collection, bootstrapped at startup.
var Collections = []string{
	ColStudents,
	ColClasses,
	ColEnrollments,
	ColAttendance,
	ColEvaluations,
	ColFinance,
	ColUsers,
}

// ErrNotFound is the sentinel wrapped by every service lookup miss.
var ErrNotFound = errors.New("not found")

// ErrPersist is the sentinel wrapped when a collection write fails.
var ErrPersist = errors.New("persist failed")

// ErrExists is the sentinel wrapped when a create would duplicate an
// existing row.
var ErrExists = errors.New("already exists")

func newID() string {
	return ksid.NewID().String()
}

// decodeRows converts the store's opaque records into typed rows. Records
// that do not fit the type are dropped rather than failing the whole read,
// matching the store's availability-first posture.
func decodeRows[T any](records []docstore.Record) []T {
	rows := make([]T, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		var row T
		if err := json.Unmarshal(data, &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// toRecords widens typed rows into store records. The rows serialize
// identically either way; the store never inspects them.
func toRecords[T any](rows []T) []docstore.Record {
	records := make([]docstore.Record, len(rows))
	for i := range rows {
		records[i] = rows[i]
	}
	return records
}
