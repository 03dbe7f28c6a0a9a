package storage

import (
	"errors"
	"testing"

	"github.com/academiahq/academia/internal/models"
)

func newAttendanceFixture(t *testing.T) (*AttendanceService, string, string) {
	t.Helper()
	store := newTestStore(t)
	students := NewStudentService(store)
	classes := NewClassService(store)
	svc := NewAttendanceService(store, students, classes)
	student, err := students.Create("Ana", "", "")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	class, err := classes.Create("Jiu-Jitsu", "")
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	return svc, student.ID, class.ID
}

func TestAttendanceCreate(t *testing.T) {
	svc, studentID, classID := newAttendanceFixture(t)
	svc.now = fixedClock("2026-03-15T10:00:00Z")

	record, err := svc.Create(AttendanceInput{ClassID: classID, StudentID: studentID, Status: "Present"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Status != models.StatusPresent {
		t.Errorf("status = %q, want lowercased %q", record.Status, models.StatusPresent)
	}
	if record.DateTime != "2026-03-15T10:00:00Z" {
		t.Errorf("default DateTime = %q", record.DateTime)
	}
}

func TestAttendanceCreateValidation(t *testing.T) {
	svc, studentID, classID := newAttendanceFixture(t)

	if _, err := svc.Create(AttendanceInput{ClassID: "nope", StudentID: studentID, Status: "present"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing class: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Create(AttendanceInput{ClassID: classID, StudentID: "nope", Status: "present"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing student: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Create(AttendanceInput{ClassID: classID, StudentID: studentID, Status: "late"}); err == nil {
		t.Error("invalid status accepted")
	}
}

func TestAttendanceCreateBulkAllOrNothing(t *testing.T) {
	svc, studentID, classID := newAttendanceFixture(t)

	inputs := []AttendanceInput{
		{ClassID: classID, StudentID: studentID, Status: "present"},
		{ClassID: classID, StudentID: "nope", Status: "present"},
	}
	if _, err := svc.CreateBulk(inputs); !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateBulk with bad entry: got %v, want ErrNotFound", err)
	}
	if got := svc.List(); len(got) != 0 {
		t.Errorf("partial write: %d records persisted", len(got))
	}

	inputs[1].StudentID = studentID
	inputs[1].Status = "absent"
	records, err := svc.CreateBulk(inputs)
	if err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if got := svc.List(); len(got) != 2 {
		t.Errorf("persisted %d records, want 2", len(got))
	}
}

func TestAttendanceListByClassDateRange(t *testing.T) {
	svc, studentID, classID := newAttendanceFixture(t)

	for _, dt := range []string{"2026-01-01T10:00:00Z", "2026-01-15T10:00:00Z", "2026-02-01T10:00:00Z"} {
		if _, err := svc.Create(AttendanceInput{ClassID: classID, StudentID: studentID, DateTime: dt, Status: "present"}); err != nil {
			t.Fatalf("Create(%s): %v", dt, err)
		}
	}

	all, err := svc.ListByClass(classID, "", "")
	if err != nil || len(all) != 3 {
		t.Fatalf("no bounds: %v, %d records", err, len(all))
	}
	january, err := svc.ListByClass(classID, "2026-01-01", "2026-01-31")
	if err != nil || len(january) != 2 {
		t.Fatalf("january: %v, %d records", err, len(january))
	}
	if _, err := svc.ListByClass("nope", "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing class: got %v, want ErrNotFound", err)
	}
}
