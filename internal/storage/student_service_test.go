package storage

import (
	"errors"
	"testing"
)

func TestStudentCreateGetList(t *testing.T) {
	svc := NewStudentService(newTestStore(t))

	student, err := svc.Create("João Conceição", "1995-07-20", "+55 11 99999-0000")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if student.ID == "" || student.CreatedAt == "" {
		t.Errorf("incomplete student: %+v", student)
	}

	got, err := svc.Get(student.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "João Conceição" {
		t.Errorf("name = %q", got.Name)
	}

	if _, err := svc.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: got %v, want ErrNotFound", err)
	}
	if !svc.Exists(student.ID) || svc.Exists("nope") {
		t.Error("Exists misreports")
	}
	if got := svc.List(); len(got) != 1 {
		t.Errorf("List returned %d students", len(got))
	}
}

func TestClassCreateGetList(t *testing.T) {
	svc := NewClassService(newTestStore(t))

	class, err := svc.Create("Jiu-Jitsu", "Evening fundamentals")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(class.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != "Evening fundamentals" {
		t.Errorf("description = %q", got.Description)
	}
	if _, err := svc.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: got %v, want ErrNotFound", err)
	}
}
