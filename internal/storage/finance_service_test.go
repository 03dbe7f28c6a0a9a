package storage

import (
	"testing"

	"github.com/academiahq/academia/internal/models"
)

func TestFinanceCreate(t *testing.T) {
	svc := NewFinanceService(newTestStore(t))
	svc.now = fixedClock("2026-03-15T10:00:00Z")

	entry, err := svc.Create(FinanceInput{Type: "Income", Amount: 150})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Type != models.FinanceIncome {
		t.Errorf("type = %q, want lowercased income", entry.Type)
	}
	if entry.DateTime != "2026-03-15T10:00:00Z" {
		t.Errorf("default DateTime = %q", entry.DateTime)
	}

	if _, err := svc.Create(FinanceInput{Type: "transfer", Amount: 10}); err == nil {
		t.Error("invalid type accepted")
	}
	if _, err := svc.Create(FinanceInput{Type: "income", Amount: 0}); err == nil {
		t.Error("zero amount accepted")
	}
	if _, err := svc.Create(FinanceInput{Type: "expense", Amount: -5}); err == nil {
		t.Error("negative amount accepted")
	}
}

func TestFinanceAggregate(t *testing.T) {
	svc := NewFinanceService(newTestStore(t))
	svc.now = fixedClock("2026-03-15T10:00:00Z")

	entries := []FinanceInput{
		{Type: "income", Amount: 100.10, DateTime: "2026-03-15T09:00:00Z"},
		{Type: "income", Amount: 50.15, DateTime: "2026-03-15T14:00:00Z"},
		{Type: "expense", Amount: 30.05, DateTime: "2026-03-15T16:00:00Z"},
		{Type: "income", Amount: 999, DateTime: "2026-03-14T10:00:00Z"}, // previous day
	}
	for _, in := range entries {
		if _, err := svc.Create(in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	summary, day := svc.Aggregate("2026-03-15")
	if day != "2026-03-15" {
		t.Errorf("day = %q", day)
	}
	if summary.TotalIncome != 150.25 {
		t.Errorf("TotalIncome = %v, want 150.25", summary.TotalIncome)
	}
	if summary.TotalExpense != 30.05 {
		t.Errorf("TotalExpense = %v, want 30.05", summary.TotalExpense)
	}
	if summary.Balance != 120.20 {
		t.Errorf("Balance = %v, want 120.20", summary.Balance)
	}

	// Empty date means today per the injected clock.
	today, day := svc.ListByDate("")
	if day != "2026-03-15" || len(today) != 3 {
		t.Errorf("ListByDate(\"\") = %d entries on %q", len(today), day)
	}
}

func TestDashboardSummary(t *testing.T) {
	store := newTestStore(t)
	students := NewStudentService(store)
	classes := NewClassService(store)
	attendance := NewAttendanceService(store, students, classes)
	finance := NewFinanceService(store)
	dashboard := NewDashboardService(students, attendance, finance)
	dashboard.now = fixedClock("2026-03-15T10:00:00Z")

	ana, _ := students.Create("Ana", "", "")
	bruno, _ := students.Create("Bruno", "", "")
	if _, err := students.Create("Clara", "", ""); err != nil {
		t.Fatalf("create student: %v", err)
	}
	jiujitsu, _ := classes.Create("Jiu-Jitsu", "")
	boxing, _ := classes.Create("Boxing", "")

	// Ana attended today, Bruno only last month. Clara never attended.
	mustAttend := func(studentID, classID, dt string) {
		t.Helper()
		if _, err := attendance.Create(AttendanceInput{ClassID: classID, StudentID: studentID, DateTime: dt, Status: "present"}); err != nil {
			t.Fatalf("attendance: %v", err)
		}
	}
	mustAttend(ana.ID, jiujitsu.ID, "2026-03-15T09:00:00Z")
	mustAttend(ana.ID, boxing.ID, "2026-03-15T18:00:00Z")
	mustAttend(bruno.ID, jiujitsu.ID, "2026-02-10T09:00:00Z")

	if _, err := finance.Create(FinanceInput{Type: "income", Amount: 200, DateTime: "2026-03-15T12:00:00Z"}); err != nil {
		t.Fatalf("finance: %v", err)
	}

	summary := dashboard.Summary("")
	if summary.ActiveStudents != 2 {
		t.Errorf("ActiveStudents = %d, want 2", summary.ActiveStudents)
	}
	if summary.TodayClasses != 2 {
		t.Errorf("TodayClasses = %d, want 2", summary.TodayClasses)
	}
	if summary.TotalIncomeToday != 200 {
		t.Errorf("TotalIncomeToday = %v, want 200", summary.TotalIncomeToday)
	}
	if summary.TotalExpenseToday != 0 {
		t.Errorf("TotalExpenseToday = %v, want 0", summary.TotalExpenseToday)
	}
}
