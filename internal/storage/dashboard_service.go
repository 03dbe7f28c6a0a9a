package storage

import (
	"time"

	"github.com/academiahq/academia/internal/models"
)

// DashboardService aggregates a one-day overview across collections.
type DashboardService struct {
	students   *StudentService
	attendance *AttendanceService
	finance    *FinanceService
	now        func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(students *StudentService, attendance *AttendanceService, finance *FinanceService) *DashboardService {
	return &DashboardService{students: students, attendance: attendance, finance: finance, now: time.Now}
}

// Summary computes the dashboard for the given day (today when empty):
// students with at least one attendance record ever, distinct classes with
// attendance that day, and the day's finance totals.
func (s *DashboardService) Summary(date string) models.DashboardSummary {
	day := NormalizeDate(date, s.now)
	records := s.attendance.List()

	attended := make(map[string]bool, len(records))
	classesToday := make(map[string]bool)
	for _, rec := range records {
		attended[rec.StudentID] = true
		if datePart(rec.DateTime) == day {
			classesToday[rec.ClassID] = true
		}
	}

	active := 0
	for _, student := range s.students.List() {
		if attended[student.ID] {
			active++
		}
	}

	totals, _ := s.finance.Aggregate(day)
	return models.DashboardSummary{
		ActiveStudents:    active,
		TodayClasses:      len(classesToday),
		TotalIncomeToday:  totals.TotalIncome,
		TotalExpenseToday: totals.TotalExpense,
	}
}
