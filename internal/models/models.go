// Package models defines the core data structures used throughout the
// application. Timestamps are serialized as ISO 8601 strings so the records
// stay stable through the store's opaque JSON round trip.
package models

// Student represents an enrolled student.
type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Class represents a class offered by the academy.
type Class struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID        string `json:"id"`
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	CreatedAt string `json:"created_at"`
}

// AttendanceStatus is the outcome recorded for one student in one class.
type AttendanceStatus string

const (
	// StatusPresent marks the student as present.
	StatusPresent AttendanceStatus = "present"
	// StatusAbsent marks the student as absent.
	StatusAbsent AttendanceStatus = "absent"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// AttendanceRecord ties a student to a class session.
type AttendanceRecord struct {
	ID        string           `json:"id"`
	ClassID   string           `json:"class_id"`
	StudentID string           `json:"student_id"`
	DateTime  string           `json:"date_time"`
	Status    AttendanceStatus `json:"status"`
}

// Evaluation is a physical evaluation of a student. BMI is computed from
// weight and height at creation time and stored as "imc", the field name the
// deployed data files use.
type Evaluation struct {
	ID           string         `json:"id"`
	StudentID    string         `json:"student_id"`
	Date         string         `json:"date"`
	WeightKg     float64        `json:"weight_kg"`
	HeightM      *float64       `json:"height_m"`
	Measurements map[string]any `json:"measurements,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	BMI          *float64       `json:"imc"`
}

// FinanceType distinguishes money coming in from money going out.
type FinanceType string

const (
	// FinanceIncome is money received.
	FinanceIncome FinanceType = "income"
	// FinanceExpense is money spent.
	FinanceExpense FinanceType = "expense"
)

// Valid reports whether the finance type is one of the known values.
func (t FinanceType) Valid() bool {
	return t == FinanceIncome || t == FinanceExpense
}

// FinanceEntry is a single income or expense record.
type FinanceEntry struct {
	ID          string      `json:"id"`
	DateTime    string      `json:"date_time"`
	Type        FinanceType `json:"type"`
	Amount      float64     `json:"amount"`
	Category    string      `json:"category,omitempty"`
	Description string      `json:"description,omitempty"`
	CreatedBy   string      `json:"created_by,omitempty"`
}

// FinanceSummary aggregates one day's entries.
type FinanceSummary struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Balance      float64 `json:"balance"`
}

// ChartData holds the time series for a student's evaluation chart.
type ChartData struct {
	Labels  []string   `json:"labels"`
	Weights []float64  `json:"weights"`
	BMI     []*float64 `json:"imc"`
}

// DashboardSummary is the aggregate view for a single day.
type DashboardSummary struct {
	ActiveStudents    int     `json:"active_students"`
	TodayClasses      int     `json:"today_classes"`
	TotalIncomeToday  float64 `json:"total_income_today"`
	TotalExpenseToday float64 `json:"total_expense_today"`
}

// UserRole defines the permissions for a user.
type UserRole string

const (
	// RoleAdmin has full access, including store administration.
	RoleAdmin UserRole = "admin"
	// RoleStaff can manage day-to-day records but not the store itself.
	RoleStaff UserRole = "staff"
)

// User represents a system user. The password hash never leaves the storage
// layer.
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	CreatedAt string   `json:"created_at"`
}

type contextKey string

// UserKey is the context key under which the authenticated user is stored.
const UserKey contextKey = "user"
