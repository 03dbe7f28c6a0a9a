package server

import (
	"net/http"

	"github.com/academiahq/academia/internal/config"
	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/server/handlers"
	"github.com/academiahq/academia/internal/server/ratelimit"
	"github.com/academiahq/academia/internal/storage"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Store       *docstore.Store
	Students    *storage.StudentService
	Classes     *storage.ClassService
	Enrollments *storage.EnrollmentService
	Attendance  *storage.AttendanceService
	Evaluations *storage.EvaluationService
	Finance     *storage.FinanceService
	Dashboard   *storage.DashboardService
	Users       *storage.UserService
}

// NewServices wires the domain services over one store.
func NewServices(store *docstore.Store) *Services {
	students := storage.NewStudentService(store)
	classes := storage.NewClassService(store)
	attendance := storage.NewAttendanceService(store, students, classes)
	finance := storage.NewFinanceService(store)
	return &Services{
		Store:       store,
		Students:    students,
		Classes:     classes,
		Enrollments: storage.NewEnrollmentService(store, students, classes),
		Attendance:  attendance,
		Evaluations: storage.NewEvaluationService(store, students),
		Finance:     finance,
		Dashboard:   storage.NewDashboardService(students, attendance, finance),
		Users:       storage.NewUserService(store),
	}
}

// Server holds the HTTP surface and its cross-cutting state.
type Server struct {
	users      *storage.UserService
	jwtSecret  []byte
	rateLimits *ratelimit.Config
	handler    http.Handler
}

// Version is the reported API version.
const Version = "1.0.0"

// New creates a configured server over the given services.
func New(svc *Services, cfg *config.Config) *Server {
	s := &Server{
		users:      svc.Users,
		jwtSecret:  cfg.JWTSecret,
		rateLimits: ratelimit.NewConfig(cfg.RateLimits.AuthRatePerMin, cfg.RateLimits.APIRatePerMin),
	}

	authh := handlers.NewAuthHandler(svc.Users, cfg.JWTSecret)
	sth := handlers.NewStudentHandler(svc.Students)
	ch := handlers.NewClassHandler(svc.Classes)
	eh := handlers.NewEnrollmentHandler(svc.Enrollments)
	ath := handlers.NewAttendanceHandler(svc.Attendance)
	evh := handlers.NewEvaluationHandler(svc.Evaluations)
	fh := handlers.NewFinanceHandler(svc.Finance)
	dh := handlers.NewDashboardHandler(svc.Dashboard)
	adh := handlers.NewAdminHandler(svc.Store)
	hh := handlers.NewHealthHandler(Version)

	// Open endpoints.
	mux := &http.ServeMux{}
	mux.Handle("GET /api/health", Wrap(hh.Health))
	mux.Handle("POST /api/auth/login", Wrap(authh.Login))

	// Everything else requires a valid token.
	api := &http.ServeMux{}
	api.Handle("GET /api/students", Wrap(sth.List))
	api.Handle("POST /api/students", Wrap(sth.Create))
	api.Handle("GET /api/students/{id}", Wrap(sth.Get))
	api.Handle("GET /api/students/{id}/evaluations", Wrap(evh.ListByStudent))
	api.Handle("GET /api/students/{id}/evaluations/chart", Wrap(evh.Chart))

	api.Handle("GET /api/classes", Wrap(ch.List))
	api.Handle("POST /api/classes", Wrap(ch.Create))
	api.Handle("GET /api/classes/{id}", Wrap(ch.Get))
	api.Handle("GET /api/classes/{id}/attendance", Wrap(ath.ListByClass))

	api.Handle("GET /api/enrollments", Wrap(eh.List))
	api.Handle("POST /api/enrollments", Wrap(eh.Create))
	api.Handle("GET /api/enrollments/class/{id}", Wrap(eh.ListByClass))
	api.Handle("GET /api/enrollments/class/{id}/students", Wrap(eh.EnrolledStudents))
	api.Handle("GET /api/enrollments/student/{id}", Wrap(eh.ListByStudent))
	api.Handle("DELETE /api/enrollments/{id}", Wrap(eh.Delete))
	api.Handle("DELETE /api/enrollments/student/{sid}/class/{cid}", Wrap(eh.DeleteByPair))

	api.Handle("POST /api/attendance", Wrap(ath.Create))
	api.Handle("POST /api/attendance/bulk", Wrap(ath.CreateBulk))

	api.Handle("POST /api/evaluations", Wrap(evh.Create))

	api.Handle("POST /api/finance", Wrap(fh.Create))
	api.Handle("GET /api/finance", Wrap(fh.Summary))

	api.Handle("GET /api/dashboard", Wrap(dh.Summary))

	api.Handle("POST /api/admin/collections/{name}/restore", requireRole(models.RoleAdmin, Wrap(adh.Restore)))

	mux.Handle("/api/", s.authMiddleware(api))
	s.handler = s.rateLimitMiddleware(mux)
	return s
}

// Handler returns the fully assembled HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases background resources.
func (s *Server) Close() {
	s.rateLimits.Close()
}
