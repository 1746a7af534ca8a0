package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	mem "hr-portal/internal/adapters/storage/memory"
	pg "hr-portal/internal/adapters/storage/postgres"
	_ "hr-portal/internal/docs"
	"hr-portal/internal/domain/accessrequests"
	"hr-portal/internal/domain/authz"
	"hr-portal/internal/domain/delegations"
	"hr-portal/internal/domain/departments"
	"hr-portal/internal/domain/employees"
	"hr-portal/internal/domain/leaves"
	"hr-portal/internal/domain/recruitment"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/middleware"
	"hr-portal/internal/platform/httpjson"
	"hr-portal/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"gorm.io/gorm"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
	// Gorm sobre el mismo pool; si falta y hay DB se abre acá.
	Gorm *gorm.DB

	Logger logger.Logger

	// Now reemplaza el reloj de todos los servicios (tests).
	Now func() time.Time

	// DefaultGrant: duración de un approve sin allow_minutes. 0 => 15m.
	DefaultGrant time.Duration

	SwaggerEnabled bool

	// Debug sube el nivel del logger de gorm.
	Debug bool
}

// App expone el handler y los servicios que usan los workers.
type App struct {
	Handler http.Handler

	Employees *employees.Service
	Leaves    *leaves.Service
}

type repos struct {
	accessRequests accessrequests.Repository
	delegations    delegations.Repository
	departments    departments.Repository
	employees      employees.Repository
	candidates     recruitment.CandidateRepository
	applications   recruitment.ApplicationRepository
	leaves         leaves.Repository
}

// NewRouter arma solo el handler (in-memory si no hay DB).
func NewRouter(opts Options) http.Handler {
	app, err := Build(opts)
	if err != nil {
		panic(err)
	}
	return app.Handler
}

func Build(opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	rp, err := newRepos(opts, log)
	if err != nil {
		return nil, err
	}

	// El registry se llena al final: el gate lo necesita antes que las entidades existan.
	registry := resources.NewRegistry()

	arSvc := accessrequests.NewService(rp.accessRequests, registry, log).
		WithClock(opts.Now).
		WithDefaultGrant(opts.DefaultGrant)
	gate := authz.NewGate(registry, arSvc, log).WithClock(opts.Now)

	delegSvc := delegations.NewService(rp.delegations, log).WithClock(opts.Now)
	deptSvc := departments.NewService(rp.departments, gate, log).WithClock(opts.Now)
	empSvc := employees.NewService(rp.employees, gate, log).WithClock(opts.Now)
	recSvc := recruitment.NewService(rp.candidates, rp.applications, gate, log).WithClock(opts.Now)
	leaveSvc := leaves.NewService(rp.leaves, empSvc, gate, log).WithClock(opts.Now)

	registry.Register(resources.TypeDepartment, deptSvc)
	registry.Register(resources.TypeEmployee, empSvc)
	registry.Register(resources.TypeCandidate, recSvc.CandidateLocator())
	registry.Register(resources.TypeJobApplication, recSvc.ApplicationLocator())
	registry.Register(resources.TypeLeaveRequest, leaveSvc)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))
	r.Use(middleware.AdminContext)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	// Rutas por módulo
	accessrequests.RegisterRoutes(r, arSvc, log)
	delegations.RegisterRoutes(r, delegSvc, log)
	departments.RegisterRoutes(r, deptSvc, log)
	employees.RegisterRoutes(r, empSvc, log, leaves.EmployeeRoutes(leaveSvc, log))
	recruitment.RegisterRoutes(r, recSvc, log)
	leaves.RegisterRoutes(r, leaveSvc, log)

	return &App{
		Handler:   r,
		Employees: empSvc,
		Leaves:    leaveSvc,
	}, nil
}

func newRepos(opts Options, log logger.Logger) (repos, error) {
	if opts.DB == nil {
		return repos{
			accessRequests: mem.NewAccessRequestsRepo(),
			delegations:    mem.NewDelegationsRepo(),
			departments:    mem.NewDepartmentsRepo(),
			employees:      mem.NewEmployeesRepo(),
			candidates:     mem.NewCandidatesRepo(),
			applications:   mem.NewApplicationsRepo(),
			leaves:         mem.NewLeavesRepo(),
		}, nil
	}

	gdb := opts.Gorm
	if gdb == nil {
		opened, err := pg.OpenGorm(opts.DB, log, opts.Debug)
		if err != nil {
			return repos{}, fmt.Errorf("router: %w", err)
		}
		gdb = opened
	}
	return repos{
		accessRequests: pg.NewAccessRequestsRepo(opts.DB),
		delegations:    pg.NewDelegationsRepo(opts.DB),
		departments:    pg.NewDepartmentsRepo(gdb),
		employees:      pg.NewEmployeesRepo(gdb),
		candidates:     pg.NewCandidatesRepo(gdb),
		applications:   pg.NewApplicationsRepo(gdb),
		leaves:         pg.NewLeavesRepo(gdb),
	}, nil
}
