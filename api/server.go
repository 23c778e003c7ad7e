/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. RequestLogger:  Structured request logging (httplog, ECS schema)
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. CORS:           Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*      Employees, balances, history, leave submission
  /api/leave-types/*    Leave type management
  /api/leave-records/*  Raw records and external import
  /api/reports/*        Team leave totals
  /api/attendance       Rolling attendance grid
  /api/scenarios/*      Demo scenarios
  /api/reset            Store reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/warp/leave-engine/config"
)

// RouterOptions configures NewRouter. The zero value is usable.
type RouterOptions struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

// NewLogger builds the application's JSON logger with ECS field names.
func NewLogger(cfg config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-engine"),
		slog.String("env", cfg.Env),
	)
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/balances", h.GetBalances)
			r.Get("/{id}/history", h.GetHistory)
			r.Get("/{id}/consumption", h.GetConsumption)
			r.Get("/{id}/attendance", h.GetAttendance)
			r.Post("/{id}/leaves", h.SubmitLeave)
		})

		// Leave type routes
		r.Route("/leave-types", func(r chi.Router) {
			r.Get("/", h.ListLeaveTypes)
			r.Post("/", h.CreateLeaveType)
			r.Delete("/{id}", h.DeleteLeaveType)
		})

		// Leave record routes
		r.Route("/leave-records", func(r chi.Router) {
			r.Get("/", h.ListLeaveRecords)
			r.Post("/import", h.ImportLeaveRecords)
		})

		r.Get("/reports/leave-totals", h.GetLeaveTotals)
		r.Get("/attendance", h.GetAttendanceGrid)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
		r.Post("/reset", h.ResetDatabase)
	})

	return r
}
