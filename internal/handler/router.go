package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/dashboard"
	"github.com/BuzzLyutic/team-dashboard-api/pkg/respond"
)

type RouterOptions struct {
	CORSOrigins []string
	// RequestLogging enables chi's request logger.
	RequestLogging bool
}

func NewRouter(client *dashboard.Client, logger *zap.Logger, opts RouterOptions) http.Handler {
	tasks := NewTaskHandler(client, logger)
	employees := NewEmployeeHandler(client, logger)
	summary := NewDashboardHandler(client, logger)

	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.RequestLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.List)
			r.Post("/", tasks.Create)
			r.Get("/stats", tasks.Stats)
			r.Get("/{id}", tasks.Get)
			r.Patch("/{id}", tasks.Update)
			r.Put("/{id}/status", tasks.UpdateStatus)
			r.Delete("/{id}", tasks.Delete)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employees.List)
			r.Post("/", employees.Create)
			r.Get("/{id}", employees.Get)
			r.Get("/{id}/tasks", tasks.ListByAssignee)
			r.Patch("/{id}", employees.Update)
			r.Delete("/{id}", employees.Delete)
		})

		r.Get("/dashboard", summary.Summary)
	})

	if len(opts.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(r)
}
