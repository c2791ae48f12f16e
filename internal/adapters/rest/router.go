package rest

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter はミドルウェアとルーティングを設定した chi ルーターを返します。
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", h.ProcessScan)

		r.Route("/attendance-daily", func(r chi.Router) {
			r.Get("/", h.ListAttendanceDaily)
			r.Get("/{id}", h.GetAttendanceDaily)
			r.Put("/{id}", h.UpdateAttendanceDaily)
			r.Delete("/{id}", h.DeleteAttendanceDaily)
		})

		r.Get("/scan-events", h.ListScanEvents)

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.ListDepartments)
			r.Post("/", h.CreateDepartment)
			r.Get("/{id}", h.GetDepartment)
			r.Put("/{id}", h.UpdateDepartment)
			r.Delete("/{id}", h.DeleteDepartment)
			r.Get("/{id}/required-configs", h.ListRequiredConfigs)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{badgeID}", h.GetEmployee)
			r.Put("/{badgeID}", h.UpdateEmployee)
			r.Delete("/{badgeID}", h.DeleteEmployee)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Post("/", h.CreateSchedule)
			r.Get("/{id}", h.GetSchedule)
			r.Put("/{id}", h.UpdateSchedule)
			r.Delete("/{id}", h.DeleteSchedule)
		})

		r.Route("/flex-settings", func(r chi.Router) {
			r.Get("/", h.ListFlexSettings)
			r.Post("/", h.CreateFlexSetting)
			r.Get("/{id}", h.GetFlexSetting)
			r.Put("/{id}", h.UpdateFlexSetting)
			r.Delete("/{id}", h.DeleteFlexSetting)
		})
	})

	return r
}
