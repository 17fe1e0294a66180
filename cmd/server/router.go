package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/tarea-api/internal/api"
	apiMiddleware "github.com/phrazzld/tarea-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	tareaHandler := api.NewTareaHandler(app.tareaService, app.logger)

	r.Route("/tareas", func(r chi.Router) {
		r.Get("/", tareaHandler.ListTareas)
		r.Post("/", tareaHandler.CreateTarea)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", tareaHandler.GetTarea)
			r.Put("/", tareaHandler.UpdateTarea)
			r.Delete("/", tareaHandler.DeleteTarea)
			r.Get("/archivos", tareaHandler.ListArchivos)
			r.Get("/archivos/{filename}", tareaHandler.DownloadArchivo)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
