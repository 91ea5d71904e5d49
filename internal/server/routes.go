package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(chartService *ChartService, allowedOrigins []string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(RequestLogger)
	router.Use(PanicHandler)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Post("/files", chartService.CreateFileVersion)
	router.Post("/values", chartService.CreateValue)
	router.Get("/chart-data", chartService.GetChartData)
	router.Get("/healthz", chartService.Health)

	return router
}
