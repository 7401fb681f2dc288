package app

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/docs"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/httpx"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/middleware"
)

// NewRouter mounts the middleware chain, every API route and the
// operational endpoints.
func NewRouter(h *Handlers, sqlDB *sql.DB, cfg middleware.Config) *mux.Router {
	router := mux.NewRouter()
	middleware.Register(router, cfg)

	h.Catalog.RegisterRoutes(router)
	h.Templates.RegisterRoutes(router)
	h.Productions.RegisterRoutes(router)

	RegisterHealthCheck(router, sqlDB)
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return router
}

// RegisterHealthCheck registers the health check endpoint
// @Summary Health check
// @Description Reports service and database health
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,service=string}
// @Failure 503 {object} object{status=string,error=string}
// @Router /health [get]
func RegisterHealthCheck(router *mux.Router, sqlDB *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.PingContext(r.Context()); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "atelier-service",
		})
	}).Methods("GET")
}

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}
