package api

import (
	"encoding/json"
	"net/http"

	_ "github.com/blaisecz/smart-wake/docs"
	"github.com/blaisecz/smart-wake/internal/api/handler"
	"github.com/blaisecz/smart-wake/internal/api/middleware"
	"github.com/blaisecz/smart-wake/pkg/problem"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	scheduleHandler *handler.ScheduleHandler
	sessionHandler  *handler.SessionHandler
	statusHandler   *handler.StatusHandler
	log             *zap.Logger
}

func NewRouter(
	scheduleHandler *handler.ScheduleHandler,
	sessionHandler *handler.SessionHandler,
	statusHandler *handler.StatusHandler,
	log *zap.Logger,
) *Router {
	return &Router{
		scheduleHandler: scheduleHandler,
		sessionHandler:  sessionHandler,
		statusHandler:   statusHandler,
		log:             log,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recovery(rt.log))
	r.Use(middleware.Logger(rt.log))
	r.Use(middleware.Tracing)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.NotFound("no route for " + r.URL.Path).Write(w)
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Route("/schedule", func(r chi.Router) {
			r.Put("/", rt.scheduleHandler.Update)
			r.Get("/", rt.scheduleHandler.Get)
			r.Delete("/", rt.scheduleHandler.Cancel)
		})

		r.Get("/status", rt.statusHandler.Get)
		r.Get("/sessions", rt.sessionHandler.List)
		r.Get("/report", rt.sessionHandler.Report)
	})

	return r
}
