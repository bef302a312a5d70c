// Package api exposes the HTTP surface: flight data CRUD for the editors,
// session status and speech channel controls, and the dashboard WebSocket.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/config"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/speech"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/websocket"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// Router is the API router.
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates the API router.
func NewRouter(repo flightdata.Repository, state *session.State, voicelog *session.VoiceLog, input *speech.Input, output *speech.Output, wsServer *websocket.Server, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(repo, state, voicelog, input, output, wsServer, log),
		middleware: NewMiddleware(log),
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the assembled HTTP handler.
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	router.Route("/api/v1", func(router chi.Router) {
		// Checklist editor
		router.Get("/checklists", r.handler.GetChecklists)
		router.Post("/checklists", r.handler.UpsertChecklist)
		router.Delete("/checklists/{id}", r.handler.DeleteChecklist)

		// Route editor
		router.Get("/routes", r.handler.GetRoutes)
		router.Post("/routes", r.handler.UpsertRoute)
		router.Delete("/routes/{id}", r.handler.DeleteRoute)
		router.Get("/routes/active", r.handler.GetActiveRoute)
		router.Post("/routes/active", r.handler.SetActiveRoute)

		// Aerodrome editor
		router.Get("/aerodromes", r.handler.GetAerodromes)
		router.Post("/aerodromes", r.handler.UpsertAerodrome)
		router.Delete("/aerodromes/{id}", r.handler.DeleteAerodrome)

		// Bulk import
		router.Post("/import/waypoints", r.handler.ImportWaypoints)
		router.Post("/import/aerodromes", r.handler.ImportAerodromes)

		// Session and speech channels
		router.Get("/voicelog", r.handler.GetVoiceLog)
		router.Get("/status", r.handler.GetStatus)
		router.Post("/listening-mode", r.handler.SetListeningMode)
		router.Post("/recognition", r.handler.SetRecognition)
		router.Post("/recognition/retry", r.handler.RetryRecognition)
		router.Post("/say", r.handler.Say)

		// WebSocket push
		router.Get("/ws", r.handler.HandleWebSocket)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	// Serve the dashboard from the configured directory
	staticHandler := NewStaticFileHandler(r.config.Server.StaticFilesDir, r.logger)
	router.Handle("/*", staticHandler)

	return router
}
