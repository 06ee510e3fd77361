package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"reelearn-backend/internal/handlers"
	"reelearn-backend/internal/middleware"
	"reelearn-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	generateLimiter *middleware.RateLimiter,
	generateHandler *handlers.GenerateHandler,
	videoHandler *handlers.VideoHandler,
	commentHandler *handlers.CommentHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Video & Feed Routes (public reads) ────
		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.Feed)
			r.Get("/{id}", videoHandler.Get)
			r.Get("/{id}/quiz", videoHandler.GetQuiz)
			r.Get("/{id}/comments", commentHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/{id}/comments", commentHandler.Create)
			})
		})

		// ──── Generation Routes ────
		r.Route("/generate", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(generateLimiter.Middleware)
			r.Post("/summary", generateHandler.Summary)
			r.Post("/quiz", generateHandler.Quiz)
			r.Post("/further-reading", generateHandler.FurtherReading)
			r.Post("/comment-summary", generateHandler.CommentSummary)
		})

		// ──── WebSocket (video update events) ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
