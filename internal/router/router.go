package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simmer-dev/simmer/internal/handler"
)

// New builds the gateway router: auth, thread and comment intents plus
// operational endpoints.
func New(h *handler.Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/state", h.AuthState)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	r.Route("/threads", func(r chi.Router) {
		r.Get("/", h.ListThreads)
		r.Post("/", h.CreateThread)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetThread)
			r.Put("/", h.UpdateThread)
			r.Delete("/", h.DeleteThread)
			r.Post("/vote", h.Vote)
			r.Post("/favorite", h.ToggleFavorite)
			r.Post("/view", h.RecordView)
			r.Get("/comments", h.ListComments)
			r.Post("/comments", h.CreateComment)
			r.Post("/comments/{commentId}/replies", h.CreateReply)
		})
	})

	r.Get("/categories", h.ListCategories)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
