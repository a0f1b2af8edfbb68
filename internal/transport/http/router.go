package http

import (
	"net/http"
	"time"

	"mcq-service/internal/app"
	"mcq-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	Service     *app.QuestionService
	Directory   *auth.Directory
	Issuer      *auth.TokenIssuer
	AllowSignup bool
	CORSOrigins []string
}

// NewRouter mounts the REST API, the snapshot websocket and the health probe.
func NewRouter(cfg RouterConfig) http.Handler {
	questions := NewQuestionHandler(cfg.Service)
	sessions := NewAuthHandler(cfg.Directory, cfg.Issuer, cfg.AllowSignup)
	ws := NewWSHandler(cfg.Service, cfg.Issuer)
	requireToken := auth.RequireToken(cfg.Issuer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Long-lived; kept outside the request timeout.
	r.With(requireToken).Get("/ws", ws.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Post("/auth/login", sessions.Login)
		r.Post("/auth/signup", sessions.Signup)

		r.Group(func(r chi.Router) {
			r.Use(requireToken)

			r.Get("/auth/me", sessions.Me)
			r.Post("/auth/logout", sessions.Logout)

			r.Route("/mcqs", func(r chi.Router) {
				r.Get("/", questions.List)
				r.Post("/", questions.Create)
				r.Get("/published", questions.Published)
				r.Get("/{id}", questions.Get)
				r.Put("/{id}", questions.Update)
				r.Delete("/{id}", questions.Delete)
				r.Patch("/{id}/publish", questions.SetPublished)
				r.Post("/{id}/answers", questions.SubmitAnswer)
			})
			r.Get("/me/answers", questions.Answers)
		})
	})
	return r
}
