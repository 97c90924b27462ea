package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Router builds the route tree with its middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
		r.Get("/verify", s.authenticate(s.verify))
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.authoriseAdmin(s.listUsers))
		r.Post("/", s.authoriseAdmin(s.createUser))
		r.Put("/{id}", s.authoriseAdmin(s.updateUser))
		r.Delete("/{id}", s.authoriseAdmin(s.deleteUser))
	})

	r.Route("/audio_files", func(r chi.Router) {
		r.Post("/presigned-url", s.authenticate(s.uploadURL))
		r.Get("/{id}/presigned-url", s.authenticate(s.downloadURL))
		r.Get("/", s.authenticate(s.listAudioFiles))
		r.Post("/", s.authenticate(s.createAudioFile))
		r.Put("/{id}", s.authenticate(s.updateAudioFile))
		r.Delete("/{id}", s.authenticate(s.deleteAudioFile))
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
