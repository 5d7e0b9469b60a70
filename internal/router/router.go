package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/flipbook/internal/api"
	"github.com/leca/flipbook/internal/config"
	"github.com/leca/flipbook/internal/database"
	"github.com/leca/flipbook/internal/handler"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	DB     database.Database
	Config *config.Config
	Router chi.Router
}

// New creates a new Server with a fully configured chi router.
func New(db database.Database, cfg *config.Config) *Server {
	s := &Server{DB: db, Config: cfg}

	h := &handler.Handler{
		DB:     db,
		Config: cfg,
	}

	r := chi.NewRouter()

	// CORS — must be before other middleware to handle preflight OPTIONS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.Health)

		r.Post("/uploads", h.UploadImage)
		r.Get("/uploads/{imageID}", h.GetUploadedImage)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", h.ListPages)
			r.Post("/", h.CreatePage)
			r.Put("/{pageID}", h.UpdatePage)
			r.Delete("/{pageID}", h.DeletePage)

			r.Get("/{pageID}/blocks", h.ListBlocks)
			r.Post("/{pageID}/blocks", h.CreateBlock)
			r.Put("/{pageID}/blocks/{blockID}", h.UpdateBlock)
			r.Delete("/{pageID}/blocks/{blockID}", h.DeleteBlock)
		})
	})

	s.Router = r
	return s
}

// Health reports whether the store is reachable.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.Ping(); err != nil {
		api.WriteJSON(w, http.StatusInternalServerError, map[string]bool{"ok": false})
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
