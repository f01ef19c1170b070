package http

import (
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/DRSN-tech/fashion-search/pkg/readiness"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(searchUC usecase.SearchUC, state *readiness.State) {
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	handler := NewSearchHandler(searchUC, state, r.logger)
	registerSearchRoutes(r.router, handler)
}

func registerSearchRoutes(router chi.Router, handler *SearchHandler) {
	router.Get("/health", handler.health)

	router.Route("/search", func(s chi.Router) {
		s.Post("/text-to-image", handler.textToImage)
		s.Post("/image-to-image", handler.imageToImage)
	})
}
