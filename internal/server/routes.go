package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"arbscan/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/scanner", func(r chi.Router) {
				r.Get("/", handler(s.getV1Scanner))
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", handler(s.getV1Dashboard))
				r.Post("/reset", handler(s.postV1DashboardReset))
			})

			r.Route("/balances", func(r chi.Router) {
				r.Get("/", handler(s.getV1Balances))
			})

			r.Route("/deals", func(r chi.Router) {
				r.Post("/", handler(s.postV1Deal))
			})
		})

		r.Get("/ws", s.handleStream)
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
