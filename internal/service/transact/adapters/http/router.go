package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Router(srv *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", srv.GetHealthStatus)

	r.Route("/fhir", func(r chi.Router) {
		r.Post("/", srv.ProcessTransaction)
		r.Put("/{resourceType}/{id}", srv.CommitResource)
		r.Get("/{resourceType}/{id}/_version", srv.GetResourceVersion)
	})

	return r
}
