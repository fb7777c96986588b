package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/medgrid/fhirgate/internal/service/transact/adapters/storage"
	"github.com/medgrid/fhirgate/internal/service/transact/app"
	"github.com/medgrid/fhirgate/internal/service/transact/app/commands"
	"github.com/medgrid/fhirgate/internal/service/transact/app/queries"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/outcome"
)

type Server struct {
	cmdBus   app.CommandBus
	queryBus app.QueryBus
	composer *outcome.Composer
}

func NewServer(cmdBus app.CommandBus, queryBus app.QueryBus) *Server {
	return &Server{
		cmdBus:   cmdBus,
		queryBus: queryBus,
		composer: outcome.NewComposer(),
	}
}

func (s *Server) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	var in model.Bundle
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeOutcome(w, http.StatusBadRequest, &model.OperationOutcome{
			ResourceType: model.ResourceTypeOperationOutcome,
			Issue: []model.Issue{{
				Severity:    model.SeverityError,
				Code:        model.IssueCodeInvalid,
				Diagnostics: "request body is not a valid bundle",
			}},
		})
		return
	}

	result, err := s.cmdBus.ValidateTransaction(r.Context(), commands.ValidateTransactionCommand{Bundle: &in})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeOutcome(w, http.StatusOK, result.Outcome)
}

func (s *Server) CommitResource(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")
	id := chi.URLParam(r, "id")

	var res model.Resource
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if res.ResourceType != "" && res.ResourceType != resourceType {
		http.Error(w, "resourceType does not match request URL", http.StatusBadRequest)
		return
	}
	if res.ID != "" && res.ID != id {
		http.Error(w, "resource id does not match request URL", http.StatusBadRequest)
		return
	}
	res.ResourceType = resourceType
	res.ID = id

	result, err := s.cmdBus.CommitResource(r.Context(), commands.CommitResourceCommand{Resource: &res})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("ETag", `W/"`+result.Version+`"`)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"resource":  result.Key.String(),
		"versionId": result.Version,
	})
}

func (s *Server) GetResourceVersion(w http.ResponseWriter, r *http.Request) {
	q := queries.GetResourceVersionQuery{
		ResourceType: chi.URLParam(r, "resourceType"),
		ID:           chi.URLParam(r, "id"),
	}
	result, err := s.queryBus.GetResourceVersion(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !result.Found {
		http.Error(w, "resource not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"versionId":   result.Version,
		"lastUpdated": result.LastUpdated.UTC().Format("2006-01-02T15:04:05.999Z07:00"),
	})
}

func (s *Server) GetHealthStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	s.writeOutcome(w, status, s.composer.FromError(err))
}

func (s *Server) writeOutcome(w http.ResponseWriter, status int, oo *model.OperationOutcome) {
	w.Header().Set("Content-Type", "application/fhir+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(oo)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusForError(err error) int {
	switch {
	case errbuilder.CodeOf(err) == errbuilder.CodeInvalidArgument:
		return http.StatusBadRequest
	case errors.Is(err, fhir.ErrUnsupportedOperation),
		errors.Is(err, fhir.ErrUnsupportedResourceType),
		errors.Is(err, fhir.ErrInvalidConditionalParameters):
		return http.StatusBadRequest
	case errors.Is(err, fhir.ErrAmbiguousConditionalMatch):
		return http.StatusPreconditionFailed
	case errors.Is(err, fhir.ErrBundleConflict),
		errors.Is(err, storage.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fhir.ErrSearchUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
