package commands

import (
	"context"
	"encoding/json"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/medgrid/fhirgate/internal/service/transact/adapters/storage"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

type CommitResourceCommand struct {
	Resource *model.Resource
}

type CommitResourceResult struct {
	Key     storage.ResourceKey
	Version string
}

type CommitResourceHandler interface {
	Handle(ctx context.Context, cmd CommitResourceCommand) (CommitResourceResult, error)
}

// ParamIndexer refreshes the search index after a write.
type ParamIndexer interface {
	Index(ctx context.Context, resourceType, id, version string, params []fhir.SearchParam) error
}

func NewCommitResourceHandler(factory *storage.WrapperFactory, store storage.Store, indexer ParamIndexer, conformance fhir.Conformance) CommitResourceHandler {
	return &commitResourceHandler{
		factory:     factory,
		store:       store,
		indexer:     indexer,
		conformance: conformance,
	}
}

type commitResourceHandler struct {
	factory     *storage.WrapperFactory
	store       storage.Store
	indexer     ParamIndexer
	conformance fhir.Conformance
}

// Handle is the version-reference update pass-through used after validation
// succeeds: wrap the payload, upsert with allow-create, refresh the index.
func (h *commitResourceHandler) Handle(ctx context.Context, cmd CommitResourceCommand) (CommitResourceResult, error) {
	res := cmd.Resource
	if res == nil || res.ResourceType == "" || res.ID == "" {
		return CommitResourceResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resource with resourceType and id is required")
	}
	if h.conformance != nil && !h.conformance.SupportedResourceType(res.ResourceType) {
		return CommitResourceResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resource type " + res.ResourceType + " is not supported")
	}

	wrapper, err := h.factory.Create(res)
	if err != nil {
		return CommitResourceResult{}, err
	}

	keepHistory := true
	if h.conformance != nil {
		keepHistory = h.conformance.KeepHistory(res.ResourceType)
	}
	stored, err := h.store.Upsert(ctx, wrapper, "", true, keepHistory)
	if err != nil {
		return CommitResourceResult{}, err
	}

	if err := h.indexer.Index(ctx, stored.ResourceType, stored.ID, stored.Version, extractSearchParams(res)); err != nil {
		return CommitResourceResult{}, err
	}

	log.Info().
		Str("resource", stored.Key().String()).
		Str("version", stored.Version).
		Msg("resource committed")

	return CommitResourceResult{Key: stored.Key(), Version: stored.Version}, nil
}

// extractSearchParams lifts the indexable parameters out of a payload: _id
// plus every identifier, in both plain-value and system|value form.
func extractSearchParams(res *model.Resource) []fhir.SearchParam {
	params := []fhir.SearchParam{{Name: "_id", Value: res.ID}}

	var body struct {
		Identifier []struct {
			System string `json:"system"`
			Value  string `json:"value"`
		} `json:"identifier"`
	}
	if len(res.Raw) > 0 {
		if err := json.Unmarshal(res.Raw, &body); err != nil {
			return params
		}
	}
	for _, ident := range body.Identifier {
		if ident.Value == "" {
			continue
		}
		params = append(params, fhir.SearchParam{Name: "identifier", Value: ident.Value})
		if ident.System != "" {
			params = append(params, fhir.SearchParam{Name: "identifier", Value: ident.System + "|" + ident.Value})
		}
	}
	return params
}
