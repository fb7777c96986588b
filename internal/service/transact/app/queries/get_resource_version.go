package queries

import (
	"context"
	"errors"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/medgrid/fhirgate/internal/service/transact/adapters/storage"
)

type GetResourceVersionQuery struct {
	ResourceType string
	ID           string
}

type GetResourceVersionResult struct {
	Found       bool
	Version     string
	LastUpdated time.Time
}

type GetResourceVersionQueryHandler interface {
	Handle(ctx context.Context, q GetResourceVersionQuery) (GetResourceVersionResult, error)
}

func NewGetResourceVersionQueryHandler(store storage.Store) GetResourceVersionQueryHandler {
	return &getResourceVersionHandler{store: store}
}

type getResourceVersionHandler struct {
	store storage.Store
}

// Handle is the latest-version lookup: a pure pass-through to the store, an
// absent resource is a result, not an error.
func (h *getResourceVersionHandler) Handle(ctx context.Context, q GetResourceVersionQuery) (GetResourceVersionResult, error) {
	if q.ResourceType == "" || q.ID == "" {
		return GetResourceVersionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resource type and id are required")
	}

	wrapper, err := h.store.Get(ctx, storage.ResourceKey{ResourceType: q.ResourceType, ID: q.ID})
	if errors.Is(err, storage.ErrNotFound) {
		return GetResourceVersionResult{}, nil
	}
	if err != nil {
		return GetResourceVersionResult{}, err
	}
	return GetResourceVersionResult{
		Found:       true,
		Version:     wrapper.Version,
		LastUpdated: wrapper.LastUpdated,
	}, nil
}
