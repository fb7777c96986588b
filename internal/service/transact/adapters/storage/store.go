package storage

import (
	"context"
	"encoding/json"
	"time"
)

// ResourceKey identifies a stored resource.
type ResourceKey struct {
	ResourceType string
	ID           string
}

func (k ResourceKey) String() string {
	return k.ResourceType + "/" + k.ID
}

// ResourceWrapper is the storage-ready form of a resource payload.
type ResourceWrapper struct {
	ResourceType string
	ID           string
	Version      string
	LastUpdated  time.Time
	Payload      json.RawMessage
}

func (w *ResourceWrapper) Key() ResourceKey {
	return ResourceKey{ResourceType: w.ResourceType, ID: w.ID}
}

// Store is the persistence contract consumed by the read-side helpers. Get
// returns ErrNotFound (wrapped) when the resource is absent. Upsert rejects a
// stale expectedVersion with ErrVersionConflict; expectedVersion "" skips the
// check. With keepHistory the superseded version is retained as a history
// row, otherwise it is replaced in place.
type Store interface {
	Get(ctx context.Context, key ResourceKey) (*ResourceWrapper, error)
	Upsert(ctx context.Context, wrapper *ResourceWrapper, expectedVersion string, allowCreate, keepHistory bool) (*ResourceWrapper, error)
}
