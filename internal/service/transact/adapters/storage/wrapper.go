package storage

import (
	"encoding/json"
	"time"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

// WrapperFactory converts resource payloads into storage-ready wrappers.
// Pure apart from clock reads; default metadata is stamped into the payload
// so the stored body and the wrapper never disagree.
type WrapperFactory struct {
	now func() time.Time
}

func NewWrapperFactory() *WrapperFactory {
	return &WrapperFactory{now: time.Now}
}

func (f *WrapperFactory) Create(res *model.Resource) (*ResourceWrapper, error) {
	if res == nil || res.ResourceType == "" || res.ID == "" {
		return nil, storeError("Create", "", "resource type and id are required", ErrInvalidData)
	}

	version := "1"
	if res.Meta != nil && res.Meta.VersionID != "" {
		version = res.Meta.VersionID
	}
	lastUpdated := f.now().UTC().Truncate(time.Millisecond)

	payload, err := stampMeta(res, version, lastUpdated)
	if err != nil {
		return nil, err
	}

	return &ResourceWrapper{
		ResourceType: res.ResourceType,
		ID:           res.ID,
		Version:      version,
		LastUpdated:  lastUpdated,
		Payload:      payload,
	}, nil
}

// stampMeta rewrites meta.versionId and meta.lastUpdated inside the raw
// payload, preserving every other field as submitted.
func stampMeta(res *model.Resource, version string, lastUpdated time.Time) (json.RawMessage, error) {
	body := map[string]any{}
	if len(res.Raw) > 0 {
		if err := json.Unmarshal(res.Raw, &body); err != nil {
			return nil, storeError("Create", res.Key(), "payload is not a JSON object", ErrInvalidData)
		}
	}
	body["resourceType"] = res.ResourceType
	body["id"] = res.ID

	meta, _ := body["meta"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["versionId"] = version
	meta["lastUpdated"] = lastUpdated.Format(time.RFC3339Nano)
	body["meta"] = meta

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, storeError("Create", res.Key(), "payload serialization failed", ErrInvalidData)
	}
	return payload, nil
}
