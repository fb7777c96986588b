package model

import "encoding/json"

// Resource is an embedded resource payload. The full JSON body is preserved
// verbatim in Raw; ResourceType, ID and Meta are lifted out of the envelope
// for code that only needs the identity.
type Resource struct {
	ResourceType string
	ID           string
	Meta         *Meta
	Raw          json.RawMessage
}

type Meta struct {
	VersionID   string `json:"versionId,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

type resourceEnvelope struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id,omitempty"`
	Meta         *Meta  `json:"meta,omitempty"`
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var env resourceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	r.ResourceType = env.ResourceType
	r.ID = env.ID
	r.Meta = env.Meta
	r.Raw = append(r.Raw[:0:0], data...)
	return nil
}

func (r Resource) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(resourceEnvelope{
		ResourceType: r.ResourceType,
		ID:           r.ID,
		Meta:         r.Meta,
	})
}

// Key returns the "Type/id" form used for duplicate comparison and store
// lookups. Empty when either part is missing.
func (r *Resource) Key() string {
	if r == nil || r.ResourceType == "" || r.ID == "" {
		return ""
	}
	return r.ResourceType + "/" + r.ID
}
