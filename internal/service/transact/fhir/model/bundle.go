package model

const (
	ResourceTypeBundle = "Bundle"

	BundleTypeTransaction = "transaction"
	BundleTypeBatch       = "batch"
)

// Bundle is the JSON form of a FHIR bundle as submitted to the transaction
// endpoint.
type Bundle struct {
	ResourceType string  `json:"resourceType"`
	ID           string  `json:"id,omitempty"`
	Type         string  `json:"type,omitempty"`
	Entry        []Entry `json:"entry,omitempty"`
}

// Entry is one requested operation inside a bundle. FullURL doubles as the
// same-bundle reference token for resources the bundle is about to create:
// later entries may point at it before the resource exists in the store.
type Entry struct {
	FullURL  string    `json:"fullUrl,omitempty"`
	Resource *Resource `json:"resource,omitempty"`
	Request  *Request  `json:"request,omitempty"`
}

// Request describes the verb and target of a bundle entry. IfNoneExist
// carries the conditional-create search query.
type Request struct {
	Method      string `json:"method"`
	URL         string `json:"url"`
	IfNoneExist string `json:"ifNoneExist,omitempty"`
}
