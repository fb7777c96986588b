package fhir

import "context"

// SearchParam is one (name, value) pair of a conditional query. Multi-valued
// parameters are expanded into one SearchParam per value before the gateway
// is called.
type SearchParam struct {
	Name  string
	Value string
}

// SearchMatch is one resource matched by a conditional query.
type SearchMatch struct {
	ResourceType string
	ID           string
	Version      string
}

// SearchGateway resolves a parameterized query against the search index.
// Implementations return ErrSearchUnavailable (wrapped) on backend failure;
// the validator propagates it unchanged.
type SearchGateway interface {
	Search(ctx context.Context, resourceType string, params []SearchParam) ([]SearchMatch, error)
}
