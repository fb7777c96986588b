package fhir

import (
	"net/http"
	"strings"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

const (
	// searchMarker flags a search invocation smuggled through a create.
	searchMarker = "_search"
	// operationMarker flags an action invocation ($everything, $validate...)
	// rather than a plain resource operation.
	operationMarker = "$"
)

// Classifier decides per entry whether it takes part in duplicate detection
// and rejects structurally illegal verb/URL combinations. Pure function of
// the entry.
type Classifier struct {
	conformance Conformance
}

func NewClassifier(conformance Conformance) *Classifier {
	return &Classifier{conformance: conformance}
}

// ShouldValidate reports whether the entry participates in the duplicate
// check. Entries without a request are inert and exempt.
func (c *Classifier) ShouldValidate(entry model.Entry) (bool, error) {
	req := entry.Request
	if req == nil {
		return false, nil
	}
	method := strings.ToUpper(req.Method)

	if method == http.MethodPost && strings.Contains(req.URL, searchMarker) {
		return false, unsupportedOperation(method, req.URL)
	}
	// Conditional delete is not supported by this server.
	if method == http.MethodDelete && strings.Contains(req.URL, "?") {
		return false, unsupportedOperation(method, req.URL)
	}

	if entry.Resource != nil {
		// Bundles may not nest.
		if entry.Resource.ResourceType == model.ResourceTypeBundle {
			return false, unsupportedResourceType(model.ResourceTypeBundle)
		}
		if c.conformance != nil && !c.conformance.SupportedResourceType(entry.Resource.ResourceType) {
			return false, unsupportedResourceType(entry.Resource.ResourceType)
		}
	}

	if method == http.MethodGet || strings.Contains(req.URL, operationMarker) {
		return false, nil
	}
	return true, nil
}
