// Package fhir implements transaction bundle validation: structural entry
// checks, conditional reference resolution and cross-entry duplicate
// detection.
package fhir

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperation is returned for verb/URL combinations the
	// server does not accept inside a transaction (search via POST,
	// conditional delete).
	ErrUnsupportedOperation = errors.New("unsupported bundle operation")

	// ErrUnsupportedResourceType is returned when an entry embeds a
	// resource type that cannot appear in a transaction.
	ErrUnsupportedResourceType = errors.New("unsupported resource type")

	// ErrInvalidConditionalParameters is returned when a conditional entry
	// is missing its resource type or its search query.
	ErrInvalidConditionalParameters = errors.New("invalid conditional reference parameters")

	// ErrAmbiguousConditionalMatch is returned when a conditional query
	// matches more than one resource.
	ErrAmbiguousConditionalMatch = errors.New("conditional query matches multiple resources")

	// ErrBundleConflict is returned when two entries resolve to the same
	// resource identity.
	ErrBundleConflict = errors.New("bundle contains multiple entries for the same resource")

	// ErrSearchUnavailable is returned by SearchGateway implementations on
	// transport or backend failure. Never produced by the validator itself.
	ErrSearchUnavailable = errors.New("search backend unavailable")
)

// ValidationError wraps one of the sentinel kinds above with the offending
// detail (URL, query string or type name) for the caller to surface.
type ValidationError struct {
	Kind   error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func unsupportedOperation(method, url string) error {
	return &ValidationError{Kind: ErrUnsupportedOperation, Detail: method + " " + url}
}

func unsupportedResourceType(resourceType string) error {
	return &ValidationError{Kind: ErrUnsupportedResourceType, Detail: resourceType}
}

func invalidConditionalParameters(requestURL string) error {
	return &ValidationError{Kind: ErrInvalidConditionalParameters, Detail: requestURL}
}

func ambiguousConditionalMatch(query string) error {
	return &ValidationError{Kind: ErrAmbiguousConditionalMatch, Detail: query}
}

func bundleConflict(requestURL string) error {
	return &ValidationError{Kind: ErrBundleConflict, Detail: requestURL}
}
