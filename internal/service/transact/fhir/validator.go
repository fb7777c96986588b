package fhir

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

// BundleValidator walks a bundle once, in entry order, and rejects it when
// two entries resolve to the same resource. The seen-set lives for one
// ValidateBundle call only; concurrent validations never share state.
type BundleValidator struct {
	classifier *Classifier
	resolver   *Resolver
}

func NewBundleValidator(gateway SearchGateway, conformance Conformance) *BundleValidator {
	return &BundleValidator{
		classifier: NewClassifier(conformance),
		resolver:   NewResolver(gateway),
	}
}

// ValidateBundle fails fast: the first classification error, resolution
// error or duplicate aborts the pass. Identity comparison is
// case-insensitive so case-variant identifiers cannot slip past the check.
func (v *BundleValidator) ValidateBundle(ctx context.Context, bundle *model.Bundle) error {
	seen := make(map[string]struct{}, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		eligible, err := v.classifier.ShouldValidate(entry)
		if err != nil {
			return err
		}
		if !eligible {
			continue
		}

		id, err := v.resolver.ResourceID(ctx, entry)
		if err != nil {
			return err
		}
		if id == "" {
			continue
		}

		key := strings.ToLower(id)
		if _, dup := seen[key]; dup {
			requestURL := RequestURL(entry.Request)
			log.Debug().Str("url", requestURL).Msg("duplicate resource in bundle")
			return bundleConflict(requestURL)
		}
		seen[key] = struct{}{}
	}
	return nil
}
