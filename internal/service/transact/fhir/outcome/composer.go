// Package outcome assembles OperationOutcome resources from validation
// results for the transport layer to serialize.
package outcome

import (
	"errors"
	"fmt"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

type Composer struct {
}

func NewComposer() *Composer {
	return &Composer{}
}

// Succeeded builds the all-clear outcome for a validated bundle.
func (c *Composer) Succeeded(entries int) *model.OperationOutcome {
	return &model.OperationOutcome{
		ResourceType: model.ResourceTypeOperationOutcome,
		Issue: []model.Issue{
			{
				Severity:    model.SeverityInformation,
				Code:        model.IssueCodeInformational,
				Diagnostics: fmt.Sprintf("transaction bundle with %d entries passed validation", entries),
			},
		},
	}
}

// FromError maps a validation or resolution failure onto a single-issue
// outcome carrying the offending detail.
func (c *Composer) FromError(err error) *model.OperationOutcome {
	return &model.OperationOutcome{
		ResourceType: model.ResourceTypeOperationOutcome,
		Issue: []model.Issue{
			{
				Severity:    model.SeverityError,
				Code:        issueCode(err),
				Diagnostics: err.Error(),
			},
		},
	}
}

func issueCode(err error) string {
	switch {
	case errors.Is(err, fhir.ErrUnsupportedOperation),
		errors.Is(err, fhir.ErrUnsupportedResourceType):
		return model.IssueCodeNotSupported
	case errors.Is(err, fhir.ErrInvalidConditionalParameters):
		return model.IssueCodeInvalid
	case errors.Is(err, fhir.ErrAmbiguousConditionalMatch):
		return model.IssueCodeMultipleMatches
	case errors.Is(err, fhir.ErrBundleConflict):
		return model.IssueCodeConflict
	case errors.Is(err, fhir.ErrSearchUnavailable):
		return model.IssueCodeTransient
	default:
		return model.IssueCodeProcessing
	}
}
