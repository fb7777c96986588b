package outcome

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

func TestComposer_Succeeded(t *testing.T) {
	oo := NewComposer().Succeeded(3)
	require.Len(t, oo.Issue, 1)
	assert.Equal(t, model.ResourceTypeOperationOutcome, oo.ResourceType)
	assert.Equal(t, model.SeverityInformation, oo.Issue[0].Severity)
	assert.Contains(t, oo.Issue[0].Diagnostics, "3 entries")
}

func TestComposer_FromError(t *testing.T) {
	c := NewComposer()

	tests := []struct {
		err  error
		code string
	}{
		{fhir.ErrUnsupportedOperation, model.IssueCodeNotSupported},
		{fhir.ErrUnsupportedResourceType, model.IssueCodeNotSupported},
		{fhir.ErrInvalidConditionalParameters, model.IssueCodeInvalid},
		{fhir.ErrAmbiguousConditionalMatch, model.IssueCodeMultipleMatches},
		{fhir.ErrBundleConflict, model.IssueCodeConflict},
		{fhir.ErrSearchUnavailable, model.IssueCodeTransient},
		{errors.New("boom"), model.IssueCodeProcessing},
	}
	for _, tt := range tests {
		oo := c.FromError(tt.err)
		require.Len(t, oo.Issue, 1)
		assert.Equal(t, tt.code, oo.Issue[0].Code, tt.err.Error())
		assert.Equal(t, model.SeverityError, oo.Issue[0].Severity)
	}
}

func TestComposer_FromWrappedError(t *testing.T) {
	wrapped := &fhir.ValidationError{Kind: fhir.ErrBundleConflict, Detail: "Patient/1"}
	oo := NewComposer().FromError(wrapped)
	require.Len(t, oo.Issue, 1)
	assert.Equal(t, model.IssueCodeConflict, oo.Issue[0].Code)
	assert.Contains(t, oo.Issue[0].Diagnostics, "Patient/1")
}
