package fhir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

func entry(method, url string) model.Entry {
	return model.Entry{Request: &model.Request{Method: method, URL: url}}
}

func entryWithResource(method, url, resourceType string) model.Entry {
	e := entry(method, url)
	e.Resource = &model.Resource{ResourceType: resourceType, ID: "x"}
	return e
}

func TestClassifier_Eligibility(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		entry    model.Entry
		eligible bool
	}{
		{"create", entryWithResource("POST", "Patient", "Patient"), true},
		{"update", entryWithResource("PUT", "Patient/1", "Patient"), true},
		{"delete", entry("DELETE", "Patient/1"), true},
		{"read exempt", entry("GET", "Patient/1"), false},
		{"operation invocation exempt", entry("POST", "Patient/1/$everything"), false},
		{"lowercase verb", entryWithResource("put", "Patient/1", "Patient"), true},
		{"no request", model.Entry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eligible, err := c.ShouldValidate(tt.entry)
			require.NoError(t, err)
			assert.Equal(t, tt.eligible, eligible)
		})
	}
}

func TestClassifier_StructuralErrors(t *testing.T) {
	c := NewClassifier(nil)

	_, err := c.ShouldValidate(entry("POST", "Patient/_search"))
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	_, err = c.ShouldValidate(entry("DELETE", "Patient?identifier=123"))
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	_, err = c.ShouldValidate(entryWithResource("POST", "Bundle", model.ResourceTypeBundle))
	assert.ErrorIs(t, err, ErrUnsupportedResourceType)
}

func TestClassifier_ConformancePolicy(t *testing.T) {
	c := NewClassifier(NewPolicy([]string{"Patient"}, true))

	eligible, err := c.ShouldValidate(entryWithResource("POST", "Patient", "Patient"))
	require.NoError(t, err)
	assert.True(t, eligible)

	_, err = c.ShouldValidate(entryWithResource("POST", "Observation", "Observation"))
	require.ErrorIs(t, err, ErrUnsupportedResourceType)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Observation", verr.Detail)
}

func TestClassifier_Idempotent(t *testing.T) {
	c := NewClassifier(nil)
	e := entryWithResource("PUT", "Patient/1", "Patient")

	first, err := c.ShouldValidate(e)
	require.NoError(t, err)
	second, err := c.ShouldValidate(e)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
