package fhir

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	matches []SearchMatch
	err     error

	calls      int
	lastType   string
	lastParams []SearchParam
}

func (f *fakeGateway) Search(ctx context.Context, resourceType string, params []SearchParam) ([]SearchMatch, error) {
	f.calls++
	f.lastType = resourceType
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func TestResolver_DirectCreateUsesToken(t *testing.T) {
	gw := &fakeGateway{}
	r := NewResolver(gw)

	e := entryWithResource("POST", "Patient", "Patient")
	e.FullURL = "urn:uuid:7b1627b0-8b5d-4f2b-9c36-0d6f3f4d9e21"

	id, err := r.ResourceID(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, e.FullURL, id)
	assert.Zero(t, gw.calls, "direct references must not hit the gateway")
}

func TestResolver_DirectUpdateUsesURL(t *testing.T) {
	r := NewResolver(&fakeGateway{})

	id, err := r.ResourceID(context.Background(), entry("PUT", "Patient/1"))
	require.NoError(t, err)
	assert.Equal(t, "Patient/1", id)

	id, err = r.ResourceID(context.Background(), entry("DELETE", "Patient/1"))
	require.NoError(t, err)
	assert.Equal(t, "Patient/1", id)
}

func TestResolver_ConditionalCreate(t *testing.T) {
	gw := &fakeGateway{matches: []SearchMatch{{ResourceType: "Patient", ID: "42"}}}
	r := NewResolver(gw)

	e := entryWithResource("POST", "Patient", "Patient")
	e.Request.IfNoneExist = "identifier=123"

	id, err := r.ResourceID(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "Patient/42", id)
	assert.Equal(t, "Patient", gw.lastType)
	assert.Equal(t, []SearchParam{{Name: "identifier", Value: "123"}}, gw.lastParams)
}

func TestResolver_ConditionalUpdateSplitsURL(t *testing.T) {
	gw := &fakeGateway{matches: []SearchMatch{{ResourceType: "Patient", ID: "42"}}}
	r := NewResolver(gw)

	e := entryWithResource("PUT", "Patient?identifier=123&name=ann", "Patient")

	id, err := r.ResourceID(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "Patient/42", id)
	assert.Equal(t, "Patient", gw.lastType)
	assert.Equal(t, []SearchParam{
		{Name: "identifier", Value: "123"},
		{Name: "name", Value: "ann"},
	}, gw.lastParams)
}

func TestResolver_MultiValuedParamsExpand(t *testing.T) {
	gw := &fakeGateway{}
	r := NewResolver(gw)

	e := entryWithResource("PUT", "Observation?code=a,b&status=final", "Observation")

	_, err := r.ResourceID(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []SearchParam{
		{Name: "code", Value: "a"},
		{Name: "code", Value: "b"},
		{Name: "status", Value: "final"},
	}, gw.lastParams)
}

func TestResolver_UnescapesQueryValues(t *testing.T) {
	gw := &fakeGateway{}
	r := NewResolver(gw)

	e := entryWithResource("PUT", "Patient?name=van%20der%20Berg", "Patient")

	_, err := r.ResourceID(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []SearchParam{{Name: "name", Value: "van der Berg"}}, gw.lastParams)
}

func TestResolver_InvalidConditionalParameters(t *testing.T) {
	r := NewResolver(&fakeGateway{})

	// Conditional create without a resource type.
	e := entryWithResource("POST", "", "Patient")
	e.Request.IfNoneExist = "identifier=123"
	_, err := r.ResourceID(context.Background(), e)
	assert.ErrorIs(t, err, ErrInvalidConditionalParameters)

	// Conditional update with an empty query.
	_, err = r.ResourceID(context.Background(), entry("PUT", "Patient?"))
	assert.ErrorIs(t, err, ErrInvalidConditionalParameters)

	// Conditional update with no resource type.
	_, err = r.ResourceID(context.Background(), entry("PUT", "?identifier=123"))
	assert.ErrorIs(t, err, ErrInvalidConditionalParameters)
}

func TestResolver_AmbiguousMatch(t *testing.T) {
	gw := &fakeGateway{matches: []SearchMatch{
		{ResourceType: "Patient", ID: "1"},
		{ResourceType: "Patient", ID: "2"},
	}}
	r := NewResolver(gw)

	e := entryWithResource("POST", "Patient", "Patient")
	e.Request.IfNoneExist = "identifier=123"

	_, err := r.ResourceID(context.Background(), e)
	require.ErrorIs(t, err, ErrAmbiguousConditionalMatch)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "identifier=123", verr.Detail)
}

func TestResolver_ZeroMatchesReturnsEmptyIdentity(t *testing.T) {
	r := NewResolver(&fakeGateway{})

	e := entryWithResource("POST", "Patient", "Patient")
	e.Request.IfNoneExist = "identifier=nobody"

	id, err := r.ResourceID(context.Background(), e)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestResolver_GatewayErrorPropagates(t *testing.T) {
	backendDown := errors.New("backend down")
	r := NewResolver(&fakeGateway{err: backendDown})

	e := entryWithResource("PUT", "Patient?identifier=123", "Patient")

	_, err := r.ResourceID(context.Background(), e)
	assert.ErrorIs(t, err, backendDown)
}
