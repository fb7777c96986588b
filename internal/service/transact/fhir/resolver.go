package fhir

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
)

// Resolver collapses one eligible entry into the resource identity it
// targets. Direct references resolve locally; conditional references go
// through the search gateway.
type Resolver struct {
	gateway SearchGateway
}

func NewResolver(gateway SearchGateway) *Resolver {
	return &Resolver{gateway: gateway}
}

// ResourceID returns the resolved identity for the entry, or "" when the
// identity cannot be determined yet (a conditional query with no match): a
// genuine conditional create only materializes at execution time, so such
// entries are exempt from the duplicate check.
func (r *Resolver) ResourceID(ctx context.Context, entry model.Entry) (string, error) {
	req := entry.Request
	method := strings.ToUpper(req.Method)

	if req.IfNoneExist == "" && !strings.Contains(req.URL, "?") {
		if method == http.MethodPost {
			// New resource: identity is the same-bundle reference token.
			return entry.FullURL, nil
		}
		return req.URL, nil
	}

	var resourceType, query string
	if method == http.MethodPost {
		resourceType = req.URL
		query = req.IfNoneExist
	} else {
		resourceType, query, _ = strings.Cut(req.URL, "?")
	}
	if resourceType == "" || query == "" {
		return "", invalidConditionalParameters(RequestURL(req))
	}

	params, err := parseConditionalQuery(query)
	if err != nil {
		return "", err
	}
	matches, err := r.gateway.Search(ctx, resourceType, params)
	if err != nil {
		return "", err
	}

	switch {
	case len(matches) > 1:
		return "", ambiguousConditionalMatch(query)
	case len(matches) == 1:
		declared := resourceType
		if entry.Resource != nil && entry.Resource.ResourceType != "" {
			declared = entry.Resource.ResourceType
		}
		return declared + "/" + matches[0].ID, nil
	default:
		return "", nil
	}
}

// parseConditionalQuery splits a query string into ordered (name, value)
// pairs, one pair per value for multi-valued parameters. url.Values is not
// used because the gateway contract preserves parameter order.
func parseConditionalQuery(query string) ([]SearchParam, error) {
	raw := strings.Split(query, "&")
	params := make([]SearchParam, 0, len(raw))
	for _, pair := range raw {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(name)
		if err != nil {
			return nil, invalidConditionalParameters(query)
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return nil, invalidConditionalParameters(query)
		}
		for _, v := range strings.Split(value, ",") {
			params = append(params, SearchParam{Name: name, Value: v})
		}
	}
	return params, nil
}

// RequestURL reconstructs the URL a conflict or parameter error is reported
// against: the target URL plus the conditional query when one applied.
func RequestURL(req *model.Request) string {
	if req.IfNoneExist != "" {
		return req.URL + "?" + req.IfNoneExist
	}
	return req.URL
}
