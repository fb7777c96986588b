package fhir

// Conformance is the type-level policy consulted during classification and
// commit: which resource types the server accepts and whether superseded
// versions are kept as history.
type Conformance interface {
	SupportedResourceType(resourceType string) bool
	KeepHistory(resourceType string) bool
}

// Policy is a static Conformance fed from configuration.
type Policy struct {
	supported   map[string]struct{}
	keepHistory bool
}

// NewPolicy builds a Policy. An empty supportedTypes list means every type
// except Bundle is accepted.
func NewPolicy(supportedTypes []string, keepHistory bool) *Policy {
	p := &Policy{keepHistory: keepHistory}
	if len(supportedTypes) > 0 {
		p.supported = make(map[string]struct{}, len(supportedTypes))
		for _, t := range supportedTypes {
			p.supported[t] = struct{}{}
		}
	}
	return p
}

func (p *Policy) SupportedResourceType(resourceType string) bool {
	if p.supported == nil {
		return true
	}
	_, ok := p.supported[resourceType]
	return ok
}

func (p *Policy) KeepHistory(string) bool {
	return p.keepHistory
}
