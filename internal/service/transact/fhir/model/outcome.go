package model

const ResourceTypeOperationOutcome = "OperationOutcome"

// Issue severities.
const (
	SeverityError       = "error"
	SeverityInformation = "information"
)

// Issue codes from the FHIR issue-type value set, limited to what the
// validator can actually produce.
const (
	IssueCodeNotSupported    = "not-supported"
	IssueCodeInvalid         = "invalid"
	IssueCodeMultipleMatches = "multiple-matches"
	IssueCodeConflict        = "conflict"
	IssueCodeTransient       = "transient"
	IssueCodeProcessing      = "processing"
	IssueCodeInformational   = "informational"
)

type OperationOutcome struct {
	ResourceType string  `json:"resourceType"`
	Issue        []Issue `json:"issue"`
}

type Issue struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics,omitempty"`
}
