package commands

import (
	"context"
	"net/http"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/model"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/outcome"
)

type ValidateTransactionCommand struct {
	Bundle *model.Bundle
}

type ValidateTransactionResult struct {
	Outcome *model.OperationOutcome
}

type ValidateTransactionHandler interface {
	Handle(ctx context.Context, cmd ValidateTransactionCommand) (ValidateTransactionResult, error)
}

func NewValidateTransactionHandler(validator *fhir.BundleValidator, composer *outcome.Composer) ValidateTransactionHandler {
	return &validateTransactionHandler{
		validator: validator,
		composer:  composer,
	}
}

type validateTransactionHandler struct {
	validator *fhir.BundleValidator
	composer  *outcome.Composer
}

func (h *validateTransactionHandler) Handle(ctx context.Context, cmd ValidateTransactionCommand) (ValidateTransactionResult, error) {
	b := cmd.Bundle
	if b == nil {
		return ValidateTransactionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("transaction bundle is required")
	}
	if b.ResourceType != model.ResourceTypeBundle {
		return ValidateTransactionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resourceType must be Bundle")
	}
	if b.Type != model.BundleTypeTransaction && b.Type != model.BundleTypeBatch {
		return ValidateTransactionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle type must be transaction or batch")
	}

	assignPlaceholderTokens(b)

	if err := h.validator.ValidateBundle(ctx, b); err != nil {
		return ValidateTransactionResult{}, err
	}
	return ValidateTransactionResult{Outcome: h.composer.Succeeded(len(b.Entry))}, nil
}

// assignPlaceholderTokens gives every create entry without a fullUrl a
// same-bundle reference token. Tokens must exist before resolution begins:
// later entries may reference a resource the bundle itself is about to
// create.
func assignPlaceholderTokens(b *model.Bundle) {
	for i := range b.Entry {
		entry := &b.Entry[i]
		if entry.FullURL != "" || entry.Request == nil {
			continue
		}
		if strings.ToUpper(entry.Request.Method) == http.MethodPost {
			entry.FullURL = "urn:uuid:" + uuid.NewString()
		}
	}
}
