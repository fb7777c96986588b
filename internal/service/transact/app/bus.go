package app

import (
	"context"

	"github.com/medgrid/fhirgate/internal/service/transact/app/commands"
	"github.com/medgrid/fhirgate/internal/service/transact/app/queries"
)

type CommandBus interface {
	ValidateTransaction(ctx context.Context, cmd commands.ValidateTransactionCommand) (commands.ValidateTransactionResult, error)
	CommitResource(ctx context.Context, cmd commands.CommitResourceCommand) (commands.CommitResourceResult, error)
}

type QueryBus interface {
	GetResourceVersion(ctx context.Context, q queries.GetResourceVersionQuery) (queries.GetResourceVersionResult, error)
}

type commandBus struct {
	validateTransaction commands.ValidateTransactionHandler
	commitResource      commands.CommitResourceHandler
}

type queryBus struct {
	getResourceVersion queries.GetResourceVersionQueryHandler
}

func NewCommandBus(
	validate commands.ValidateTransactionHandler,
	commit commands.CommitResourceHandler,
) CommandBus {
	return &commandBus{
		validateTransaction: validate,
		commitResource:      commit,
	}
}

func NewQueryBus(
	get queries.GetResourceVersionQueryHandler,
) QueryBus {
	return &queryBus{
		getResourceVersion: get,
	}
}

func (b *commandBus) ValidateTransaction(ctx context.Context, cmd commands.ValidateTransactionCommand) (commands.ValidateTransactionResult, error) {
	return b.validateTransaction.Handle(ctx, cmd)
}

func (b *commandBus) CommitResource(ctx context.Context, cmd commands.CommitResourceCommand) (commands.CommitResourceResult, error) {
	return b.commitResource.Handle(ctx, cmd)
}

func (b *queryBus) GetResourceVersion(ctx context.Context, q queries.GetResourceVersionQuery) (queries.GetResourceVersionResult, error) {
	return b.getResourceVersion.Handle(ctx, q)
}
