package unitofwork

import (
	"context"

	"econote-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NotebookRepository() contract.NotebookRepository
	PageRepository() contract.PageRepository
}
