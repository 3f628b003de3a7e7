// Package gateway adapts the gorm unit of work to the PersistenceGateway contract.
package gateway

import (
	"context"
	"fmt"

	"econote-be/internal/entity"
	"econote-be/internal/repository/contract"
	"econote-be/internal/repository/specification"
	"econote-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type RepositoryGateway struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewRepositoryGateway(uowFactory unitofwork.RepositoryFactory) contract.PersistenceGateway {
	return &RepositoryGateway{uowFactory: uowFactory}
}

func (g *RepositoryGateway) GetPage(ctx context.Context, id uuid.UUID) (*entity.Page, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	page, err := uow.PageRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", id, err)
	}
	return page, nil
}

func (g *RepositoryGateway) SavePage(ctx context.Context, page *entity.Page) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PageRepository().Save(ctx, page); err != nil {
		return fmt.Errorf("save page %s: %w", page.Id, err)
	}
	return nil
}

func (g *RepositoryGateway) DeletePage(ctx context.Context, id uuid.UUID) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PageRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	return nil
}

func (g *RepositoryGateway) GetNotebook(ctx context.Context, id uuid.UUID) (*entity.Notebook, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("get notebook %s: %w", id, err)
	}
	return notebook, nil
}

func (g *RepositoryGateway) SaveNotebook(ctx context.Context, notebook *entity.Notebook) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotebookRepository().Save(ctx, notebook); err != nil {
		return fmt.Errorf("save notebook %s: %w", notebook.Id, err)
	}
	return nil
}

// DeleteNotebook removes the notebook and the pages it references in one transaction.
func (g *RepositoryGateway) DeleteNotebook(ctx context.Context, id uuid.UUID) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return fmt.Errorf("delete notebook %s: %w", id, err)
	}
	if notebook == nil {
		return nil
	}
	if err := uow.PageRepository().DeleteMany(ctx, notebook.PageIds); err != nil {
		return fmt.Errorf("delete pages of notebook %s: %w", id, err)
	}
	if err := uow.NotebookRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notebook %s: %w", id, err)
	}
	return uow.Commit()
}

func (g *RepositoryGateway) ListNotebooks(ctx context.Context, userId uuid.UUID) ([]*entity.Notebook, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	notebooks, err := uow.NotebookRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OldestFirst(),
	)
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	return notebooks, nil
}
