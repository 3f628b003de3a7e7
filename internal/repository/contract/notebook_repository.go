package contract

import (
	"context"

	"econote-be/internal/entity"
	"econote-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NotebookRepository interface {
	// Save inserts or overwrites the notebook by primary key.
	Save(ctx context.Context, notebook *entity.Notebook) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notebook, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notebook, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
