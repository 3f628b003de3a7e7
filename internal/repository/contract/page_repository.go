package contract

import (
	"context"

	"econote-be/internal/entity"
	"econote-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PageRepository interface {
	Save(ctx context.Context, page *entity.Page) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Page, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Page, error)
}
