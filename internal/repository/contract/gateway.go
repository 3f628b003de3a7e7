package contract

import (
	"context"

	"econote-be/internal/entity"

	"github.com/google/uuid"
)

// PersistenceGateway is durable key-based storage for notebooks and pages.
//
// Get methods return (nil, nil) when the record does not exist. Every other failure is returned.
// Writes are last-write-wins; there is no locking or conflict detection.
type PersistenceGateway interface {
	GetPage(ctx context.Context, id uuid.UUID) (*entity.Page, error)
	SavePage(ctx context.Context, page *entity.Page) error
	DeletePage(ctx context.Context, id uuid.UUID) error

	GetNotebook(ctx context.Context, id uuid.UUID) (*entity.Notebook, error)
	SaveNotebook(ctx context.Context, notebook *entity.Notebook) error
	DeleteNotebook(ctx context.Context, id uuid.UUID) error

	// ListNotebooks returns a user's notebooks, oldest first.
	ListNotebooks(ctx context.Context, userId uuid.UUID) ([]*entity.Notebook, error)
}
