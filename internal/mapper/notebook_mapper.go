package mapper

import (
	"time"

	"econote-be/internal/entity"
	"econote-be/internal/model"

	"gorm.io/datatypes"
)

type NotebookMapper struct{}

func NewNotebookMapper() *NotebookMapper {
	return &NotebookMapper{}
}

func (m *NotebookMapper) ToEntity(n *model.Notebook) (*entity.Notebook, error) {
	if n == nil {
		return nil, nil
	}

	pageIds, err := DecodePageIds(n.PageIds)
	if err != nil {
		return nil, err
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Notebook{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		PageIds:   pageIds,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (m *NotebookMapper) ToModel(n *entity.Notebook) (*model.Notebook, error) {
	if n == nil {
		return nil, nil
	}

	pageIds, err := EncodePageIds(n.PageIds)
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Notebook{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		PageIds:   datatypes.JSON(pageIds),
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (m *NotebookMapper) ToEntities(notebooks []*model.Notebook) ([]*entity.Notebook, error) {
	entities := make([]*entity.Notebook, len(notebooks))
	for i, n := range notebooks {
		e, err := m.ToEntity(n)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
