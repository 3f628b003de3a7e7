package mapper

import (
	"time"

	"econote-be/internal/entity"
	"econote-be/internal/model"

	"gorm.io/datatypes"
)

type PageMapper struct{}

func NewPageMapper() *PageMapper {
	return &PageMapper{}
}

func (m *PageMapper) ToEntity(p *model.Page) (*entity.Page, error) {
	if p == nil {
		return nil, nil
	}

	strokes, err := DecodeStrokes(p.Strokes)
	if err != nil {
		return nil, err
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Page{
		Id:          p.Id,
		UserId:      p.UserId,
		Title:       p.Title,
		Strokes:     strokes,
		ImageData:   p.ImageData,
		IsScanned:   p.IsScanned,
		OcrText:     p.OcrText,
		OcrLanguage: p.OcrLanguage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (m *PageMapper) ToModel(p *entity.Page) (*model.Page, error) {
	if p == nil {
		return nil, nil
	}

	strokes, err := EncodeStrokes(p.Strokes)
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Page{
		Id:          p.Id,
		UserId:      p.UserId,
		Title:       p.Title,
		Strokes:     datatypes.JSON(strokes),
		ImageData:   p.ImageData,
		IsScanned:   p.IsScanned,
		OcrText:     p.OcrText,
		OcrLanguage: p.OcrLanguage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (m *PageMapper) ToEntities(pages []*model.Page) ([]*entity.Page, error) {
	entities := make([]*entity.Page, len(pages))
	for i, p := range pages {
		e, err := m.ToEntity(p)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
