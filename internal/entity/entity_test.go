package entity

import (
	"testing"

	"econote-be/pkg/ink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNotebook_IndexOfAndWithoutPage(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	nb := &Notebook{PageIds: []uuid.UUID{a, b, c}}

	assert.Equal(t, 1, nb.IndexOf(b))
	assert.Equal(t, -1, nb.IndexOf(uuid.New()))
	assert.Equal(t, []uuid.UUID{a, c}, nb.WithoutPage(b))
	assert.Len(t, nb.PageIds, 3)
}

func TestClonesDoNotAlias(t *testing.T) {
	nb := &Notebook{PageIds: []uuid.UUID{uuid.New()}}
	nc := nb.Clone()
	nc.PageIds[0] = uuid.Nil
	assert.NotEqual(t, uuid.Nil, nb.PageIds[0])

	p := NewPage(uuid.New(), "Page 1")
	p.Strokes = []ink.Stroke{{ID: "s", Points: []ink.Point{{X: 1}}}}
	pc := p.Clone()
	pc.Strokes[0].Points[0].X = 5
	assert.Equal(t, 1.0, p.Strokes[0].Points[0].X)
}
