package memory

import (
	"context"
	"testing"

	"econote-be/internal/entity"
	"econote-be/internal/repository/gatewaytest"
	"econote-be/pkg/ink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_Contract(t *testing.T) {
	gatewaytest.Run(t, NewGateway())
}

func TestGateway_StoresCopies(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway()
	page := entity.NewPage(uuid.New(), "P")
	page.Strokes = []ink.Stroke{{ID: "a", Points: []ink.Point{{X: 1}}}}
	require.NoError(t, gw.SavePage(ctx, page))

	page.Strokes[0].Points[0].X = 42

	got, err := gw.GetPage(ctx, page.Id)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Strokes[0].Points[0].X)
}
