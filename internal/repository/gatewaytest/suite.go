// Package gatewaytest holds behavior checks shared by every PersistenceGateway driver.
package gatewaytest

import (
	"context"
	"testing"
	"time"

	"econote-be/internal/entity"
	"econote-be/internal/repository/contract"
	"econote-be/pkg/ink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage(userId uuid.UUID) *entity.Page {
	page := entity.NewPage(userId, "Page 1")
	page.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	page.Strokes = []ink.Stroke{
		{ID: "stroke-1", Color: "#ff0000", Width: 2, Points: []ink.Point{
			{X: 1.5, Y: 2.25, Pressure: 0.5, Timestamp: 1700000000001},
			{X: 3.125, Y: 4, Pressure: 1, Timestamp: 1700000000017},
		}},
		{ID: "stroke-2", Color: "#0000ff", Width: 6, Points: []ink.Point{
			{X: 100, Y: 200, Pressure: 0.25, Timestamp: 1700000000100},
		}},
	}
	return page
}

// Run exercises the gateway contract against a fresh driver instance.
func Run(t *testing.T, gw contract.PersistenceGateway) {
	ctx := context.Background()
	userId := uuid.New()

	t.Run("missing records are nil", func(t *testing.T) {
		page, err := gw.GetPage(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, page)

		nb, err := gw.GetNotebook(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, nb)
	})

	t.Run("page round trip is lossless", func(t *testing.T) {
		page := samplePage(userId)
		require.NoError(t, gw.SavePage(ctx, page))

		got, err := gw.GetPage(ctx, page.Id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, page.Strokes, got.Strokes)
		assert.Equal(t, page.Title, got.Title)
		assert.Equal(t, userId, got.UserId)
		assert.False(t, got.IsScanned)
	})

	t.Run("save overwrites", func(t *testing.T) {
		page := samplePage(userId)
		require.NoError(t, gw.SavePage(ctx, page))

		page.Title = "Renamed"
		page.Strokes = page.Strokes[:1]
		text := "hello"
		page.OcrText = &text
		require.NoError(t, gw.SavePage(ctx, page))

		got, err := gw.GetPage(ctx, page.Id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Len(t, got.Strokes, 1)
		require.NotNil(t, got.OcrText)
		assert.Equal(t, "hello", *got.OcrText)
	})

	t.Run("scanned page", func(t *testing.T) {
		page := entity.NewPage(userId, "Scan")
		img := "aGVsbG8="
		page.ImageData = &img
		page.IsScanned = true
		require.NoError(t, gw.SavePage(ctx, page))

		got, err := gw.GetPage(ctx, page.Id)
		require.NoError(t, err)
		assert.True(t, got.IsScanned)
		require.NotNil(t, got.ImageData)
		assert.Equal(t, img, *got.ImageData)
		assert.Empty(t, got.Strokes)
	})

	t.Run("notebook page order and cascade delete", func(t *testing.T) {
		p1, p2 := samplePage(userId), samplePage(userId)
		require.NoError(t, gw.SavePage(ctx, p1))
		require.NoError(t, gw.SavePage(ctx, p2))

		nb := &entity.Notebook{Id: uuid.New(), UserId: userId, Title: "NB", PageIds: []uuid.UUID{p2.Id, p1.Id}}
		require.NoError(t, gw.SaveNotebook(ctx, nb))

		got, err := gw.GetNotebook(ctx, nb.Id)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{p2.Id, p1.Id}, got.PageIds)

		list, err := gw.ListNotebooks(ctx, userId)
		require.NoError(t, err)
		found := false
		for _, n := range list {
			found = found || n.Id == nb.Id
		}
		assert.True(t, found)

		other, err := gw.ListNotebooks(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, other)

		require.NoError(t, gw.DeleteNotebook(ctx, nb.Id))
		gone, err := gw.GetNotebook(ctx, nb.Id)
		require.NoError(t, err)
		assert.Nil(t, gone)
		page, err := gw.GetPage(ctx, p1.Id)
		require.NoError(t, err)
		assert.Nil(t, page)
	})

	t.Run("delete page", func(t *testing.T) {
		page := samplePage(userId)
		require.NoError(t, gw.SavePage(ctx, page))
		require.NoError(t, gw.DeletePage(ctx, page.Id))

		got, err := gw.GetPage(ctx, page.Id)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
