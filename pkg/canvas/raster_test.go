package canvas

import (
	"bytes"
	"image/png"
	"testing"

	"econote-be/pkg/ink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterSurface_RendersStrokePixels(t *testing.T) {
	surface := NewRasterSurface(100, 100)
	strokes := []ink.Stroke{{
		ID:     "a",
		Color:  "#ff0000",
		Width:  6,
		Points: []ink.Point{{X: 10, Y: 50}, {X: 90, Y: 50}},
	}}

	Render(surface, strokes, 1, RenderOptions{Background: "#ffffff", GridSpacing: 0})

	r, g, b, _ := surface.Image().At(50, 50).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)

	r, g, b, _ = surface.Image().At(50, 10).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestRasterSurface_ScaleAppliesAtRender(t *testing.T) {
	surface := NewRasterSurface(200, 200)
	strokes := []ink.Stroke{{
		ID:     "a",
		Color:  "#000000",
		Width:  4,
		Points: []ink.Point{{X: 10, Y: 50}, {X: 90, Y: 50}},
	}}

	Render(surface, strokes, 2, RenderOptions{Background: "#ffffff"})

	r, _, _, _ := surface.Image().At(150, 100).RGBA()
	assert.Equal(t, uint32(0), r, "stroke is drawn at twice its stored coordinates")
}

func TestRasterSurface_EncodePNG(t *testing.T) {
	surface := NewRasterSurface(20, 10)
	Render(surface, nil, 1, DefaultRenderOptions())

	var buf bytes.Buffer
	require.NoError(t, surface.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}
