package export

import (
	"bytes"
	"image/png"
	"testing"

	"econote-be/pkg/canvas"
	"econote-be/pkg/ink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStrokes() []ink.Stroke {
	return []ink.Stroke{
		{ID: "a", Color: "#ff0000", Width: 3, Points: []ink.Point{{X: 10, Y: 10}, {X: 100, Y: 80}}},
		{ID: "b", Color: "#00f", Width: 2, Points: []ink.Point{{X: 40, Y: 40}}},
	}
}

func TestPNG_WithCaption(t *testing.T) {
	var buf bytes.Buffer
	err := PNG(&buf, sampleStrokes(), PNGOptions{
		Width:   200,
		Height:  150,
		Render:  canvas.DefaultRenderOptions(),
		Caption: "Page 1",
	})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestPDF_DrawingAndScannedPages(t *testing.T) {
	var scan bytes.Buffer
	require.NoError(t, PNG(&scan, nil, PNGOptions{Width: 40, Height: 60, Render: canvas.DefaultRenderOptions()}))

	var out bytes.Buffer
	err := PDF(&out, []Page{
		{Title: "Page 1", Strokes: sampleStrokes()},
		{Title: "Scan", Image: scan.Bytes()},
	}, PDFOptions{CanvasWidth: 1240, Title: "My Notebook"})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("/Type /Page\n")))
}

func TestPDF_RejectsUnknownImage(t *testing.T) {
	var out bytes.Buffer
	err := PDF(&out, []Page{{Image: []byte("not an image")}}, PDFOptions{})
	assert.Error(t, err)
}

func TestHexToRGB(t *testing.T) {
	r, g, b := hexToRGB("#ff8000")
	assert.Equal(t, []int{255, 128, 0}, []int{r, g, b})

	r, g, b = hexToRGB("#0f0")
	assert.Equal(t, []int{0, 255, 0}, []int{r, g, b})

	r, g, b = hexToRGB("bogus")
	assert.Equal(t, []int{0, 0, 0}, []int{r, g, b})
}
