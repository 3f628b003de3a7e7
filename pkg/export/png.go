// Package export encodes pages as PNG images and notebooks as PDF documents.
package export

import (
	"fmt"
	"io"

	"econote-be/pkg/canvas"
	"econote-be/pkg/ink"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	captionColor = "#6b7280"
	captionSize  = 14
)

type PNGOptions struct {
	Width   int
	Height  int
	Render  canvas.RenderOptions
	Caption string
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Width: 1240, Height: 1754, Render: canvas.DefaultRenderOptions()}
}

// Rasterize paints strokes onto a fresh raster surface at scale 1.
func Rasterize(strokes []ink.Stroke, opts PNGOptions) (*canvas.RasterSurface, error) {
	surface := canvas.NewRasterSurface(opts.Width, opts.Height)
	canvas.Render(surface, strokes, 1, opts.Render)

	if opts.Caption != "" {
		if err := drawCaption(surface, opts.Caption); err != nil {
			return nil, err
		}
	}
	return surface, nil
}

// PNG writes the full render of a page: background, grid, strokes and an optional caption.
func PNG(w io.Writer, strokes []ink.Stroke, opts PNGOptions) error {
	surface, err := Rasterize(strokes, opts)
	if err != nil {
		return err
	}
	return surface.EncodePNG(w)
}

func drawCaption(surface *canvas.RasterSurface, caption string) error {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse caption font: %w", err)
	}

	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    captionSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	dc := surface.Context()
	dc.Identity()
	dc.SetFontFace(face)
	dc.SetHexColor(captionColor)
	dc.DrawString(caption, 12, 8+captionSize)
	return nil
}
