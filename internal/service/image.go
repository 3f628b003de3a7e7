package service

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"econote-be/internal/entity"
	"econote-be/pkg/export"
)

// decodeImageData accepts raw base64 or a data URL and returns the image bytes.
// Only PNG and JPEG are accepted.
func decodeImageData(data string) ([]byte, error) {
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i > 0 {
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg":
		return raw, nil
	}
	return nil, ErrInvalidImage
}

func encodeImageData(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// pageImage returns the PNG of a page: the scanned image re-encoded, or its strokes rendered.
func pageImage(page *entity.Page, opts export.PNGOptions) ([]byte, error) {
	var buf bytes.Buffer
	if page.IsScanned && page.ImageData != nil {
		raw, err := decodeImageData(*page.ImageData)
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, ErrInvalidImage
		}
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if err := export.PNG(&buf, page.Strokes, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
