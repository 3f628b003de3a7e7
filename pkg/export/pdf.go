package export

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"econote-be/pkg/ink"

	"github.com/jung-kurt/gofpdf"
)

const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
	marginMM   = 10.0
)

// Page is one page of a PDF export. Scanned pages set Image and leave Strokes empty.
type Page struct {
	Title   string
	Strokes []ink.Stroke
	Image   []byte
}

type PDFOptions struct {
	// CanvasWidth is the surface width in px that maps onto the A4 page width.
	CanvasWidth float64
	Title       string
}

// PDF writes one A4 portrait page per input page. Strokes become vector lines with their own
// color and width; scanned pages are embedded as images.
func PDF(w io.Writer, pages []Page, opts PDFOptions) error {
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = 1240
	}
	mm := a4WidthMM / opts.CanvasWidth

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	for i, page := range pages {
		pdf.AddPage()

		if len(page.Image) > 0 {
			if err := embedImage(pdf, fmt.Sprintf("page-%d", i), page.Image); err != nil {
				return err
			}
		}

		for _, st := range page.Strokes {
			drawStroke(pdf, st, mm)
		}

		if page.Title != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(107, 114, 128)
			pdf.Text(marginMM, a4HeightMM-marginMM/2, page.Title)
		}
	}

	if len(pages) == 0 {
		pdf.AddPage()
	}

	return pdf.Output(w)
}

func drawStroke(pdf *gofpdf.Fpdf, st ink.Stroke, mm float64) {
	r, g, b := hexToRGB(st.Color)
	pdf.SetDrawColor(r, g, b)
	pdf.SetLineWidth(st.Width * mm)

	if len(st.Points) == 1 {
		p := st.Points[0]
		pdf.SetFillColor(r, g, b)
		pdf.Circle(p.X*mm, p.Y*mm, st.Width*mm/2, "F")
		return
	}
	for i := 1; i < len(st.Points); i++ {
		a, c := st.Points[i-1], st.Points[i]
		pdf.Line(a.X*mm, a.Y*mm, c.X*mm, c.Y*mm)
	}
}

func embedImage(pdf *gofpdf.Fpdf, name string, data []byte) error {
	var imageType string
	switch http.DetectContentType(data) {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		return fmt.Errorf("unsupported scanned image format")
	}

	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}

	// Fit inside the margins, keeping aspect ratio.
	maxW, maxH := a4WidthMM-2*marginMM, a4HeightMM-2*marginMM
	w, h := info.Width(), info.Height()
	ratio := maxW / w
	if h*ratio > maxH {
		ratio = maxH / h
	}
	pdf.ImageOptions(name, marginMM, marginMM, w*ratio, h*ratio, false, opts, 0, "")
	return pdf.Error()
}

// hexToRGB parses #rgb or #rrggbb; anything else is black.
func hexToRGB(hex string) (int, int, int) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
