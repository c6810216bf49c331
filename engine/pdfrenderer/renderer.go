package pdfrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

const (
	EnginePDFium = "pdfium"
	EngineFitz   = "fitz"

	// DefaultDPI renders A4 pages at roughly 1240px wide before scaling.
	DefaultDPI = 150
)

// Renderer rasterises pages of an in-memory PDF
type Renderer interface {
	// RenderPage renders the zero-based page index of pdf
	RenderPage(pdf []byte, index int) (image.Image, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// newPDFium is swapped out in tests
var newPDFium = NewPDFiumRenderer

// NewRenderer creates the named renderer. An empty name selects PDFium
// (pure Go, no CGo). On error the returned Renderer is always nil.
func NewRenderer(engine string) (Renderer, error) {
	switch engine {
	case "", EnginePDFium:
		r, err := newPDFium()
		if err != nil {
			return nil, err
		}
		return r, nil
	case EngineFitz:
		r, err := NewFitzRenderer()
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown preview engine %q", engine)
	}
}

// Thumbnail renders the first page of pdf and scales it to width pixels,
// keeping the aspect ratio, encoded as PNG.
func Thumbnail(r Renderer, pdf []byte, width int) ([]byte, error) {
	page, err := r.RenderPage(pdf, 0)
	if err != nil {
		return nil, err
	}
	if width > 0 && page.Bounds().Dx() != width {
		page = imaging.Resize(page, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return nil, fmt.Errorf("unable to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
