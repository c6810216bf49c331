package pdfrenderer

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
	DPI float64
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer() (*FitzRenderer, error) {
	return &FitzRenderer{DPI: DefaultDPI}, nil
}

// RenderPage opens the document from memory and renders one page
func (r *FitzRenderer) RenderPage(pdf []byte, index int) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	if index < 0 || index >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d)", index, doc.NumPage())
	}

	img, err := doc.ImageDPI(index, r.DPI)
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", index, err)
	}
	return img, nil
}

// Close cleans up resources (no-op for Fitz renderer as doc is closed per-render)
func (r *FitzRenderer) Close() error {
	return nil
}
