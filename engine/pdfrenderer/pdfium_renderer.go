package pdfrenderer

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// PDFiumRenderer implements PDF rendering using go-pdfium with WebAssembly (pure Go, no CGo)
type PDFiumRenderer struct {
	pool pdfium.Pool
	DPI  int
}

// NewPDFiumRenderer creates a new PDFium-based PDF renderer using WebAssembly
func NewPDFiumRenderer() (*PDFiumRenderer, error) {
	// Each preview checks an instance out of the pool, so concurrent
	// requests never share one
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  2,
		MaxTotal: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium WebAssembly: %w", err)
	}

	return &PDFiumRenderer{
		pool: pool,
		DPI:  DefaultDPI,
	}, nil
}

// RenderPage renders one page of an in-memory PDF using go-pdfium WebAssembly
func (r *PDFiumRenderer) RenderPage(pdf []byte, index int) (image.Image, error) {
	instance, err := r.pool.GetInstance(time.Second * 30)
	if err != nil {
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{
		File: &pdf,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCountResp, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get page count: %w", err)
	}
	if index < 0 || index >= pageCountResp.PageCount {
		return nil, fmt.Errorf("page %d out of range (document has %d)", index, pageCountResp.PageCount)
	}

	pageRender, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: r.DPI,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    index,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", index, err)
	}
	defer pageRender.Cleanup()

	// The result image is backed by WebAssembly memory released by Cleanup
	return imaging.Clone(pageRender.Result.Image), nil
}

// Close cleans up resources used by the PDFium renderer
func (r *PDFiumRenderer) Close() error {
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	return nil
}
