package pdfrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drummonds/sermonkit/engine/paginator"
)

type stubRenderer struct {
	page image.Image
	err  error
}

func (s stubRenderer) RenderPage(pdf []byte, index int) (image.Image, error) {
	return s.page, s.err
}

func (s stubRenderer) Close() error { return nil }

func TestNewRendererUnknownEngine(t *testing.T) {
	r, err := NewRenderer("ghostscript")
	require.Error(t, err)
	assert.Nil(t, r)
}

func TestNewRendererInitFailureIsNil(t *testing.T) {
	defer func(orig func() (*PDFiumRenderer, error)) { newPDFium = orig }(newPDFium)
	newPDFium = func() (*PDFiumRenderer, error) {
		return nil, errors.New("wasm runtime unavailable")
	}

	for _, name := range []string{"", EnginePDFium} {
		r, err := NewRenderer(name)
		require.Error(t, err)
		// a typed nil inside the interface would get past a nil check
		assert.True(t, r == nil, "engine %q returned a non-nil Renderer", name)
	}
}

func TestThumbnailScalesToWidth(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 1240, 1754))
	out, err := Thumbnail(stubRenderer{page: page}, nil, 600)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.InDelta(t, 849, cfg.Height, 1)
}

func TestThumbnailPropagatesRenderError(t *testing.T) {
	_, err := Thumbnail(stubRenderer{err: errors.New("broken")}, nil, 600)
	require.Error(t, err)
}

func TestPDFiumRendersGuide(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PDFium WebAssembly test in short mode")
	}

	p := paginator.New()
	p.Now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	pdf, err := p.Render("Faith Guide", "Line one\n\nLine two")
	require.NoError(t, err)

	r, err := NewPDFiumRenderer()
	require.NoError(t, err)
	defer r.Close()

	page, err := r.RenderPage(pdf, 0)
	require.NoError(t, err)
	// A4 at 150 DPI.
	assert.InDelta(t, 1240, page.Bounds().Dx(), 2)
	assert.InDelta(t, 1754, page.Bounds().Dy(), 2)

	_, err = r.RenderPage(pdf, 3)
	require.Error(t, err)
}
