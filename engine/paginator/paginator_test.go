package paginator

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drummonds/sermonkit/engine/renderer"
)

var fixedNow = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func newTestPaginator() *Paginator {
	p := New()
	p.Now = func() time.Time { return fixedNow }
	return p
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func glyphsOfSize(page PageContent, size float64) []Glyph {
	var out []Glyph
	for _, g := range page.Glyphs {
		if g.FontSize > size-0.01 && g.FontSize < size+0.01 {
			out = append(out, g)
		}
	}
	return out
}

// pageStream returns the decompressed content stream of page n
func pageStream(t *testing.T, data []byte, n int) string {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	contents := reader.Page(n).V.Key("Contents")
	if contents.Kind() == pdf.Array {
		contents = contents.Index(0)
	}
	rc := contents.Reader()
	defer rc.Close()
	stream, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(stream)
}

func TestRenderSinglePage(t *testing.T) {
	data, err := newTestPaginator().Render("Faith Guide", "Line one\n\nLine two")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	summary, err := Inspect(data)
	require.NoError(t, err)
	require.Equal(t, 1, summary.PageCount())

	text := compact(summary.Pages[0].Text)
	assert.Contains(t, text, "FaithGuide")
	assert.Contains(t, text, "Lineone")
	assert.Contains(t, text, "Linetwo")
	assert.Contains(t, text, "Generatedon:10/19/2026")
}

func TestRenderBodyBaselines(t *testing.T) {
	data, err := newTestPaginator().Render("Faith Guide", "Line one\n\nLine two")
	require.NoError(t, err)

	summary, err := Inspect(data)
	require.NoError(t, err)

	body := glyphsOfSize(summary.Pages[0], A4.BodySize)
	require.NotEmpty(t, body)

	assert.InDelta(t, A4.LeftMargin, body[0].X, 0.02)

	start := A4.PageHeight - A4.BodyStart
	var onFirst, onSecond int
	for _, g := range body {
		switch {
		case g.Y > start-0.02 && g.Y < start+0.02:
			onFirst++
		case g.Y > start-20-0.02 && g.Y < start-20+0.02:
			onSecond++
		default:
			t.Errorf("unexpected body baseline %.2f", g.Y)
		}
	}
	assert.NotZero(t, onFirst)
	assert.NotZero(t, onSecond)
}

func TestRenderCentersTitle(t *testing.T) {
	title := "The Power of Faith"
	data, err := newTestPaginator().Render(title, "")
	require.NoError(t, err)

	summary, err := Inspect(data)
	require.NoError(t, err)

	titleGlyphs := glyphsOfSize(summary.Pages[0], A4.TitleSize)
	require.NotEmpty(t, titleGlyphs)

	metrics := fpdf.New("P", "pt", "A4", "")
	metrics.SetFont("Helvetica", "", A4.TitleSize)
	want := (A4.PageWidth - metrics.GetStringWidth(title)) / 2

	assert.InDelta(t, want, titleGlyphs[0].X, 0.02)
	assert.InDelta(t, A4.PageHeight-A4.TitleBaseline, titleGlyphs[0].Y, 0.02)
}

func TestRenderEmptyGuide(t *testing.T) {
	for _, guide := range []string{"", "  \n\t\n"} {
		data, err := newTestPaginator().Render("Faith Guide", guide)
		require.NoError(t, err)

		summary, err := Inspect(data)
		require.NoError(t, err)
		require.Equal(t, 1, summary.PageCount())

		page := summary.Pages[0]
		assert.Empty(t, glyphsOfSize(page, A4.BodySize))
		assert.NotEmpty(t, glyphsOfSize(page, A4.TitleSize))
		assert.Contains(t, compact(page.Text), "Generatedon:")
	}
}

func TestRenderPaginatesAndStampsLastPage(t *testing.T) {
	guide := strings.TrimSuffix(strings.Repeat("Discussion question\n", 60), "\n")

	data, err := newTestPaginator().Render("Long Guide", guide)
	require.NoError(t, err)

	summary, err := Inspect(data)
	require.NoError(t, err)
	require.Equal(t, A4.Plan(guide).Pages, summary.PageCount())
	require.Equal(t, 2, summary.PageCount())

	first, last := summary.Pages[0], summary.Pages[1]
	assert.NotContains(t, compact(first.Text), "Generatedon:")
	assert.Contains(t, compact(last.Text), "Generatedon:10/19/2026")

	// Continuation pages carry no header title.
	assert.Empty(t, glyphsOfSize(last, A4.TitleSize))
	assert.NotEmpty(t, glyphsOfSize(last, A4.BodySize))
}

func TestRenderIsDeterministic(t *testing.T) {
	p := newTestPaginator()
	guide := "STUDY GUIDE\n\n=== Main Points ===\n1. Faith provides assurance"

	first, err := p.Render("Faith Guide", guide)
	require.NoError(t, err)
	second, err := p.Render("Faith Guide", guide)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "identical input should render identical bytes")
}

func TestRenderRejectsUnencodableText(t *testing.T) {
	_, err := newTestPaginator().Render("Faith Guide", "信就是所望之事的实底")
	require.Error(t, err)
	assert.Equal(t, renderer.KindRender, renderer.KindOf(err))
}

func TestRenderMissingFont(t *testing.T) {
	p := newTestPaginator()
	p.FontPath = "/nonexistent/font.ttf"

	_, err := p.Render("Faith Guide", "Line one")
	require.Error(t, err)
	assert.Equal(t, renderer.KindRender, renderer.KindOf(err))
}

func TestRenderHeaderBand(t *testing.T) {
	guide := strings.TrimSuffix(strings.Repeat("Discussion question\n", 60), "\n")
	data, err := newTestPaginator().Render("Long Guide", guide)
	require.NoError(t, err)

	summary, err := Inspect(data)
	require.NoError(t, err)
	require.Equal(t, 2, summary.PageCount())

	require.Len(t, summary.Pages[0].Boxes, 1)
	band := summary.Pages[0].Boxes[0]
	assert.InDelta(t, 0, band.X, 0.01)
	assert.InDelta(t, A4.PageWidth, band.W, 0.01)
	assert.InDelta(t, 50, band.H, 0.01)
	assert.InDelta(t, A4.PageHeight, band.Top(), 0.01)

	fill := fmt.Sprintf("%.3f %.3f %.3f rg\n%.2f %.2f %.2f %.2f re f",
		float64(headerColor.r)/255, float64(headerColor.g)/255, float64(headerColor.b)/255,
		0.0, A4.PageHeight, A4.PageWidth, -A4.HeaderHeight)
	assert.Contains(t, pageStream(t, data, 1), fill)

	// Continuation pages have no band.
	assert.Empty(t, summary.Pages[1].Boxes)
	assert.NotContains(t, pageStream(t, data, 2), " re f")
}

func TestRenderRejectsUnencodableFooter(t *testing.T) {
	p := newTestPaginator()
	p.DateFormat = "2006年1月2日"

	_, err := p.Render("Faith Guide", "Line one")
	require.Error(t, err)
	assert.Equal(t, renderer.KindRender, renderer.KindOf(err))
	assert.Contains(t, err.Error(), "footer")
}

func TestSummaryDescribe(t *testing.T) {
	data, err := newTestPaginator().Render("Faith Guide", "Line one\n\nLine two")
	require.NoError(t, err)

	summary, err := Inspect(data)
	require.NoError(t, err)
	// title, two body lines and the footer
	assert.Equal(t, 4, summary.Pages[0].Lines())

	var out bytes.Buffer
	require.NoError(t, summary.Describe(&out))
	assert.Equal(t, "pages: 1\npage 1: 4 lines\n", out.String())
}
