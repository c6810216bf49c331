package paginator

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Glyph is a positioned run of text read back from a rendered page.
type Glyph struct {
	X, Y     float64
	FontSize float64
	Text     string
}

// Box is a rectangle drawn on a page in PDF user space, with the origin at
// the bottom left and W, H positive.
type Box struct {
	X, Y, W, H float64
}

// Top returns the y coordinate of the upper edge.
func (b Box) Top() float64 {
	return b.Y + b.H
}

// PageContent is the text and rectangles read back from one page.
type PageContent struct {
	Number int
	Text   string
	Glyphs []Glyph
	Boxes  []Box
}

// Lines counts the distinct baselines on the page.
func (p PageContent) Lines() int {
	seen := map[float64]bool{}
	for _, g := range p.Glyphs {
		if strings.TrimSpace(g.Text) == "" {
			continue
		}
		seen[math.Round(g.Y*10)/10] = true
	}
	return len(seen)
}

// Summary describes a rendered PDF.
type Summary struct {
	Pages []PageContent
}

// PageCount returns the number of pages in the document.
func (s Summary) PageCount() int {
	return len(s.Pages)
}

// Describe writes one line per page with its line count.
func (s Summary) Describe(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "pages: %d\n", s.PageCount()); err != nil {
		return err
	}
	for _, page := range s.Pages {
		if _, err := fmt.Fprintf(w, "page %d: %d lines\n", page.Number, page.Lines()); err != nil {
			return err
		}
	}
	return nil
}

// Inspect parses a rendered PDF and extracts the text and rectangles of each
// page.
func Inspect(data []byte) (Summary, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Summary{}, fmt.Errorf("unable to open PDF: %w", err)
	}

	summary := Summary{Pages: make([]PageContent, 0, reader.NumPage())}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := PageContent{Number: i}
		parsed := page.Content()
		var text strings.Builder
		for _, t := range parsed.Text {
			content.Glyphs = append(content.Glyphs, Glyph{X: t.X, Y: t.Y, FontSize: t.FontSize, Text: t.S})
			text.WriteString(t.S)
		}
		for _, r := range parsed.Rect {
			content.Boxes = append(content.Boxes, Box{
				X: math.Min(r.Min.X, r.Max.X),
				Y: math.Min(r.Min.Y, r.Max.Y),
				W: math.Abs(r.Max.X - r.Min.X),
				H: math.Abs(r.Max.Y - r.Min.Y),
			})
		}
		content.Text = text.String()
		summary.Pages = append(summary.Pages, content)
	}
	return summary, nil
}
