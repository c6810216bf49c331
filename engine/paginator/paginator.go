// Package paginator lays out study guides as multi-page PDF documents.
//
// Layout is manual coordinate bookkeeping: a filled header band with the
// centred title on the first page, body lines drawn top to bottom with a
// running cursor, a new page whenever the cursor drops below the bottom
// margin, and a "Generated on" footer on the last page.
package paginator

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/drummonds/sermonkit/engine/renderer"
)

const (
	coreFamily = "Helvetica"
	utf8Family = "GuideSans"

	// DefaultDateFormat matches a US locale short date.
	DefaultDateFormat = "1/2/2006"
)

type rgb struct{ r, g, b int }

var (
	headerColor = rgb{0x37, 0x59, 0x1e}
	titleColor  = rgb{0xff, 0xff, 0xff}
	bodyColor   = rgb{0, 0, 0}
	footerColor = rgb{0xa6, 0xce, 0x11}
)

// Paginator renders study guides. The zero value is not usable; call New.
type Paginator struct {
	Layout Layout

	// FontPath optionally points at a TrueType font used instead of the
	// Helvetica core font. Core fonts only cover Windows-1252 text.
	FontPath string

	// Now stamps the footer and the document creation date.
	Now        func() time.Time
	DateFormat string
}

// New returns a Paginator using the A4 layout and the Helvetica core font.
func New() *Paginator {
	return &Paginator{
		Layout:     A4,
		Now:        time.Now,
		DateFormat: DefaultDateFormat,
	}
}

// Render lays out the guide under title and returns the serialized PDF.
func (p *Paginator) Render(title, guide string) ([]byte, error) {
	const op = "paginator"
	l := p.Layout
	now := p.now()

	doc, encode, err := p.newDocument()
	if err != nil {
		return nil, err
	}
	doc.SetCreationDate(now)
	doc.SetCatalogSort(true)
	doc.SetCreator("sermonkit", true)
	doc.SetTitle(title, true)

	titleText, err := encode(title)
	if err != nil {
		return nil, renderer.NewError(renderer.KindRender, op, "title cannot be drawn with the document font", err)
	}

	doc.AddPage()

	doc.SetFillColor(headerColor.r, headerColor.g, headerColor.b)
	doc.Rect(0, 0, l.PageWidth, l.HeaderHeight, "F")

	doc.SetFont(p.family(), "", l.TitleSize)
	doc.SetTextColor(titleColor.r, titleColor.g, titleColor.b)
	titleWidth := doc.GetStringWidth(titleText)
	doc.Text((l.PageWidth-titleWidth)/2, l.TitleBaseline, titleText)

	plan := l.Plan(guide)
	doc.SetFont(p.family(), "", l.BodySize)
	doc.SetTextColor(bodyColor.r, bodyColor.g, bodyColor.b)
	for i, step := range plan.Steps {
		for doc.PageNo() < step.Page {
			doc.AddPage()
		}
		if step.Kind != StepDraw {
			continue
		}
		line, err := encode(step.Text)
		if err != nil {
			return nil, renderer.NewError(renderer.KindRender, op, fmt.Sprintf("line %d cannot be drawn with the document font", i+1), err)
		}
		doc.Text(l.LeftMargin, l.PageHeight-step.Y, line)
	}
	for doc.PageNo() < plan.Pages {
		doc.AddPage()
	}

	footer, err := encode("Generated on: " + now.Format(p.dateFormat()))
	if err != nil {
		return nil, renderer.NewError(renderer.KindRender, op, "footer cannot be drawn with the document font", err)
	}
	doc.SetFont(p.family(), "", l.FooterSize)
	doc.SetTextColor(footerColor.r, footerColor.g, footerColor.b)
	footerWidth := doc.GetStringWidth(footer)
	doc.Text(l.PageWidth-footerWidth-l.RightMargin, l.PageHeight-l.FooterY, footer)

	if doc.Err() {
		return nil, renderer.NewError(renderer.KindRender, op, "drawing failed", doc.Error())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, renderer.NewError(renderer.KindRender, op, "serialization failed", err)
	}
	return buf.Bytes(), nil
}

// newDocument creates the fpdf document and the text encoder matching the
// font it embeds.
func (p *Paginator) newDocument() (*fpdf.Fpdf, func(string) (string, error), error) {
	l := p.Layout
	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	if p.FontPath == "" {
		encoder := charmap.Windows1252.NewEncoder()
		return doc, func(s string) (string, error) {
			return encoder.String(s)
		}, nil
	}

	font, err := os.ReadFile(p.FontPath)
	if err != nil {
		return nil, nil, renderer.NewError(renderer.KindRender, "paginator", "unable to read font", err)
	}
	doc.AddUTF8FontFromBytes(utf8Family, "", font)
	if doc.Err() {
		return nil, nil, renderer.NewError(renderer.KindRender, "paginator", "unable to embed font", doc.Error())
	}
	return doc, func(s string) (string, error) { return s, nil }, nil
}

func (p *Paginator) family() string {
	if p.FontPath != "" {
		return utf8Family
	}
	return coreFamily
}

func (p *Paginator) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Paginator) dateFormat() string {
	if p.DateFormat == "" {
		return DefaultDateFormat
	}
	return p.DateFormat
}
