// Command guide renders a study guide text file to a PDF, or to a PNG preview
// of its first page, without running the server.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/drummonds/sermonkit/engine"
	"github.com/drummonds/sermonkit/engine/paginator"
	"github.com/drummonds/sermonkit/engine/pdfrenderer"
)

func main() {
	in := flag.String("in", "-", "Study guide text file, - for stdin")
	title := flag.String("title", "", "Study guide title (required)")
	out := flag.String("out", "", "Output file, defaults to <title>-study-guide.pdf or .png")
	preview := flag.Bool("preview", false, "Write a PNG of the first page instead of the PDF")
	width := flag.Int("width", 600, "Preview width in pixels")
	previewEngine := flag.String("engine", pdfrenderer.EnginePDFium, "Preview engine: pdfium or fitz")
	font := flag.String("font", os.Getenv("PDF_FONT_PATH"), "TrueType font for text outside Windows-1252")
	inspect := flag.Bool("inspect", false, "Print the page and line counts of the rendered PDF")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *title == "" {
		fmt.Fprintln(os.Stderr, "guide: -title is required")
		flag.Usage()
		os.Exit(2)
	}

	text, err := readGuide(*in)
	if err != nil {
		logger.Error("Unable to read study guide", "path", *in, "error", err)
		os.Exit(1)
	}

	guides := paginator.New()
	guides.FontPath = *font
	pdf, err := guides.Render(*title, text)
	if err != nil {
		logger.Error("Unable to render study guide", "error", err)
		os.Exit(1)
	}

	if *inspect {
		if err := describePDF(pdf, os.Stdout); err != nil {
			logger.Error("Unable to inspect study guide", "error", err)
			os.Exit(1)
		}
	}

	data, ext := pdf, ".pdf"
	if *preview {
		data, err = renderPreview(*previewEngine, pdf, *width)
		if err != nil {
			logger.Error("Unable to render preview", "engine", *previewEngine, "error", err)
			os.Exit(1)
		}
		ext = ".png"
	}

	path := *out
	if path == "" {
		path = engine.StudyGuideFilename(*title, ext)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.Error("Unable to write output", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("Study guide written", "path", path, "bytes", len(data))
}

func readGuide(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// describePDF reads the rendered document back and writes its layout
func describePDF(pdf []byte, w io.Writer) error {
	summary, err := paginator.Inspect(pdf)
	if err != nil {
		return err
	}
	return summary.Describe(w)
}

func renderPreview(previewEngine string, pdf []byte, width int) ([]byte, error) {
	r, err := pdfrenderer.NewRenderer(previewEngine)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return pdfrenderer.Thumbnail(r, pdf, width)
}
