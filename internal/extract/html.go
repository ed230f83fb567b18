package extract

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// HTMLExtractor extracts readable text from HTML files: the document
// title as the first segment, then the body converted to markdown with
// scripts and styles stripped.
type HTMLExtractor struct{}

// NewHTMLExtractor creates a new HTMLExtractor
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (e *HTMLExtractor) Name() string { return "html" }

func (e *HTMLExtractor) Prepare() error { return nil }

// Parse extracts text segments from the HTML file at path.
func (e *HTMLExtractor) Parse(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var segments []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		segments = append(segments, title)
	}

	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	html, err := sel.Html()
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	markdown, err := md.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}
	if markdown = strings.TrimSpace(markdown); markdown != "" {
		segments = append(segments, markdown)
	}

	return segments, nil
}
