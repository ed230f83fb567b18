package extract

import (
	"os"
	"regexp"
	"strings"
)

// Pre-compiled regex patterns for markdown stripping
var (
	imageRegex             = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkRegex              = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldAsterisksRegex     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicAsterisksRegex   = regexp.MustCompile(`\*([^*]+)\*`)
	boldUnderscoresRegex   = regexp.MustCompile(`__([^_]+)__`)
	italicUnderscoresRegex = regexp.MustCompile(`_([^_]+)_`)
	inlineCodeRegex        = regexp.MustCompile("`([^`]+)`")
	headerRegex            = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	horizontalRuleRegex    = regexp.MustCompile(`(?m)^[\-*_]{3,}\s*$`)
	blockquoteRegex        = regexp.MustCompile(`(?m)^>\s+`)
)

// MarkdownExtractor strips markdown formatting and returns one plain
// text segment per heading-delimited section.
type MarkdownExtractor struct{}

// NewMarkdownExtractor creates a new MarkdownExtractor
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{}
}

func (e *MarkdownExtractor) Name() string { return "markdown" }

func (e *MarkdownExtractor) Prepare() error { return nil }

// Parse extracts plain-text segments from the markdown file at path.
func (e *MarkdownExtractor) Parse(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var segments []string
	for _, section := range splitSections(string(raw)) {
		text := stripMarkdown(section)
		if text != "" {
			segments = append(segments, text)
		}
	}
	return segments, nil
}

// splitSections splits markdown content at heading lines, keeping each
// heading with the text that follows it.
func splitSections(content string) []string {
	lines := strings.Split(content, "\n")
	var sections []string
	var current []string

	for _, line := range lines {
		if headerRegex.MatchString(line) && len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}

func stripMarkdown(text string) string {
	text = imageRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = boldAsterisksRegex.ReplaceAllString(text, "$1")
	text = boldUnderscoresRegex.ReplaceAllString(text, "$1")
	text = italicAsterisksRegex.ReplaceAllString(text, "$1")
	text = italicUnderscoresRegex.ReplaceAllString(text, "$1")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = headerRegex.ReplaceAllString(text, "")
	text = horizontalRuleRegex.ReplaceAllString(text, "")
	text = blockquoteRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
