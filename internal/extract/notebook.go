package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// NotebookExtractor extracts cell sources from Jupyter notebooks, one
// segment per non-empty cell.
type NotebookExtractor struct{}

// NewNotebookExtractor creates a new NotebookExtractor
func NewNotebookExtractor() *NotebookExtractor {
	return &NotebookExtractor{}
}

func (e *NotebookExtractor) Name() string { return "notebook" }

func (e *NotebookExtractor) Prepare() error { return nil }

type notebook struct {
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// Parse extracts cell text from the notebook file at path.
func (e *NotebookExtractor) Parse(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var nb notebook
	if err := json.Unmarshal(raw, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}

	var segments []string
	for _, cell := range nb.Cells {
		text, err := cellSource(cell.Source)
		if err != nil {
			return nil, fmt.Errorf("parse notebook cell: %w", err)
		}
		if text = strings.TrimRight(text, "\n"); text != "" {
			segments = append(segments, text)
		}
	}
	return segments, nil
}

// cellSource handles both source encodings the format allows: a list
// of lines or a single string.
func cellSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, ""), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}
