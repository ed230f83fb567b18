package extract

import (
	"encoding/csv"
	"os"
	"strings"
)

// CSVExtractor renders tabular data as one comma-joined line per
// record, in a single segment.
type CSVExtractor struct{}

// NewCSVExtractor creates a new CSVExtractor
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

func (e *CSVExtractor) Name() string { return "csv" }

func (e *CSVExtractor) Prepare() error { return nil }

// Parse extracts the rows of the CSV file at path.
func (e *CSVExtractor) Parse(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, strings.Join(record, ", "))
	}
	return []string{strings.Join(lines, "\n")}, nil
}
