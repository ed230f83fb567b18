package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLExtractor flattens YAML documents into "key.path: value" lines,
// one segment per document in the stream.
type YAMLExtractor struct{}

// NewYAMLExtractor creates a new YAMLExtractor
func NewYAMLExtractor() *YAMLExtractor {
	return &YAMLExtractor{}
}

func (e *YAMLExtractor) Name() string { return "yaml" }

func (e *YAMLExtractor) Prepare() error { return nil }

// Parse extracts flattened key/value text from the YAML file at path.
func (e *YAMLExtractor) Parse(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	var segments []string
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}

		var lines []string
		flattenYAML("", doc, &lines)
		if len(lines) > 0 {
			segments = append(segments, strings.Join(lines, "\n"))
		}
	}
	return segments, nil
}

func flattenYAML(prefix string, v any, lines *[]string) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenYAML(joinKey(prefix, k), val[k], lines)
		}
	case []any:
		for i, item := range val {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), item, lines)
		}
	case nil:
		*lines = append(*lines, prefix+":")
	default:
		*lines = append(*lines, fmt.Sprintf("%s: %v", prefix, val))
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
