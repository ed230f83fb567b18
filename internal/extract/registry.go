// Package extract provides the pluggable content extractors that turn
// raw bytes of recognized file formats into plain-text segments, and
// the registry the synthesizer dispatches through.
package extract

import (
	"fmt"
	"sort"
	"sync"
)

// Extractor converts a file of a specific format into one or more
// plain-text segments. Parse receives a filesystem path because most
// format libraries want a file, not an in-memory buffer.
type Extractor interface {
	// Name returns the extractor name, for logging.
	Name() string
	// Prepare performs one-time initialization. The registry guarantees
	// it runs at most once per registered extension.
	Prepare() error
	// Parse extracts text segments from the file at path.
	Parse(path string) ([]string, error)
}

type entry struct {
	extractor Extractor
	once      sync.Once
	prepErr   error
}

// Registry maps file extensions (without dot) to extractors. Matching
// is exact and case-sensitive. The registry is an explicit value passed
// into the synthesizer; there is no hidden process-wide table.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register binds an extension to an extractor, replacing any previous
// binding for that extension.
func (r *Registry) Register(ext string, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[ext] = &entry{extractor: e}
}

// Lookup returns the extractor registered for ext, if any.
func (r *Registry) Lookup(ext string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	en, ok := r.entries[ext]
	if !ok {
		return nil, false
	}
	return en.extractor, true
}

// EnsurePrepared runs the extension's one-time Prepare, at most once,
// and returns its result on this and every later call.
func (r *Registry) EnsurePrepared(ext string) error {
	r.mu.RLock()
	en, ok := r.entries[ext]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no extractor registered for extension %q", ext)
	}
	en.once.Do(func() {
		en.prepErr = en.extractor.Prepare()
	})
	return en.prepErr
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.entries))
	for ext := range r.entries {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultRegistry returns a registry prebuilt with the stock
// extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	html := NewHTMLExtractor()
	r.Register("html", html)
	r.Register("htm", html)
	r.Register("md", NewMarkdownExtractor())
	r.Register("csv", NewCSVExtractor())
	r.Register("ipynb", NewNotebookExtractor())
	yml := NewYAMLExtractor()
	r.Register("yaml", yml)
	r.Register("yml", yml)
	return r
}
