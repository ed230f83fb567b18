// Package output persists crawl results: one text file per document,
// mirroring the repository layout, plus an optional JSON metadata
// index for downstream consumers.
package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/utils"
)

// Writer handles writing documents to the filesystem
type Writer struct {
	baseDir      string
	flat         bool
	jsonMetadata bool
	force        bool
	dryRun       bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	BaseDir      string
	Flat         bool
	JSONMetadata bool
	Force        bool
	DryRun       bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.BaseDir == "" {
		opts.BaseDir = "./docs"
	}

	return &Writer{
		baseDir:      opts.BaseDir,
		flat:         opts.Flat,
		jsonMetadata: opts.JSONMetadata,
		force:        opts.Force,
		dryRun:       opts.DryRun,
	}
}

// DocumentMeta is one entry of the metadata index.
type DocumentMeta struct {
	Path     string            `json:"path"`
	DocID    string            `json:"doc_id"`
	Bytes    int               `json:"bytes"`
	Metadata map[string]string `json:"metadata"`
}

// Index is the consolidated metadata written next to the documents.
type Index struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Repository  string         `json:"repository"`
	Ref         string         `json:"ref"`
	Total       int            `json:"total"`
	Documents   []DocumentMeta `json:"documents"`
}

// Write saves a document to the output directory
func (w *Writer) Write(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := utils.RepoPathToLocal(w.baseDir, docPath(doc), w.flat)

	if !w.force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	if w.dryRun {
		return nil
	}

	if err := utils.EnsureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc.Text), 0o644)
}

// WriteAll writes every document and, when enabled, the metadata
// index. onWrite, if non-nil, is called after each document (progress
// reporting).
func (w *Writer) WriteAll(ctx context.Context, repository, ref string, docs []domain.Document, onWrite func()) error {
	for i := range docs {
		if err := w.Write(ctx, &docs[i]); err != nil {
			return err
		}
		if onWrite != nil {
			onWrite()
		}
	}

	if !w.jsonMetadata || w.dryRun {
		return nil
	}
	return w.writeIndex(repository, ref, docs)
}

func (w *Writer) writeIndex(repository, ref string, docs []domain.Document) error {
	index := Index{
		GeneratedAt: time.Now().UTC(),
		Repository:  repository,
		Ref:         ref,
		Total:       len(docs),
	}
	for _, doc := range docs {
		index.Documents = append(index.Documents, DocumentMeta{
			Path:     docPath(&doc),
			DocID:    doc.DocID,
			Bytes:    len(doc.Text),
			Metadata: doc.Metadata,
		})
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(w.baseDir, "metadata.json")
	if err := utils.EnsureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// docPath returns the document's repository path regardless of which
// synthesis path produced it.
func docPath(doc *domain.Document) string {
	if p, ok := doc.Metadata[domain.MetaFullPath]; ok {
		return p
	}
	return doc.Metadata[domain.MetaFilePath]
}
