package reader

import (
	"context"
	"fmt"
	"path"

	"github.com/repolens/repolens/internal/domain"
)

// walkTree recursively collects every blob under treeSHA together with
// its root-relative path. Tree identities form a DAG rooted at one
// commit, so no cycle detection is needed; depth is only bounded when
// maxDepth is positive.
func (r *Reader) walkTree(ctx context.Context, treeSHA, basePath string, depth int) ([]domain.PathedBlob, error) {
	if r.maxDepth > 0 && depth > r.maxDepth {
		return nil, fmt.Errorf("tree %s at %q, depth %d: %w", treeSHA, basePath, depth, domain.ErrMaxDepth)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := r.api.GetTree(ctx, r.owner, r.repo, treeSHA)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("tree", treeSHA).Str("path", basePath).Int("entries", len(entries)).Msg("processing tree")

	var blobs []domain.PathedBlob
	for _, entry := range entries {
		fullPath := path.Join(basePath, entry.Path)
		switch entry.Type {
		case domain.EntryTree:
			children, err := r.walkTree(ctx, entry.SHA, fullPath, depth+1)
			if err != nil {
				return nil, err
			}
			blobs = append(blobs, children...)
		case domain.EntryBlob:
			blobs = append(blobs, domain.PathedBlob{Entry: entry, FullPath: fullPath})
		default:
			// Submodule commits and other entry types are not file
			// content; skip them.
			r.logger.Debug().Str("path", fullPath).Str("type", string(entry.Type)).Msg("skipping non-blob entry")
		}
	}
	return blobs, nil
}
