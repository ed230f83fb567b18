package reader

import (
	"context"
	"errors"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/utils"
)

// SkipReason classifies why a blob produced no document.
type SkipReason string

const (
	// SkipDecode covers malformed base64 and non-UTF-8 content.
	SkipDecode SkipReason = "decode"
	// SkipExtractor covers extractor failures.
	SkipExtractor SkipReason = "extractor"
)

// SkipRecord describes one blob that was dropped from the result set.
type SkipRecord struct {
	Path   string
	Reason SkipReason
	Err    error
}

// CrawlReport summarizes a crawl for observability. The document list
// alone carries no trace of skipped files.
type CrawlReport struct {
	TotalBlobs int
	Produced   int
	Skipped    []SkipRecord
}

// generateDocuments runs the fetch/decode/synthesize pipeline over a
// bounded worker pool. Each blob is independent; per-file errors are
// recorded as skips while any other error fails the crawl. Results
// keep walk order. If ctx is cancelled mid-crawl the whole call fails
// with the context error; no partial set is returned.
func (r *Reader) generateDocuments(ctx context.Context, blobs []domain.PathedBlob) ([]domain.Document, *CrawlReport, error) {
	slots := make([]*domain.Document, len(blobs))
	skips := make([]*SkipRecord, len(blobs))

	errs := utils.ParallelForEach(ctx, blobs, r.workers, func(ctx context.Context, i int, pb domain.PathedBlob) error {
		doc, err := r.processBlob(ctx, pb)
		if err != nil {
			if !domain.IsPerFile(err) {
				return err
			}
			r.logger.Warn().Err(err).Str("path", pb.FullPath).Msg("skipping file")
			skips[i] = &SkipRecord{Path: pb.FullPath, Reason: skipReason(err), Err: err}
			return nil
		}
		slots[i] = doc
		return nil
	})

	if err := utils.FirstError(errs); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	report := &CrawlReport{TotalBlobs: len(blobs)}
	docs := make([]domain.Document, 0, len(blobs))
	for i := range blobs {
		if slots[i] != nil {
			docs = append(docs, *slots[i])
			continue
		}
		if skips[i] != nil {
			report.Skipped = append(report.Skipped, *skips[i])
		}
	}
	report.Produced = len(docs)

	r.logger.Info().Int("documents", report.Produced).Int("skipped", len(report.Skipped)).Msg("crawl complete")
	return docs, report, nil
}

func (r *Reader) processBlob(ctx context.Context, pb domain.PathedBlob) (*domain.Document, error) {
	raw, err := r.fetchBlob(ctx, pb)
	if err != nil {
		return nil, err
	}
	return r.synthesize(pb, raw)
}

func skipReason(err error) SkipReason {
	var extractorErr *domain.ExtractorError
	if errors.As(err, &extractorErr) {
		return SkipExtractor
	}
	return SkipDecode
}
