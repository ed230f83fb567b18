package reader

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/domain"
)

// fetchBlob fetches a blob and decodes its base64 content. Decoded
// bytes are served from and stored into the content-addressed cache
// when one is configured. Malformed base64 yields a per-file
// DecodeError; any encoding other than base64 violates the API-client
// contract and fails the whole crawl.
func (r *Reader) fetchBlob(ctx context.Context, pb domain.PathedBlob) ([]byte, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, cache.BlobKey(pb.Entry.SHA)); err == nil {
			r.logger.Debug().Str("path", pb.FullPath).Msg("blob cache hit")
			return raw, nil
		}
	}

	blob, err := r.api.GetBlob(ctx, r.owner, r.repo, pb.Entry.SHA)
	if err != nil {
		return nil, err
	}

	if blob.Encoding != domain.BlobEncodingBase64 {
		return nil, fmt.Errorf("blob %s has encoding %q: %w", pb.Entry.SHA, blob.Encoding, domain.ErrUnsupportedEncoding)
	}

	// The API wraps base64 content in newlines.
	raw, err := base64.StdEncoding.DecodeString(stripSpace(blob.Content))
	if err != nil {
		return nil, domain.NewDecodeError(pb.FullPath, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cache.BlobKey(pb.Entry.SHA), raw, r.cacheTTL); err != nil {
			r.logger.Warn().Err(err).Str("path", pb.FullPath).Msg("blob cache write failed")
		}
	}
	return raw, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
