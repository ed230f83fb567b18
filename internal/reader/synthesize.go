package reader

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/utils"
)

// segmentSeparator joins extractor-produced text segments.
const segmentSeparator = "\n\n"

// synthesize turns decoded blob bytes into a document. Files whose
// extension has a registered extractor go through it, with no fallback
// to plain text when the extractor fails; everything else must be
// valid UTF-8. The two paths attach different metadata shapes on
// purpose — see domain.Document.
func (r *Reader) synthesize(pb domain.PathedBlob, raw []byte) (*domain.Document, error) {
	if r.useExtractors {
		if ext := pb.Extension(); ext != "" {
			if extractor, ok := r.registry.Lookup(ext); ok {
				return r.extractDocument(pb, raw, ext, extractor)
			}
		}
	}

	if !utf8.Valid(raw) {
		return nil, domain.NewDecodeError(pb.FullPath, domain.ErrInvalidUTF8)
	}

	return &domain.Document{
		DocID: pb.Entry.SHA,
		Text:  string(raw),
		Metadata: map[string]string{
			domain.MetaFullPath:      pb.FullPath,
			domain.MetaFileName:      pb.Name(),
			domain.MetaFileExtension: path.Ext(pb.FullPath),
		},
	}, nil
}

// extractDocument runs the extractor against a scoped temporary copy
// of the blob. The temp file is removed on every exit path.
func (r *Reader) extractDocument(pb domain.PathedBlob, raw []byte, ext string, extractor extract.Extractor) (*domain.Document, error) {
	if err := r.registry.EnsurePrepared(ext); err != nil {
		return nil, domain.NewExtractorError(pb.FullPath, extractor.Name(), err)
	}
	r.logger.Debug().Str("path", pb.FullPath).Str("extractor", extractor.Name()).Msg("parsing with extractor")

	var segments []string
	err := utils.WithTempFile("."+ext, raw, func(tmpPath string) error {
		var parseErr error
		segments, parseErr = extractor.Parse(tmpPath)
		return parseErr
	})
	if err != nil {
		return nil, domain.NewExtractorError(pb.FullPath, extractor.Name(), err)
	}

	return &domain.Document{
		DocID: pb.Entry.SHA,
		Text:  strings.Join(segments, segmentSeparator),
		Metadata: map[string]string{
			domain.MetaFilePath: pb.FullPath,
			domain.MetaFileName: pb.FullPath,
		},
	}, nil
}
