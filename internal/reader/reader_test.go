package reader_test

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/githubapi"
	"github.com/repolens/repolens/internal/reader"
)

// fakeExtractor is a scriptable extractor for reader tests.
type fakeExtractor struct {
	name     string
	segments []string
	parseErr error
	prepErr  error

	prepares int32

	mu    sync.Mutex
	paths []string
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Prepare() error {
	atomic.AddInt32(&f.prepares, 1)
	return f.prepErr
}

func (f *fakeExtractor) Parse(path string) ([]string, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.segments, nil
}

func newTestReader(t *testing.T, api domain.GitAPI, opts ...reader.Option) *reader.Reader {
	t.Helper()
	r, err := reader.New("octo", "demo", append([]reader.Option{reader.WithAPI(api)}, opts...)...)
	require.NoError(t, err)
	return r
}

func docPaths(docs []domain.Document) []string {
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		p, ok := d.Metadata[domain.MetaFullPath]
		if !ok {
			p = d.Metadata[domain.MetaFilePath]
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func TestLoadDataWalkCompleteness(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"a.txt":       []byte("a"),
		"b/c.txt":     []byte("c"),
		"b/d/e.txt":   []byte("e"),
		"f/g/h/i.txt": []byte("i"),
	})

	r := newTestReader(t, api, reader.WithExtractors(false))
	docs, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	paths := docPaths(docs)
	assert.Equal(t, []string{"a.txt", "b/c.txt", "b/d/e.txt", "f/g/h/i.txt"}, paths)

	// Path uniqueness
	seen := make(map[string]bool)
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
}

func TestLoadDataUTF8RoundTrip(t *testing.T) {
	content := "hello, 世界\nline two\n"
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"docs/readme.rst": []byte(content)})

	r := newTestReader(t, api)
	docs, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, content, doc.Text)
	assert.Equal(t, githubapi.BlobSHA([]byte(content)), doc.DocID)
	assert.Equal(t, map[string]string{
		domain.MetaFullPath:      "docs/readme.rst",
		domain.MetaFileName:      "readme.rst",
		domain.MetaFileExtension: ".rst",
	}, doc.Metadata)
}

func TestLoadDataFromBranch(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"a.txt": []byte("hello")})
	api.SetBranch("main", commit)

	r := newTestReader(t, api, reader.WithExtractors(false))
	docs, err := r.LoadData(context.Background(), reader.Ref{Branch: "main"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello", docs[0].Text)
}

func TestLoadDataRefValidation(t *testing.T) {
	tests := []struct {
		name string
		ref  reader.Ref
	}{
		{"neither", reader.Ref{}},
		{"both", reader.Ref{CommitSHA: "abc", Branch: "main"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := githubapi.NewInMem()
			r := newTestReader(t, api)

			_, err := r.LoadData(context.Background(), tt.ref)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)

			// Fails before any network call
			assert.Zero(t, api.Calls("get_commit"))
			assert.Zero(t, api.Calls("get_branch"))
		})
	}
}

func TestLoadDataMalformedBase64Skipped(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"good.txt": []byte("fine"),
		"bad.txt":  []byte("broken"),
	})
	badSHA := githubapi.BlobSHA([]byte("broken"))
	api.SetBlob(badSHA, domain.Blob{SHA: badSHA, Encoding: "base64", Content: "%%% not base64 %%%"})

	r := newTestReader(t, api, reader.WithExtractors(false))
	docs, report, err := r.LoadDataReport(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	assert.Equal(t, []string{"good.txt"}, docPaths(docs))
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "bad.txt", report.Skipped[0].Path)
	assert.Equal(t, reader.SkipDecode, report.Skipped[0].Reason)
}

func TestLoadDataUnsupportedEncodingFailsCrawl(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"a.txt": []byte("hello")})
	sha := githubapi.BlobSHA([]byte("hello"))
	api.SetBlob(sha, domain.Blob{SHA: sha, Encoding: "utf-8", Content: "hello"})

	r := newTestReader(t, api, reader.WithExtractors(false))
	_, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.ErrorIs(t, err, domain.ErrUnsupportedEncoding)
}

func TestLoadDataScenarioNoExtractors(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"a.txt":   []byte("hello"),
		"b/c.bin": {0xff, 0xfe, 0x00, 0x81},
		"d.md":    []byte("# Title"),
	})

	r := newTestReader(t, api, reader.WithRegistry(extract.NewRegistry()))
	docs, report, err := r.LoadDataReport(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	byPath := make(map[string]domain.Document)
	for _, d := range docs {
		byPath[d.Metadata[domain.MetaFullPath]] = d
	}
	assert.Equal(t, "hello", byPath["a.txt"].Text)
	assert.Equal(t, "# Title", byPath["d.md"].Text)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "b/c.bin", report.Skipped[0].Path)
	assert.ErrorIs(t, report.Skipped[0].Err, domain.ErrInvalidUTF8)
}

func TestLoadDataScenarioMarkdownExtractor(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"a.txt":   []byte("hello"),
		"b/c.bin": {0xff, 0xfe, 0x00, 0x81},
		"d.md":    []byte("# Title"),
	})

	registry := extract.NewRegistry()
	registry.Register("md", &fakeExtractor{name: "md", segments: []string{"Title"}})

	r := newTestReader(t, api, reader.WithRegistry(registry))
	docs, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	var mdDoc *domain.Document
	for i := range docs {
		if docs[i].Metadata[domain.MetaFilePath] == "d.md" {
			mdDoc = &docs[i]
		}
	}
	require.NotNil(t, mdDoc, "extractor document for d.md missing")
	assert.Equal(t, "Title", mdDoc.Text)
	assert.Equal(t, githubapi.BlobSHA([]byte("# Title")), mdDoc.DocID)
	// Extractor-path metadata: file_name is the full path, not the basename.
	assert.Equal(t, map[string]string{
		domain.MetaFilePath: "d.md",
		domain.MetaFileName: "d.md",
	}, mdDoc.Metadata)
}

func TestLoadDataExtractorSegmentsJoined(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"doc.md": []byte("x")})

	registry := extract.NewRegistry()
	registry.Register("md", &fakeExtractor{name: "md", segments: []string{"first", "second", "third"}})

	r := newTestReader(t, api, reader.WithRegistry(registry))
	docs, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "first\n\nsecond\n\nthird", docs[0].Text)
}

func TestLoadDataExtractorFailureNoFallback(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"doc.md": []byte("perfectly valid text")})

	registry := extract.NewRegistry()
	registry.Register("md", &fakeExtractor{name: "md", parseErr: errors.New("boom")})

	r := newTestReader(t, api, reader.WithRegistry(registry))
	docs, report, err := r.LoadDataReport(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	// The file is dropped even though its content would decode as text.
	assert.Empty(t, docs)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, reader.SkipExtractor, report.Skipped[0].Reason)
}

func TestLoadDataTempFileCleanedUp(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"ok.md":   []byte("ok"),
		"fail.md": []byte("fail"),
	})

	fe := &fakeExtractor{name: "md", segments: []string{"text"}}
	registry := extract.NewRegistry()
	registry.Register("md", fe)

	r := newTestReader(t, api, reader.WithRegistry(registry))
	_, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	require.Len(t, fe.paths, 2)
	for _, p := range fe.paths {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), "temp file %s still exists", p)
	}
}

func TestLoadDataTempFileCleanedUpOnExtractorError(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"doc.md": []byte("x")})

	fe := &fakeExtractor{name: "md", parseErr: errors.New("boom")}
	registry := extract.NewRegistry()
	registry.Register("md", fe)

	r := newTestReader(t, api, reader.WithRegistry(registry))
	_, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	require.Len(t, fe.paths, 1)
	_, statErr := os.Stat(fe.paths[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadDataPrepareRunsOnce(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"one.md": []byte("1"),
		"two.md": []byte("2"),
	})

	fe := &fakeExtractor{name: "md", segments: []string{"text"}}
	registry := extract.NewRegistry()
	registry.Register("md", fe)

	r := newTestReader(t, api, reader.WithRegistry(registry))
	_, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&fe.prepares))
}

func TestLoadDataIdempotent(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"a.txt":     []byte("alpha"),
		"b/c.md":    []byte("# c"),
		"b/d/e.csv": []byte("x,y"),
	})

	r := newTestReader(t, api, reader.WithExtractors(false))
	first, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)
	second, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)

	sortDocs := func(docs []domain.Document) {
		sort.Slice(docs, func(i, j int) bool {
			return docs[i].Metadata[domain.MetaFullPath] < docs[j].Metadata[domain.MetaFullPath]
		})
	}
	sortDocs(first)
	sortDocs(second)
	assert.Equal(t, first, second)
}

func TestLoadDataMaxDepth(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"a/b/c/d.txt": []byte("deep")})

	r := newTestReader(t, api, reader.WithExtractors(false), reader.WithMaxDepth(2))
	_, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.ErrorIs(t, err, domain.ErrMaxDepth)

	// Unbounded by default
	r = newTestReader(t, api, reader.WithExtractors(false))
	docs, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadDataCancelledContext(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{"a.txt": []byte("hello")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestReader(t, api, reader.WithExtractors(false))
	_, err := r.LoadData(ctx, reader.Ref{CommitSHA: commit})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadDataTransportErrorPropagates(t *testing.T) {
	api := githubapi.NewInMem()
	r := newTestReader(t, api)

	_, err := r.LoadData(context.Background(), reader.Ref{Branch: "missing"})
	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 404, transportErr.StatusCode)
}

func TestLoadDataBlobCacheAvoidsRefetch(t *testing.T) {
	api := githubapi.NewInMem()
	commit := api.SeedFiles(map[string][]byte{
		"a.txt": []byte("alpha"),
		"b.txt": []byte("beta"),
	})

	c, err := cache.NewBadgerCache(cache.Options{InMemory: true})
	require.NoError(t, err)
	defer c.Close()

	r := newTestReader(t, api, reader.WithExtractors(false), reader.WithCache(c, time.Hour))

	first, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)
	require.Len(t, first, 2)
	fetched := api.Calls("get_blob")
	assert.Equal(t, 2, fetched)

	second, err := r.LoadData(context.Background(), reader.Ref{CommitSHA: commit})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, fetched, api.Calls("get_blob"), "cached blobs must not be refetched")
}

func TestNewMissingCredential(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	_, err := reader.New("octo", "demo")
	require.ErrorIs(t, err, domain.ErrMissingCredential)
}
