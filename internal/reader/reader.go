// Package reader implements the repository content crawl: it resolves
// a ref to a root tree, walks every subtree, fetches each blob and
// synthesizes a normalized document per file. Per-file failures are
// isolated; call-level and transport failures propagate.
package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/githubapi"
	"github.com/repolens/repolens/internal/utils"
)

// Ref selects the repository snapshot to crawl. Exactly one of
// CommitSHA and Branch must be set.
type Ref struct {
	CommitSHA string
	Branch    string
}

// Validate enforces the exactly-one-of contract.
func (r Ref) Validate() error {
	if r.CommitSHA != "" && r.Branch != "" {
		return fmt.Errorf("only one of commit SHA or branch may be given: %w", domain.ErrInvalidArgument)
	}
	if r.CommitSHA == "" && r.Branch == "" {
		return fmt.Errorf("one of commit SHA or branch is required: %w", domain.ErrInvalidArgument)
	}
	return nil
}

// Reader crawls one repository and produces documents.
type Reader struct {
	owner         string
	repo          string
	api           domain.GitAPI
	registry      *extract.Registry
	useExtractors bool
	cache         domain.Cache
	cacheTTL      time.Duration
	workers       int
	maxDepth      int
	logger        *utils.Logger
}

type settings struct {
	token         string
	baseURL       string
	maxRetries    int
	api           domain.GitAPI
	registry      *extract.Registry
	useExtractors bool
	cache         domain.Cache
	cacheTTL      time.Duration
	workers       int
	maxDepth      int
	logger        *utils.Logger
}

// Option configures a Reader.
type Option func(*settings)

// WithToken sets the API token explicitly instead of reading the
// GITHUB_TOKEN environment variable.
func WithToken(token string) Option {
	return func(s *settings) { s.token = token }
}

// WithBaseURL points the default API client at a non-default endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithMaxRetries bounds transient transport-error retries of the
// default API client. 0 disables retrying.
func WithMaxRetries(n int) Option {
	return func(s *settings) { s.maxRetries = n }
}

// WithAPI injects an API client, replacing the default GitHub client.
// No token is required when the client is injected.
func WithAPI(api domain.GitAPI) Option {
	return func(s *settings) { s.api = api }
}

// WithRegistry injects an extractor registry, replacing the default.
func WithRegistry(r *extract.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithExtractors toggles extractor dispatch. When off every file takes
// the plain-text path.
func WithExtractors(enabled bool) Option {
	return func(s *settings) { s.useExtractors = enabled }
}

// WithCache enables content-addressed blob caching.
func WithCache(c domain.Cache, ttl time.Duration) Option {
	return func(s *settings) { s.cache = c; s.cacheTTL = ttl }
}

// WithConcurrency sets the blob pipeline worker count.
func WithConcurrency(workers int) Option {
	return func(s *settings) { s.workers = workers }
}

// WithMaxDepth caps tree recursion depth. 0 means unbounded.
func WithMaxDepth(depth int) Option {
	return func(s *settings) { s.maxDepth = depth }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *utils.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New creates a Reader for owner/repo. Without an injected API client
// a GitHub client is constructed, which requires a token from the
// WithToken option or the GITHUB_TOKEN environment variable; a missing
// token fails construction with domain.ErrMissingCredential before any
// network call.
func New(owner, repo string, opts ...Option) (*Reader, error) {
	s := &settings{
		useExtractors: true,
		workers:       5,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.api == nil {
		client, err := githubapi.NewClient(githubapi.ClientOptions{
			Token:      s.token,
			BaseURL:    s.baseURL,
			MaxRetries: s.maxRetries,
		})
		if err != nil {
			return nil, err
		}
		s.api = client
	}
	if s.registry == nil {
		s.registry = extract.DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = utils.NewNopLogger()
	}
	if s.workers < 1 {
		s.workers = 1
	}

	return &Reader{
		owner:         owner,
		repo:          repo,
		api:           s.api,
		registry:      s.registry,
		useExtractors: s.useExtractors,
		cache:         s.cache,
		cacheTTL:      s.cacheTTL,
		workers:       s.workers,
		maxDepth:      s.maxDepth,
		logger:        s.logger.WithComponent("reader").WithRepo(owner, repo),
	}, nil
}

// LoadData crawls the snapshot selected by ref and returns the
// documents that were successfully produced. Files that fail decoding
// or extraction are skipped, not errored.
func (r *Reader) LoadData(ctx context.Context, ref Ref) ([]domain.Document, error) {
	docs, _, err := r.LoadDataReport(ctx, ref)
	return docs, err
}

// LoadDataReport is LoadData plus a per-file report of skipped blobs.
func (r *Reader) LoadDataReport(ctx context.Context, ref Ref) ([]domain.Document, *CrawlReport, error) {
	if err := ref.Validate(); err != nil {
		return nil, nil, err
	}

	treeSHA, err := r.resolveTreeSHA(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := r.walkTree(ctx, treeSHA, "", 0)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Info().Int("blobs", len(blobs)).Str("tree", treeSHA).Msg("tree walk complete")

	return r.generateDocuments(ctx, blobs)
}

// resolveTreeSHA maps the ref to its root tree identity.
func (r *Reader) resolveTreeSHA(ctx context.Context, ref Ref) (string, error) {
	if ref.CommitSHA != "" {
		commit, err := r.api.GetCommit(ctx, r.owner, r.repo, ref.CommitSHA)
		if err != nil {
			return "", err
		}
		return commit.TreeSHA, nil
	}

	branch, err := r.api.GetBranch(ctx, r.owner, r.repo, ref.Branch)
	if err != nil {
		return "", err
	}
	return branch.Commit.TreeSHA, nil
}
