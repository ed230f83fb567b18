// Package githubapi adapts the GitHub git-data REST API to the
// domain.GitAPI interface consumed by the reader. It owns auth,
// transport and retry; the crawl core never sees go-github types.
package githubapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"

	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"github.com/repolens/repolens/internal/config"
	"github.com/repolens/repolens/internal/domain"
)

// Ensure Client implements domain.GitAPI
var _ domain.GitAPI = (*Client)(nil)

// Client talks to the GitHub (or a mock GitHub) API.
type Client struct {
	gh      *gogithub.Client
	retrier *Retrier
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	// Token is the personal access token. Falls back to the
	// GITHUB_TOKEN environment variable when empty.
	Token string
	// BaseURL overrides the API endpoint, e.g. for a test server.
	BaseURL string
	// MaxRetries bounds retries of transient transport errors.
	// 0 disables retrying.
	MaxRetries int
	// HTTPClient overrides the underlying HTTP client (testing).
	HTTPClient *http.Client
}

// NewClient creates an authenticated GitHub API client. A missing token
// is a construction-time error; nothing is deferred to first use.
func NewClient(opts ClientOptions) (*Client, error) {
	token := opts.Token
	if token == "" {
		token = os.Getenv(config.EnvToken)
	}
	if token == "" {
		return nil, domain.ErrMissingCredential
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	gh := gogithub.NewClient(httpClient)
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL + "/")
		if err != nil {
			return nil, err
		}
		gh.BaseURL = u
	}

	var retrier *Retrier
	if opts.MaxRetries > 0 {
		retrier = NewRetrier(RetrierOptions{MaxRetries: opts.MaxRetries})
	}

	return &Client{gh: gh, retrier: retrier}, nil
}

// GetCommit fetches a commit and maps it to the domain model.
func (c *Client) GetCommit(ctx context.Context, owner, repo, sha string) (*domain.Commit, error) {
	commit, err := withRetry(ctx, c.retrier, func() (*gogithub.Commit, error) {
		commit, _, err := c.gh.Git.GetCommit(ctx, owner, repo, sha)
		if err != nil {
			return nil, wrapAPIError("get commit", owner, repo, err)
		}
		return commit, nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.Commit{
		SHA:     commit.GetSHA(),
		TreeSHA: commit.GetTree().GetSHA(),
	}, nil
}

// GetBranch fetches a branch and maps it to the domain model.
func (c *Client) GetBranch(ctx context.Context, owner, repo, name string) (*domain.Branch, error) {
	branch, err := withRetry(ctx, c.retrier, func() (*gogithub.Branch, error) {
		branch, _, err := c.gh.Repositories.GetBranch(ctx, owner, repo, name, 0)
		if err != nil {
			return nil, wrapAPIError("get branch", owner, repo, err)
		}
		return branch, nil
	})
	if err != nil {
		return nil, err
	}
	head := branch.GetCommit()
	return &domain.Branch{
		Name: branch.GetName(),
		Commit: domain.Commit{
			SHA:     head.GetSHA(),
			TreeSHA: head.GetCommit().GetTree().GetSHA(),
		},
	}, nil
}

// GetTree fetches a single tree, non-recursively.
func (c *Client) GetTree(ctx context.Context, owner, repo, treeSHA string) ([]domain.TreeEntry, error) {
	tree, err := withRetry(ctx, c.retrier, func() (*gogithub.Tree, error) {
		tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, treeSHA, false)
		if err != nil {
			return nil, wrapAPIError("get tree", owner, repo, err)
		}
		return tree, nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, domain.TreeEntry{
			Path: e.GetPath(),
			Type: domain.EntryType(e.GetType()),
			SHA:  e.GetSHA(),
			Mode: e.GetMode(),
			Size: e.GetSize(),
		})
	}
	return entries, nil
}

// GetBlob fetches the encoded content of a blob.
func (c *Client) GetBlob(ctx context.Context, owner, repo, blobSHA string) (*domain.Blob, error) {
	blob, err := withRetry(ctx, c.retrier, func() (*gogithub.Blob, error) {
		blob, _, err := c.gh.Git.GetBlob(ctx, owner, repo, blobSHA)
		if err != nil {
			return nil, wrapAPIError("get blob", owner, repo, err)
		}
		return blob, nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.Blob{
		SHA:      blob.GetSHA(),
		Encoding: blob.GetEncoding(),
		Content:  blob.GetContent(),
	}, nil
}

// wrapAPIError converts go-github errors into domain.TransportError,
// preserving the HTTP status for retry classification.
func wrapAPIError(op, owner, repo string, err error) error {
	status := 0

	var errResp *gogithub.ErrorResponse
	var rateErr *gogithub.RateLimitError
	var abuseErr *gogithub.AbuseRateLimitError
	switch {
	case errors.As(err, &errResp):
		if errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
	case errors.As(err, &rateErr):
		status = http.StatusTooManyRequests
	case errors.As(err, &abuseErr):
		status = http.StatusTooManyRequests
	}

	return domain.NewTransportError(op, owner, repo, status, err)
}
