package domain

import (
	"context"
	"time"
)

// GitAPI is the hosting service's git-data surface consumed by the
// crawler. Implementations own transport, auth and rate limits; the
// crawl core treats them as a black box returning typed responses.
type GitAPI interface {
	// GetCommit fetches a commit by SHA.
	GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, error)
	// GetBranch fetches a branch by name.
	GetBranch(ctx context.Context, owner, repo, name string) (*Branch, error)
	// GetTree fetches the entries of a single (non-recursive) tree.
	GetTree(ctx context.Context, owner, repo, treeSHA string) ([]TreeEntry, error)
	// GetBlob fetches the encoded content of a blob.
	GetBlob(ctx context.Context, owner, repo, blobSHA string) (*Blob, error)
}

// Cache defines the interface for content caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}
