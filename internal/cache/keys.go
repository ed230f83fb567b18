package cache

// KeyPrefix constants for different cache entry types
const (
	PrefixBlob = "blob"
	PrefixTree = "tree"
)

// BlobKey generates a cache key for decoded blob content.
func BlobKey(sha string) string {
	return PrefixBlob + ":" + sha
}

// TreeKey generates a cache key for tree listings.
func TreeKey(sha string) string {
	return PrefixTree + ":" + sha
}
