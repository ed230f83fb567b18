package domain

import "path"

// EntryType is the kind of object a tree entry points at.
type EntryType string

const (
	// EntryTree is a directory-equivalent node.
	EntryTree EntryType = "tree"
	// EntryBlob is a file-equivalent content object.
	EntryBlob EntryType = "blob"
)

// TreeEntry is a single entry of a git tree as returned by the hosting API.
type TreeEntry struct {
	Path string
	Type EntryType
	SHA  string
	Mode string
	Size int
}

// Blob is the encoded content of a single file object.
type Blob struct {
	SHA      string
	Encoding string
	Content  string
}

// BlobEncodingBase64 is the only blob encoding the API client is
// expected to return.
const BlobEncodingBase64 = "base64"

// Commit references the root tree of a repository snapshot.
type Commit struct {
	SHA     string
	TreeSHA string
}

// Branch is a named ref pointing at its head commit.
type Branch struct {
	Name   string
	Commit Commit
}

// PathedBlob pairs a blob tree entry with its root-relative path,
// built by joining tree segment names during recursion.
type PathedBlob struct {
	Entry    TreeEntry
	FullPath string
}

// Name returns the base name of the blob's full path.
func (p PathedBlob) Name() string {
	return path.Base(p.FullPath)
}

// Extension returns the file extension without the leading dot, or ""
// if the path has none.
func (p PathedBlob) Extension() string {
	ext := path.Ext(p.FullPath)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

// Metadata keys attached to documents. The two synthesis paths write
// different key sets; see the Document doc comment.
const (
	MetaFullPath      = "full_path"
	MetaFilePath      = "file_path"
	MetaFileName      = "file_name"
	MetaFileExtension = "file_extension"
)

// Document is the normalized output unit of a crawl: plain text plus a
// metadata map, ready for downstream indexing. Immutable once built.
//
// The metadata shape differs between the two synthesis paths and this
// divergence is a documented contract, not an accident to flatten:
// extractor-produced documents carry {file_path, file_name} where
// file_name is the full root-relative path, while fallback documents
// carry {full_path, file_name, file_extension} where file_name is the
// base name. Downstream consumers may depend on either shape.
type Document struct {
	// DocID is the blob's content hash.
	DocID    string
	Text     string
	Metadata map[string]string
}
