package githubapi

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/repolens/repolens/internal/domain"
)

// Ensure InMem implements domain.GitAPI
var _ domain.GitAPI = (*InMem)(nil)

// InMem is an in-memory domain.GitAPI for unit tests. It ignores the
// owner/repo arguments and models a single repository.
type InMem struct {
	mu       sync.Mutex
	commits  map[string]domain.Commit
	branches map[string]domain.Branch
	trees    map[string][]domain.TreeEntry
	blobs    map[string]domain.Blob
	calls    map[string]int
}

// NewInMem creates an empty InMem client.
func NewInMem() *InMem {
	return &InMem{
		commits:  make(map[string]domain.Commit),
		branches: make(map[string]domain.Branch),
		trees:    make(map[string][]domain.TreeEntry),
		blobs:    make(map[string]domain.Blob),
		calls:    make(map[string]int),
	}
}

// SeedFiles builds nested trees from a map of slash-separated paths to
// file contents and returns the SHA of a commit pointing at the root
// tree. Blob SHAs are the hex SHA-256 of the content.
func (m *InMem) SeedFiles(files map[string][]byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	root := newDirNode()
	for p, content := range files {
		root.insert(strings.Split(strings.Trim(p, "/"), "/"), content)
	}
	treeSHA := m.storeTree(root)

	commitSHA := "commit-" + treeSHA[:12]
	m.commits[commitSHA] = domain.Commit{SHA: commitSHA, TreeSHA: treeSHA}
	return commitSHA
}

// SetBranch points a branch name at an existing commit.
func (m *InMem) SetBranch(name, commitSHA string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branches[name] = domain.Branch{Name: name, Commit: m.commits[commitSHA]}
}

// SetBlob overrides a stored blob, e.g. to inject malformed base64 or
// an unexpected encoding.
func (m *InMem) SetBlob(sha string, blob domain.Blob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[sha] = blob
}

// BlobSHA returns the SHA a seeded file's content maps to.
func BlobSHA(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Calls returns how many times the given op was invoked.
func (m *InMem) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// GetCommit returns a seeded commit by SHA.
func (m *InMem) GetCommit(_ context.Context, owner, repo, sha string) (*domain.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get_commit"]++
	commit, ok := m.commits[sha]
	if !ok {
		return nil, domain.NewTransportError("get commit", owner, repo, 404, fmt.Errorf("commit not found: %s", sha))
	}
	return &commit, nil
}

// GetBranch returns a seeded branch by name.
func (m *InMem) GetBranch(_ context.Context, owner, repo, name string) (*domain.Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get_branch"]++
	branch, ok := m.branches[name]
	if !ok {
		return nil, domain.NewTransportError("get branch", owner, repo, 404, fmt.Errorf("branch not found: %s", name))
	}
	return &branch, nil
}

// GetTree returns the entries of a seeded tree.
func (m *InMem) GetTree(_ context.Context, owner, repo, treeSHA string) ([]domain.TreeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get_tree"]++
	entries, ok := m.trees[treeSHA]
	if !ok {
		return nil, domain.NewTransportError("get tree", owner, repo, 404, fmt.Errorf("tree not found: %s", treeSHA))
	}
	out := make([]domain.TreeEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// GetBlob returns a seeded blob.
func (m *InMem) GetBlob(_ context.Context, owner, repo, blobSHA string) (*domain.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get_blob"]++
	blob, ok := m.blobs[blobSHA]
	if !ok {
		return nil, domain.NewTransportError("get blob", owner, repo, 404, fmt.Errorf("blob not found: %s", blobSHA))
	}
	return &blob, nil
}

type dirNode struct {
	children map[string]*dirNode
	content  []byte
	isFile   bool
}

func newDirNode() *dirNode {
	return &dirNode{children: make(map[string]*dirNode)}
}

func (n *dirNode) insert(segments []string, content []byte) {
	if len(segments) == 1 {
		n.children[segments[0]] = &dirNode{content: content, isFile: true}
		return
	}
	child, ok := n.children[segments[0]]
	if !ok {
		child = newDirNode()
		n.children[segments[0]] = child
	}
	child.insert(segments[1:], content)
}

// storeTree registers the node's subtree and blobs, returning the tree
// SHA. Caller holds the lock. Entries are sorted by name for
// deterministic SHAs.
func (m *InMem) storeTree(n *dirNode) string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]domain.TreeEntry, 0, len(names))
	var sig strings.Builder
	for _, name := range names {
		child := n.children[name]
		if child.isFile {
			sha := BlobSHA(child.content)
			m.blobs[sha] = domain.Blob{
				SHA:      sha,
				Encoding: domain.BlobEncodingBase64,
				Content:  base64.StdEncoding.EncodeToString(child.content),
			}
			entries = append(entries, domain.TreeEntry{
				Path: name,
				Type: domain.EntryBlob,
				SHA:  sha,
				Mode: "100644",
				Size: len(child.content),
			})
			sig.WriteString("blob " + sha + " " + name + "\n")
			continue
		}
		sha := m.storeTree(child)
		entries = append(entries, domain.TreeEntry{
			Path: name,
			Type: domain.EntryTree,
			SHA:  sha,
			Mode: "040000",
		})
		sig.WriteString("tree " + sha + " " + name + "\n")
	}

	sum := sha256.Sum256([]byte(sig.String()))
	treeSHA := hex.EncodeToString(sum[:])
	m.trees[treeSHA] = entries
	return treeSHA
}
