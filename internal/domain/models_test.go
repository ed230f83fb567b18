package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathedBlobName(t *testing.T) {
	tests := []struct {
		fullPath string
		want     string
	}{
		{"a.txt", "a.txt"},
		{"docs/guide/intro.md", "intro.md"},
		{"Makefile", "Makefile"},
	}

	for _, tt := range tests {
		pb := PathedBlob{FullPath: tt.fullPath}
		assert.Equal(t, tt.want, pb.Name(), "path %q", tt.fullPath)
	}
}

func TestPathedBlobExtension(t *testing.T) {
	tests := []struct {
		fullPath string
		want     string
	}{
		{"a.txt", "txt"},
		{"docs/page.HTML", "HTML"},
		{"archive.tar.gz", "gz"},
		{"Makefile", ""},
		{"dir.d/noext", ""},
	}

	for _, tt := range tests {
		pb := PathedBlob{FullPath: tt.fullPath}
		assert.Equal(t, tt.want, pb.Extension(), "path %q", tt.fullPath)
	}
}
