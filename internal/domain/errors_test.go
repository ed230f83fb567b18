package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeErrorUnwrap(t *testing.T) {
	cause := errors.New("bad padding")
	err := NewDecodeError("a/b.txt", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a/b.txt")

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "a/b.txt", de.Path)
}

func TestExtractorErrorUnwrap(t *testing.T) {
	cause := errors.New("parse failed")
	err := NewExtractorError("docs/x.md", "markdown", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "docs/x.md")
	assert.Contains(t, err.Error(), "markdown")
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransportError("get_tree", "octo", "demo", 0, cause)

	assert.ErrorIs(t, err, cause)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "get_tree", te.Op)
}

func TestIsPerFile(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		perFile bool
	}{
		{"decode error", NewDecodeError("p", errors.New("x")), true},
		{"extractor error", NewExtractorError("p", "csv", errors.New("x")), true},
		{"wrapped decode error", fmt.Errorf("outer: %w", NewDecodeError("p", errors.New("x"))), true},
		{"transport error", NewTransportError("op", "o", "r", 500, errors.New("x")), false},
		{"unsupported encoding", fmt.Errorf("blob: %w", ErrUnsupportedEncoding), false},
		{"plain error", errors.New("x"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.perFile, IsPerFile(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"429", NewTransportError("op", "o", "r", 429, errors.New("rate limited")), true},
		{"502", NewTransportError("op", "o", "r", 502, errors.New("bad gateway")), true},
		{"503", NewTransportError("op", "o", "r", 503, errors.New("unavailable")), true},
		{"504", NewTransportError("op", "o", "r", 504, errors.New("timeout")), true},
		{"404", NewTransportError("op", "o", "r", 404, errors.New("not found")), false},
		{"401", NewTransportError("op", "o", "r", 401, errors.New("unauthorized")), false},
		{"non-transport", errors.New("x"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}
