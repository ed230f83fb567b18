package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInvalidArgument indicates bad call-site usage, e.g. both or
	// neither of commit SHA and branch were given.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingCredential indicates no API token was available at
	// construction time.
	ErrMissingCredential = errors.New("missing credential")

	// ErrUnsupportedEncoding indicates a blob arrived with an encoding
	// other than base64. The API client guarantees base64, so this is
	// an internal contract violation and fails the crawl.
	ErrUnsupportedEncoding = errors.New("unsupported blob encoding")

	// ErrMaxDepth indicates the tree walk exceeded the configured
	// depth cap.
	ErrMaxDepth = errors.New("max tree depth exceeded")

	// ErrInvalidUTF8 indicates blob content is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

	// ErrCacheMiss indicates a cache miss.
	ErrCacheMiss = errors.New("cache miss")
)

// DecodeError is a per-blob failure to decode content, either malformed
// base64 or non-UTF-8 text. The file is skipped and the crawl continues.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error for %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError
func NewDecodeError(path string, err error) *DecodeError {
	return &DecodeError{Path: path, Err: err}
}

// ExtractorError is a per-blob failure inside a content extractor. The
// file is skipped with no fallback to plain-text decoding.
type ExtractorError struct {
	Path      string
	Extractor string
	Err       error
}

func (e *ExtractorError) Error() string {
	return fmt.Sprintf("extractor %s failed for %s: %v", e.Extractor, e.Path, e.Err)
}

func (e *ExtractorError) Unwrap() error {
	return e.Err
}

// NewExtractorError creates a new ExtractorError
func NewExtractorError(path, extractor string, err error) *ExtractorError {
	return &ExtractorError{Path: path, Extractor: extractor, Err: err}
}

// TransportError wraps any failure from the API-client collaborator.
// The crawl core does not retry these; they propagate to the caller.
type TransportError struct {
	Op         string
	Owner      string
	Repo       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s/%s: status %d: %v", e.Op, e.Owner, e.Repo, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Owner, e.Repo, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(op, owner, repo string, statusCode int, err error) *TransportError {
	return &TransportError{Op: op, Owner: owner, Repo: repo, StatusCode: statusCode, Err: err}
}

// IsPerFile reports whether an error is scoped to a single blob and
// must not abort the crawl.
func IsPerFile(err error) bool {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return true
	}
	var extractorErr *ExtractorError
	return errors.As(err, &extractorErr)
}

// IsRetryable reports whether a transport error is worth retrying.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return false
	}
	switch transportErr.StatusCode {
	case 429, 502, 503, 504:
		return true
	}
	return false
}
