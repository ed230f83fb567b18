// Package version carries build metadata injected at link time.
package version

import "fmt"

// Build-time variables (set via ldflags)
var (
	Version = "dev"
	Commit  = "unknown"
)

// Full returns the version with the commit it was built from.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
