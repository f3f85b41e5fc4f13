// Package version holds build metadata injected at link time.
package version

import "runtime"

// Populated via -ldflags at build time.
var (
	// GitRelease is the release tag (e.g. v0.3.0) or "dev".
	GitRelease = "dev"

	// GitCommit is the short commit hash.
	GitCommit = "unknown"

	// GitCommitDate is the commit date in RFC3339.
	GitCommitDate = "unknown"
)

// GoInfo reports the Go runtime version used for the build.
var GoInfo = runtime.Version()
