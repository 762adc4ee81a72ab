// Package version holds the build identity stamped into the docfuse binary.
package version

// Set through -ldflags at build time; the defaults identify a local
// development build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit and build date reported by
// `docfuse --version`.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}
