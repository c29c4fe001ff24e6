// Package buildconfig carries the version stamped into the parley
// binary at build time.
package buildconfig

// Injected via ldflags:
//
//	-X github.com/parley-dm/parley/internal/buildconfig.version=...
//	-X github.com/parley-dm/parley/internal/buildconfig.commit=...
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the build version
func Version() string {
	return version
}

// Commit returns the git commit hash
func Commit() string {
	return commit
}

// VersionInfo returns full version information
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}
