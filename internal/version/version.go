// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/solanawatchx/watchx-backend/internal/version.Version=1.0.0 \
//	                   -X github.com/solanawatchx/watchx-backend/internal/version.Commit=$(git rev-parse --short HEAD)" \
//	         ./cmd/watchx
package version

// Build-time variables (set via ldflags)
var (
	// Version is the release tag, "dev" for local builds
	Version = "dev"

	// Commit is the short git hash
	Commit = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ")"
}
