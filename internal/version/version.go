// Package version carries build metadata stamped in with
//
//	-ldflags "-X github.com/banshee-data/trackposter/internal/version.Version=..."
package version

import "fmt"

var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)

// String formats the build metadata for --version output.
func String() string {
	return fmt.Sprintf("trackposter %s (%s, built %s)", Version, GitSHA, BuildTime)
}
