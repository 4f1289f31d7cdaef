package build

import "fmt"

// Populated at link time via -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// Stamp returns the full version plus the build instant, for startup
// logs and the CLI version output.
func Stamp() string {
	return fmt.Sprintf("%s (built %s)", FullVersion(), BuildTime)
}
