package version

import "fmt"

var (
	// Version represents the current build version.
	Version = "dev"
	// Commit is the git commit hash for the build.
	Commit = ""
	// BuildDate is the ISO8601 timestamp of the build.
	BuildDate = ""
)

// String renders the build information on one line.
func String() string {
	if Commit == "" {
		return Version
	}
	if BuildDate == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildDate)
}
