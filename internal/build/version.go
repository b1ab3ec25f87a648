package build

import "fmt"

// Set at link time with -ldflags "-X github.com/rohmanhakim/coffee-indicators/internal/build.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

const projectURL = "https://github.com/rohmanhakim/coffee-indicators"

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent identifies this build to the upstream publisher.
func UserAgent() string {
	return fmt.Sprintf("coffee-indicators/%s (+%s)", Version, projectURL)
}

// Info is the version summary printed by the CLI and served by the health endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func Current() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}
