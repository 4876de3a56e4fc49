// Package buildinfo exposes the version stamped into the qaeval binary.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/Gauravv801/QA-Eval/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/Gauravv801/QA-Eval/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/Gauravv801/QA-Eval/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Info bundles the stamped values for structured output. The API health
// endpoint embeds it so deployments can be checked for version skew.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the stamped build values.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String formats the build info for human output.
func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// String returns the formatted build information.
func String() string {
	return Get().String()
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
