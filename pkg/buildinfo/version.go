// Package buildinfo holds version information stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/relink/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/relink/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/relink/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/relink
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build information on three lines.
func String() string {
	return fmt.Sprintf("relink %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template.
func Template() string {
	return "{{.Name}} " + Version + " (" + Commit + ", " + Date + ")\n"
}

// UserAgent identifies relink in outbound requests and health checks.
func UserAgent() string {
	return "relink/" + Version
}
