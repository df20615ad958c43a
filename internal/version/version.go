// Package version exposes build metadata for the sitetext binary.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/sitetext/internal/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildDate is the UTC build timestamp in RFC3339 format.
	BuildDate = "unknown"
)

// Full returns a multi-line description of the build.
func Full() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "sitetext %s\n", Version)
	fmt.Fprintf(&sb, "  Commit:     %s\n", Commit)
	fmt.Fprintf(&sb, "  Built:      %s\n", BuildDate)
	fmt.Fprintf(&sb, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(&sb, "  OS/Arch:    %s/%s", runtime.GOOS, runtime.GOARCH)
	return sb.String()
}
