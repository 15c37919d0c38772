// Package buildinfo carries release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/m3rciful/vaultbot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/vaultbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/vaultbot/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC 3339; empty for local builds.
	Date = ""
)

// String renders "version (commit[, date])".
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
