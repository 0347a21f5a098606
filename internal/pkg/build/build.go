// Package build holds the values injected by the build pipeline via ldflags.
package build

var (
	BuildVersion = "dev"
	GitCommit    = "-"
	BuildDate    = "-"
)
