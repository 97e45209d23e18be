// Package version holds the build-time version string, overridden via
// -ldflags "-X ...=..." by release builds.
package version

// Version is the ssh-clipboard release version. The default value
// identifies an unreleased/development build.
var Version = "dev"

// String returns the version identifier reported by the version
// command and included in doctor diagnostics.
func String() string { return Version }
