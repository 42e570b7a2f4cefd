// Package version holds build identity used in the user agent and script
// environment.
package version

// Name is the program name.
const Name = "lfstage"

// Version is the release version. Overridden at build time via
// -ldflags "-X github.com/tox-wtf/lfstage/internal/version.Version=...".
var Version = "0.4.0"

// UserAgent returns the identifying user agent for outbound HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}
